//go:build integration

package mqtt

import (
	"sync"
	"testing"
	"time"
)

// These tests need a broker at 127.0.0.1:1883:
//
//	go test -tags=integration ./internal/infrastructure/mqtt/...

func connectTest(t *testing.T, clientID string) *Client {
	t.Helper()
	cfg := testConfig()
	cfg.Broker.ClientID = clientID
	c, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestIntegration_AssignmentRoundtrip(t *testing.T) {
	c := connectTest(t, "coloplanner-it-roundtrip")

	var (
		mu     sync.Mutex
		topics []string
		done   = make(chan struct{}, 1)
	)
	err := c.Subscribe(Topics{}.AllAssignmentAdds(), 1, func(topic string, _ []byte) error {
		mu.Lock()
		topics = append(topics, topic)
		mu.Unlock()
		done <- struct{}{}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := c.Publish(Topics{}.AssignmentAdd("201"), []byte(`{"tileId":1006,"orderId":"O-1"}`), 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("message not received")
	}
	mu.Lock()
	defer mu.Unlock()
	if coloID, kind, ok := ParseColoTopic(topics[0]); !ok || coloID != "201" || kind != KindAssignmentAdd {
		t.Errorf("received topic %q", topics[0])
	}
}
