package influxdb

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/colo-planner-core/internal/infrastructure/config"
)

type fakeWriter struct {
	mu      sync.Mutex
	points  []*write.Point
	flushes int
	errs    chan error
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{errs: make(chan error, 1)}
}

func (w *fakeWriter) WritePoint(p *write.Point) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.points = append(w.points, p)
}

func (w *fakeWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flushes++
}

func (w *fakeWriter) Errors() <-chan error { return w.errs }

func (w *fakeWriter) snapshot() []*write.Point {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*write.Point(nil), w.points...)
}

type fakeServer struct {
	healthy bool
	err     error
	closed  bool
}

func (s *fakeServer) Ping(context.Context) (bool, error) { return s.healthy, s.err }
func (s *fakeServer) Close()                             { s.closed = true }

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T) (*Client, *fakeWriter, *fakeServer) {
	t.Helper()
	w := newFakeWriter()
	s := &fakeServer{healthy: true}
	c := newClient(config.InfluxDBConfig{Enabled: true, Bucket: "coloplanner"}, s, w)
	c.now = func() time.Time { return fixedTime }
	t.Cleanup(func() { c.Close() })
	return c, w, s
}

func tagMap(p *write.Point) map[string]string {
	out := make(map[string]string)
	for _, tag := range p.TagList() {
		out[tag.Key] = tag.Value
	}
	return out
}

func fieldMap(p *write.Point) map[string]any {
	out := make(map[string]any)
	for _, f := range p.FieldList() {
		out[f.Key] = f.Value
	}
	return out
}

func TestConnectDisabled(t *testing.T) {
	client, err := Connect(config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("Connect() error = %v, want ErrDisabled", err)
	}
	if client != nil {
		t.Error("Connect() returned a client when disabled")
	}
}

func TestWriteMeasurements(t *testing.T) {
	c, w, _ := newTestClient(t)

	c.WriteSelectionCommit("201", 2)
	c.WriteGesture("201", "Ended")
	c.WriteColoPower("201", 12000, 4000.5, 1)

	points := w.snapshot()
	if len(points) != 3 {
		t.Fatalf("wrote %d points, want 3", len(points))
	}

	tests := []struct {
		measurement string
		tags        map[string]string
		fields      map[string]any
	}{
		{MeasurementSelectionCommit, map[string]string{"colo": "201"}, map[string]any{"tiles": int64(2)}},
		{MeasurementGesture, map[string]string{"colo": "201", "state": "Ended"}, map[string]any{"count": int64(1)}},
		{MeasurementColoPower, map[string]string{"colo": "201"}, map[string]any{
			"deployed_w": 12000.0, "reserved_w": 4000.5, "unknown": int64(1),
		}},
	}
	for i, tt := range tests {
		t.Run(tt.measurement, func(t *testing.T) {
			p := points[i]
			if p.Name() != tt.measurement {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.measurement)
			}
			if !p.Time().Equal(fixedTime) {
				t.Errorf("Time() = %v, want %v", p.Time(), fixedTime)
			}
			tags := tagMap(p)
			for k, v := range tt.tags {
				if tags[k] != v {
					t.Errorf("tag %s = %q, want %q", k, tags[k], v)
				}
			}
			fields := fieldMap(p)
			for k, v := range tt.fields {
				if fields[k] != v {
					t.Errorf("field %s = %v (%T), want %v (%T)", k, fields[k], fields[k], v, v)
				}
			}
		})
	}
}

func TestWritePointWithTime(t *testing.T) {
	c, w, _ := newTestClient(t)
	ts := fixedTime.Add(-time.Hour)

	c.WritePointWithTime("custom", nil, map[string]any{"v": 1.5}, ts)

	points := w.snapshot()
	if len(points) != 1 {
		t.Fatalf("wrote %d points, want 1", len(points))
	}
	if !points[0].Time().Equal(ts) {
		t.Errorf("Time() = %v, want %v", points[0].Time(), ts)
	}
}

func TestWritesAfterCloseAreDropped(t *testing.T) {
	c, w, s := newTestClient(t)

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !s.closed {
		t.Error("Close() did not close the server connection")
	}
	if w.flushes != 1 {
		t.Errorf("flushes = %d, want 1", w.flushes)
	}

	c.WriteSelectionCommit("201", 1)
	c.Flush()
	if got := len(w.snapshot()); got != 0 {
		t.Errorf("wrote %d points after Close, want 0", got)
	}
	if w.flushes != 1 {
		t.Errorf("flushes after Close = %d, want 1", w.flushes)
	}

	// Second close is a no-op.
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestNilClient(t *testing.T) {
	var c *Client

	if c.IsConnected() {
		t.Error("nil client reports connected")
	}
	c.WriteGesture("201", "Started")
	if err := c.Close(); err != nil {
		t.Errorf("Close() on nil client error = %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	pingErr := errors.New("connection refused")

	tests := []struct {
		name    string
		healthy bool
		err     error
		wantErr bool
	}{
		{"healthy", true, nil, false},
		{"unhealthy", false, nil, true},
		{"ping error", false, pingErr, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, s := newTestClient(t)
			s.healthy = tt.healthy
			s.err = tt.err

			err := c.HealthCheck(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("HealthCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Errorf("HealthCheck() error = %v, want wrapped %v", err, tt.err)
			}
		})
	}

	t.Run("closed", func(t *testing.T) {
		c, _, _ := newTestClient(t)
		c.Close()
		if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
			t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
		}
	})
}

func TestOnErrorCallback(t *testing.T) {
	c, w, _ := newTestClient(t)

	got := make(chan error, 1)
	c.SetOnError(func(err error) { got <- err })

	want := errors.New("write failed: 401")
	w.errs <- want

	select {
	case err := <-got:
		if !errors.Is(err, want) {
			t.Errorf("callback error = %v, want %v", err, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error callback not invoked")
	}
}
