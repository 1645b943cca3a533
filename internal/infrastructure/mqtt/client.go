package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/colo-planner-core/internal/infrastructure/config"
)

// Client is the planner's broker connection. It carries assignment
// messages in and committed selections out, and keeps the service's
// retained status current. Methods are safe for concurrent use.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig

	mu        sync.RWMutex
	connected bool
	subs      map[string]subscription
	onChange  func(connected bool, err error)
	logger    Logger
}

// Logger receives handler failures and connection loss.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

type subscription struct {
	qos     byte
	handler MessageHandler
}

// MessageHandler handles one message on a paho goroutine. An error is
// logged and the message is still acknowledged.
type MessageHandler func(topic string, payload []byte) error

// Connect dials the configured broker and waits up to the connect timeout
// for it to accept. The broker is left a last will that marks the planner
// offline.
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := &Client{cfg: cfg, subs: make(map[string]subscription)}

	opts := buildClientOptions(cfg)
	configureLWT(opts, cfg.Broker.ClientID)
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.connectionUp() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.connectionDown(err) })

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: %s: no answer within %v", ErrConnectionFailed, brokerURL(cfg), defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// paho calls the connect handler on its own goroutine, possibly after
	// Connect returns.
	c.setConnected(true)
	return c, nil
}

func (c *Client) setConnected(up bool) {
	c.mu.Lock()
	c.connected = up
	c.mu.Unlock()
}

// connectionUp runs on the first connect and after every reconnect.
func (c *Client) connectionUp() {
	c.setConnected(true)
	c.resubscribe()
	c.announce("online", "")

	c.mu.RLock()
	fn := c.onChange
	c.mu.RUnlock()
	if fn != nil {
		fn(true, nil)
	}
}

func (c *Client) connectionDown(err error) {
	c.mu.Lock()
	c.connected = false
	fn, logger := c.onChange, c.logger
	c.mu.Unlock()

	if logger != nil {
		logger.Warn("MQTT connection lost", "broker", brokerURL(c.cfg), "error", err)
	}
	if fn != nil {
		fn(false, err)
	}
}

// announce publishes the retained planner status without waiting.
func (c *Client) announce(status, reason string) pahomqtt.Token {
	return c.client.Publish(Topics{}.SystemStatus(), byte(c.cfg.QoS), true,
		statusPayload(status, c.cfg.Broker.ClientID, reason))
}

// Close marks the planner offline and disconnects. A client that never
// connected closes cleanly.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	if c.IsConnected() {
		c.announce("offline", "graceful_shutdown").WaitTimeout(defaultPublishTimeout)
	}
	c.client.Disconnect(defaultDisconnectQuiesce)
	c.setConnected(false)
	return nil
}

// HealthCheck returns ErrNotConnected while the broker is unreachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected && c.client != nil && c.client.IsConnected()
}

// OnConnectionChange sets fn to run when the connection comes up (err is
// nil) or drops.
func (c *Client) OnConnectionChange(fn func(connected bool, err error)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// SetLogger sets the logger for handler failures and connection loss.
func (c *Client) SetLogger(logger Logger) {
	c.mu.Lock()
	c.logger = logger
	c.mu.Unlock()
}

func (c *Client) getLogger() Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.logger
}

func (c *Client) pahoHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		c.deliver(handler, msg.Topic(), msg.Payload())
	}
}

// deliver runs handler and logs its error or panic. A malformed
// assignment message must not take down the paho router.
func (c *Client) deliver(handler MessageHandler, topic string, payload []byte) {
	logger := c.getLogger()
	defer func() {
		if r := recover(); r != nil && logger != nil {
			logger.Error("MQTT handler panic", "topic", topic, "panic", r)
		}
	}()

	if err := handler(topic, payload); err != nil && logger != nil {
		logger.Warn("MQTT message rejected", "topic", topic, "error", err)
	}
}
