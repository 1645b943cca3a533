package mqtt

import "fmt"

// Subscribe routes messages on topic, which may hold + and # wildcards,
// to handler. The subscription survives reconnects.
//
//	err := client.Subscribe(mqtt.Topics{}.AllAssignmentAdds(), 1, handleAdd)
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if err := validate(topic, qos); err != nil {
		return err
	}
	if handler == nil {
		return fmt.Errorf("%w: nil handler for %s", ErrSubscribeFailed, topic)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Subscribe(topic, qos, c.pahoHandler(handler))
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: %s: no answer within %v", ErrSubscribeFailed, topic, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, topic, err)
	}

	c.mu.Lock()
	c.subs[topic] = subscription{qos: qos, handler: handler}
	c.mu.Unlock()
	return nil
}

// resubscribe replays the accepted subscriptions after a reconnect. The
// session is clean, so the broker has forgotten them.
func (c *Client) resubscribe() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for topic, sub := range c.subs {
		c.client.Subscribe(topic, sub.qos, c.pahoHandler(sub.handler))
	}
}
