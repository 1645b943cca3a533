package mqtt

import "errors"

// Errors returned by Client. Wrapped errors carry the broker's reason.
var (
	ErrNotConnected     = errors.New("mqtt: broker not connected")
	ErrConnectionFailed = errors.New("mqtt: cannot reach broker")
	ErrPublishFailed    = errors.New("mqtt: publish rejected")
	ErrSubscribeFailed  = errors.New("mqtt: subscribe rejected")

	// ErrInvalidQoS and ErrInvalidTopic are argument errors and never
	// reach the broker.
	ErrInvalidQoS   = errors.New("mqtt: qos must be 0, 1 or 2")
	ErrInvalidTopic = errors.New("mqtt: empty topic")
)
