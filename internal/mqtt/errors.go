package mqtt

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by PublishError.
var (
	ErrConnectTimeout = errors.New("connect timeout")
	ErrPublishTimeout = errors.New("publish timeout")
)

// PublishError reports a failed connect or publish together with where it was going.
type PublishError struct {
	Broker string
	Topic  string
	Err    error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("mqtt publish to topic %s at broker %s: %v", e.Topic, e.Broker, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}
