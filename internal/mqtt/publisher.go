package mqtt

import "context"

// Publisher delivers one payload to a topic below the configured prefix.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Ensure Client implements Publisher
var _ Publisher = (*Client)(nil)
