// Package mqtt delivers indicator commands to an MQTT broker. Every publish
// opens its own connection and tears it down again before returning.
package mqtt

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ibs-source/bindicator/internal/config"
	"github.com/ibs-source/bindicator/internal/log"
)

const (
	protocolVersion = 4 // MQTT 3.1.1
	keepAlive       = 30 * time.Second
	clientIDSuffix  = 8
	// paho puts its own deadline on the connect handshake; it is set past the
	// connect timeout so the caller's bound always fires first.
	socketDeadlineGrace = time.Second
)

// Client publishes over a fresh broker connection per call. It holds no
// connection between calls and is safe for concurrent use.
type Client struct {
	config    config.MQTTConfig
	tlsConfig *tls.Config
	logger    *log.Logger
	newClient func(*paho.ClientOptions) paho.Client
}

// NewClient validates cfg and prepares a publisher. No network activity happens here.
func NewClient(cfg config.MQTTConfig, logger *log.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Discard()
	}

	c := &Client{
		config:    cfg,
		logger:    logger,
		newClient: paho.NewClient,
	}

	if cfg.TLSEnabled {
		tlsConfig, err := newTLSConfig(&c.config)
		if err != nil {
			return nil, err
		}
		c.tlsConfig = tlsConfig
	}

	return c, nil
}

// Topic returns the full topic a suffix is published on.
func (c *Client) Topic(suffix string) string {
	return c.config.TopicPrefix + "/" + suffix
}

// Publish connects, publishes payload on prefix/topic and disconnects. The
// connect phase is bounded by the configured connect timeout and the publish by
// the write timeout; both also end when ctx ends. Teardown problems are logged
// and never change the result.
func (c *Client) Publish(ctx context.Context, topic string, payload []byte) error {
	fullTopic := c.Topic(topic)
	if topic == "" {
		return c.publishError(fullTopic, errors.New("empty topic"))
	}

	connectCtx, cancel := context.WithTimeout(ctx, c.config.ConnectTimeout)
	defer cancel()

	conns := &connTracker{}
	clientID := c.clientID()
	client := c.newClient(c.clientOptions(connectCtx, clientID, conns))
	defer c.teardown(client, conns, fullTopic)

	fields := logrus.Fields{
		"broker":    c.config.Address(),
		"topic":     fullTopic,
		"client_id": clientID,
	}
	c.logger.DebugWithFields(fields, "Connecting to MQTT broker")

	if err := wait(ctx, connectCtx, client.Connect(), ErrConnectTimeout); err != nil {
		return c.publishError(fullTopic, err)
	}

	publishCtx, cancelPublish := context.WithTimeout(ctx, c.config.WriteTimeout)
	defer cancelPublish()

	token := client.Publish(fullTopic, c.config.QoS, c.config.Retain, payload)
	if err := wait(ctx, publishCtx, token, ErrPublishTimeout); err != nil {
		return c.publishError(fullTopic, err)
	}

	fields["bytes"] = len(payload)
	fields["qos"] = c.config.QoS
	c.logger.InfoWithFields(fields, "Published indicator message")
	return nil
}

func (c *Client) clientOptions(ctx context.Context, clientID string, conns *connTracker) *paho.ClientOptions {
	opts := paho.NewClientOptions()
	opts.AddBroker(c.config.BrokerURL())
	opts.SetClientID(clientID)
	opts.SetProtocolVersion(protocolVersion)
	opts.SetCleanSession(true)
	opts.SetKeepAlive(keepAlive)
	opts.SetConnectTimeout(c.config.ConnectTimeout + socketDeadlineGrace)
	opts.SetWriteTimeout(c.config.WriteTimeout)
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetOrderMatters(false)

	if c.config.HasCredentials() {
		opts.SetUsername(c.config.Username)
		opts.SetPassword(c.config.Password)
	}

	if c.tlsConfig != nil {
		opts.SetTLSConfig(c.tlsConfig)
	}

	opts.SetCustomOpenConnectionFn(func(uri *url.URL, _ paho.ClientOptions) (net.Conn, error) {
		return conns.dial(ctx, uri.Host, c.tlsConfig)
	})

	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		c.logger.DebugWithFields(logrus.Fields{"client_id": clientID}, "MQTT connection lost: %v", err)
	})

	return opts
}

// clientID appends a random suffix so overlapping runs never share a session.
func (c *Client) clientID() string {
	return c.config.ClientID + "-" + uuid.NewString()[:clientIDSuffix]
}

// teardown disconnects and then closes anything the dialer left open.
func (c *Client) teardown(client paho.Client, conns *connTracker, topic string) {
	if client.IsConnectionOpen() {
		client.Disconnect(c.config.DisconnectTimeout)
	}
	if err := conns.Close(); err != nil {
		c.logger.WarnWithFields(logrus.Fields{
			"broker": c.config.Address(),
			"topic":  topic,
		}, "MQTT teardown failed: %v", err)
	}
}

func (c *Client) publishError(topic string, err error) error {
	return &PublishError{
		Broker: c.config.Address(),
		Topic:  topic,
		Err:    err,
	}
}

// wait blocks until the token completes or bounded ends. When bounded ends
// because of its own deadline, or the token fails with a socket timeout, the
// timeout error is returned; when the parent context ended first its error is
// returned instead.
func wait(parent, bounded context.Context, token paho.Token, timeout error) error {
	select {
	case <-token.Done():
		err := token.Error()
		if err == nil {
			return nil
		}
		if perr := parent.Err(); perr != nil {
			return perr
		}
		if isTimeout(err) || bounded.Err() != nil {
			return fmt.Errorf("%w: %v", timeout, err)
		}
		return err
	case <-bounded.Done():
		if err := parent.Err(); err != nil {
			return err
		}
		return timeout
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
