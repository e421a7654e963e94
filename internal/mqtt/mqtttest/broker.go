// Package mqtttest provides an in-process MQTT broker for tests. It speaks just
// enough MQTT 3.1.1 to accept a CONNECT and record PUBLISH packets.
package mqtttest

import (
	"crypto/tls"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/eclipse/paho.mqtt.golang/packets"

	"github.com/ibs-source/bindicator/internal/config"
)

// Broker records what clients send it. Every channel is buffered; a test
// that connects more clients than the buffer holds must drain them.
type Broker struct {
	ln         net.Listener
	returnCode byte
	silent     bool

	Connects     chan *packets.ConnectPacket
	Publishes    chan *packets.PublishPacket
	Disconnected chan struct{}
}

// Option configures a Broker.
type Option func(*Broker)

// WithReturnCode answers every CONNECT with code instead of accepted.
func WithReturnCode(code byte) Option {
	return func(b *Broker) { b.returnCode = code }
}

// Silent never answers CONNECT.
func Silent() Option {
	return func(b *Broker) { b.silent = true }
}

// NewBroker starts a plain TCP broker on loopback. It is closed when the test ends.
func NewBroker(t testing.TB, opts ...Option) *Broker {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	return serve(t, ln, opts)
}

// NewTLSBroker starts a broker that terminates TLS with cert.
func NewTLSBroker(t testing.TB, cert tls.Certificate, opts ...Option) *Broker {
	t.Helper()

	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	return serve(t, ln, opts)
}

func serve(t testing.TB, ln net.Listener, opts []Option) *Broker {
	b := &Broker{
		ln:           ln,
		Connects:     make(chan *packets.ConnectPacket, 8),
		Publishes:    make(chan *packets.PublishPacket, 8),
		Disconnected: make(chan struct{}, 8),
	}
	for _, opt := range opts {
		opt(b)
	}
	t.Cleanup(func() { _ = ln.Close() })
	go b.accept()
	return b
}

// Config returns an MQTT configuration pointing at the broker.
func (b *Broker) Config(t testing.TB) config.MQTTConfig {
	t.Helper()

	host, portText, err := net.SplitHostPort(b.ln.Addr().String())
	if err != nil {
		t.Fatalf("broker address: %v", err)
	}
	port, err := strconv.Atoi(portText)
	if err != nil {
		t.Fatalf("broker port: %v", err)
	}

	return config.MQTTConfig{
		Host:              host,
		Port:              port,
		TopicPrefix:       "home/hub",
		ClientID:          "bindicator-test",
		ConnectTimeout:    2 * time.Second,
		WriteTimeout:      2 * time.Second,
		DisconnectTimeout: 50,
	}
}

func (b *Broker) accept() {
	for {
		conn, err := b.ln.Accept()
		if err != nil {
			return
		}
		go b.handle(conn)
	}
}

func (b *Broker) handle(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	for {
		pkt, err := packets.ReadPacket(conn)
		if err != nil {
			b.Disconnected <- struct{}{}
			return
		}

		switch p := pkt.(type) {
		case *packets.ConnectPacket:
			b.Connects <- p
			if b.silent {
				continue
			}
			ack := packets.NewControlPacket(packets.Connack).(*packets.ConnackPacket)
			ack.ReturnCode = b.returnCode
			if err := ack.Write(conn); err != nil {
				return
			}
		case *packets.PublishPacket:
			b.Publishes <- p
			if p.Qos == 1 {
				ack := packets.NewControlPacket(packets.Puback).(*packets.PubackPacket)
				ack.MessageID = p.MessageID
				if err := ack.Write(conn); err != nil {
					return
				}
			}
		case *packets.PingreqPacket:
			if err := packets.NewControlPacket(packets.Pingresp).Write(conn); err != nil {
				return
			}
		}
	}
}

// Wait receives one value from ch or fails the test after a few seconds.
func Wait[T any](t testing.TB, ch <-chan T, what string) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
	var zero T
	return zero
}
