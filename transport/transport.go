// Package transport implements the launcher-to-aggregator reporting
// channel: a local Unix domain socket or a network TCP connection,
// carrying length-prefixed Session Event frames (see package protocol).
package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/kizaaku/climonitor/protocol"
)

// Default timeouts per spec.md §5; callers may override.
const (
	DefaultConnectTimeout = 2 * time.Second
	DefaultWriteTimeout   = 5 * time.Second
)

// Transport is the launcher-side connection to the aggregator.
type Transport interface {
	// Send writes one Session Event, applying the configured write
	// timeout. Callers treat any error as a transport failure per
	// spec.md §7: non-fatal, triggers the launcher's retry/backoff.
	Send(ctx context.Context, ev protocol.Event) error
	Close() error
}

// Config selects and configures a transport backend.
type Config struct {
	// Kind is "unix" or "network".
	Kind string
	// SocketPath is used when Kind is "unix".
	SocketPath string
	// Addr is a host:port used when Kind is "network".
	Addr string

	ConnectTimeout time.Duration
	WriteTimeout   time.Duration
}

// Dial connects to the aggregator using cfg, returning a ready Transport.
func Dial(ctx context.Context, cfg Config) (Transport, error) {
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}

	var network, address string
	switch cfg.Kind {
	case "unix":
		network, address = "unix", cfg.SocketPath
	case "network":
		network, address = "tcp", cfg.Addr
	default:
		return nil, fmt.Errorf("transport: unknown kind %q", cfg.Kind)
	}

	dialer := net.Dialer{Timeout: connectTimeout}
	conn, err := dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s %s: %w", network, address, err)
	}

	return &connTransport{conn: conn, writeTimeout: writeTimeout}, nil
}

// connTransport implements Transport over any net.Conn (unix or tcp).
type connTransport struct {
	conn         net.Conn
	writeTimeout time.Duration
}

func (t *connTransport) Send(_ context.Context, ev protocol.Event) error {
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
		return fmt.Errorf("transport: set write deadline: %w", err)
	}
	if err := protocol.WriteEvent(t.conn, ev); err != nil {
		return fmt.Errorf("transport: write event: %w", err)
	}
	return nil
}

func (t *connTransport) Close() error {
	return t.conn.Close()
}
