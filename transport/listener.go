package transport

import (
	"fmt"
	"log/slog"
	"net"
)

// Listen opens the aggregator-side listener for cfg. For the network
// backend, incoming connections are pre-filtered against allowlist
// before being handed to the accept loop; disallowed peers are closed
// immediately, per spec.md §6, without a Session Event ever being read
// from them.
func Listen(cfg Config, allowlist *Allowlist, logger *slog.Logger) (net.Listener, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Kind {
	case "unix":
		listener, err := net.Listen("unix", cfg.SocketPath)
		if err != nil {
			return nil, fmt.Errorf("transport: listen unix %s: %w", cfg.SocketPath, err)
		}
		return listener, nil
	case "network":
		listener, err := net.Listen("tcp", cfg.Addr)
		if err != nil {
			return nil, fmt.Errorf("transport: listen tcp %s: %w", cfg.Addr, err)
		}
		if allowlist == nil {
			return nil, fmt.Errorf("transport: network listener requires an allowlist")
		}
		return &filteringListener{Listener: listener, allowlist: allowlist, logger: logger}, nil
	default:
		return nil, fmt.Errorf("transport: unknown kind %q", cfg.Kind)
	}
}

// filteringListener wraps a TCP listener, rejecting connections from
// peers not present in the configured allowlist before Accept returns
// them to the caller.
type filteringListener struct {
	net.Listener
	allowlist *Allowlist
	logger    *slog.Logger
}

func (l *filteringListener) Accept() (net.Conn, error) {
	for {
		conn, err := l.Listener.Accept()
		if err != nil {
			return nil, err
		}
		if l.allowlist.AllowedAddr(conn.RemoteAddr()) {
			return conn, nil
		}
		l.logger.Warn("rejecting connection from disallowed peer", "remote_addr", conn.RemoteAddr())
		conn.Close()
	}
}
