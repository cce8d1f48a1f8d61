package aggregator

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"

	"github.com/kizaaku/climonitor/protocol"
	"github.com/kizaaku/climonitor/transport"
)

// Server accepts launcher connections on a transport.Listener and
// folds every decoded Session Event into a Registry.
type Server struct {
	listener net.Listener
	registry *Registry
	logger   *slog.Logger

	wg sync.WaitGroup

	prevMu    sync.Mutex
	prevState map[string]string // "launcherID|sessionID" -> last known state, for notify-on-transition
}

// NewServer wraps an already-open listener (from transport.Listen).
func NewServer(listener net.Listener, registry *Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{listener: listener, registry: registry, logger: logger, prevState: make(map[string]string)}
}

// Serve accepts connections until ctx is canceled or the listener is
// closed, handling each one in its own goroutine. It blocks until all
// in-flight connections have been drained.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.wg.Wait()
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	launcherID := ""
	for {
		ev, err := protocol.ReadEvent(conn)
		if err != nil {
			if launcherID != "" {
				s.registry.Apply(protocol.Event{Kind: protocol.KindDisconnect, LauncherID: launcherID})
				s.forgetPrevState(launcherID)
			}
			if !errors.Is(err, net.ErrClosed) {
				s.logger.Debug("launcher connection closed", "error", err)
			}
			return
		}
		if ev.Identity != nil {
			launcherID = ev.Identity.LauncherID
		} else if ev.LauncherID != "" {
			launcherID = ev.LauncherID
		}

		s.registry.Apply(ev)
		s.maybeNotify(ev)
	}
}

func (s *Server) maybeNotify(ev protocol.Event) {
	if ev.Kind != protocol.KindStateUpdate {
		return
	}
	key := ev.LauncherID + "|" + ev.SessionID

	s.prevMu.Lock()
	prev := s.prevState[key]
	s.prevState[key] = ev.State
	s.prevMu.Unlock()

	if !ShouldNotify(prev, ev.State) {
		return
	}
	tool := ev.LauncherID
	for _, lv := range s.registry.Snapshot() {
		if lv.Identity.LauncherID == ev.LauncherID {
			tool = lv.Identity.ToolKind
			break
		}
	}
	Notify(s.logger, ev.State, tool, ev.Context, 0)
}

func (s *Server) forgetPrevState(launcherID string) {
	prefix := launcherID + "|"
	s.prevMu.Lock()
	defer s.prevMu.Unlock()
	for key := range s.prevState {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(s.prevState, key)
		}
	}
}

// ListenAndServe is a convenience wrapper combining transport.Listen
// with Serve.
func ListenAndServe(ctx context.Context, cfg transport.Config, allowlist *transport.Allowlist, registry *Registry, logger *slog.Logger) error {
	listener, err := transport.Listen(cfg, allowlist, logger)
	if err != nil {
		return err
	}
	return NewServer(listener, registry, logger).Serve(ctx)
}
