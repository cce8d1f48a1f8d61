// Package aggregator is the reference implementation of the
// aggregator side of the Session Event protocol: a registry of
// connected launchers and a notification hook. spec.md specifies the
// aggregator only at its protocol boundary; this package exists so the
// boundary has something real to talk to.
package aggregator

import (
	"sync"
	"time"

	"github.com/kizaaku/climonitor/protocol"
)

// SessionView is the latest known state of one launcher's wrapped tool
// session.
type SessionView struct {
	State       string
	Context     string
	LastUpdated time.Time
}

// LauncherView is everything the registry knows about one connected
// launcher.
type LauncherView struct {
	Identity protocol.Identity
	Sessions map[string]SessionView
}

// Registry is a goroutine-safe map of launcher-id to LauncherView,
// updated by feeding it protocol.Event values as they arrive off a
// transport listener.
type Registry struct {
	mu        sync.RWMutex
	launchers map[string]*LauncherView

	onChange func()
}

// NewRegistry creates an empty Registry. onChange, if non-nil, is
// called (without holding the registry's lock) after every mutating
// Apply, so a consumer like the dashboard can redraw.
func NewRegistry(onChange func()) *Registry {
	return &Registry{
		launchers: make(map[string]*LauncherView),
		onChange:  onChange,
	}
}

// Apply folds one Session Event into the registry.
func (r *Registry) Apply(ev protocol.Event) {
	r.mu.Lock()
	switch ev.Kind {
	case protocol.KindConnect:
		if ev.Identity != nil {
			r.launchers[ev.Identity.LauncherID] = &LauncherView{
				Identity: *ev.Identity,
				Sessions: make(map[string]SessionView),
			}
		}
	case protocol.KindStateUpdate:
		r.updateSession(ev.LauncherID, ev.SessionID, func(s *SessionView) {
			s.State = ev.State
			if ev.Context != "" {
				s.Context = ev.Context
			}
			s.LastUpdated = ev.Timestamp
		})
	case protocol.KindContextUpdate:
		r.updateSession(ev.LauncherID, ev.SessionID, func(s *SessionView) {
			s.Context = ev.Context
			s.LastUpdated = ev.Timestamp
		})
	case protocol.KindDisconnect:
		delete(r.launchers, ev.LauncherID)
	}
	r.mu.Unlock()

	if r.onChange != nil {
		r.onChange()
	}
}

// updateSession must be called with r.mu held for writing.
func (r *Registry) updateSession(launcherID, sessionID string, mutate func(*SessionView)) {
	lv, ok := r.launchers[launcherID]
	if !ok {
		return
	}
	sv := lv.Sessions[sessionID]
	mutate(&sv)
	lv.Sessions[sessionID] = sv
}

// Snapshot returns a stable, independently-readable copy of all
// currently connected launchers, keyed by launcher-id.
func (r *Registry) Snapshot() map[string]LauncherView {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]LauncherView, len(r.launchers))
	for id, lv := range r.launchers {
		sessions := make(map[string]SessionView, len(lv.Sessions))
		for sid, sv := range lv.Sessions {
			sessions[sid] = sv
		}
		out[id] = LauncherView{Identity: lv.Identity, Sessions: sessions}
	}
	return out
}
