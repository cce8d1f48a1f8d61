// Package protocol defines the wire format of the reporting channel
// between a launcher and the aggregator: a tagged Session Event and its
// length-prefixed framing.
package protocol

import "time"

// Kind discriminates the variant carried by an Event. Go has no native
// tagged-union type, so Event is a single struct carrying every variant's
// fields; only the fields relevant to Kind are populated.
type Kind string

const (
	KindConnect       Kind = "connect"
	KindStateUpdate   Kind = "state_update"
	KindContextUpdate Kind = "context_update"
	KindDisconnect    Kind = "disconnect"
)

// Identity identifies one launcher process: a process-scoped unique id,
// the tool it wraps, the working directory it was invoked from, and the
// project name shown on the dashboard (defaulting to that directory's
// basename).
type Identity struct {
	LauncherID  string `json:"launcher_id"`
	WorkingDir  string `json:"working_dir"`
	ToolKind    string `json:"tool_kind"`
	ProjectName string `json:"project_name"`
}

// Event is one Session Event. Timestamp is monotonically ordered per
// launcher (see Ordering guarantees): callers must assign strictly
// increasing timestamps for events emitted by the same launcher.
//
//   - Connect:       Identity set, everything else zero.
//   - StateUpdate:   LauncherID, SessionID, State set; Context optional.
//   - ContextUpdate: LauncherID, SessionID, Context set.
//   - Disconnect:    LauncherID set.
type Event struct {
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	Identity *Identity `json:"identity,omitempty"`

	LauncherID string `json:"launcher_id,omitempty"`
	SessionID  string `json:"session_id,omitempty"`
	State      string `json:"state,omitempty"`
	Context    string `json:"context,omitempty"`
}

// NewConnect builds a Connect event.
func NewConnect(identity Identity, ts time.Time) Event {
	return Event{Kind: KindConnect, Timestamp: ts, Identity: &identity}
}

// NewStateUpdate builds a StateUpdate event. context may be empty.
func NewStateUpdate(launcherID, sessionID, state, context string, ts time.Time) Event {
	return Event{
		Kind:       KindStateUpdate,
		Timestamp:  ts,
		LauncherID: launcherID,
		SessionID:  sessionID,
		State:      state,
		Context:    context,
	}
}

// NewContextUpdate builds a ContextUpdate event.
func NewContextUpdate(launcherID, sessionID, context string, ts time.Time) Event {
	return Event{
		Kind:       KindContextUpdate,
		Timestamp:  ts,
		LauncherID: launcherID,
		SessionID:  sessionID,
		Context:    context,
	}
}

// NewDisconnect builds a Disconnect event.
func NewDisconnect(launcherID string, ts time.Time) Event {
	return Event{Kind: KindDisconnect, Timestamp: ts, LauncherID: launcherID}
}
