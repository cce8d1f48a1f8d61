package detector

// claudePromptMarkers are the substrings that, found inside a UI box's
// content lines, indicate the tool is waiting on a yes/no decision.
var claudePromptMarkers = []string{
	"Do you want",
	"Would you like",
	"May I",
	"proceed?",
	"y/n",
}

var claudeErrorMarkers = []string{"✗", "failed", "Error"}

const claudeEscInterruptMarker = "esc to interrupt"
const claudeIDEConnectedMarker = "◯ IDE connected"

// ClaudeDetector classifies Claude Code sessions from their reconstructed
// screen. It is stateful across ticks: the busy/idle edge depends on
// whether "esc to interrupt" was visible on the previous tick, and the
// error state persists until a higher-priority rule clears it.
type ClaudeDetector struct {
	current State

	lastEmittedState   State
	lastEmittedContext string

	prevHadEscInterrupt bool
}

// NewClaudeDetector returns a detector in its initial Connected state.
func NewClaudeDetector() *ClaudeDetector {
	return &ClaudeDetector{
		current:          Connected,
		lastEmittedState: Connected,
	}
}

func (d *ClaudeDetector) Tick(snap Snapshot) (state State, stateChanged bool, context string, contextChanged bool) {
	nowHasEsc := anyLineContainsAny(snap.Lines, claudeEscInterruptMarker)
	waitingInput := anyBoxContentContainsAny(snap.Boxes, claudePromptMarkers...)
	ideConnected := anyBoxBelowContainsAny(snap.Boxes, claudeIDEConnectedMarker)
	errorNow := anyLineOutsideBoxesContainsAny(snap.Lines, snap.Boxes, claudeErrorMarkers...)

	switch {
	case waitingInput:
		d.current = WaitingInput
	case !d.prevHadEscInterrupt && nowHasEsc:
		d.current = Busy
	case d.prevHadEscInterrupt && !nowHasEsc:
		d.current = Idle
	case ideConnected:
		d.current = Idle
	case errorNow:
		d.current = Error
	}
	d.prevHadEscInterrupt = nowHasEsc

	stateChanged = d.current != d.lastEmittedState
	if stateChanged {
		d.lastEmittedState = d.current
	}

	context = executionContext(snap.Lines, '●')
	if context != "" && context != d.lastEmittedContext {
		contextChanged = true
		d.lastEmittedContext = context
	}

	return d.current, stateChanged, context, contextChanged
}
