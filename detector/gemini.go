package detector

const geminiWaitingMarker = "Waiting for user confirmation"
const geminiAllowExecutionMarker = "Allow execution?"
const geminiBusyMarker = "(esc to cancel"
const geminiCumulativeStatsMarker = "Cumulative Stats"

var geminiErrorMarkers = []string{"✗", "failed", "Error"}

// GeminiDetector classifies Gemini CLI sessions from their reconstructed
// screen, using the same contract as ClaudeDetector with Gemini's own
// pattern set.
type GeminiDetector struct {
	current       State
	hasClassified bool

	lastEmittedState   State
	lastEmittedContext string
}

// NewGeminiDetector returns a detector in its initial Connected state.
func NewGeminiDetector() *GeminiDetector {
	return &GeminiDetector{
		current:          Connected,
		lastEmittedState: Connected,
	}
}

func (d *GeminiDetector) Tick(snap Snapshot) (state State, stateChanged bool, context string, contextChanged bool) {
	waitingInput := anyLineContainsAny(snap.Lines, geminiWaitingMarker) ||
		anyBoxContentContainsAny(snap.Boxes, geminiAllowExecutionMarker)
	busy := anyLineContainsAny(snap.Lines, geminiBusyMarker)
	idle := promptLinePresent(snap.Lines) || anyLineContainsAny(snap.Lines, geminiCumulativeStatsMarker)
	errorNow := anyLineContainsAny(snap.Lines, geminiErrorMarkers...)

	switch {
	case waitingInput:
		d.current = WaitingInput
	case busy:
		d.current = Busy
	case idle:
		d.current = Idle
	case errorNow:
		d.current = Error
	case !d.hasClassified:
		d.current = Idle
	}
	d.hasClassified = true

	stateChanged = d.current != d.lastEmittedState
	if stateChanged {
		d.lastEmittedState = d.current
	}

	context = executionContext(snap.Lines, '✦')
	if context != "" && context != d.lastEmittedContext {
		contextChanged = true
		d.lastEmittedContext = context
	}

	return d.current, stateChanged, context, contextChanged
}

// promptLinePresent reports whether any line begins, after trimming
// leading whitespace, with the Gemini command prompt character ">".
func promptLinePresent(lines []string) bool {
	for _, line := range lines {
		trimmed := trimLeftSpace(line)
		if len(trimmed) > 0 && trimmed[0] == '>' {
			return true
		}
	}
	return false
}

func trimLeftSpace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[i:]
}
