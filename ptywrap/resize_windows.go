//go:build windows

package ptywrap

import "time"

// pollInterval is how often the Windows fallback checks the console size.
// Windows has no SIGWINCH equivalent delivered to Go processes portably;
// polling is the platform-appropriate substitute the spec allows for.
const pollInterval = 250 * time.Millisecond

// WatchResize polls the console size on Windows, emitting a Size each
// time it changes. See the unix variant for the signal-based equivalent.
func WatchResize() (sizes <-chan Size, stop func()) {
	out := make(chan Size, 1)
	done := make(chan struct{})

	go func() {
		lastRows, lastCols := UserTerminalSize()
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				rows, cols := UserTerminalSize()
				if rows == lastRows && cols == lastCols {
					continue
				}
				lastRows, lastCols = rows, cols
				select {
				case out <- Size{Rows: rows, Cols: cols}:
				default:
				}
			}
		}
	}()

	return out, func() { close(done) }
}
