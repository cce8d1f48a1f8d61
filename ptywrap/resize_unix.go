//go:build !windows

package ptywrap

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// WatchResize observes SIGWINCH and emits the user terminal's new size
// on the returned channel each time it fires. The caller is responsible
// for forwarding each Size to Session.Resize; stop (returned) releases
// the signal subscription.
func WatchResize() (sizes <-chan Size, stop func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, unix.SIGWINCH)

	out := make(chan Size, 1)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-sigCh:
				rows, cols := UserTerminalSize()
				select {
				case out <- Size{Rows: rows, Cols: cols}:
				default:
					// A resize is already pending delivery; the latest
					// size will be read on the next SIGWINCH anyway via
					// UserTerminalSize, so dropping this one is safe.
				}
			}
		}
	}()

	return out, func() {
		signal.Stop(sigCh)
		close(done)
	}
}
