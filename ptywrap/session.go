// Package ptywrap spawns a child process attached to a pseudo-terminal
// and relays bytes transparently between it and the user's terminal,
// per the PTY Wrapper component.
package ptywrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// DetectorFeedCapacity is the bounded queue size for the detector-feed
// channel. Capacity 64 matches the concurrency model's requirement that
// backpressure on the detector is acceptable while the user-facing copy
// must never stall.
const DetectorFeedCapacity = 64

// Session owns one spawned tool's PTY master and child process.
type Session struct {
	cmd  *exec.Cmd
	ptmx *os.File

	rows, cols int
	onResize   func(rows, cols int)
}

// Spawn starts command (resolved via ResolveTool) with args in
// workingDir, attached to a new PTY sized to the user's controlling
// terminal (falling back to 24x80 if that size can't be read).
func Spawn(command string, args []string, workingDir string) (*Session, error) {
	rows, cols := UserTerminalSize()

	cmd := exec.Command(command, args...)
	cmd.Dir = workingDir
	cmd.Env = os.Environ()

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return nil, fmt.Errorf("ptywrap: spawn %s: %w", command, err)
	}

	return &Session{cmd: cmd, ptmx: ptmx, rows: rows, cols: cols}, nil
}

// InitialSize returns the (rows, cols) the session was spawned with.
func (s *Session) InitialSize() (rows, cols int) {
	return s.rows, s.cols
}

// UserTerminalSize reads the controlling terminal's dimensions,
// defaulting to (24, 80) when stdin isn't a terminal or the ioctl fails.
func UserTerminalSize() (rows, cols int) {
	cols, rows, err := term.GetSize(int(os.Stdin.Fd()))
	if err != nil {
		return 24, 80
	}
	return rows, cols
}

// OnResize registers the callback invoked after the PTY master has been
// resized, so the caller can resize its screen buffer to match.
func (s *Session) OnResize(fn func(rows, cols int)) {
	s.onResize = fn
}

// Resize applies new dimensions to the PTY master and invokes the
// registered resize callback, if any.
func (s *Session) Resize(rows, cols int) error {
	err := pty.Setsize(s.ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return fmt.Errorf("ptywrap: resize: %w", err)
	}
	s.rows, s.cols = rows, cols
	if s.onResize != nil {
		s.onResize(rows, cols)
	}
	return nil
}

// EnterRawMode places the user's controlling terminal into raw mode and
// returns a function that restores the prior mode. The returned
// function is idempotent-safe to call from a deferred statement on every
// exit path, including panics.
func EnterRawMode() (restore func(), err error) {
	fd := int(os.Stdin.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return func() {}, fmt.Errorf("ptywrap: enter raw mode: %w", err)
	}
	var once sync.Once
	return func() {
		once.Do(func() { _ = term.Restore(fd, state) })
	}, nil
}

// RelayOptions configures one Relay call.
type RelayOptions struct {
	// UserIn/UserOut are the user's terminal stdin/stdout. Defaults to
	// os.Stdin/os.Stdout when nil.
	UserIn  io.Reader
	UserOut io.Writer

	// LogFile, if non-nil, receives a raw append-mode copy of everything
	// read from the PTY master.
	LogFile io.Writer

	// DetectorFeed receives chunks read from the PTY master for
	// classification. Sends are non-blocking: when the channel is full,
	// the chunk is coalesced onto the next chunk rather than dropped or
	// allowed to block the user-facing copy. Bytes still coalesced when
	// the PTY read loop ends are delivered with one blocking send.
	DetectorFeed chan<- []byte

	// Resize, if non-nil, delivers observed terminal sizes; Relay applies
	// each one to the PTY via Session.Resize, which then invokes the
	// OnResize callback so the caller can resize its screen buffer.
	Resize <-chan Size
}

// Size is a terminal dimension pair.
type Size struct{ Rows, Cols int }

// Relay runs the bidirectional byte relay until the PTY master reaches
// EOF or the child process exits. It restores nothing about terminal
// mode itself — callers wrap Relay with EnterRawMode's restore function.
// Returns the child's exit status.
func (s *Session) Relay(ctx context.Context, opts RelayOptions) (exitCode int, err error) {
	userIn := opts.UserIn
	if userIn == nil {
		userIn = os.Stdin
	}
	userOut := opts.UserOut
	if userOut == nil {
		userOut = os.Stdout
	}

	ptyDone := make(chan struct{})
	var ptyReadErr error

	go func() {
		defer close(ptyDone)
		ptyReadErr = s.relayPTYOutput(userOut, opts.LogFile, opts.DetectorFeed)
	}()

	go func() {
		_, _ = io.Copy(&fdWriter{f: s.ptmx}, userIn)
	}()

	if opts.Resize != nil {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case size, ok := <-opts.Resize:
					if !ok {
						return
					}
					_ = s.Resize(size.Rows, size.Cols)
				}
			}
		}()
	}

	select {
	case <-ctx.Done():
	case <-ptyDone:
	}

	waitErr := s.cmd.Wait()
	s.ptmx.Close()

	// Closing ptmx unblocks relayPTYOutput's Read if ctx.Done() fired
	// first; wait for it so the caller can safely close DetectorFeed
	// the moment Relay returns without racing its last write.
	<-ptyDone

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("ptywrap: wait: %w", waitErr)
	}
	if ptyReadErr != nil && ptyReadErr != io.EOF {
		return s.cmd.ProcessState.ExitCode(), fmt.Errorf("ptywrap: relay: %w", ptyReadErr)
	}
	return s.cmd.ProcessState.ExitCode(), nil
}

// relayPTYOutput reads the PTY master until EOF, writing each chunk to
// userOut (always), logFile (if configured), and coalescing chunks onto
// detectorFeed without blocking on a full queue while reading; once the
// read loop ends, any coalesced remainder is sent with a blocking send.
func (s *Session) relayPTYOutput(userOut io.Writer, logFile io.Writer, detectorFeed chan<- []byte) error {
	buf := make([]byte, 32*1024)
	var pending []byte

	for {
		n, readErr := s.ptmx.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			if _, err := userOut.Write(chunk); err != nil {
				return err
			}
			if logFile != nil {
				_, _ = logFile.Write(chunk)
			}
			if detectorFeed != nil {
				pending = append(pending, chunk...)
				select {
				case detectorFeed <- pending:
					pending = nil
				default:
					// Queue full: keep accumulating: pending carries
					// forward and is offered again on the next read.
				}
			}
		}
		if readErr != nil {
			if len(pending) > 0 {
				detectorFeed <- pending
			}
			return readErr
		}
	}
}

// fdWriter adapts *os.File to io.Writer without exposing Close, so
// io.Copy's defer-free loop in Relay can't accidentally close the PTY
// master out from under the reader goroutine.
type fdWriter struct{ f *os.File }

func (w *fdWriter) Write(p []byte) (int, error) { return w.f.Write(p) }
