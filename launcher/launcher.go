// Package launcher glues the screen buffer, detectors, and PTY wrapper
// to the reporting transport: the Launcher Client component.
package launcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/kizaaku/climonitor/config"
	"github.com/kizaaku/climonitor/detector"
	"github.com/kizaaku/climonitor/pkg/paths"
	"github.com/kizaaku/climonitor/pkg/perf"
	"github.com/kizaaku/climonitor/protocol"
	"github.com/kizaaku/climonitor/ptywrap"
	"github.com/kizaaku/climonitor/termbuffer"
	"github.com/kizaaku/climonitor/transport"
)

// Options carries the launcher's CLI-level knobs (spec.md §4.5, §6).
type Options struct {
	Verbose         bool
	LogFilePath     string
	ConfigPath      string
	ConnectEndpoint string
	ProjectName     string
	Logger          *slog.Logger
}

// Run spawns tool with args in workingDir, wraps it in a PTY, classifies
// its session state tick by tick, and reports transitions to the
// configured aggregator. It returns the wrapped tool's exit status.
// Aggregator unavailability never prevents the tool from running
// interactively (spec.md §4.5, step 2).
func Run(ctx context.Context, tool string, args []string, workingDir string, opts Options) (exitCode int, err error) {
	logger := opts.Logger
	if logger == nil {
		level := slog.LevelInfo
		if opts.Verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}

	identity := NewIdentity(tool, workingDir, opts.ProjectName)

	cfg, cfgErr := config.Load(opts.ConfigPath)
	if cfgErr != nil {
		logger.Warn("failed to load config, using defaults", "error", cfgErr)
		cfg = config.Default()
	}
	applyOptionOverrides(&cfg, opts)

	rep := connectReporter(ctx, cfg, logger)
	rep.emit(ctx, protocol.NewConnect(identity, time.Now()))

	executable, resolveErr := ptywrap.ResolveTool(tool)
	if resolveErr != nil {
		return 1, fmt.Errorf("launcher: %w", resolveErr)
	}

	session, spawnErr := ptywrap.Spawn(executable, args, workingDir)
	if spawnErr != nil {
		return 1, fmt.Errorf("launcher: %w", spawnErr)
	}

	restoreTerm, rawErr := ptywrap.EnterRawMode()
	if rawErr != nil {
		logger.Warn("failed to enter raw terminal mode, continuing in degraded mode", "error", rawErr)
	}
	defer restoreTerm()

	logFilePath := cfg.Logging.LogFile
	if logFilePath == "" && cfg.Logging.Verbose {
		if _, dirErr := paths.EnsureStateDir(); dirErr == nil {
			logFilePath = paths.StatePath(identity.LauncherID + ".log")
		}
	}

	var logFile *os.File
	if logFilePath != "" {
		f, openErr := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if openErr != nil {
			logger.Warn("failed to open log file, continuing without it", "path", logFilePath, "error", openErr)
		} else {
			logFile = f
			defer f.Close()
		}
	}

	rows, cols := session.InitialSize()
	buf := termbuffer.New(rows, cols)
	buf.SetVerbose(cfg.Logging.Verbose)

	det := newDetector(tool)

	session.OnResize(func(rows, cols int) { buf.Resize(rows, cols) })
	resizeCh, stopResize := ptywrap.WatchResize()
	defer stopResize()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-runCtx.Done():
		}
	}()

	detectorFeed := make(chan []byte, ptywrap.DetectorFeedCapacity)
	var consumeWG sync.WaitGroup
	consumeWG.Add(1)
	go func() {
		defer consumeWG.Done()
		consumeDetectorFeed(runCtx, detectorFeed, buf, det, identity.LauncherID, rep)
	}()

	var logWriter io.Writer
	if logFile != nil {
		logWriter = logFile
	}

	exitCode, relayErr := session.Relay(runCtx, ptywrap.RelayOptions{
		LogFile:      logWriter,
		DetectorFeed: detectorFeed,
		Resize:       resizeCh,
	})
	close(detectorFeed)
	consumeWG.Wait()

	rep.emit(ctx, protocol.NewDisconnect(identity.LauncherID, time.Now()))
	rep.disconnect()

	if relayErr != nil {
		return exitCode, fmt.Errorf("launcher: %w", relayErr)
	}
	return exitCode, nil
}

// consumeDetectorFeed drains chunks fed by the PTY-reader task, mutating
// the screen buffer and ticking the detector after each one, emitting
// StateUpdate/ContextUpdate events on change.
func consumeDetectorFeed(ctx context.Context, feed <-chan []byte, buf *termbuffer.Buffer, det detector.Detector, launcherID string, rep *reporter) {
	sessionID := launcherID
	for chunk := range feed {
		t := perf.Start("detector_tick")
		buf.Write(chunk)
		snapshot := detector.NewSnapshot(buf.Lines(), buf.FindBoxes())
		state, stateChanged, context, contextChanged := det.Tick(snapshot)
		t.Stop()
		if stateChanged {
			rep.emit(ctx, protocol.NewStateUpdate(launcherID, sessionID, string(state), context, time.Now()))
		}
		if contextChanged && !stateChanged {
			rep.emit(ctx, protocol.NewContextUpdate(launcherID, sessionID, context, time.Now()))
		}
	}
}

func newDetector(tool string) detector.Detector {
	switch tool {
	case "gemini":
		return detector.NewGeminiDetector()
	default:
		return detector.NewClaudeDetector()
	}
}

// connectReporter dials the configured transport, logging and continuing
// without reporting on failure (spec.md §4.5 step 2: the wrapped tool
// must run regardless of aggregator availability).
func connectReporter(ctx context.Context, cfg config.Config, logger *slog.Logger) *reporter {
	tcfg := transport.Config{
		Kind:       cfg.Connection.Type,
		SocketPath: cfg.Connection.SocketPath,
		Addr:       cfg.Connection.NetworkAddr,
	}
	connectCtx, cancel := context.WithTimeout(ctx, transport.DefaultConnectTimeout)
	defer cancel()
	t, err := transport.Dial(connectCtx, tcfg)
	if err != nil {
		logger.Warn("aggregator unreachable, continuing without reporting", "error", err)
		return newReporter(nil, logger)
	}
	return newReporter(t, logger)
}

// applyOptionOverrides layers CLI-flag-level overrides onto a loaded
// config, matching spec.md §6's command-line > environment > file >
// defaults precedence (environment overrides already applied by
// config.Load; these are the final, highest-priority layer).
func applyOptionOverrides(cfg *config.Config, opts Options) {
	if opts.Verbose {
		cfg.Logging.Verbose = true
	}
	if opts.LogFilePath != "" {
		cfg.Logging.LogFile = opts.LogFilePath
	}
	if opts.ConnectEndpoint != "" {
		if strings.HasPrefix(opts.ConnectEndpoint, "/") || strings.HasPrefix(opts.ConnectEndpoint, "./") {
			cfg.Connection.Type = "unix"
			cfg.Connection.SocketPath = opts.ConnectEndpoint
		} else {
			cfg.Connection.Type = "network"
			cfg.Connection.NetworkAddr = opts.ConnectEndpoint
		}
	}
}
