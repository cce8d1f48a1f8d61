package launcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/kizaaku/climonitor/protocol"
	"github.com/kizaaku/climonitor/transport"
)

// emissionRetries and emissionBackoff implement spec.md §4.5's retry
// policy: up to N=3 retries after the first attempt (4 sends in all),
// exponential backoff from a 500ms base.
const (
	emissionRetries = 3
	emissionBackoff = 500 * time.Millisecond
)

// reporter emits Session Events to the aggregator, downgrading to
// "disconnected" (and staying there) once emission retries are
// exhausted, per spec.md §4.5: the wrapped tool must keep running
// whether or not reporting succeeds.
type reporter struct {
	transport transport.Transport // nil when never connected, or after giving up
	logger    *slog.Logger
}

func newReporter(t transport.Transport, logger *slog.Logger) *reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &reporter{transport: t, logger: logger}
}

func (r *reporter) connected() bool {
	return r.transport != nil
}

// emit sends ev, retrying on failure per the policy above. Once retries
// are exhausted the reporter disconnects permanently: every subsequent
// emit call is a no-op.
func (r *reporter) emit(ctx context.Context, ev protocol.Event) {
	if r.transport == nil {
		return
	}

	backoff := emissionBackoff
	var lastErr error
	for attempt := 0; attempt <= emissionRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				r.disconnect()
				return
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		if err := r.transport.Send(ctx, ev); err != nil {
			lastErr = err
			continue
		}
		return
	}

	r.logger.Warn("emission failed after retries, disabling reporting", "kind", ev.Kind, "error", lastErr)
	r.disconnect()
}

func (r *reporter) disconnect() {
	if r.transport == nil {
		return
	}
	_ = r.transport.Close()
	r.transport = nil
}
