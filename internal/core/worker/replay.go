package worker

import (
	"context"
	"log/slog"

	"github.com/banktechpro/banktech/internal/core/connectivity"
	"github.com/banktechpro/banktech/internal/core/syncer"
)

// StartReplayWorker runs the background goroutine that turns connectivity
// edges into sync passes: one pass per offline→online transition (the
// monitor already coalesces flaps and emits a startup trigger when the
// process comes up online). No polling and no backoff; a failed pass simply
// waits for the next transition.
func StartReplayWorker(ctx context.Context, monitor *connectivity.Monitor, engine *syncer.Engine) {
	go func() {
		slog.Info("👷 Replay worker started")
		for {
			select {
			case <-ctx.Done():
				slog.Info("Replay worker stopped")
				return
			case <-monitor.OnlineEdges():
				if err := engine.SyncPending(ctx); err != nil {
					slog.Warn("Replay pass ended early; remaining transfers stay queued", "error", err)
				}
			}
		}
	}()
}
