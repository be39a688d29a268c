// Package syncer replays transfers queued while offline against the remote
// system, in enqueue order, once connectivity is back.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/banktechpro/banktech/internal/core/domain"
	"github.com/banktechpro/banktech/internal/core/notifications"
)

// Queue is the slice of the local store the engine needs.
type Queue interface {
	ListPending() ([]domain.PendingTransfer, error)
	RemovePending(localID uint64) error
}

// Submitter performs the single logical remote submission (create record +
// both balance adjustments behind one call).
type Submitter interface {
	SubmitTransfer(ctx context.Context, payload domain.TransactionRecord) error
}

// Engine drains the pending queue. One pass per online transition, strictly
// sequential: a pass already in flight suppresses any new one.
type Engine struct {
	queue       Queue
	remote      Submitter
	logActivity func(action string)
	webhookURL  string
	running     atomic.Bool
}

func NewEngine(queue Queue, remote Submitter, logActivity func(action string), webhookURL string) *Engine {
	if logActivity == nil {
		logActivity = func(string) {}
	}
	return &Engine{
		queue:       queue,
		remote:      remote,
		logActivity: logActivity,
		webhookURL:  webhookURL,
	}
}

// SyncPending reads the queue once and submits each entry in order. A
// successfully acknowledged entry is deleted before the next is attempted,
// so a re-run is idempotent per entry. The first failure ends the pass with
// that entry and everything behind it untouched; no reordering, no skipping
// ahead, so a later success can never overtake an earlier unresolved
// transfer. The next online transition retries naturally.
func (e *Engine) SyncPending(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		slog.Info("Sync pass already running, skipping trigger")
		return nil
	}
	defer e.running.Store(false)

	pending, err := e.queue.ListPending()
	if err != nil {
		slog.Error("Sync: could not read pending queue", "error", err)
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	slog.Info("Syncing pending transfers", "count", len(pending))

	for _, p := range pending {
		if err := e.remote.SubmitTransfer(ctx, p.Payload); err != nil {
			slog.Error("Sync: transfer replay failed, keeping it and the rest of the queue",
				"local_id", p.LocalID, "error", err)
			return err
		}

		if err := e.queue.RemovePending(p.LocalID); err != nil {
			slog.Error("Sync: could not remove replayed transfer", "local_id", p.LocalID, "error", err)
			return err
		}

		slog.Info("✅ Replayed queued transfer", "local_id", p.LocalID,
			"nominal", p.Payload.Nominal.String(), "destination", p.Payload.AccountDestinationName)
		e.logActivity(fmt.Sprintf("Synced offline transfer of Rp. %s to %s",
			domain.FormatAmount(p.Payload.Nominal), p.Payload.AccountDestinationName))
		e.notify(p)
	}
	return nil
}

func (e *Engine) notify(p domain.PendingTransfer) {
	if e.webhookURL == "" {
		return
	}
	event := notifications.ReplayEvent{
		Event:     "transfer.replayed",
		LocalID:   p.LocalID,
		Nominal:   p.Payload.Nominal.String(),
		Recipient: p.Payload.AccountDestinationName,
		Timestamp: time.Now().UTC(),
	}
	if err := notifications.SendWebhook(e.webhookURL, event); err != nil {
		slog.Warn("Sync: replay webhook failed", "error", err)
	}
}
