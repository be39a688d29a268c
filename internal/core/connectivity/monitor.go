// Package connectivity tracks the platform's online/offline signal and
// turns the offline→online edge into replay triggers.
package connectivity

import (
	"log/slog"
	"sync/atomic"
)

// Monitor holds the current network status. Set is the inlet for whatever
// platform signal the host wires up (the HTTP surface forwards the UI's
// events, the way browser online/offline events fed the original). It is
// purely event-driven; nothing polls.
type Monitor struct {
	online atomic.Bool
	edges  chan struct{}
}

// NewMonitor starts in the given state. When starting online the first
// consumer of OnlineEdges gets an immediate trigger, matching the
// mount-time sync pass of the original hook.
func NewMonitor(initialOnline bool) *Monitor {
	m := &Monitor{
		// Buffer of one: rapid flaps coalesce into a single pending
		// trigger instead of stacking overlapping passes.
		edges: make(chan struct{}, 1),
	}
	m.online.Store(initialOnline)
	if initialOnline {
		m.edges <- struct{}{}
	}
	return m
}

// Online reports the current status.
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// Set records a status change. Only the offline→online edge emits a
// trigger; going offline, or repeating the current state, emits nothing.
func (m *Monitor) Set(online bool) {
	if online {
		if m.online.CompareAndSwap(false, true) {
			slog.Info("Network status: online")
			select {
			case m.edges <- struct{}{}:
			default: // a trigger is already pending
			}
		}
		return
	}
	if m.online.CompareAndSwap(true, false) {
		slog.Info("Network status: offline")
	}
}

// OnlineEdges delivers one token per offline→online transition (plus one at
// startup when already online). Consumers run their sync pass per token.
func (m *Monitor) OnlineEdges() <-chan struct{} {
	return m.edges
}
