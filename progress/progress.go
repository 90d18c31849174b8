// Package progress provides the cancellation/progress-monitor handle
// shared by every long-running DBS3 operation: syntax computation,
// destination-chooser construction, and agent-simulation bootstrap
// (spec §5). A Monitor wraps a context.Context exactly as bfs.walker
// polls ctx.Done() once per loop iteration, generalised into a small
// reusable type since several independent packages need the same poll
// without each importing context directly into their hot loops.
package progress

import "context"

// Monitor polls a context.Context for cancellation at caller-chosen
// points in a long-running loop, and optionally reports a completion
// fraction to an observer.
type Monitor struct {
	ctx      context.Context
	onUpdate func(done, total int)
}

// New wraps ctx in a Monitor. A nil ctx is treated as context.Background
// (never cancelled).
func New(ctx context.Context) *Monitor {
	if ctx == nil {
		ctx = context.Background()
	}

	return &Monitor{ctx: ctx}
}

// WithUpdate attaches a progress callback, invoked by Report.
func (m *Monitor) WithUpdate(onUpdate func(done, total int)) *Monitor {
	m.onUpdate = onUpdate

	return m
}

// Cancelled reports whether the underlying context has been cancelled,
// matching bfs.walker's "select { case <-ctx.Done(): ... default: }"
// poll as a single call sites can check between work items. A nil
// Monitor is never cancelled, so callers can pass a nil *Monitor
// wherever monitoring is optional.
func (m *Monitor) Cancelled() bool {
	if m == nil {
		return false
	}
	select {
	case <-m.ctx.Done():
		return true
	default:
		return false
	}
}

// Err returns the underlying context's error, non-nil only once
// Cancelled reports true.
func (m *Monitor) Err() error {
	if m == nil {
		return nil
	}

	return m.ctx.Err()
}

// Report invokes the attached update callback, if any, with the current
// progress. Safe to call on a nil Monitor or when no callback was
// attached.
func (m *Monitor) Report(done, total int) {
	if m == nil || m.onUpdate == nil {
		return
	}
	m.onUpdate(done, total)
}
