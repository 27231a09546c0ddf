package monitor

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Handle is returned synchronously once the child is confirmed running
// (spec §3, "Monitor Handle").
type Handle struct {
	// PID is the OS process identifier, for display only. It must not be
	// used to address the child externally once Result has yielded: pids
	// are recycled by the OS.
	PID int
	// RunID correlates log lines and metric series with one spawn,
	// independent of the OS pid, which may be reused after the child
	// exits.
	RunID string

	cancelCh *cancelChannel

	once       sync.Once
	done       chan struct{}
	completion Completion
	err        error
}

func newHandle(pid int, cancelCh *cancelChannel) *Handle {
	return &Handle{
		PID:      pid,
		RunID:    uuid.NewString(),
		cancelCh: cancelCh,
		done:     make(chan struct{}),
	}
}

// Cancel requests that the monitor kill and reap the child. It is
// idempotent and safe to call from any goroutine: cancellation after the
// monitor has completed is a no-op that returns false.
func (h *Handle) Cancel() bool {
	if h == nil || h.cancelCh == nil {
		return false
	}
	return h.cancelCh.signal()
}

// Result blocks until the Completion Record is available or ctx is
// cancelled. Once it has returned a Completion, calling Result again
// returns the same Completion immediately; no further cancellation or
// status query against this Handle is valid (spec §3, Lifecycle).
func (h *Handle) Result(ctx context.Context) (Completion, error) {
	select {
	case <-h.done:
		return h.completion, h.err
	case <-ctx.Done():
		return Completion{}, ctx.Err()
	}
}

// deliver publishes the Completion Record exactly once and closes the
// cancellation channel, so every subsequent Cancel call becomes a no-op
// (spec §4.6).
func (h *Handle) deliver(c Completion, err error) {
	h.once.Do(func() {
		h.completion = c
		h.err = err
		close(h.done)
		if h.cancelCh != nil {
			h.cancelCh.close()
		}
	})
}
