// Package task provides the asynchronous unit of work used by the installer.
//
// A Func runs in its own goroutine once started and may report progress before it
// returns. The Handle returned for it is both the completion future (Done/Result)
// and the progress source (Subscribe/Progress); the two are kept separate so an
// observer can follow progress without waiting for completion.
package task

import (
	"context"
	"sync"
	"sync/atomic"
)

// Reporter publishes an intermediate progress value of a running task.
type Reporter func(progress any)

// Func is one asynchronous unit of work.
type Func func(ctx context.Context, report Reporter) (any, error)

// settleClock orders settlements across all handles of the process.
var settleClock atomic.Uint64

// Handle tracks a single Func from creation to settlement.
type Handle struct {
	mu          sync.Mutex
	started     bool
	settled     bool
	progress    any
	hasProgress bool
	result      any
	err         error
	seq         uint64
	watchers    map[int]func()
	nextWatcher int
	done        chan struct{}
}

// Snapshot is a point-in-time view of a Handle.
type Snapshot struct {
	Started     bool
	Settled     bool
	Result      any
	Err         error
	Progress    any
	HasProgress bool
	// Seq orders settlements; lower values settled earlier. Zero while unsettled.
	Seq uint64
}

// New returns a pending handle. It does nothing until Start is called.
func New() *Handle {
	return &Handle{
		watchers: map[int]func(){},
		done:     make(chan struct{}),
	}
}

// Go starts fn and returns its handle.
func Go(ctx context.Context, fn Func) *Handle {
	h := New()
	h.Start(ctx, fn)
	return h
}

// Start runs fn in a new goroutine. Only the first call has an effect.
func (h *Handle) Start(ctx context.Context, fn Func) {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return
	}
	h.started = true
	h.mu.Unlock()
	h.notify()

	go func() {
		res, err := fn(ctx, h.report)
		h.settle(res, err)
	}()
}

// Subscribe registers notify to be called after every progress report and on
// settlement. notify must not block. The returned function removes it.
func (h *Handle) Subscribe(notify func()) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextWatcher
	h.nextWatcher++
	h.watchers[id] = notify
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		delete(h.watchers, id)
		h.mu.Unlock()
	}
}

// Done is closed once the task settled.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Result returns the outcome. It is only meaningful after Done is closed.
func (h *Handle) Result() (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result, h.err
}

// Wait blocks until the task settled or ctx is done.
func (h *Handle) Wait(ctx context.Context) (any, error) {
	select {
	case <-h.done:
		return h.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Progress returns the latest reported progress value.
func (h *Handle) Progress() (any, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.progress, h.hasProgress
}

// Snapshot returns the current state of the handle.
func (h *Handle) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Snapshot{
		Started:     h.started,
		Settled:     h.settled,
		Result:      h.result,
		Err:         h.err,
		Progress:    h.progress,
		HasProgress: h.hasProgress,
		Seq:         h.seq,
	}
}

func (h *Handle) report(progress any) {
	h.mu.Lock()
	if h.settled {
		h.mu.Unlock()
		return
	}
	h.progress = progress
	h.hasProgress = true
	h.mu.Unlock()
	h.notify()
}

func (h *Handle) settle(res any, err error) {
	h.mu.Lock()
	h.settled = true
	h.result = res
	h.err = err
	h.seq = settleClock.Add(1)
	h.mu.Unlock()
	close(h.done)
	h.notify()
}

func (h *Handle) notify() {
	h.mu.Lock()
	watchers := make([]func(), 0, len(h.watchers))
	for _, w := range h.watchers {
		watchers = append(watchers, w)
	}
	h.mu.Unlock()
	for _, w := range watchers {
		w()
	}
}
