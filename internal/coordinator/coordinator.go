// Package coordinator waits on a set of concurrently running tasks while keeping
// a live status display up to date.
package coordinator

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/pirakansa/appstack/internal/render"
	"github.com/pirakansa/appstack/internal/task"
)

// Slot is the view of one task handed to a Formatter.
type Slot struct {
	Index       int
	Started     bool
	Settled     bool
	Result      any
	Err         error
	Progress    any
	HasProgress bool

	seq uint64
}

// Formatter returns the display text of one task.
type Formatter func(Slot) string

// Drawer receives frames. *render.Renderer implements it.
type Drawer interface {
	Draw(render.Frame)
	Finish()
}

// TaskError is the first task failure observed by the coordinator.
type TaskError struct {
	Title string
	Index int
	Err   error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s: %v", e.Title, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// Coordinator runs and awaits task sets.
type Coordinator struct {
	drawer Drawer
	logger *log.Logger
}

// New returns a coordinator drawing through drawer. logger may be nil.
func New(drawer Drawer, logger *log.Logger) *Coordinator {
	return &Coordinator{drawer: drawer, logger: logger}
}

// Run starts every Func right away and waits for all of them. See Await.
func (c *Coordinator) Run(ctx context.Context, title string, fns []task.Func, format Formatter) ([]any, error) {
	handles := make([]*task.Handle, len(fns))
	for i, fn := range fns {
		handles[i] = task.Go(ctx, fn)
	}
	return c.Await(ctx, title, handles, format)
}

// Await waits until every handle settled successfully and returns their results
// in index order. The first failure in settlement order is returned as soon as
// it is seen; handles still running are left alone.
func (c *Coordinator) Await(ctx context.Context, title string, handles []*task.Handle, format Formatter) ([]any, error) {
	if len(handles) == 0 {
		return nil, nil
	}
	if c.logger != nil {
		c.logger.Debug("waiting on tasks", "phase", title, "tasks", len(handles))
	}

	wake := make(chan struct{}, 1)
	notify := func() {
		select {
		case wake <- struct{}{}:
		default:
		}
	}
	for _, h := range handles {
		unsubscribe := h.Subscribe(notify)
		defer unsubscribe()
	}
	defer c.drawer.Finish()

	for {
		slots := snapshot(handles)
		c.draw(title, slots, format)

		if failed := firstFailure(slots); failed >= 0 {
			if c.logger != nil {
				c.logger.Debug("task failed", "phase", title, "index", failed, "err", slots[failed].Err)
			}
			return nil, &TaskError{Title: title, Index: failed, Err: slots[failed].Err}
		}
		if completed(slots) == len(slots) {
			results := make([]any, len(slots))
			for i, s := range slots {
				results[i] = s.Result
			}
			return results, nil
		}

		select {
		case <-wake:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (c *Coordinator) draw(title string, slots []Slot, format Formatter) {
	frame := render.Frame{
		Title:     title,
		Completed: completed(slots),
		Total:     len(slots),
		Lines:     make([]render.Line, len(slots)),
	}
	for i, s := range slots {
		state := render.Pending
		switch {
		case s.Settled && s.Err != nil:
			state = render.Failed
		case s.Settled:
			state = render.Completed
		}
		frame.Lines[i] = render.Line{State: state, Text: format(s)}
	}
	c.drawer.Draw(frame)
}

func snapshot(handles []*task.Handle) []Slot {
	slots := make([]Slot, len(handles))
	for i, h := range handles {
		s := h.Snapshot()
		slots[i] = Slot{
			Index:       i,
			Started:     s.Started,
			Settled:     s.Settled,
			Result:      s.Result,
			Err:         s.Err,
			Progress:    s.Progress,
			HasProgress: s.HasProgress,
			seq:         s.Seq,
		}
	}
	return slots
}

// firstFailure returns the index of the earliest settled failure, or -1.
func firstFailure(slots []Slot) int {
	index := -1
	for i, s := range slots {
		if !s.Settled || s.Err == nil {
			continue
		}
		if index < 0 || s.seq < slots[index].seq {
			index = i
		}
	}
	return index
}

func completed(slots []Slot) int {
	n := 0
	for _, s := range slots {
		if s.Settled && s.Err == nil {
			n++
		}
	}
	return n
}
