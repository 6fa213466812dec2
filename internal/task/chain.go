package task

import "context"

// Chain runs fns strictly in order and returns one handle per Func right away.
// fns[i+1] is started only after fns[i] settled without error. When a Func fails,
// the handles after it are never started and never settle.
func Chain(ctx context.Context, fns []Func) []*Handle {
	handles := make([]*Handle, len(fns))
	for i := range fns {
		handles[i] = New()
	}
	if len(fns) == 0 {
		return handles
	}

	go func() {
		for i, fn := range fns {
			h := handles[i]
			h.Start(ctx, fn)
			select {
			case <-h.Done():
			case <-ctx.Done():
				return
			}
			if _, err := h.Result(); err != nil {
				return
			}
		}
	}()
	return handles
}
