package task

import (
	"context"
	"fmt"
	"time"
)

// Countdown is a fixed wait reported as descending seconds.
type Countdown struct {
	Seconds int
	// Tick is the length of one step. Zero means one second.
	Tick time.Duration
}

// Seconds returns a one-second-per-step countdown of n steps.
func Seconds(n int) Countdown {
	return Countdown{Seconds: n}
}

func (c Countdown) tick() time.Duration {
	if c.Tick <= 0 {
		return time.Second
	}
	return c.Tick
}

// CountdownLabel is the progress value reported with secondsLeft remaining.
func CountdownLabel(secondsLeft int) string {
	return fmt.Sprintf("T-minus: %d", secondsLeft)
}

// Grace starts fn and resolves with placeholder once the countdown ran out,
// unless fn fails first. fn keeps running after the countdown wins and is
// never cancelled.
func Grace(fn Func, c Countdown, placeholder any) Func {
	return func(ctx context.Context, report Reporter) (any, error) {
		failed := make(chan error, 1)
		go func() {
			if _, err := fn(ctx, func(any) {}); err != nil {
				failed <- err
			}
		}()
		if err := runCountdown(ctx, c, report, failed); err != nil {
			return nil, err
		}
		return placeholder, nil
	}
}

// Delay runs fn to completion and then waits the countdown before resolving
// with fn's result.
func Delay(fn Func, c Countdown) Func {
	return func(ctx context.Context, report Reporter) (any, error) {
		res, err := fn(ctx, report)
		if err != nil {
			return nil, err
		}
		if err := runCountdown(ctx, c, report, nil); err != nil {
			return nil, err
		}
		return res, nil
	}
}

func runCountdown(ctx context.Context, c Countdown, report Reporter, failed <-chan error) error {
	timer := time.NewTimer(c.tick())
	defer timer.Stop()
	for left := c.Seconds; left > 0; left-- {
		report(CountdownLabel(left))
		if left != c.Seconds {
			timer.Reset(c.tick())
		}
		select {
		case err := <-failed:
			return err
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
