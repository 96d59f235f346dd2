package utils

import (
	"context"
	"time"
)

// PollConfig bounds a polling loop
type PollConfig struct {
	Attempts int
	Interval time.Duration
}

// Poll waits Interval before each of up to Attempts calls to fetch. A fetch
// error counts as a non-terminal attempt. done decides whether a value is
// terminal and may abort the loop by returning an error.
//
// On exhaustion Poll returns the most recent value (initially last) with
// ok=false; running out of attempts is not an error.
func Poll[T any](ctx context.Context, cfg PollConfig, last T, fetch func(context.Context) (T, error), done func(T) (bool, error)) (T, bool, error) {
	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		if err := sleepContext(ctx, cfg.Interval); err != nil {
			return last, false, err
		}

		value, err := fetch(ctx)
		if err != nil {
			continue
		}
		last = value

		finished, err := done(value)
		if err != nil {
			return value, false, err
		}
		if finished {
			return value, true, nil
		}
	}
	return last, false, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
