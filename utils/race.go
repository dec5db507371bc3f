package utils

import (
	"context"
	"errors"
	"time"
)

var ErrTimedOut = errors.New("timed out waiting for result")

type result[T any] struct {
	value T
	err   error
}

// FirstOf returns whatever settles first: fetch or the timer. When the timer
// wins, fallback is returned with ErrTimedOut and fetch is left to finish on
// its own; its result is discarded.
func FirstOf[T any](ctx context.Context, timeout time.Duration, fallback T, fetch func(context.Context) (T, error)) (T, error) {
	done := make(chan result[T], 1)
	go func() {
		v, err := fetch(ctx)
		done <- result[T]{value: v, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		if r.err != nil {
			return fallback, r.err
		}
		return r.value, nil
	case <-timer.C:
		return fallback, ErrTimedOut
	case <-ctx.Done():
		return fallback, ctx.Err()
	}
}
