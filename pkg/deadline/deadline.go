// Package deadline provides a single combinator for racing an operation
// against a hard time budget.
package deadline

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout marks a deadline expiry; test with errors.Is.
var ErrTimeout = errors.New("operation timed out")

// Run executes fn under a hard deadline d layered onto ctx. On expiry
// the slow operation is abandoned, not interrupted; its eventual result
// is discarded silently.
func Run[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		val T
		err error
	}
	ch := make(chan result, 1)

	go func() {
		val, err := fn(ctx)
		ch <- result{val, err}
	}()

	select {
	case r := <-ch:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, fmt.Errorf("%w after %s", ErrTimeout, d)
		}
		return zero, ctx.Err()
	}
}
