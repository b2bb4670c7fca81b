// internal/retry/retry.go
package retry

import (
	"context"
	"fmt"
	"time"
)

// Do runs fn until it succeeds or attempts run out, sleeping backoff between
// failures. fn must be safe to repeat.
func Do(ctx context.Context, attempts int, backoff time.Duration, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var last error
	for i := 0; i < attempts; i++ {
		if last = fn(ctx); last == nil {
			return nil
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w (retry aborted: %v)", last, ctx.Err())
			case <-time.After(backoff):
			}
		}
	}
	if attempts == 1 {
		return last
	}
	// annotate so callers can see it was a retry series
	return fmt.Errorf("%w (after %d attempts)", last, attempts)
}
