// Package retry wraps an arbitrary action with a caller-supplied back-off
// policy. The helper owns only the sleep/loop plumbing; the policy owns
// termination.
package retry

import (
	"context"
	"time"
)

// Policy decides the next wait before retrying. It receives the number of
// retries performed so far and the error that caused the failure. A positive
// duration schedules a retry after that wait; zero (or negative) gives up
// and surfaces the error unchanged.
type Policy func(retries int, err error) time.Duration

// Do invokes action; on failure it consults policy for the next wait and
// retries until the policy gives up or the context is cancelled. No upper
// bound on attempts is imposed here.
func Do(ctx context.Context, action func(ctx context.Context) error, policy Policy) error {
	if ctx == nil {
		ctx = context.Background()
	}
	retries := 0
	for {
		err := action(ctx)
		if err == nil {
			return nil
		}
		if policy == nil {
			return err
		}
		wait := policy(retries, err)
		if wait <= 0 {
			return err
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		retries++
	}
}

// Times is a convenience policy: retry up to n times with a fixed wait.
func Times(n int, wait time.Duration) Policy {
	return func(retries int, _ error) time.Duration {
		if retries >= n {
			return 0
		}
		return wait
	}
}
