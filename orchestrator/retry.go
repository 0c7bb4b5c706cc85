package orchestrator

import (
	"context"
	"time"

	"github.com/acrylJonny/metasync/faults"
)

const defaultRetryBackoff = 500 * time.Millisecond

type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *DefaultOrchestrator) backoff() time.Duration {
	if r == nil || r.retryBackoff <= 0 {
		return defaultRetryBackoff
	}
	return r.retryBackoff
}

func (r *DefaultOrchestrator) pause(ctx context.Context, d time.Duration) error {
	if r != nil && r.sleep != nil {
		return r.sleep(ctx, d)
	}
	return sleepWithContext(ctx, d)
}

// withRetry runs a remote call with exactly one retry on transient failure
// (connectivity or rate limiting) after a fixed backoff. 4xx-class
// rejections are returned as-is.
func (r *DefaultOrchestrator) withRetry(ctx context.Context, operation string, call func() error) error {
	err := call()
	if err == nil || !faults.IsTransient(err) {
		return err
	}

	r.logger().V(1).Info("retrying remote call after transient failure",
		"operation", operation, "cause", err.Error())
	if pauseErr := r.pause(ctx, r.backoff()); pauseErr != nil {
		return err
	}
	return call()
}
