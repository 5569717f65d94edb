// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// ErrTimeoutReached is an error returned when timeout is reached
type ErrTimeoutReached struct {
	Timeout time.Duration
}

func (e *ErrTimeoutReached) Error() string {
	return fmt.Sprintf("timeout reached after %s", e.Timeout)
}

// IsTimeoutReached returns true if err is or wraps an ErrTimeoutReached.
func IsTimeoutReached(err error) bool {
	var timeoutErr *ErrTimeoutReached
	return errors.As(err, &timeoutErr)
}

// ConditionFunc reports whether polling can stop. A non-nil error stops polling immediately.
type ConditionFunc func(ctx context.Context) (done bool, err error)

// Poll evaluates condition until it reports done, returns an error, ctx is cancelled or
// the given timeout elapses. Consecutive evaluations are separated by the intervals
// produced by backoff; the calling goroutine sleeps in between.
//
// The first evaluation happens immediately. When the timeout elapses an ErrTimeoutReached
// is returned, when ctx is cancelled ctx.Err() is returned.
func Poll(ctx context.Context, backoff wait.Backoff, timeout time.Duration, condition ConditionFunc) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		done, err := condition(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		interval := time.NewTimer(backoff.Step())
		select {
		case <-ctx.Done():
			interval.Stop()
			return ctx.Err()
		case <-deadline.C:
			interval.Stop()
			return &ErrTimeoutReached{Timeout: timeout}
		case <-interval.C:
		}
	}
}
