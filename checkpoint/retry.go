// SPDX-License-Identifier: MIT

package checkpoint

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// RetryPolicy bounds the retries of a write.
type RetryPolicy struct {
	Attempts     uint
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetry supplies every zero field of a RetryPolicy.
var DefaultRetry = RetryPolicy{Attempts: 4, InitialDelay: 50 * time.Millisecond, MaxDelay: 2 * time.Second}

func (r RetryPolicy) normalize() RetryPolicy {
	if r.Attempts == 0 {
		r.Attempts = DefaultRetry.Attempts
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = DefaultRetry.InitialDelay
	}
	if r.MaxDelay <= 0 {
		r.MaxDelay = DefaultRetry.MaxDelay
	}
	if r.MaxDelay < r.InitialDelay {
		r.MaxDelay = r.InitialDelay
	}

	return r
}

// PutWithRetry stores data, retrying failures that carry an *IOError. Other
// errors (including context cancellation) are returned at once.
func PutWithRetry(ctx context.Context, st Store, key string, data []byte, policy RetryPolicy, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	policy = policy.normalize()
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = policy.InitialDelay
	b.MaxInterval = policy.MaxDelay

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := st.Put(ctx, key, data)
		if err == nil {
			return struct{}{}, nil
		}
		var ioe *IOError
		if !errors.As(err, &ioe) {
			return struct{}{}, backoff.Permanent(err)
		}

		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(policy.Attempts),
		backoff.WithNotify(func(err error, wait time.Duration) {
			log.Warn("checkpoint write failed, retrying",
				zap.String("key", key),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err))
		}),
	)

	return err
}
