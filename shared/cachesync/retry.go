package cachesync

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultMaxAttempts is the total number of source invocations allowed per read.
const DefaultMaxAttempts = 3

// RetryPolicy bounds how often a failing source read is attempted. MaxAttempts counts
// every invocation, including the first one. Errors for which IsPermanent reports true
// are returned immediately without another attempt.
type RetryPolicy struct {
	MaxAttempts int
	Pause       time.Duration
	IsPermanent func(error) bool
}

// DefaultRetryPolicy retries up to DefaultMaxAttempts times without pausing.
func DefaultRetryPolicy(isPermanent func(error) bool) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		IsPermanent: isPermanent,
	}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff = &backoff.ZeroBackOff{}
	if p.Pause > 0 {
		b = backoff.NewConstantBackOff(p.Pause)
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.attempts()-1)), ctx)
}

// Retry invokes getter until it succeeds, fails permanently, or the attempt budget is
// spent. The last error is returned on exhaustion.
func Retry[V any](ctx context.Context, policy RetryPolicy, getter func(ctx context.Context) (V, error)) (V, error) {
	return backoff.RetryWithData(func() (V, error) {
		value, err := getter(ctx)
		if err != nil && policy.IsPermanent != nil && policy.IsPermanent(err) {
			return value, backoff.Permanent(err)
		}
		return value, err
	}, policy.backOff(ctx))
}
