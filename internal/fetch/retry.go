package fetch

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"
)

// permanentError marks an error that retrying cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so RetryWithBackoff gives up immediately.
func Permanent(err error) error {
	return &permanentError{err: err}
}

// RetryWithBackoff runs fn up to maxRetries+1 times. Between attempts it
// sleeps an exponentially growing, jittered delay starting at initialDelay.
// An error wrapped with Permanent aborts the loop and is returned unwrapped;
// ctx cancellation cuts a sleep short and returns the context's error.
func RetryWithBackoff(ctx context.Context, maxRetries int, initialDelay time.Duration, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.Unwrap()
		}
		if attempt >= maxRetries {
			return err
		}

		select {
		case <-time.After(backoffDelay(initialDelay, attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// backoffDelay doubles the base delay per completed attempt and spreads the
// result across a ±25% jitter band so a burst of failing callers fans out
// instead of retrying in lockstep.
func backoffDelay(initialDelay time.Duration, attempt int) time.Duration {
	if attempt > 16 {
		attempt = 16 // the doubling saturates well past any sane retry budget
	}
	delay := initialDelay << uint(attempt)

	band := int64(delay) / 2
	if band < 1 {
		band = 1
	}
	n, err := rand.Int(rand.Reader, big.NewInt(band))
	if err != nil {
		return delay
	}
	return delay - delay/4 + time.Duration(n.Int64())
}
