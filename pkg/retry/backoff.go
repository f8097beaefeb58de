// Package retry decides whether a failed scheduled update runs again and
// how long to wait before it does.
package retry

import (
	"math"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Policy retries transient failures with exponential backoff. The zero
// Policy never retries.
type Policy struct {
	// MaxAttempts counts the first run; values below 2 disable retries.
	MaxAttempts int
	Base        time.Duration
	Max         time.Duration
}

// DefaultPolicy runs a scheduled update at most three times.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Base:        time.Second,
		Max:         time.Minute,
	}
}

// Delay returns the wait after failed attempt (1-based): Base doubled per
// attempt, capped at Max. Without Max the delay saturates at the largest
// Duration.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := p.Base
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	for i := 1; i < attempt; i++ {
		if p.Max > 0 && delay >= p.Max {
			break
		}
		if delay > math.MaxInt64/2 {
			return math.MaxInt64
		}
		delay *= 2
	}
	if p.Max > 0 && delay > p.Max {
		return p.Max
	}
	return delay
}

// Next reports whether failed attempt may be followed by another and after
// how long.
func (p Policy) Next(attempt int, err error) (time.Duration, bool) {
	if err == nil || attempt >= p.MaxAttempts || !Retryable(err) {
		return 0, false
	}
	return p.Delay(attempt), true
}

// Retryable reports whether err may succeed on a later run. Errors the caller
// caused (validation, bad input, missing records, conflicts, auth) are final.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var typed *goerrors.Error
	if !goerrors.As(err, &typed) {
		return true
	}
	switch typed.Category {
	case goerrors.CategoryValidation,
		goerrors.CategoryBadInput,
		goerrors.CategoryNotFound,
		goerrors.CategoryConflict,
		goerrors.CategoryAuth,
		goerrors.CategoryAuthz:
		return false
	default:
		return true
	}
}
