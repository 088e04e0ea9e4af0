package dynamosql

import (
	"errors"
	"math"
	"time"

	"github.com/aws/smithy-go"
)

// DefaultRetryableCodes are the throttling-style error codes retried by default.
var DefaultRetryableCodes = []string{
	"ProvisionedThroughputExceededException",
	"ThrottlingException",
	"RequestLimitExceeded",
	"InternalServerError",
	"ServiceUnavailable",
}

// RetryPolicy retries a native call on matching error codes with exponential backoff.
type RetryPolicy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	Multiplier     float64
	MaxDelay       time.Duration
	RetryableCodes []string

	sleep func(time.Duration)
}

// DefaultRetryPolicy returns 5 attempts starting at 50ms, doubling, capped at 5s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    5,
		BaseDelay:      50 * time.Millisecond,
		Multiplier:     2,
		MaxDelay:       5 * time.Second,
		RetryableCodes: DefaultRetryableCodes,
	}
}

// delay returns the wait after the given failed attempt, 1-based.
func (p RetryPolicy) delay(attempt int) time.Duration {
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	d := float64(p.BaseDelay) * math.Pow(multiplier, float64(attempt-1))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

func (p RetryPolicy) retryable(code string) bool {
	for _, c := range p.RetryableCodes {
		if c == code {
			return true
		}
	}
	return false
}

// do runs fn until it succeeds, fails with a non-retryable code, or the
// attempt budget is spent. Failures come back as *OperationalError.
func (p RetryPolicy) do(operation string, fn func() error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		code := errorCode(err)
		if !p.retryable(code) || attempt >= maxAttempts {
			LogErrorf("%s failed on attempt %d/%d: %v", operation, attempt, maxAttempts, err)
			return &OperationalError{Operation: operation, Code: code, Attempts: attempt, Err: err}
		}

		wait := p.delay(attempt)
		LogWarnf("%s throttled with %s on attempt %d/%d, retrying in %s", operation, code, attempt, maxAttempts, wait)
		sleep(wait)
	}
}

func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
