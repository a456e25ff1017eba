package jobs

import "time"

const (
	defaultMaxAttempts = 3
	defaultBackoffBase = 2
)

// RetryPolicy bounds redelivery. With the defaults a message is attempted
// three times with backoff delays of 1s and 2s between attempts; the third
// failure dead-letters it.
type RetryPolicy struct {
	MaxAttempts int
	BackoffBase int
}

// DefaultRetryPolicy returns the production policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: defaultMaxAttempts,
		BackoffBase: defaultBackoffBase,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.BackoffBase < 1 {
		p.BackoffBase = defaultBackoffBase
	}
	return p
}

// Delay returns the backoff before redelivering a message whose given
// attempt just failed: base^(attempt-1) seconds, so 1s, 2s, 4s with base 2.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	p = p.normalized()
	if attempt < 1 {
		attempt = 1
	}
	seconds := 1
	for i := 1; i < attempt; i++ {
		seconds *= p.BackoffBase
	}
	return time.Duration(seconds) * time.Second
}
