package jobs

import "github.com/goliatone/go-noteflow/pkg/interfaces"

// Decide maps the outcome of one processing attempt to a queue decision.
// Pure: the queue adapter that invoked the consumer applies the decision to
// its runtime primitives.
//
// attempt is 1-based and counts the delivery that just finished. A nil err
// acknowledges. A permanent error, or a transient one with the retry budget
// spent, dead-letters. Anything else retries after the policy's backoff.
func Decide(attempt int, policy RetryPolicy, err error) interfaces.Decision {
	if err == nil {
		return interfaces.Decision{Kind: interfaces.DecisionAck}
	}

	policy = policy.normalized()
	if attempt < 1 {
		attempt = 1
	}

	if IsPermanent(err) || attempt >= policy.MaxAttempts {
		return interfaces.Decision{Kind: interfaces.DecisionDeadLetter}
	}

	return interfaces.Decision{
		Kind:  interfaces.DecisionRetry,
		Delay: policy.Delay(attempt),
	}
}
