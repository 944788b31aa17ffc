package retrypolicy

// Convenience retry policies

import "time"

// PublishRetry returns a fresh policy for one audit publish. Policies carry
// attempt state, callers on the response path must not share one across
// publishes or the budget expires for the life of the process.
func PublishRetry() Retry {
	policy, _ := New(
		WithInitialInterval(50*time.Millisecond),
		WithBackoffCoefficient(2.0),
		WithMaximumInterval(time.Second),
		WithExpirationInterval(5*time.Second),
		WithMaximumAttempts(5),
	)
	return policy
}
