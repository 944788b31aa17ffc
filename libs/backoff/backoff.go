package backoff

import (
	"context"
	"time"

	"github.com/tax-intl/epaye-go/libs/backoff/retrypolicy"
)

type (
	// RetryFunc defines a retry function
	RetryFunc func(ctx context.Context, operation Operation, retryPolicy retrypolicy.Retry, isRetriable IsRetriable) (interface{}, error)

	// Operation the operation to be executed with retry
	Operation func() (interface{}, error)

	// IsRetriable a function to determine if an error caused by the executed operation is retriable
	IsRetriable func(error) bool
)

// Retry runs operation until it succeeds, the policy expires or an error is
// not retriable. Cancelling ctx interrupts the wait between attempts.
func Retry(ctx context.Context, operation Operation, retryPolicy retrypolicy.Retry, isRetriable IsRetriable) (interface{}, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		response, err := operation()
		if err == nil {
			return response, nil
		}

		if !isRetriable(err) {
			return nil, err
		}

		delay := retryPolicy.CalculateNextDelay()
		if delay == retrypolicy.Done {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}
