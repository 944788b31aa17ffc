package retrypolicy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()
	retryPolicy, err := New(
		WithInitialInterval(time.Second),
		WithBackoffCoefficient(2.0),
		WithMaximumInterval(10*time.Second),
		WithExpirationInterval(time.Minute),
		WithMaximumAttempts(3),
	)

	require.NoError(t, err)
	assert.NotNil(t, retryPolicy)
}

func TestCalculateNextDelayGuards(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		policy policy
	}{
		{
			name: "attempts exhausted",
			policy: policy{
				attempt:     3,
				maxAttempts: 3,
			},
		},
		{
			name: "budget spent",
			policy: policy{
				maxAttempts: 10,
				budget:      10 * time.Second,
				started:     time.Now().Add(-11 * time.Second),
			},
		},
		{
			name: "no budget",
			policy: policy{
				maxAttempts: 1,
				started:     time.Now(),
			},
		},
		{
			name: "zero initial interval",
			policy: policy{
				maxAttempts: 1,
				budget:      10 * time.Second,
				started:     time.Now(),
			},
		},
	}

	for _, tc := range cases {
		assert.Equal(t, Done, tc.policy.CalculateNextDelay(), tc.name)
	}
}

func TestPublishRetrySchedule(t *testing.T) {
	t.Parallel()

	schedule := []time.Duration{
		50 * time.Millisecond,
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
	}

	retryPolicy := PublishRetry()

	for _, expected := range schedule {
		actual := retryPolicy.CalculateNextDelay()

		// jitter spreads each delay over [0.8*expected, expected)
		assert.GreaterOrEqual(t, actual, time.Duration(0.8*float64(expected)))
		assert.Less(t, actual, expected)
	}

	assert.Equal(t, Done, retryPolicy.CalculateNextDelay())
}

func TestPublishRetryIsFreshPerCall(t *testing.T) {
	t.Parallel()

	exhausted := PublishRetry()
	for exhausted.CalculateNextDelay() != Done {
	}

	assert.NotEqual(t, Done, PublishRetry().CalculateNextDelay())
}
