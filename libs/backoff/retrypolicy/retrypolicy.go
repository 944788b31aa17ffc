package retrypolicy

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"time"
)

// Done is returned when the policy has no attempts left to give
const Done time.Duration = -1

type (
	// Retry yields the wait before the next attempt, Done once exhausted
	Retry interface {
		CalculateNextDelay() time.Duration
	}

	policy struct {
		started     time.Time
		attempt     int
		initial     time.Duration
		coefficient float64
		ceiling     time.Duration
		budget      time.Duration
		maxAttempts int
	}

	// Option func to build retry policy
	Option func(policy *policy) error
)

// New return a new instance of retry policy
func New(options ...Option) (Retry, error) {
	retryPolicy := &policy{
		started: time.Now(),
	}

	for _, option := range options {
		if err := option(retryPolicy); err != nil {
			return nil, fmt.Errorf("error initializing retry policy %w", err)
		}
	}

	return retryPolicy, nil
}

// CalculateNextDelay returns the next delay interval based on the retry policy
func (p *policy) CalculateNextDelay() time.Duration {
	if p.attempt >= p.maxAttempts {
		return Done
	}

	elapsed := time.Since(p.started)
	if elapsed >= p.budget {
		return Done
	}

	interval := float64(p.initial) * math.Pow(p.coefficient, float64(p.attempt))
	if interval <= 0 {
		return Done
	}

	if p.ceiling != 0 {
		interval = math.Min(interval, float64(p.ceiling))
	}

	if p.budget != 0 {
		remaining := math.Max(0, float64(p.budget-elapsed))
		interval = math.Min(remaining, interval)
	}

	// an interval clipped below the starting point is not worth waiting out
	if time.Duration(interval) < p.initial {
		return Done
	}

	p.attempt++
	return withJitter(interval)
}

// withJitter spreads an interval over [0.8*interval, interval)
func withJitter(interval float64) time.Duration {
	spread := int64(0.2 * interval)
	if spread < 1 {
		spread = 1
	}

	n, err := rand.Int(rand.Reader, big.NewInt(spread))
	if err != nil || n == nil {
		panic("panic generating random int for jitter")
	}

	return time.Duration(interval*0.8 + float64(n.Int64()))
}

// WithInitialInterval sets the delay before the first retry
func WithInitialInterval(initialInterval time.Duration) Option {
	return func(p *policy) error {
		p.initial = initialInterval
		return nil
	}
}

// WithBackoffCoefficient sets the multiplier applied between attempts
func WithBackoffCoefficient(backoffCoefficient float64) Option {
	return func(p *policy) error {
		p.coefficient = backoffCoefficient
		return nil
	}
}

// WithMaximumInterval caps the delay a single attempt can wait
func WithMaximumInterval(maximumInterval time.Duration) Option {
	return func(p *policy) error {
		p.ceiling = maximumInterval
		return nil
	}
}

// WithExpirationInterval bounds the total elapsed time across attempts
func WithExpirationInterval(expirationInterval time.Duration) Option {
	return func(p *policy) error {
		p.budget = expirationInterval
		return nil
	}
}

// WithMaximumAttempts bounds the number of times an operation is tried
func WithMaximumAttempts(maximumAttempts int) Option {
	return func(p *policy) error {
		p.maxAttempts = maximumAttempts
		return nil
	}
}
