package backoff

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"
)

/* Policy computes the wait between retry attempts
 * Exponential growth capped at MaxDelay, perturbed by uniform jitter
 * The RNG is injected so tests can seed it and get deterministic delays
 */

// Config holds the backoff parameters
type Config struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Factor       float64
	Jitter       float64
}

// Validate checks if the backoff configuration is usable
func (c Config) Validate() error {
	if c.InitialDelay <= 0 {
		return fmt.Errorf("initial delay must be positive, got %v", c.InitialDelay)
	}
	if c.MaxDelay < c.InitialDelay {
		return fmt.Errorf("max delay %v cannot be smaller than initial delay %v", c.MaxDelay, c.InitialDelay)
	}
	if c.Factor < 1 {
		return fmt.Errorf("factor must be >= 1, got %f", c.Factor)
	}
	if c.Jitter < 0 || c.Jitter > 1 {
		return fmt.Errorf("jitter must be between 0 and 1, got %f", c.Jitter)
	}
	return nil
}

// Policy produces backoff delays for 1-based attempt numbers
type Policy struct {
	config Config

	// rng is guarded by mu: *rand.Rand is not safe for concurrent use
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a backoff policy with an injected random source
func New(config Config, rng *rand.Rand) (*Policy, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating backoff config: %w", err)
	}
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	return &Policy{
		config: config,
		rng:    rng,
	}, nil
}

// Next returns the delay to wait after the given attempt (1-based)
// The result is always >= 0 and never exceeds MaxDelay*(1+Jitter)
func (p *Policy) Next(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := float64(p.config.InitialDelay) * math.Pow(p.config.Factor, float64(attempt-1))
	delay = math.Min(delay, float64(p.config.MaxDelay))

	p.mu.Lock()
	jitter := (p.rng.Float64()*2 - 1) * delay * p.config.Jitter
	p.mu.Unlock()

	delay += jitter
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// Config returns the policy configuration
func (p *Policy) Config() Config {
	return p.config
}
