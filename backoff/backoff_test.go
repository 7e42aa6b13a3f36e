package backoff

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := Config{
			InitialDelay: 100 * time.Millisecond,
			MaxDelay:     10 * time.Second,
			Factor:       2,
			Jitter:       0.2,
		}
		require.NoError(t, cfg.Validate())
	})

	t.Run("zero initial delay", func(t *testing.T) {
		cfg := Config{MaxDelay: time.Second, Factor: 2}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "initial delay")
	})

	t.Run("max smaller than initial", func(t *testing.T) {
		cfg := Config{InitialDelay: time.Second, MaxDelay: time.Millisecond, Factor: 2}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max delay")
	})

	t.Run("factor below one", func(t *testing.T) {
		cfg := Config{InitialDelay: time.Second, MaxDelay: time.Minute, Factor: 0.5}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "factor")
	})

	t.Run("jitter out of range", func(t *testing.T) {
		cfg := Config{InitialDelay: time.Second, MaxDelay: time.Minute, Factor: 2, Jitter: 1.5}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jitter")
	})
}

func TestNew(t *testing.T) {
	cfg := Config{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Factor:       2,
		Jitter:       0.2,
	}

	t.Run("nil rng", func(t *testing.T) {
		_, err := New(cfg, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "random source")
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := New(Config{}, rand.New(rand.NewSource(1)))
		require.Error(t, err)
	})
}

func TestNext(t *testing.T) {
	cfg := Config{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Factor:       2,
		Jitter:       0.25,
	}

	t.Run("delays stay within jitter bounds", func(t *testing.T) {
		policy, err := New(cfg, rand.New(rand.NewSource(42)))
		require.NoError(t, err)

		expected := []time.Duration{
			100 * time.Millisecond, // attempt 1
			200 * time.Millisecond, // attempt 2
			400 * time.Millisecond, // attempt 3
			800 * time.Millisecond, // attempt 4
			1 * time.Second,        // attempt 5, capped
			1 * time.Second,        // attempt 6, capped
		}

		for i, base := range expected {
			attempt := i + 1
			got := policy.Next(attempt)
			lower := time.Duration(float64(base) * (1 - cfg.Jitter))
			upper := time.Duration(float64(base) * (1 + cfg.Jitter))
			assert.GreaterOrEqual(t, got, lower, "attempt %d", attempt)
			assert.LessOrEqual(t, got, upper, "attempt %d", attempt)
		}
	})

	t.Run("deterministic under a fixed seed", func(t *testing.T) {
		a, err := New(cfg, rand.New(rand.NewSource(7)))
		require.NoError(t, err)
		b, err := New(cfg, rand.New(rand.NewSource(7)))
		require.NoError(t, err)

		for attempt := 1; attempt <= 10; attempt++ {
			assert.Equal(t, a.Next(attempt), b.Next(attempt))
		}
	})

	t.Run("attempt below one is treated as first attempt", func(t *testing.T) {
		noJitter := cfg
		noJitter.Jitter = 0
		policy, err := New(noJitter, rand.New(rand.NewSource(1)))
		require.NoError(t, err)

		assert.Equal(t, cfg.InitialDelay, policy.Next(0))
		assert.Equal(t, cfg.InitialDelay, policy.Next(-3))
	})

	t.Run("never negative with full jitter", func(t *testing.T) {
		full := cfg
		full.Jitter = 1
		policy, err := New(full, rand.New(rand.NewSource(99)))
		require.NoError(t, err)

		for attempt := 1; attempt <= 100; attempt++ {
			assert.GreaterOrEqual(t, policy.Next(attempt), time.Duration(0))
		}
	})
}
