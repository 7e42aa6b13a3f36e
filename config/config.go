package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

/* Config is loaded from the environment with an optional .env file.
 * Every knob has a default so a bare environment still boots; Validate
 * rejects contradictory settings before anything connects
 */

type Config struct {
	Port        string `mapstructure:"PORT"`
	MetricsPort string `mapstructure:"METRICS_PORT"`

	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	WebhookSecret          string `mapstructure:"WEBHOOK_SECRET"`
	StoreInvalidSignatures bool   `mapstructure:"STORE_INVALID_SIGNATURES"`

	DeliveryMaxAttempts int    `mapstructure:"DELIVERY_MAX_ATTEMPTS"`
	DeliveryTimeoutMs   int    `mapstructure:"DELIVERY_TIMEOUT_MS"`
	HonorRetryAfter     bool   `mapstructure:"HONOR_RETRY_AFTER"`
	SuccessStatuses     string `mapstructure:"SUCCESS_STATUSES"`
	RetryableStatuses   string `mapstructure:"RETRYABLE_STATUSES"`

	BackoffInitialDelayMs int     `mapstructure:"BACKOFF_INITIAL_DELAY_MS"`
	BackoffMaxDelayMs     int     `mapstructure:"BACKOFF_MAX_DELAY_MS"`
	BackoffFactor         float64 `mapstructure:"BACKOFF_FACTOR"`
	BackoffJitter         float64 `mapstructure:"BACKOFF_JITTER"`

	IntakeMaxAttempts    int `mapstructure:"INTAKE_MAX_ATTEMPTS"`
	IntakeSweepIntervalS int `mapstructure:"INTAKE_SWEEP_INTERVAL_S"`
	IntakeSweepBatch     int `mapstructure:"INTAKE_SWEEP_BATCH"`
	IntakeClaimLeaseS    int `mapstructure:"INTAKE_CLAIM_LEASE_S"`
	IntakeRetentionHours int `mapstructure:"INTAKE_RETENTION_HOURS"`

	DLQMaxRetries     int `mapstructure:"DLQ_MAX_RETRIES"`
	DLQRetryDelayS    int `mapstructure:"DLQ_RETRY_DELAY_S"`
	DLQMaxDelayS      int `mapstructure:"DLQ_MAX_DELAY_S"`
	DLQSweepIntervalS int `mapstructure:"DLQ_SWEEP_INTERVAL_S"`
	DLQBatch          int `mapstructure:"DLQ_BATCH"`
	DLQClaimHoldS     int `mapstructure:"DLQ_CLAIM_HOLD_S"`

	StatsPeriodMinutes int `mapstructure:"STATS_PERIOD_MINUTES"`

	DestinationsFile string `mapstructure:"DESTINATIONS_FILE"`
}

func setDefaults() {
	viper.SetDefault("PORT", "3000")
	viper.SetDefault("METRICS_PORT", "9090")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("STORE_INVALID_SIGNATURES", false)
	viper.SetDefault("DELIVERY_MAX_ATTEMPTS", 5)
	viper.SetDefault("DELIVERY_TIMEOUT_MS", 10000)
	viper.SetDefault("HONOR_RETRY_AFTER", false)
	viper.SetDefault("SUCCESS_STATUSES", "200,201,202,204")
	viper.SetDefault("RETRYABLE_STATUSES", "408,429,500,502,503,504")
	viper.SetDefault("BACKOFF_INITIAL_DELAY_MS", 1000)
	viper.SetDefault("BACKOFF_MAX_DELAY_MS", 60000)
	viper.SetDefault("BACKOFF_FACTOR", 2.0)
	viper.SetDefault("BACKOFF_JITTER", 0.2)
	viper.SetDefault("INTAKE_MAX_ATTEMPTS", 5)
	viper.SetDefault("INTAKE_SWEEP_INTERVAL_S", 30)
	viper.SetDefault("INTAKE_SWEEP_BATCH", 100)
	viper.SetDefault("INTAKE_CLAIM_LEASE_S", 300)
	viper.SetDefault("INTAKE_RETENTION_HOURS", 72)
	viper.SetDefault("DLQ_MAX_RETRIES", 3)
	viper.SetDefault("DLQ_RETRY_DELAY_S", 300)
	viper.SetDefault("DLQ_MAX_DELAY_S", 3600)
	viper.SetDefault("DLQ_SWEEP_INTERVAL_S", 60)
	viper.SetDefault("DLQ_BATCH", 20)
	viper.SetDefault("DLQ_CLAIM_HOLD_S", 120)
	viper.SetDefault("STATS_PERIOD_MINUTES", 60)
	viper.SetDefault("DESTINATIONS_FILE", "destinations.yaml")
}

// GetConfig loads configuration from the environment
// A .env file in the working directory is merged in when present
func GetConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate fails fast on settings that would only break at runtime
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.WebhookSecret == "" {
		return fmt.Errorf("WEBHOOK_SECRET is required")
	}
	if c.DeliveryMaxAttempts < 1 {
		return fmt.Errorf("DELIVERY_MAX_ATTEMPTS must be at least 1, got %d", c.DeliveryMaxAttempts)
	}
	if c.DeliveryTimeoutMs < 1 {
		return fmt.Errorf("DELIVERY_TIMEOUT_MS must be positive, got %d", c.DeliveryTimeoutMs)
	}
	if c.BackoffInitialDelayMs < 1 {
		return fmt.Errorf("BACKOFF_INITIAL_DELAY_MS must be positive, got %d", c.BackoffInitialDelayMs)
	}
	if c.BackoffMaxDelayMs < c.BackoffInitialDelayMs {
		return fmt.Errorf("BACKOFF_MAX_DELAY_MS must not be below the initial delay")
	}
	if c.BackoffFactor < 1 {
		return fmt.Errorf("BACKOFF_FACTOR must be at least 1, got %g", c.BackoffFactor)
	}
	if c.BackoffJitter < 0 || c.BackoffJitter > 1 {
		return fmt.Errorf("BACKOFF_JITTER must be between 0 and 1, got %g", c.BackoffJitter)
	}
	if c.IntakeMaxAttempts < 1 {
		return fmt.Errorf("INTAKE_MAX_ATTEMPTS must be at least 1, got %d", c.IntakeMaxAttempts)
	}
	if c.DLQRetryDelayS < 1 {
		return fmt.Errorf("DLQ_RETRY_DELAY_S must be positive, got %d", c.DLQRetryDelayS)
	}
	if c.DLQMaxDelayS < c.DLQRetryDelayS {
		return fmt.Errorf("DLQ_MAX_DELAY_S must not be below the retry delay")
	}
	if _, err := c.ParseSuccessStatuses(); err != nil {
		return err
	}
	if _, err := c.ParseRetryableStatuses(); err != nil {
		return err
	}
	return nil
}

// ParseSuccessStatuses parses the comma separated success status set
func (c *Config) ParseSuccessStatuses() ([]int, error) {
	return parseStatusList("SUCCESS_STATUSES", c.SuccessStatuses)
}

// ParseRetryableStatuses parses the comma separated retryable status set
func (c *Config) ParseRetryableStatuses() ([]int, error) {
	return parseStatusList("RETRYABLE_STATUSES", c.RetryableStatuses)
}

// GetDeliveryTimeout returns the per-attempt HTTP timeout
func (c *Config) GetDeliveryTimeout() time.Duration {
	return time.Duration(c.DeliveryTimeoutMs) * time.Millisecond
}

// GetBackoffInitialDelay returns the first retry wait
func (c *Config) GetBackoffInitialDelay() time.Duration {
	return time.Duration(c.BackoffInitialDelayMs) * time.Millisecond
}

// GetBackoffMaxDelay returns the retry wait ceiling
func (c *Config) GetBackoffMaxDelay() time.Duration {
	return time.Duration(c.BackoffMaxDelayMs) * time.Millisecond
}

// GetIntakeSweepInterval returns the stuck-event sweep cadence
func (c *Config) GetIntakeSweepInterval() time.Duration {
	return time.Duration(c.IntakeSweepIntervalS) * time.Second
}

// GetIntakeClaimLease returns how long a claimed event stays invisible
// to the sweep before it counts as abandoned
func (c *Config) GetIntakeClaimLease() time.Duration {
	return time.Duration(c.IntakeClaimLeaseS) * time.Second
}

// GetIntakeRetention returns how long completed events are kept
// Zero disables the retention purge
func (c *Config) GetIntakeRetention() time.Duration {
	return time.Duration(c.IntakeRetentionHours) * time.Hour
}

// GetDLQRetryDelay returns the wait between remediation attempts
func (c *Config) GetDLQRetryDelay() time.Duration {
	return time.Duration(c.DLQRetryDelayS) * time.Second
}

// GetDLQMaxDelay returns the remediation wait ceiling
func (c *Config) GetDLQMaxDelay() time.Duration {
	return time.Duration(c.DLQMaxDelayS) * time.Second
}

// GetDLQSweepInterval returns the remediation loop cadence
func (c *Config) GetDLQSweepInterval() time.Duration {
	return time.Duration(c.DLQSweepIntervalS) * time.Second
}

// GetDLQClaimHold returns how long a claimed entry stays invisible
func (c *Config) GetDLQClaimHold() time.Duration {
	return time.Duration(c.DLQClaimHoldS) * time.Second
}

// GetStatsPeriod returns the rollup window size
func (c *Config) GetStatsPeriod() time.Duration {
	return time.Duration(c.StatsPeriodMinutes) * time.Minute
}

func parseStatusList(name, value string) ([]int, error) {
	if strings.TrimSpace(value) == "" {
		return nil, fmt.Errorf("%s must not be empty", name)
	}
	parts := strings.Split(value, ",")
	statuses := make([]int, 0, len(parts))
	for _, part := range parts {
		status, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%s contains invalid status %q", name, part)
		}
		if status < 100 || status > 599 {
			return nil, fmt.Errorf("%s contains out of range status %d", name, status)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
