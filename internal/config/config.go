// Package config loads the typed service settings from environment
// variables. main loads .env first via godotenv; this maps the result
// onto a struct.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// --- Streak engine ---
	StreakMaxGap       time.Duration `envconfig:"STREAK_MAX_GAP" default:"24h"`
	StreakTimezone     string        `envconfig:"STREAK_TIMEZONE" default:"UTC"`
	CheckinBaseXP      int           `envconfig:"CHECKIN_BASE_XP" default:"100"`

	// --- Multiplier policy ---
	// One of: tiered, linear, exponential
	MultiplierStrategy      string  `envconfig:"MULTIPLIER_STRATEGY" default:"tiered"`
	MultiplierBase          float64 `envconfig:"MULTIPLIER_BASE" default:"1.0"`
	MultiplierIncrement     float64 `envconfig:"MULTIPLIER_INCREMENT" default:"0.1"`
	MultiplierExponentBase  float64 `envconfig:"MULTIPLIER_EXPONENT_BASE" default:"1.05"`
	MultiplierMax           float64 `envconfig:"MULTIPLIER_MAX" default:"0"`
	MultiplierIntervalDays  int     `envconfig:"MULTIPLIER_INTERVAL_DAYS" default:"7"`

	// --- Seasonal event (optional decorator) ---
	SeasonalEnabled    bool    `envconfig:"SEASONAL_ENABLED" default:"false"`
	SeasonalMultiplier float64 `envconfig:"SEASONAL_MULTIPLIER" default:"1.0"`
	SeasonalStart      string  `envconfig:"SEASONAL_START" default:""` // RFC3339, empty = unbounded
	SeasonalEnd        string  `envconfig:"SEASONAL_END" default:""`   // RFC3339, empty = unbounded

	// --- Leaderboard cache ---
	RedisAddr      string        `envconfig:"REDIS_ADDR" default:""`
	RedisPassword  string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB        int           `envconfig:"REDIS_DB" default:"0"`
	LeaderboardTTL time.Duration `envconfig:"LEADERBOARD_CACHE_TTL" default:"60s"`

	// --- Background jobs ---
	AtRiskSweepSpec string `envconfig:"AT_RISK_SWEEP_SPEC" default:"0 * * * *"` // hourly
	BrokenSweepSpec string `envconfig:"BROKEN_SWEEP_SPEC" default:"30 0 * * *"` // daily 00:30 UTC
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.MultiplierStrategy {
	case "tiered", "linear", "exponential":
	default:
		return fmt.Errorf("MULTIPLIER_STRATEGY must be tiered, linear or exponential, got %q", c.MultiplierStrategy)
	}
	if c.StreakMaxGap <= 0 {
		return fmt.Errorf("STREAK_MAX_GAP must be positive")
	}
	if c.CheckinBaseXP <= 0 {
		return fmt.Errorf("CHECKIN_BASE_XP must be positive")
	}
	if c.SeasonalEnabled {
		for _, raw := range []string{c.SeasonalStart, c.SeasonalEnd} {
			if raw == "" {
				continue
			}
			if _, err := time.Parse(time.RFC3339, raw); err != nil {
				return fmt.Errorf("seasonal window bound %q is not RFC3339: %w", raw, err)
			}
		}
	}
	return nil
}

// SeasonalWindow parses the optional event bounds. Validate has already
// checked the format; parse errors here resolve to an unbounded side.
func (c *Config) SeasonalWindow() (start, end *time.Time) {
	if c.SeasonalStart != "" {
		if ts, err := time.Parse(time.RFC3339, c.SeasonalStart); err == nil {
			start = &ts
		}
	}
	if c.SeasonalEnd != "" {
		if ts, err := time.Parse(time.RFC3339, c.SeasonalEnd); err == nil {
			end = &ts
		}
	}
	return start, end
}
