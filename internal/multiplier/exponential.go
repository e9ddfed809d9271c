package multiplier

import (
	"fmt"
	"math"
)

// ExponentialConfig tunes ExponentialStrategy. Zero values fall back to
// the platform defaults.
type ExponentialConfig struct {
	BaseMultiplier float64 // default 1.0
	ExponentBase   float64 // default 1.05
	MaxMultiplier  float64 // default 5.0
	IntervalDays   int     // default 7
}

// ExponentialStrategy compounds the multiplier per completed interval:
// base * exponentBase^intervals, capped at MaxMultiplier.
type ExponentialStrategy struct {
	tierTable
	base     float64
	exponent float64
	max      float64
	interval int
}

func NewExponentialStrategy(cfg ExponentialConfig) *ExponentialStrategy {
	if cfg.BaseMultiplier <= 0 {
		cfg.BaseMultiplier = 1.0
	}
	if cfg.ExponentBase <= 1 {
		cfg.ExponentBase = 1.05
	}
	if cfg.MaxMultiplier <= 0 {
		cfg.MaxMultiplier = 5.0
	}
	if cfg.IntervalDays <= 0 {
		cfg.IntervalDays = 7
	}

	s := &ExponentialStrategy{
		base:     cfg.BaseMultiplier,
		exponent: cfg.ExponentBase,
		max:      cfg.MaxMultiplier,
		interval: cfg.IntervalDays,
	}
	s.tiers = s.buildTiers()
	return s
}

// CalculateMultiplier computes base * exponentBase^completed intervals,
// capped at max.
func (s *ExponentialStrategy) CalculateMultiplier(streak int) float64 {
	if streak < 0 {
		return s.base
	}
	intervals := streak / s.interval
	value := s.base * math.Pow(s.exponent, float64(intervals))
	return math.Min(value, s.max)
}

// buildTiers synthesizes tiers by compounding until the cap is reached.
// The loop is bounded by maxTierGenerations: an exponent base close to
// 1.0 would otherwise need thousands of steps to reach the cap.
func (s *ExponentialStrategy) buildTiers() []Tier {
	var tiers []Tier
	for level := 0; level < maxTierGenerations; level++ {
		value := s.base * math.Pow(s.exponent, float64(level))
		if value >= s.max {
			break
		}
		tiers = append(tiers, Tier{
			MinStreak:   level * s.interval,
			MaxStreak:   intPtr((level+1)*s.interval - 1),
			Multiplier:  value,
			Name:        fmt.Sprintf("Stage %d", level+1),
			Description: fmt.Sprintf("%.2fx reward multiplier", value),
			Icon:        "🚀",
			Color:       "#8B5CF6",
		})
	}
	tiers = append(tiers, Tier{
		MinStreak:   len(tiers) * s.interval,
		MaxStreak:   nil,
		Multiplier:  s.max,
		Name:        "Ultimate",
		Description: fmt.Sprintf("Capped at %.2fx", s.max),
		Icon:        "🌟",
		Color:       "#EF4444",
	})
	return tiers
}
