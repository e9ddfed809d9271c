package multiplier

import (
	"fmt"
	"math"
)

// maxTierGenerations bounds synthesized tier tables so a tiny increment or
// an unreachable cap cannot spin the generation loop forever.
const maxTierGenerations = 100

// LinearConfig tunes LinearStrategy. Zero values fall back to the
// platform defaults.
type LinearConfig struct {
	BaseMultiplier   float64 // default 1.0
	IncrementPerWeek float64 // default 0.1
	MaxMultiplier    float64 // default 3.0
	IntervalDays     int     // default 7
}

// LinearStrategy grows the multiplier by a fixed increment per completed
// interval, capped at MaxMultiplier.
type LinearStrategy struct {
	tierTable
	base     float64
	perWeek  float64
	max      float64
	interval int
}

func NewLinearStrategy(cfg LinearConfig) *LinearStrategy {
	if cfg.BaseMultiplier <= 0 {
		cfg.BaseMultiplier = 1.0
	}
	if cfg.IncrementPerWeek <= 0 {
		cfg.IncrementPerWeek = 0.1
	}
	if cfg.MaxMultiplier <= 0 {
		cfg.MaxMultiplier = 3.0
	}
	if cfg.IntervalDays <= 0 {
		cfg.IntervalDays = 7
	}

	s := &LinearStrategy{
		base:     cfg.BaseMultiplier,
		perWeek:  cfg.IncrementPerWeek,
		max:      cfg.MaxMultiplier,
		interval: cfg.IntervalDays,
	}
	s.tiers = s.buildTiers()
	return s
}

// CalculateMultiplier computes base + increment * completed intervals,
// capped at max and never below base.
func (s *LinearStrategy) CalculateMultiplier(streak int) float64 {
	if streak < 0 {
		return s.base
	}
	intervals := streak / s.interval
	value := s.base + s.perWeek*float64(intervals)
	return math.Min(value, s.max)
}

// buildTiers synthesizes one tier per discrete multiplier level up to the
// cap, then a final open-ended "Max Level" tier.
func (s *LinearStrategy) buildTiers() []Tier {
	var tiers []Tier
	for level := 0; level < maxTierGenerations; level++ {
		value := s.base + s.perWeek*float64(level)
		if value >= s.max {
			break
		}
		tiers = append(tiers, Tier{
			MinStreak:   level * s.interval,
			MaxStreak:   intPtr((level+1)*s.interval - 1),
			Multiplier:  value,
			Name:        fmt.Sprintf("Level %d", level+1),
			Description: fmt.Sprintf("%.2fx reward multiplier", value),
			Icon:        "📈",
			Color:       "#10B981",
		})
	}
	tiers = append(tiers, Tier{
		MinStreak:   len(tiers) * s.interval,
		MaxStreak:   nil,
		Multiplier:  s.max,
		Name:        "Max Level",
		Description: fmt.Sprintf("Capped at %.2fx", s.max),
		Icon:        "🏆",
		Color:       "#F59E0B",
	})
	return tiers
}
