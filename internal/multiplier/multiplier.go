// Package multiplier maps check-in streak lengths to reward multipliers.
// Each policy (tiered, linear, exponential, seasonal) implements Strategy
// over an ordered tier table.
package multiplier

// Tier is a contiguous streak range mapped to a multiplier. MaxStreak nil
// marks the open-ended highest tier. Name/Description/Icon/Color are
// display metadata only.
type Tier struct {
	MinStreak   int      `json:"min_streak"`
	MaxStreak   *int     `json:"max_streak"`
	Multiplier  float64  `json:"multiplier"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Color       string   `json:"color"`
}

// Strategy converts a streak length into a reward multiplier and exposes
// the tier table behind the mapping.
type Strategy interface {
	CalculateMultiplier(streak int) float64
	CurrentTier(streak int) *Tier
	NextTier(streak int) *Tier
	ProgressToNextTier(streak int) float64
	Tiers() []Tier
	TierCount() int
	TierByIndex(index int) *Tier
}

// tierTable holds an ordered tier list and implements the lookups shared
// by every concrete strategy. Tiers must be ascending by MinStreak,
// contiguous, with exactly one unbounded terminal tier.
type tierTable struct {
	tiers []Tier
}

func (t *tierTable) Tiers() []Tier {
	out := make([]Tier, len(t.tiers))
	copy(out, t.tiers)
	return out
}

func (t *tierTable) TierCount() int {
	return len(t.tiers)
}

func (t *tierTable) TierByIndex(index int) *Tier {
	if index < 0 || index >= len(t.tiers) {
		return nil
	}
	tier := t.tiers[index]
	return &tier
}

// CurrentTier returns the tier whose range contains streak, nil for a
// negative streak.
func (t *tierTable) CurrentTier(streak int) *Tier {
	if streak < 0 {
		return nil
	}
	for _, tier := range t.tiers {
		if streak >= tier.MinStreak && (tier.MaxStreak == nil || streak <= *tier.MaxStreak) {
			found := tier
			return &found
		}
	}
	return nil
}

// NextTier returns the tier after the one containing streak, nil when
// already in the terminal tier or when streak matches no tier.
func (t *tierTable) NextTier(streak int) *Tier {
	if streak < 0 {
		return nil
	}
	for i, tier := range t.tiers {
		if streak >= tier.MinStreak && (tier.MaxStreak == nil || streak <= *tier.MaxStreak) {
			if i+1 >= len(t.tiers) {
				return nil
			}
			next := t.tiers[i+1]
			return &next
		}
	}
	return nil
}

// ProgressToNextTier reports fractional progress through the current tier,
// clamped to [0,1]. The terminal tier always reports 1.0.
func (t *tierTable) ProgressToNextTier(streak int) float64 {
	current := t.CurrentTier(streak)
	if current == nil {
		return 0
	}
	next := t.NextTier(streak)
	if next == nil {
		return 1.0
	}
	span := next.MinStreak - current.MinStreak
	if span <= 0 {
		return 1.0
	}
	progress := float64(streak-current.MinStreak) / float64(span)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1.0
	}
	return progress
}

func intPtr(v int) *int {
	return &v
}
