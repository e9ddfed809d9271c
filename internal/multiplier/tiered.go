package multiplier

// DefaultTiers is the streak ladder used across the platform. Tiers are
// contiguous: each MinStreak is the previous MaxStreak + 1.
var DefaultTiers = []Tier{
	{MinStreak: 0, MaxStreak: intPtr(6), Multiplier: 1.0, Name: "Beginner", Description: "Getting started", Icon: "🌱", Color: "#9CA3AF"},
	{MinStreak: 7, MaxStreak: intPtr(29), Multiplier: 1.5, Name: "Consistent", Description: "One week and counting", Icon: "🔥", Color: "#F59E0B"},
	{MinStreak: 30, MaxStreak: intPtr(99), Multiplier: 2.0, Name: "Dedicated", Description: "A month of daily check-ins", Icon: "⚡", Color: "#8B5CF6"},
	{MinStreak: 100, MaxStreak: intPtr(364), Multiplier: 2.5, Name: "Master", Description: "Triple digits", Icon: "💎", Color: "#3B82F6"},
	{MinStreak: 365, MaxStreak: nil, Multiplier: 3.0, Name: "Legend", Description: "A full year, every day", Icon: "👑", Color: "#EF4444"},
}

// TieredStrategy maps streaks through a fixed lookup table.
type TieredStrategy struct {
	tierTable
}

// NewTieredStrategy builds a tiered strategy. A nil or empty table falls
// back to DefaultTiers. Custom tables must already satisfy the contiguity
// invariant; they are not re-validated here.
func NewTieredStrategy(tiers []Tier) *TieredStrategy {
	if len(tiers) == 0 {
		tiers = DefaultTiers
	}
	owned := make([]Tier, len(tiers))
	copy(owned, tiers)
	return &TieredStrategy{tierTable{tiers: owned}}
}

// CalculateMultiplier returns the multiplier of the tier containing
// streak. Negative streaks resolve to the 1.0 baseline.
func (s *TieredStrategy) CalculateMultiplier(streak int) float64 {
	tier := s.CurrentTier(streak)
	if tier == nil {
		return 1.0
	}
	return tier.Multiplier
}
