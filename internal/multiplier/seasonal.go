package multiplier

import "time"

// SeasonalStrategy decorates a base strategy with an extra event
// multiplier that applies inside an inclusive [start, end] window.
//
// A missing bound places no restriction on that side, so a strategy with
// neither bound set is permanently active. Tier boundaries are never
// shifted by the event; only the multiplier magnitude scales.
type SeasonalStrategy struct {
	base            Strategy
	eventMultiplier float64
	eventStart      *time.Time
	eventEnd        *time.Time

	now func() time.Time
}

// NewSeasonalStrategy wraps base with an event multiplier active between
// start and end (inclusive). Pass nil for an unbounded side.
func NewSeasonalStrategy(base Strategy, eventMultiplier float64, start, end *time.Time) *SeasonalStrategy {
	if eventMultiplier <= 0 {
		eventMultiplier = 1.0
	}
	return &SeasonalStrategy{
		base:            base,
		eventMultiplier: eventMultiplier,
		eventStart:      start,
		eventEnd:        end,
		now:             time.Now,
	}
}

// IsEventActive reports whether the event window contains now. Both
// bounds are inclusive.
func (s *SeasonalStrategy) IsEventActive(now time.Time) bool {
	if s.eventStart != nil && now.Before(*s.eventStart) {
		return false
	}
	if s.eventEnd != nil && now.After(*s.eventEnd) {
		return false
	}
	return true
}

// CalculateMultiplier scales the base multiplier by the event multiplier
// while the event is active, and delegates unchanged otherwise.
func (s *SeasonalStrategy) CalculateMultiplier(streak int) float64 {
	value := s.base.CalculateMultiplier(streak)
	if s.IsEventActive(s.now()) {
		return value * s.eventMultiplier
	}
	return value
}

// Tiers returns the base tier table with multipliers scaled while the
// event is active. All other tier fields pass through unchanged.
func (s *SeasonalStrategy) Tiers() []Tier {
	tiers := s.base.Tiers()
	if !s.IsEventActive(s.now()) {
		return tiers
	}
	for i := range tiers {
		tiers[i].Multiplier *= s.eventMultiplier
	}
	return tiers
}

// Tier identity and progress always come from the base strategy.
func (s *SeasonalStrategy) CurrentTier(streak int) *Tier      { return s.base.CurrentTier(streak) }
func (s *SeasonalStrategy) NextTier(streak int) *Tier         { return s.base.NextTier(streak) }
func (s *SeasonalStrategy) ProgressToNextTier(streak int) float64 {
	return s.base.ProgressToNextTier(streak)
}

func (s *SeasonalStrategy) TierCount() int { return s.base.TierCount() }

// TierByIndex indexes into Tiers so event scaling is reflected.
func (s *SeasonalStrategy) TierByIndex(index int) *Tier {
	tiers := s.Tiers()
	if index < 0 || index >= len(tiers) {
		return nil
	}
	tier := tiers[index]
	return &tier
}
