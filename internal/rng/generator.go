// Package rng derives reproducible pseudo-random market events from the
// current company state and turn index. Every draw is a stateless seeded
// hash over a canonical serialization of the state; identical inputs always
// yield bit-identical events.
package rng

import (
	"math"

	"go.uber.org/zap"

	"github.com/ChandlerShores/Green-Cut-Sim/internal/state"
	"github.com/ChandlerShores/Green-Cut-Sim/pkg/constants"
	"github.com/ChandlerShores/Green-Cut-Sim/pkg/mathutil"
)

// Generator produces the turn's market event. It holds no mutable state.
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates a new event generator with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{logger: logger}
}

// Generate returns the deterministic event for (state, turnIndex). The
// function is total over any well-formed state.
func (g *Generator) Generate(s state.CompanyState, turnIndex int) state.RngEvent {
	canonical := canonicalState(s)
	pressure := ShockPressure(s)

	shockRoll := roll(canonical, turnIndex, "shock")
	rewardRoll := roll(canonical, turnIndex, "reward")

	adjusted := shockRoll + int(math.Round(pressure))
	if adjusted > 100 {
		adjusted = 100
	}
	tier := tierForRoll(adjusted)

	category := Categories[pick(canonical, turnIndex, "category", len(Categories))]
	eff := effectTable[category][tier]

	event := state.RngEvent{
		Roll:       shockRoll,
		RewardRoll: rewardRoll,
		Category:   category,
		Tier:       tier,
		Name:       eff.Name,
		Impact:     eff.Impact,
		Decay:      eff.Decay,
		Hints:      hints(s),
	}

	g.logger.Debug("event generated",
		zap.String("op", "rng.Generate"),
		zap.Int("turn", turnIndex),
		zap.Int("roll", shockRoll),
		zap.Float64("pressure", pressure),
		zap.Int("tier", tier),
		zap.String("category", category),
		zap.String("name", eff.Name),
	)

	return event
}

// Reward returns the parallel reward draw for (state, turnIndex). It is
// tracked alongside the shock but not surfaced as the turn's active event.
func (g *Generator) Reward(s state.CompanyState, turnIndex int) state.RngEvent {
	canonical := canonicalState(s)
	rewardRoll := roll(canonical, turnIndex, "reward")
	tier := tierForRoll(rewardRoll)
	category := Categories[pick(canonical, turnIndex, "reward-category", len(Categories))]
	eff := rewardTable[category][tier]

	return state.RngEvent{
		Roll:       rewardRoll,
		RewardRoll: rewardRoll,
		Category:   category,
		Tier:       tier,
		Name:       eff.Name,
		Impact:     eff.Impact,
		Decay:      eff.Decay,
	}
}

// ShockPressure scores accumulated risk on a 0-20 scale: 20x the summed
// continuous risk pressures, plus fixed bonuses for low morale, high
// backlog, and tight cash.
func ShockPressure(s state.CompanyState) float64 {
	sum := 0.0
	for _, v := range s.Flags.Pressure {
		sum += mathutil.Clamp(v, constants.PressureMin, constants.PressureMax)
	}
	pressure := constants.ShockPressureScale * sum

	if s.Morale < constants.MoraleLowThreshold {
		pressure += constants.MoraleLowBonus
	}
	if s.Backlog > constants.BacklogHighThreshold {
		pressure += constants.BacklogHighBonus
	}
	if s.Financials != nil && s.Cash() < constants.LowCashThreshold {
		pressure += constants.CashTightBonus
	}

	return mathutil.Clamp(pressure, 0, constants.ShockPressureMax)
}

// tierForRoll maps an adjusted roll onto a severity tier.
func tierForRoll(adjusted int) int {
	switch {
	case adjusted <= constants.Tier0Cutoff:
		return 0
	case adjusted <= constants.Tier1Cutoff:
		return 1
	case adjusted <= constants.Tier2Cutoff:
		return 2
	default:
		return 3
	}
}

// hints attaches contextual markers derived from threshold checks.
func hints(s state.CompanyState) []string {
	var out []string
	if s.Morale < constants.MoraleLowThreshold {
		out = append(out, "morale_low")
	}
	if s.Credibility < constants.CredibilityLowThreshold {
		out = append(out, "credibility_low")
	}
	if s.Backlog > constants.BacklogHighThreshold {
		out = append(out, "backlog_high")
	}
	if s.Financials != nil && s.Cash() < constants.LowCashThreshold {
		out = append(out, "cash_tight")
	}
	if s.Flags.SupplyFragile {
		out = append(out, "supply_fragile")
	}
	if s.Flags.LaborTense {
		out = append(out, "labor_tense")
	}
	return out
}
