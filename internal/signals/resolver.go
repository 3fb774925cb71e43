// Package signals converts the three influence layers of a turn (CEO
// intent, event impact, incoherence penalty) into per-metric deltas and
// applies per-metric caps.
package signals

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/ChandlerShores/Green-Cut-Sim/internal/state"
	"github.com/ChandlerShores/Green-Cut-Sim/pkg/constants"
	"github.com/ChandlerShores/Green-Cut-Sim/pkg/mathutil"
)

// Resolver composes signal layers into deltas. It holds no mutable state.
type Resolver struct {
	logger *zap.Logger
}

// NewResolver creates a new signal resolver with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger}
}

// ApplyContextModifiers returns a copy of the state with the contextual
// pre-modifiers applied. These run once per turn, before delta composition,
// and act on the state rather than on the deltas.
func (r *Resolver) ApplyContextModifiers(s state.CompanyState) state.CompanyState {
	out := s.Clone()

	if out.Flags.LaborTense {
		out.Morale *= constants.LaborTenseMoraleFactor
		out.Credibility *= constants.LaborTenseCredibilityFactor
	}
	if out.Morale > constants.MoraleDecayThreshold {
		out.Morale *= constants.MoraleDecayFactor
	}

	out.ClampBounds()
	return out
}

// Apply composes the CEO, event, and penalty layers into raw per-metric
// deltas and returns them with explainer strings describing which levers
// fired. Layer order is fixed; it matters only for explainer generation
// since all layers are additive.
func (r *Resolver) Apply(eval state.EvaluatorOutput, s state.CompanyState, caps state.Caps) (state.Deltas, []string) {
	raw := state.Deltas{
		state.MetricMorale:      0,
		state.MetricCredibility: 0,
		state.MetricService:     0,
		state.MetricBacklog:     0,
		state.MetricShare:       0,
		state.MetricCashRunway:  0,
	}
	var explainers []string

	// CEO layer.
	if d := signed(eval.Signals.Morale) * caps.Morale; d != 0 {
		raw[state.MetricMorale] += d
		explainers = append(explainers, fmt.Sprintf("ceo: morale signal %s drove %+.2f", eval.Signals.Morale.Direction, d))
	}
	if d := signed(eval.Signals.Credibility) * caps.Credibility; d != 0 {
		raw[state.MetricCredibility] += d
		explainers = append(explainers, fmt.Sprintf("ceo: credibility signal %s drove %+.2f", eval.Signals.Credibility.Direction, d))
	}
	// A rising service-risk signal degrades the service KPI.
	if d := -signed(eval.Signals.ServiceRisk) * caps.ServiceRisk; d != 0 {
		raw[state.MetricService] += d
		explainers = append(explainers, fmt.Sprintf("ceo: service-risk signal %s drove %+.2f service", eval.Signals.ServiceRisk.Direction, d))
	}
	if d := ceoBacklogDelta(eval.Signals.BacklogPressure, s.Flags.SupplyFragile); d != 0 {
		raw[state.MetricBacklog] += d
		explainers = append(explainers, fmt.Sprintf("ceo: backlog-pressure signal %s drove %+.0f units", eval.Signals.BacklogPressure.Direction, d))
	}

	// Event layer at 80% of the CEO formula.
	impact := eval.Event.Impact
	if d := constants.EventLayerFactor * clampStrength(impact.Morale) * caps.Morale; d != 0 {
		raw[state.MetricMorale] += d
		explainers = append(explainers, fmt.Sprintf("event: %s drove %+.2f morale", eval.Event.Name, d))
	}
	if d := constants.EventLayerFactor * clampStrength(impact.Service) * caps.ServiceRisk; d != 0 {
		raw[state.MetricService] += d
		explainers = append(explainers, fmt.Sprintf("event: %s drove %+.2f service", eval.Event.Name, d))
	}
	if d := eventBacklogDelta(impact.Backlog, s.Flags.SupplyFragile); d != 0 {
		raw[state.MetricBacklog] += d
		explainers = append(explainers, fmt.Sprintf("event: %s drove %+.0f backlog units", eval.Event.Name, d))
	}
	if d := constants.EventLayerFactor * clampStrength(impact.Share) * caps.BacklogPressure; d != 0 {
		raw[state.MetricShare] += d
		explainers = append(explainers, fmt.Sprintf("event: %s drove %+.2f share", eval.Event.Name, d))
	}
	if d := constants.EventLayerFactor * clampStrength(impact.CashRunway) * caps.BacklogPressure; d != 0 {
		raw[state.MetricCashRunway] += d
		explainers = append(explainers, fmt.Sprintf("event: %s drove %+.2f runway months", eval.Event.Name, d))
	}

	// Penalty layer.
	penalty := mathutil.Clamp(eval.IncoherencePenalty, 0, 1)
	if penalty > 0 {
		d := -penalty * constants.PenaltyCredibilityFactor * caps.Credibility
		raw[state.MetricCredibility] += d
		explainers = append(explainers, fmt.Sprintf("penalty: incoherence %.2f cost %+.2f credibility", penalty, d))

		if s.Credibility < constants.CredibilityLowThreshold {
			md := -penalty * constants.PenaltyMoraleFactor * caps.Morale
			raw[state.MetricMorale] += md
			explainers = append(explainers, fmt.Sprintf("penalty: low credibility amplified morale hit %+.2f", md))
		}
	}

	r.logger.Debug("signal layers composed",
		zap.String("op", "signals.Apply"),
		zap.Float64("penalty", penalty),
		zap.Int("explainers", len(explainers)),
	)

	return raw, explainers
}

// ClampDeltas restricts every raw delta to its metric's symmetric cap.
// Backlog is bounded by the backlog-pressure cap scaled to units; share and
// cash-runway borrow the backlog-pressure cap (existing behavior, see the
// design notes).
func ClampDeltas(raw state.Deltas, caps state.Caps) state.Deltas {
	applied := state.Deltas{}
	for metric, d := range raw {
		applied[metric] = mathutil.ClampMagnitude(d, capFor(metric, caps))
	}
	return applied
}

func capFor(metric string, caps state.Caps) float64 {
	switch metric {
	case state.MetricMorale:
		return caps.Morale
	case state.MetricCredibility:
		return caps.Credibility
	case state.MetricService:
		return caps.ServiceRisk
	case state.MetricBacklog:
		return caps.BacklogPressure * constants.CEOBacklogUnitScale
	default:
		// share and cash_runway
		return caps.BacklogPressure
	}
}

// signed collapses a directional signal into a signed strength. Out-of-range
// strengths are clamped, never propagated.
func signed(sig state.Signal) float64 {
	strength := mathutil.Clamp(sig.Strength, 0, 1)
	switch sig.Direction {
	case state.DirectionUp:
		return strength
	case state.DirectionDown:
		return -strength
	default:
		return 0
	}
}

func clampStrength(v float64) float64 {
	return mathutil.Clamp(v, -1, 1)
}

// ceoBacklogDelta unit-scales the backlog-pressure signal instead of using
// a capped percentage.
func ceoBacklogDelta(sig state.Signal, supplyFragile bool) float64 {
	sv := signed(sig)
	if sv == 0 {
		return 0
	}
	d := math.Round(math.Abs(sv)*constants.CEOBacklogUnitScale) * mathutil.Sign(sv)
	if supplyFragile {
		d *= constants.SupplyFragileCEOFactor
	}
	return d
}

// eventBacklogDelta is the event-layer equivalent with the smaller unit
// scale and the stronger fragility multiplier.
func eventBacklogDelta(strength float64, supplyFragile bool) float64 {
	sv := clampStrength(strength)
	if sv == 0 {
		return 0
	}
	d := math.Round(math.Abs(sv)*constants.EventBacklogUnitScale) * mathutil.Sign(sv)
	if supplyFragile {
		d *= constants.SupplyFragileEventFactor
	}
	return d
}
