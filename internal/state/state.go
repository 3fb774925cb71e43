// Package state defines the data structures shared by the simulation core:
// the authoritative company snapshot, signal and cap records, generated
// market events, and the reconciled financial statements.
package state

import (
	"github.com/ChandlerShores/Green-Cut-Sim/pkg/constants"
	"github.com/ChandlerShores/Green-Cut-Sim/pkg/mathutil"
)

// Direction is the orientation of a normalized signal.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionNone Direction = "none"
)

// Signal is one normalized direction+strength pair describing intended
// impact on a soft KPI. Strength is expected in [0,1] but callers clamp
// rather than reject out-of-range values.
type Signal struct {
	Direction Direction `json:"direction"`
	Strength  float64   `json:"strength"`
}

// SignalSet carries the four independent directional signals produced by the
// analysis collaborator. Consumed read-only.
type SignalSet struct {
	Morale          Signal `json:"morale"`
	Credibility     Signal `json:"credibility"`
	BacklogPressure Signal `json:"backlog_pressure"`
	ServiceRisk     Signal `json:"service_risk"`
}

// Caps bounds the per-turn magnitude of each metric delta. Immutable per
// engine instance; supplied externally, never mutated internally.
type Caps struct {
	Morale          float64 `json:"morale" yaml:"morale"`
	Credibility     float64 `json:"credibility" yaml:"credibility"`
	ServiceRisk     float64 `json:"service_risk" yaml:"serviceRisk"`
	BacklogPressure float64 `json:"backlog_pressure" yaml:"backlogPressure"`
}

// DefaultCaps returns the caps used when configuration supplies none.
func DefaultCaps() Caps {
	return Caps{
		Morale:          8,
		Credibility:     6,
		ServiceRisk:     5,
		BacklogPressure: 4,
	}
}

// Flags carries the boolean legacy flags plus continuous risk-pressure
// values in [0,1] per risk category.
type Flags struct {
	LaborTense    bool               `json:"labor_tense"`
	SupplyFragile bool               `json:"supply_fragile"`
	Pressure      map[string]float64 `json:"pressure,omitempty"`
}

// ActiveEffect is one currently active shock or reward event. The decay
// class is carried in the data; no decay step runs in turn resolution.
type ActiveEffect struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Tier     int    `json:"tier"`
	Decay    string `json:"decay"` // slow|fast
}

// CompanyState is the authoritative snapshot of one simulation run at one
// turn boundary. All bounded fields stay in their domain after every
// transform; enforcement is by clamping, never by rejection.
type CompanyState struct {
	Turn               int                `json:"turn"`
	Morale             float64            `json:"morale"`             // [0,100]
	Credibility        float64            `json:"credibility"`        // [0,100]
	Service            float64            `json:"service"`            // [0,100]
	Backlog            float64            `json:"backlog"`            // units, >=0
	Share              float64            `json:"share"`              // points, >=0
	CashRunwayMonths   float64            `json:"cash_runway_months"` // >=0
	Flags              Flags              `json:"flags"`
	Financials         *FinancialSnapshot `json:"financials,omitempty"`
	TailRisk           float64            `json:"tail_risk"` // [0,1]
	ActiveShocks       []ActiveEffect     `json:"active_shocks,omitempty"`
	ActiveRewards      []ActiveEffect     `json:"active_rewards,omitempty"`
	RecentDeclarations []string           `json:"recent_declarations,omitempty"` // max 2 retained
}

// Clone returns a deep copy so that transforms never alias the prior state.
func (s CompanyState) Clone() CompanyState {
	out := s
	if s.Flags.Pressure != nil {
		out.Flags.Pressure = make(map[string]float64, len(s.Flags.Pressure))
		for k, v := range s.Flags.Pressure {
			out.Flags.Pressure[k] = v
		}
	}
	if s.Financials != nil {
		fin := *s.Financials
		fin.Notes = append([]string(nil), s.Financials.Notes...)
		out.Financials = &fin
	}
	out.ActiveShocks = append([]ActiveEffect(nil), s.ActiveShocks...)
	out.ActiveRewards = append([]ActiveEffect(nil), s.ActiveRewards...)
	out.RecentDeclarations = append([]string(nil), s.RecentDeclarations...)
	return out
}

// ClampBounds forces every bounded field back into its domain.
func (s *CompanyState) ClampBounds() {
	s.Morale = mathutil.Clamp(s.Morale, constants.KPIMin, constants.KPIMax)
	s.Credibility = mathutil.Clamp(s.Credibility, constants.KPIMin, constants.KPIMax)
	s.Service = mathutil.Clamp(s.Service, constants.KPIMin, constants.KPIMax)
	s.Backlog = mathutil.Max(s.Backlog, 0)
	s.Share = mathutil.Max(s.Share, 0)
	s.CashRunwayMonths = mathutil.Clamp(s.CashRunwayMonths, 0, constants.RunwayMonthsMax)
	s.TailRisk = mathutil.Clamp(s.TailRisk, 0, constants.TailRiskMax)
	for k, v := range s.Flags.Pressure {
		s.Flags.Pressure[k] = mathutil.Clamp(v, constants.PressureMin, constants.PressureMax)
	}
}

// Cash returns the closing cash of the current financial snapshot, or zero
// when no snapshot exists yet.
func (s CompanyState) Cash() float64 {
	if s.Financials == nil {
		return 0
	}
	return s.Financials.Balance.Cash
}

// Metric keys used by the delta map.
const (
	MetricMorale      = "morale"
	MetricCredibility = "credibility"
	MetricService     = "service"
	MetricBacklog     = "backlog"
	MetricShare       = "share"
	MetricCashRunway  = "cash_runway"
)

// Deltas maps metric keys to signed per-turn changes.
type Deltas map[string]float64

// Clone returns an independent copy of the delta map.
func (d Deltas) Clone() Deltas {
	out := make(Deltas, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// EventImpact is the structured effect record of a generated market event.
// Revenue/COGS/opex channels are fractional adjustments applied to the
// financial drivers; Cash is an absolute one-off flow. The soft channels
// (Morale, Service, Share, Backlog, CashRunway) are signed strengths in
// [-1,1] consumed by the signal resolver's event layer.
type EventImpact struct {
	RevenuePct float64 `json:"revenue_pct"`
	CogsPct    float64 `json:"cogs_pct"`
	OpexPct    float64 `json:"opex_pct"`
	Cash       float64 `json:"cash"`
	Morale     float64 `json:"morale"`
	Service    float64 `json:"service"`
	Share      float64 `json:"share"`
	Backlog    float64 `json:"backlog"`
	CashRunway float64 `json:"cash_runway"`
	TailRisk   float64 `json:"tail_risk"`
}

// RngEvent is a deterministically generated market event. It is produced
// internally by the event generator and never supplied by the CEO-facing
// layer. The reward roll is drawn and recorded but only the shock event is
// surfaced as the turn's active event.
type RngEvent struct {
	Roll       int         `json:"roll"` // [1,100], shock draw
	RewardRoll int         `json:"reward_roll"`
	Category   string      `json:"category"`
	Tier       int         `json:"tier"` // 0..3
	Name       string      `json:"name"`
	Impact     EventImpact `json:"impact"`
	Decay      string      `json:"decay"`
	Hints      []string    `json:"hints,omitempty"`
}
