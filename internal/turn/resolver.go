// Package turn orchestrates one simulation turn: contextual modifiers,
// signal resolution, the elasticity mapping from signals onto financial
// drivers, the financial engine invocation, and turn-record assembly.
package turn

import (
	"fmt"
	"hash/fnv"

	"go.uber.org/zap"

	"github.com/ChandlerShores/Green-Cut-Sim/internal/finance"
	"github.com/ChandlerShores/Green-Cut-Sim/internal/rng"
	"github.com/ChandlerShores/Green-Cut-Sim/internal/signals"
	"github.com/ChandlerShores/Green-Cut-Sim/internal/state"
	"github.com/ChandlerShores/Green-Cut-Sim/pkg/constants"
	"github.com/ChandlerShores/Green-Cut-Sim/pkg/mathutil"
)

// Resolver runs turns against a fixed cap/parameter configuration. Each
// turn is one atomic pure transform; the resolver holds no per-run state
// and provides no locking. Callers own single-writer-per-run discipline.
type Resolver struct {
	logger   *zap.Logger
	signals  *signals.Resolver
	engine   *finance.Engine
	caps     state.Caps
	baseline finance.Drivers
	params   finance.Params
	policy   finance.Policy
}

// NewResolver creates a turn resolver. If logger is nil, it will use a
// no-op logger to prevent panics.
func NewResolver(logger *zap.Logger, caps state.Caps, baseline finance.Drivers, params finance.Params, policy finance.Policy) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		logger:   logger,
		signals:  signals.NewResolver(logger),
		engine:   finance.NewEngine(logger),
		caps:     caps,
		baseline: baseline,
		params:   params,
		policy:   policy,
	}
}

// ResolveTurn transforms one state under a declaration and its evaluation
// into the next state plus the turn record. Pure given its inputs: the only
// external non-determinism is whatever produced the evaluation.
func (r *Resolver) ResolveTurn(s state.CompanyState, declaration string, eval state.EvaluatorOutput) state.TurnResult {
	before := s.Clone()

	// Contextual pre-modifiers act on the state, not the deltas.
	pre := r.signals.ApplyContextModifiers(s)

	raw, explainers := r.signals.Apply(eval, pre, r.caps)
	applied := signals.ClampDeltas(raw, r.caps)

	next := pre.Clone()
	next.Turn = s.Turn + 1
	next.Morale += applied[state.MetricMorale]
	next.Credibility += applied[state.MetricCredibility]
	next.Service += applied[state.MetricService]
	next.Backlog += applied[state.MetricBacklog]
	next.Share += applied[state.MetricShare]
	next.TailRisk += eval.Event.Impact.TailRisk

	if eval.Event.Tier > 0 {
		next.ActiveShocks = append(next.ActiveShocks, state.ActiveEffect{
			Name:     eval.Event.Name,
			Category: eval.Event.Category,
			Tier:     eval.Event.Tier,
			Decay:    eval.Event.Decay,
		})
	}
	next.RecentDeclarations = append(next.RecentDeclarations, declaration)
	if len(next.RecentDeclarations) > constants.DeclarationHistoryMax {
		next.RecentDeclarations = next.RecentDeclarations[len(next.RecentDeclarations)-constants.DeclarationHistoryMax:]
	}

	drivers, driverExplainers := r.deriveDrivers(eval, pre, declaration)
	explainers = append(explainers, driverExplainers...)

	preTurnCash := pre.Cash()
	spend, spendFound := DetectDirectSpend(declaration, preTurnCash)
	if spendFound {
		explainers = append(explainers, fmt.Sprintf("spend: declaration committed %.2f of cash directly", spend))
	}
	// One-off event cash flows ride the same post-financing lane as the
	// declared spend (negative impact adds outflow).
	if eval.Event.Impact.Cash != 0 {
		spend -= eval.Event.Impact.Cash
		explainers = append(explainers, fmt.Sprintf("event: %s moved cash by %.2f", eval.Event.Name, eval.Event.Impact.Cash))
	}
	if eval.Policy.OutOfBounds {
		explainers = append(explainers, "policy: declaration flagged out of bounds upstream")
	}

	var prior state.BalanceSheet
	if pre.Financials != nil {
		prior = pre.Financials.Balance
	}
	fin := r.engine.Compute(prior, drivers, r.params, r.policy, spend)

	next.Financials = &fin
	next.CashRunwayMonths = r.runwayMonths(fin, drivers) + applied[state.MetricCashRunway]
	next.ClampBounds()

	result := state.TurnResult{
		TurnNo:        next.Turn,
		StateBefore:   before,
		StateAfter:    next,
		Declaration:   declaration,
		Evaluation:    eval,
		RawDeltas:     raw.Clone(),
		AppliedDeltas: applied.Clone(),
		Financials:    fin,
		Explainers:    explainers,
	}

	r.logger.Info("turn resolved",
		zap.String("op", "turn.ResolveTurn"),
		zap.Int("turn", next.Turn),
		zap.String("event", eval.Event.Name),
		zap.Int("tier", eval.Event.Tier),
		zap.Float64("net_income", fin.PL.NetIncome),
		zap.Bool("cash_recon_ok", fin.CashReconOK),
	)

	return result
}

// deriveDrivers translates the evaluation's signals into financial drivers
// via fixed elasticity coefficients, then clamps every driver to its
// numeric bounds.
func (r *Resolver) deriveDrivers(eval state.EvaluatorOutput, pre state.CompanyState, declaration string) (finance.Drivers, []string) {
	var explainers []string
	d := r.baseline
	impact := eval.Event.Impact

	morale := signedStrength(eval.Signals.Morale)
	cred := signedStrength(eval.Signals.Credibility)
	backlog := signedStrength(eval.Signals.BacklogPressure)
	serviceRisk := signedStrength(eval.Signals.ServiceRisk)

	unitsFactor := 1 + constants.UnitsMoraleElasticity*morale - constants.UnitsBacklogElasticity*backlog + impact.RevenuePct
	d.UnitsSold *= unitsFactor
	if unitsFactor != 1 {
		explainers = append(explainers, fmt.Sprintf("drivers: units scaled by %.3f (morale %+.2f, backlog %+.2f, event %+.3f)", unitsFactor, morale, backlog, impact.RevenuePct))
	}

	if cred != 0 {
		d.Price *= 1 + constants.PriceCredibilityElasticity*cred
		explainers = append(explainers, fmt.Sprintf("drivers: credibility %+.2f moved price to %.2f", cred, d.Price))
	}

	d.UnitCost *= 1 + impact.CogsPct
	d.Opex *= 1 + impact.OpexPct

	if serviceRisk > 0 {
		d.ScrapRate += constants.ScrapServiceRiskElasticity * serviceRisk
		d.DSODays += constants.DSOServiceRiskDays * serviceRisk
		explainers = append(explainers, fmt.Sprintf("drivers: service risk %+.2f raised scrap to %.3f and DSO to %.1f", serviceRisk, d.ScrapRate, d.DSODays))
	}
	if backlog > 0 {
		d.DIODays += constants.DIOBacklogDays * backlog
	}
	if pre.Flags.SupplyFragile {
		d.DIODays += constants.DIOSupplyFragileDays
		explainers = append(explainers, "drivers: supply fragility added inventory days")
	}
	if eval.Event.Category == rng.CategoryRegulatory && eval.Event.Tier >= 1 {
		d.DSODays += constants.DSORegulatoryProbeDays
		explainers = append(explainers, "drivers: regulatory probe added receivable days")
	}

	// The incoherence penalty trims either units or price by up to 1%; the
	// side is picked by a stable hash of the declaration text so identical
	// text always picks the same side.
	penalty := mathutil.Clamp(eval.IncoherencePenalty, 0, 1)
	if penalty > 0 {
		trim := 1 - constants.IncoherenceTrimMax*penalty
		if trimSide(declaration) == 0 {
			d.UnitsSold *= trim
			explainers = append(explainers, fmt.Sprintf("penalty: incoherence trimmed units by %.2f%%", constants.IncoherenceTrimMax*penalty*100))
		} else {
			d.Price *= trim
			explainers = append(explainers, fmt.Sprintf("penalty: incoherence trimmed price by %.2f%%", constants.IncoherenceTrimMax*penalty*100))
		}
	}

	d.UnitsSold = mathutil.Clamp(d.UnitsSold, constants.UnitsMin, constants.UnitsMax)
	d.Price = mathutil.Clamp(d.Price, constants.PriceMin, constants.PriceMax)
	d.ScrapRate = mathutil.Clamp(d.ScrapRate, constants.ScrapMin, constants.ScrapMax)
	d.DSODays = mathutil.Clamp(d.DSODays, constants.DSOMin, constants.DSOMax)
	d.DPODays = mathutil.Clamp(d.DPODays, constants.DPOMin, constants.DPOMax)
	d.DIODays = mathutil.Clamp(d.DIODays, constants.DIOMin, constants.DIOMax)
	d.Opex = mathutil.Max(d.Opex, 0)
	d.Capex = mathutil.Max(d.Capex, 0)

	return d, explainers
}

// runwayMonths derives the cash runway from the closing cash over the
// period's monthly operating spend.
func (r *Resolver) runwayMonths(fin state.FinancialSnapshot, d finance.Drivers) float64 {
	period := d.PeriodDays
	if period <= 0 {
		period = constants.BaselinePeriodDays
	}
	monthlyOpex := d.Opex * (constants.BaselinePeriodDays / period)
	if monthlyOpex < 1 {
		monthlyOpex = 1
	}
	return mathutil.Clamp(fin.Balance.Cash/monthlyOpex, 0, constants.RunwayMonthsMax)
}

func signedStrength(sig state.Signal) float64 {
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

// trimSide deterministically picks the driver the incoherence trim hits.
func trimSide(declaration string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(declaration))
	return int(h.Sum32() % 2)
}
