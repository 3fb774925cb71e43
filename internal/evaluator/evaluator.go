// Package evaluator is the keyword-heuristic producer of the analysis
// contract. It is one of two interchangeable producers (the other being a
// language model); the core consumes only the typed EvaluatorOutput and
// never sees how it was made.
package evaluator

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ChandlerShores/Green-Cut-Sim/internal/rng"
	"github.com/ChandlerShores/Green-Cut-Sim/internal/state"
)

type lexicon struct {
	up   []string
	down []string
}

var metricLexicons = map[string]lexicon{
	state.MetricMorale: {
		up:   []string{"bonus", "raise", "culture", "retention", "celebrate", "training", "wellbeing", "morale"},
		down: []string{"layoff", "layoffs", "headcount cut", "fire ", "downsize", "freeze hiring", "pay cut"},
	},
	state.MetricCredibility: {
		up:   []string{"transparent", "commit", "deliver", "guidance", "honest", "accountab", "on time"},
		down: []string{"pivot", "abandon", "walk back", "reverse course", "overpromise", "delay the launch"},
	},
	state.MetricBacklog: {
		up:   []string{"take more orders", "ramp sales", "promotion", "discount", "presell", "book orders"},
		down: []string{"expand capacity", "second shift", "overtime", "throughput", "clear the backlog", "hire production"},
	},
	state.MetricService: {
		up:   []string{"rush", "cut corners", "skip qa", "defer maintenance", "ship early", "stretch the team"},
		down: []string{"quality program", "invest in service", "maintenance", "qa ", "reliability", "support staff"},
	},
}

var categoryKeywords = map[string][]string{
	rng.CategorySupplyChain: {"supplier", "supply", "logistics", "freight", "sourcing"},
	rng.CategoryDemandShift: {"demand", "customers", "marketing", "sales", "pricing"},
	rng.CategoryRegulatory:  {"compliance", "regulator", "legal", "filing", "audit"},
	rng.CategoryTalent:      {"hiring", "retention", "talent", "team", "compensation"},
	rng.CategoryCyber:       {"security", "cyber", "breach", "backup", "hardening"},
	rng.CategoryCompetitor:  {"competitor", "rival", "market share", "win back"},
	rng.CategoryMacro:       {"hedge", "currency", "costs", "budget", "macro"},
	rng.CategoryOperations:  {"plant", "line", "production", "maintenance", "yield"},
}

var policyViolations = map[string]string{
	"bribe":        "proposes bribery",
	"collude":      "proposes collusion",
	"insider":      "references insider trading",
	"falsify":      "proposes falsifying records",
	"dump toxic":   "proposes illegal dumping",
	"price fixing": "proposes price fixing",
}

// Evaluator converts free-text declarations into the normalized signal
// contract. All heuristics are pure text functions, so output is
// deterministic for a given (declaration, event) pair.
type Evaluator struct {
	logger *zap.Logger
}

// New creates an evaluator. If logger is nil, it will use a no-op logger
// to prevent panics.
func New(logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{logger: logger}
}

// Evaluate produces the typed contract for one declaration against the
// turn's generated event.
func (e *Evaluator) Evaluate(declaration string, event state.RngEvent) state.EvaluatorOutput {
	lower := strings.ToLower(declaration)

	moraleSig, moraleConflict := scoreMetric(lower, metricLexicons[state.MetricMorale])
	credSig, credConflict := scoreMetric(lower, metricLexicons[state.MetricCredibility])
	backlogSig, backlogConflict := scoreMetric(lower, metricLexicons[state.MetricBacklog])
	serviceSig, serviceConflict := scoreMetric(lower, metricLexicons[state.MetricService])

	penalty := 0.0
	for _, conflict := range []bool{moraleConflict, credConflict, backlogConflict, serviceConflict} {
		if conflict {
			penalty += 0.3
		}
	}
	if penalty > 1 {
		penalty = 1
	}

	out := state.EvaluatorOutput{
		Assessment: state.Assessment{
			Intent: dominantIntent(moraleSig, credSig, backlogSig, serviceSig),
			Target: dominantTarget(moraleSig, credSig, backlogSig, serviceSig),
			Tone:   tone(declaration),
		},
		Signals: state.SignalSet{
			Morale:          moraleSig,
			Credibility:     credSig,
			BacklogPressure: backlogSig,
			ServiceRisk:     serviceSig,
		},
		Event:              event,
		SeverityNote:       severityNote(event),
		Integration:        integration(lower, event),
		IncoherencePenalty: penalty,
		Policy:             policyCheck(lower),
		Rationale:          "keyword heuristic evaluation",
	}

	e.logger.Debug("declaration evaluated",
		zap.String("op", "evaluator.Evaluate"),
		zap.String("intent", out.Assessment.Intent),
		zap.Float64("penalty", penalty),
	)

	return out
}

// scoreMetric turns lexicon hits into one directional signal. Hits in both
// directions mark the declaration incoherent for that metric; the stronger
// side wins the direction.
func scoreMetric(lower string, lex lexicon) (state.Signal, bool) {
	ups := countHits(lower, lex.up)
	downs := countHits(lower, lex.down)

	conflict := ups > 0 && downs > 0
	switch {
	case ups == 0 && downs == 0:
		return state.Signal{Direction: state.DirectionNone}, false
	case ups >= downs:
		return state.Signal{Direction: state.DirectionUp, Strength: strengthFor(ups)}, conflict
	default:
		return state.Signal{Direction: state.DirectionDown, Strength: strengthFor(downs)}, conflict
	}
}

func countHits(lower string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			n++
		}
	}
	return n
}

func strengthFor(hits int) float64 {
	s := 0.4 + 0.2*float64(hits-1)
	if s > 1 {
		s = 1
	}
	return s
}

func dominantIntent(morale, cred, backlog, service state.Signal) string {
	switch dominantTarget(morale, cred, backlog, service) {
	case state.MetricMorale:
		return "workforce investment"
	case state.MetricCredibility:
		return "stakeholder positioning"
	case state.MetricBacklog:
		return "demand management"
	case state.MetricService:
		return "delivery risk posture"
	default:
		return "steady state"
	}
}

func dominantTarget(morale, cred, backlog, service state.Signal) string {
	ordered := []struct {
		metric string
		sig    state.Signal
	}{
		{state.MetricMorale, morale},
		{state.MetricCredibility, cred},
		{state.MetricBacklog, backlog},
		{state.MetricService, service},
	}
	best, bestStrength := "", 0.0
	for _, entry := range ordered {
		if entry.sig.Direction != state.DirectionNone && entry.sig.Strength > bestStrength {
			best, bestStrength = entry.metric, entry.sig.Strength
		}
	}
	return best
}

func tone(declaration string) string {
	switch {
	case strings.Contains(declaration, "!"):
		return "aggressive"
	case strings.Contains(strings.ToLower(declaration), "careful") || strings.Contains(strings.ToLower(declaration), "cautious"):
		return "cautious"
	default:
		return "measured"
	}
}

func severityNote(event state.RngEvent) string {
	switch event.Tier {
	case 0:
		return "near miss, no immediate effect"
	case 1:
		return "minor disruption"
	case 2:
		return "serious disruption"
	default:
		return "severe disruption"
	}
}

// integration classifies how the declaration interacts with the event:
// aligned when it addresses the event's category, undermined when it leans
// into the risk the event just stressed.
func integration(lower string, event state.RngEvent) state.Integration {
	if event.Tier == 0 {
		return state.Integration{Synergy: state.SynergyNeutral}
	}
	for _, w := range metricLexicons[state.MetricService].up {
		if strings.Contains(lower, w) && (event.Category == rng.CategoryOperations || event.Category == rng.CategorySupplyChain) {
			return state.Integration{
				Synergy:       state.SynergyUndermined,
				NarrativeHook: "pushing harder into the exact failure the quarter just produced",
			}
		}
	}
	for _, w := range categoryKeywords[event.Category] {
		if strings.Contains(lower, w) {
			return state.Integration{
				Synergy:       state.SynergyAligned,
				NarrativeHook: "the declaration speaks directly to " + event.Name,
			}
		}
	}
	return state.Integration{Synergy: state.SynergyNeutral}
}

func policyCheck(lower string) state.PolicyCheck {
	var violations []string
	for needle, violation := range policyViolations {
		if strings.Contains(lower, needle) {
			violations = append(violations, violation)
		}
	}
	if len(violations) == 0 {
		return state.PolicyCheck{}
	}
	// Map iteration order is not stable; keep the list deterministic.
	sort.Strings(violations)
	return state.PolicyCheck{OutOfBounds: true, Violations: violations}
}
