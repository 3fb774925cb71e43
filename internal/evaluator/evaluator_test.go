package evaluator

import (
	"math"
	"reflect"
	"testing"

	"github.com/ChandlerShores/Green-Cut-Sim/internal/rng"
	"github.com/ChandlerShores/Green-Cut-Sim/internal/state"
)

func tierEvent(category string, tier int) state.RngEvent {
	return state.RngEvent{Category: category, Tier: tier, Name: "test event"}
}

func TestEvaluateSignals(t *testing.T) {
	e := New(nil)

	tests := []struct {
		name        string
		declaration string
		direction   state.Direction
		strength    float64
		metric      func(state.SignalSet) state.Signal
	}{
		{
			name:        "Single morale keyword",
			declaration: "Announce a retention bonus",
			direction:   state.DirectionUp,
			strength:    0.6, // two up hits: retention, bonus
			metric:      func(s state.SignalSet) state.Signal { return s.Morale },
		},
		{
			name:        "Morale down on layoffs",
			declaration: "Downsize the regional offices",
			direction:   state.DirectionDown,
			strength:    0.4,
			metric:      func(s state.SignalSet) state.Signal { return s.Morale },
		},
		{
			name:        "Credibility up on transparency",
			declaration: "Be transparent with guidance and deliver on time",
			direction:   state.DirectionUp,
			strength:    1.0, // four up hits saturate
			metric:      func(s state.SignalSet) state.Signal { return s.Credibility },
		},
		{
			name:        "Backlog relief from capacity",
			declaration: "Add a second shift to clear the backlog",
			direction:   state.DirectionDown,
			strength:    0.6,
			metric:      func(s state.SignalSet) state.Signal { return s.BacklogPressure },
		},
		{
			name:        "Service risk from rushing",
			declaration: "Rush the release and ship early",
			direction:   state.DirectionUp,
			strength:    0.6,
			metric:      func(s state.SignalSet) state.Signal { return s.ServiceRisk },
		},
		{
			name:        "Silence yields no signal",
			declaration: "Continue as planned",
			direction:   state.DirectionNone,
			strength:    0,
			metric:      func(s state.SignalSet) state.Signal { return s.Morale },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := e.Evaluate(tt.declaration, tierEvent(rng.CategoryMacro, 0))
			sig := tt.metric(out.Signals)
			if sig.Direction != tt.direction {
				t.Errorf("direction = %s, want %s", sig.Direction, tt.direction)
			}
			if math.Abs(sig.Strength-tt.strength) > 1e-9 {
				t.Errorf("strength = %f, want %f", sig.Strength, tt.strength)
			}
		})
	}
}

func TestEvaluateIncoherencePenalty(t *testing.T) {
	e := New(nil)

	tests := []struct {
		name        string
		declaration string
		expected    float64
	}{
		{
			name:        "Coherent declaration",
			declaration: "Announce a retention bonus",
			expected:    0,
		},
		{
			name:        "Conflicting morale directions",
			declaration: "Celebrate the team while we downsize",
			expected:    0.3,
		},
		{
			name:        "Conflicts on two metrics",
			declaration: "Celebrate the team while we downsize, rush qa backlog clearance with a quality program",
			expected:    0.6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := e.Evaluate(tt.declaration, tierEvent(rng.CategoryMacro, 0))
			if math.Abs(out.IncoherencePenalty-tt.expected) > 1e-9 {
				t.Errorf("penalty = %f, want %f", out.IncoherencePenalty, tt.expected)
			}
		})
	}
}

func TestEvaluateIntegration(t *testing.T) {
	e := New(nil)

	tests := []struct {
		name        string
		declaration string
		event       state.RngEvent
		synergy     string
	}{
		{
			name:        "Addressing the event category aligns",
			declaration: "Qualify a second supplier immediately",
			event:       tierEvent(rng.CategorySupplyChain, 2),
			synergy:     state.SynergyAligned,
		},
		{
			name:        "Leaning into operational risk undermines",
			declaration: "Rush production and defer maintenance",
			event:       tierEvent(rng.CategoryOperations, 2),
			synergy:     state.SynergyUndermined,
		},
		{
			name:        "Unrelated declaration is neutral",
			declaration: "Refresh the brand guidelines",
			event:       tierEvent(rng.CategoryCyber, 2),
			synergy:     state.SynergyNeutral,
		},
		{
			name:        "Near miss is always neutral",
			declaration: "Qualify a second supplier immediately",
			event:       tierEvent(rng.CategorySupplyChain, 0),
			synergy:     state.SynergyNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := e.Evaluate(tt.declaration, tt.event)
			if out.Integration.Synergy != tt.synergy {
				t.Errorf("synergy = %s, want %s", out.Integration.Synergy, tt.synergy)
			}
		})
	}
}

func TestEvaluatePolicyCheck(t *testing.T) {
	e := New(nil)

	clean := e.Evaluate("Invest in the quality program", tierEvent(rng.CategoryMacro, 0))
	if clean.Policy.OutOfBounds {
		t.Errorf("clean declaration flagged: %v", clean.Policy.Violations)
	}

	dirty := e.Evaluate("Bribe the inspector and falsify the filings", tierEvent(rng.CategoryMacro, 0))
	if !dirty.Policy.OutOfBounds {
		t.Fatalf("violations not flagged")
	}
	expected := []string{"proposes bribery", "proposes falsifying records"}
	if !reflect.DeepEqual(dirty.Policy.Violations, expected) {
		t.Errorf("violations = %v, want %v", dirty.Policy.Violations, expected)
	}
}

func TestEvaluateSeverityNote(t *testing.T) {
	e := New(nil)
	notes := map[int]string{
		0: "near miss, no immediate effect",
		1: "minor disruption",
		2: "serious disruption",
		3: "severe disruption",
	}
	for tier, want := range notes {
		out := e.Evaluate("Continue as planned", tierEvent(rng.CategoryMacro, tier))
		if out.SeverityNote != want {
			t.Errorf("tier %d note = %q, want %q", tier, out.SeverityNote, want)
		}
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	e := New(nil)
	event := tierEvent(rng.CategoryTalent, 1)
	first := e.Evaluate("Raise compensation for the production team", event)
	for i := 0; i < 5; i++ {
		again := e.Evaluate("Raise compensation for the production team", event)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Evaluate() not reproducible")
		}
	}
}
