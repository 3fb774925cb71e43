package rng

import (
	"math"
	"reflect"
	"testing"

	"github.com/ChandlerShores/Green-Cut-Sim/internal/state"
	"github.com/ChandlerShores/Green-Cut-Sim/pkg/constants"
)

func baseState() state.CompanyState {
	return state.CompanyState{
		Turn:        3,
		Morale:      72,
		Credibility: 65,
		Service:     80,
		Backlog:     4200,
		Share:       12.5,
		Flags: state.Flags{
			Pressure: map[string]float64{
				"supply": 0.2,
				"labor":  0.1,
			},
		},
		Financials: &state.FinancialSnapshot{
			Balance: state.BalanceSheet{Cash: 800000},
		},
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	g := NewGenerator(nil)
	s := baseState()

	first := g.Generate(s, 4)
	for i := 0; i < 5; i++ {
		again := g.Generate(s.Clone(), 4)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Generate() not reproducible: call %d gave %+v, want %+v", i, again, first)
		}
	}
}

func TestGenerateIndependentOfMapInsertionOrder(t *testing.T) {
	g := NewGenerator(nil)

	a := baseState()
	b := baseState()
	b.Flags.Pressure = map[string]float64{}
	// Insert in reverse order; canonical serialization must not care.
	b.Flags.Pressure["labor"] = 0.1
	b.Flags.Pressure["supply"] = 0.2

	if canonicalState(a) != canonicalState(b) {
		t.Fatalf("canonicalState() differs for equal states:\n%s\n%s", canonicalState(a), canonicalState(b))
	}
	if !reflect.DeepEqual(g.Generate(a, 4), g.Generate(b, 4)) {
		t.Errorf("Generate() differs for equal states")
	}
}

func TestGenerateVariesAcrossTurns(t *testing.T) {
	g := NewGenerator(nil)
	s := baseState()

	rolls := make(map[int]struct{})
	for turn := 1; turn <= 20; turn++ {
		event := g.Generate(s, turn)
		if event.Roll < 1 || event.Roll > 100 {
			t.Fatalf("Generate() turn %d roll = %d, want [1,100]", turn, event.Roll)
		}
		rolls[event.Roll] = struct{}{}
	}
	if len(rolls) < 2 {
		t.Errorf("Generate() produced identical rolls across 20 turns")
	}
}

func TestTierForRoll(t *testing.T) {
	tests := []struct {
		name     string
		adjusted int
		expected int
	}{
		{name: "Minimum roll", adjusted: 1, expected: 0},
		{name: "Top of tier 0", adjusted: 40, expected: 0},
		{name: "Bottom of tier 1", adjusted: 41, expected: 1},
		{name: "Top of tier 1", adjusted: 80, expected: 1},
		{name: "Bottom of tier 2", adjusted: 81, expected: 2},
		{name: "Top of tier 2", adjusted: 96, expected: 2},
		{name: "Bottom of tier 3", adjusted: 97, expected: 3},
		{name: "Maximum roll", adjusted: 100, expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tierForRoll(tt.adjusted); got != tt.expected {
				t.Errorf("tierForRoll(%d) = %d, want %d", tt.adjusted, got, tt.expected)
			}
		})
	}
}

func TestShockPressure(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*state.CompanyState)
		expected float64
	}{
		{
			name:     "No pressure and healthy state",
			mutate:   func(s *state.CompanyState) { s.Flags.Pressure = nil },
			expected: 0,
		},
		{
			name: "Continuous pressures scale by twenty",
			mutate: func(s *state.CompanyState) {
				s.Flags.Pressure = map[string]float64{"supply": 0.3}
			},
			expected: 6,
		},
		{
			name: "Low morale bonus",
			mutate: func(s *state.CompanyState) {
				s.Flags.Pressure = nil
				s.Morale = constants.MoraleLowThreshold - 1
			},
			expected: constants.MoraleLowBonus,
		},
		{
			name: "High backlog bonus",
			mutate: func(s *state.CompanyState) {
				s.Flags.Pressure = nil
				s.Backlog = constants.BacklogHighThreshold + 1
			},
			expected: constants.BacklogHighBonus,
		},
		{
			name: "Tight cash bonus",
			mutate: func(s *state.CompanyState) {
				s.Flags.Pressure = nil
				s.Financials.Balance.Cash = constants.LowCashThreshold - 1
			},
			expected: constants.CashTightBonus,
		},
		{
			name: "No cash bonus without a financial snapshot",
			mutate: func(s *state.CompanyState) {
				s.Flags.Pressure = nil
				s.Financials = nil
			},
			expected: 0,
		},
		{
			name: "Clamped at the maximum",
			mutate: func(s *state.CompanyState) {
				s.Flags.Pressure = map[string]float64{"supply": 1, "labor": 1, "cyber": 1}
				s.Morale = 10
				s.Backlog = 20000
				s.Financials.Balance.Cash = 0
			},
			expected: constants.ShockPressureMax,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := baseState()
			tt.mutate(&s)
			if got := ShockPressure(s); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("ShockPressure() = %f, want %f", got, tt.expected)
			}
		})
	}
}

func TestTierZeroEventsAreNearMisses(t *testing.T) {
	for _, category := range Categories {
		eff := effectTable[category][0]
		if eff.Name == "" {
			t.Errorf("category %s tier 0 has no name", category)
		}
		want := state.EventImpact{TailRisk: 0.02}
		if eff.Impact != want {
			t.Errorf("category %s tier 0 impact = %+v, want tail-risk-only near miss", category, eff.Impact)
		}
	}
}

func TestEffectTablesCoverEveryCategoryAndTier(t *testing.T) {
	for _, table := range []map[string][tierCount]effect{effectTable, rewardTable} {
		for _, category := range Categories {
			effects, ok := table[category]
			if !ok {
				t.Fatalf("category %s missing from table", category)
			}
			for tier, eff := range effects {
				if eff.Name == "" {
					t.Errorf("category %s tier %d has no name", category, tier)
				}
				if eff.Decay != DecayFast && eff.Decay != DecaySlow {
					t.Errorf("category %s tier %d decay = %q", category, tier, eff.Decay)
				}
			}
		}
	}
}

func TestHints(t *testing.T) {
	s := baseState()
	s.Morale = 40
	s.Credibility = 30
	s.Backlog = 9000
	s.Financials.Balance.Cash = 100000
	s.Flags.SupplyFragile = true
	s.Flags.LaborTense = true

	expected := []string{
		"morale_low", "credibility_low", "backlog_high",
		"cash_tight", "supply_fragile", "labor_tense",
	}
	if got := hints(s); !reflect.DeepEqual(got, expected) {
		t.Errorf("hints() = %v, want %v", got, expected)
	}

	healthy := baseState()
	if got := hints(healthy); len(got) != 0 {
		t.Errorf("hints() on healthy state = %v, want none", got)
	}
}

func TestRewardDrawIsRecordedSeparately(t *testing.T) {
	g := NewGenerator(nil)
	s := baseState()

	event := g.Generate(s, 7)
	reward := g.Reward(s, 7)

	if reward.Roll != event.RewardRoll {
		t.Errorf("Reward() roll = %d, want shock's recorded reward roll %d", reward.Roll, event.RewardRoll)
	}
	if reward.Roll < 1 || reward.Roll > 100 {
		t.Errorf("Reward() roll = %d, want [1,100]", reward.Roll)
	}
	if _, ok := rewardTable[reward.Category]; !ok {
		t.Errorf("Reward() category %q not in reward table", reward.Category)
	}
}
