package journal

import (
	"testing"

	"github.com/ChandlerShores/Green-Cut-Sim/internal/finance"
	"github.com/ChandlerShores/Green-Cut-Sim/internal/rng"
	"github.com/ChandlerShores/Green-Cut-Sim/internal/state"
	"github.com/ChandlerShores/Green-Cut-Sim/internal/turn"
)

func replayResolver() *turn.Resolver {
	baseline := finance.Drivers{
		UnitsSold:  10000,
		Price:      100,
		UnitCost:   60,
		Opex:       300000,
		Capex:      50000,
		DSODays:    30,
		DPODays:    30,
		DIODays:    45,
		PeriodDays: 30,
	}
	return turn.NewResolver(nil, state.DefaultCaps(), baseline, finance.DefaultParams(), finance.Policy{})
}

func replayEval(tier int) state.EvaluatorOutput {
	return state.EvaluatorOutput{
		Signals: state.SignalSet{
			Morale: state.Signal{Direction: state.DirectionUp, Strength: 0.5},
		},
		Event: state.RngEvent{
			Category: rng.CategoryMacro,
			Tier:     tier,
			Name:     "Input prices tick up",
			Decay:    rng.DecayFast,
			Impact:   state.EventImpact{CogsPct: 0.03, TailRisk: 0.02},
		},
	}
}

func journaledRun(t *testing.T) []Entry {
	t.Helper()

	resolver := replayResolver()
	current := sampleState(0, 1000000)

	dir := t.TempDir()
	w, err := NewWriter(nil, dir, "replay-run")
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if err := w.Snapshot(current); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		result := resolver.ResolveTurn(current, "Invest in retention", replayEval(1))
		if err := w.TurnResult(result); err != nil {
			t.Fatalf("TurnResult() error = %v", err)
		}
		current = result.StateAfter
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	entries, err := ReadRun(RunPath(dir, "replay-run"))
	if err != nil {
		t.Fatalf("ReadRun() error = %v", err)
	}
	return entries
}

func TestReplayCleanRun(t *testing.T) {
	entries := journaledRun(t)

	report, err := Replay(nil, entries, replayResolver())
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if !report.OK() {
		t.Errorf("Replay() mismatches = %v, want none", report.Mismatches)
	}
	if report.Turns != 3 {
		t.Errorf("Replay() turns = %d, want 3", report.Turns)
	}
	if report.RunID != "replay-run" {
		t.Errorf("Replay() run id = %s want replay-run", report.RunID)
	}
}

func TestReplayDetectsTampering(t *testing.T) {
	entries := journaledRun(t)
	entries[2].Result.StateAfter.Morale += 5

	report, err := Replay(nil, entries, replayResolver())
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if report.OK() {
		t.Errorf("Replay() accepted a tampered log")
	}
}

func TestReplayRejectsLogWithoutSnapshot(t *testing.T) {
	entries := journaledRun(t)
	if _, err := Replay(nil, entries[1:], replayResolver()); err == nil {
		t.Errorf("Replay() without snapshot head, want error")
	}
	if _, err := Replay(nil, nil, replayResolver()); err == nil {
		t.Errorf("Replay() on empty log, want error")
	}
}
