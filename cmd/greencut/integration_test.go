package main

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ChandlerShores/Green-Cut-Sim/internal/config"
	"github.com/ChandlerShores/Green-Cut-Sim/internal/journal"
	"github.com/ChandlerShores/Green-Cut-Sim/internal/run"
)

var integrationDeclarations = []string{
	"Offer a retention bonus to hold the line on morale.",
	"Add a second shift to clear the backlog before quarter end.",
	"Spend $250k on preventative maintenance across the plant.",
	"Publish honest guidance to investors about the slowdown.",
	"Negotiate a backup supplier contract to de-risk the supply chain.",
}

func newIntegrationManager(t *testing.T) *run.Manager {
	t.Helper()
	conf := config.Default()
	conf.Journal.Dir = t.TempDir()
	manager := run.NewManager(zap.NewNop(), conf, journal.NoopRecorder{})
	t.Cleanup(func() {
		_ = manager.Close()
	})
	return manager
}

// TestFullRunBaseline drives the default configuration through a complete
// run exactly as the turn command does and checks the engine-level
// guarantees hold at every step.
func TestFullRunBaseline(t *testing.T) {
	manager := newIntegrationManager(t)

	id, initial, err := manager.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if initial.Turn != 0 {
		t.Errorf("expected starting state at turn 0, got %d", initial.Turn)
	}

	for i, declaration := range integrationDeclarations {
		result, err := manager.Advance(id, declaration)
		if err != nil {
			t.Fatalf("Advance() turn %d error = %v", i+1, err)
		}
		if result.TurnNo != i+1 {
			t.Errorf("turn %d: result.TurnNo = %d", i+1, result.TurnNo)
		}
		if result.Declaration != declaration {
			t.Errorf("turn %d: declaration not echoed back", i+1)
		}
		if !result.Financials.BalanceOK {
			t.Errorf("turn %d: balance sheet identity broken", i+1)
		}
		if result.StateAfter.Morale < 0 || result.StateAfter.Morale > 100 {
			t.Errorf("turn %d: morale %.2f out of bounds", i+1, result.StateAfter.Morale)
		}
	}

	history, err := manager.History(id)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != len(integrationDeclarations) {
		t.Errorf("expected %d turns of history, got %d", len(integrationDeclarations), len(history))
	}
}

// TestFullRunIsReproducible resolves the same declarations against two
// independent managers and requires identical closing states.
func TestFullRunIsReproducible(t *testing.T) {
	first := newIntegrationManager(t)
	second := newIntegrationManager(t)

	idA, _, err := first.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	idB, _, err := second.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	for _, declaration := range integrationDeclarations {
		resultA, err := first.Advance(idA, declaration)
		if err != nil {
			t.Fatalf("Advance() error = %v", err)
		}
		resultB, err := second.Advance(idB, declaration)
		if err != nil {
			t.Fatalf("Advance() error = %v", err)
		}

		if resultA.StateAfter.Morale != resultB.StateAfter.Morale ||
			resultA.StateAfter.Credibility != resultB.StateAfter.Credibility ||
			resultA.StateAfter.Backlog != resultB.StateAfter.Backlog {
			t.Errorf("turn %d: independent runs diverged", resultA.TurnNo)
		}
		if resultA.Evaluation.Event.Roll != resultB.Evaluation.Event.Roll {
			t.Errorf("turn %d: event rolls diverged (%d vs %d)",
				resultA.TurnNo, resultA.Evaluation.Event.Roll, resultB.Evaluation.Event.Roll)
		}
		if resultA.Financials.Balance.Cash != resultB.Financials.Balance.Cash {
			t.Errorf("turn %d: closing cash diverged", resultA.TurnNo)
		}
	}
}

// TestTurnResolutionPerformance checks that resolving a long run stays
// well within interactive latency.
func TestTurnResolutionPerformance(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping performance test in short mode.")
	}

	manager := newIntegrationManager(t)

	id, _, err := manager.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	const turns = 100
	start := time.Now()
	for i := 0; i < turns; i++ {
		declaration := integrationDeclarations[i%len(integrationDeclarations)]
		if _, err := manager.Advance(id, declaration); err != nil {
			t.Fatalf("Advance() turn %d error = %v", i+1, err)
		}
	}
	elapsed := time.Since(start)

	t.Logf("resolved %d turns in %v (%v per turn)", turns, elapsed, elapsed/turns)
	if elapsed > 10*time.Second {
		t.Errorf("resolving %d turns took %v, expected well under 10s", turns, elapsed)
	}
}

func BenchmarkAdvance(b *testing.B) {
	conf := config.Default()
	conf.Journal.Dir = b.TempDir()
	manager := run.NewManager(zap.NewNop(), conf, journal.NoopRecorder{})
	defer func() {
		_ = manager.Close()
	}()

	id, _, err := manager.Create()
	if err != nil {
		b.Fatalf("Create() error = %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := manager.Advance(id, integrationDeclarations[i%len(integrationDeclarations)]); err != nil {
			b.Fatalf("Advance() error = %v", err)
		}
	}
}
