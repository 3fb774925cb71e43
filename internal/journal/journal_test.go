package journal

import (
	"math"
	"testing"

	"github.com/ChandlerShores/Green-Cut-Sim/internal/state"
)

func sampleState(turn int, cash float64) state.CompanyState {
	return state.CompanyState{
		Turn:        turn,
		Morale:      70,
		Credibility: 65,
		Service:     80,
		Backlog:     4000,
		Share:       12,
		Financials: &state.FinancialSnapshot{
			Balance:     state.BalanceSheet{Cash: cash},
			BalanceOK:   true,
			CashReconOK: true,
		},
	}
}

func sampleResult(turn int) state.TurnResult {
	return state.TurnResult{
		TurnNo:      turn,
		StateBefore: sampleState(turn-1, 1000000),
		StateAfter:  sampleState(turn, 900000),
		Declaration: "Hold course",
		Financials: state.FinancialSnapshot{
			PL:          state.ProfitAndLoss{Revenue: 1000000, NetIncome: 83333.33},
			Balance:     state.BalanceSheet{Cash: 900000},
			BalanceOK:   true,
			CashReconOK: true,
		},
	}
}

func TestWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(nil, dir, "test-run")
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	if err := w.Snapshot(sampleState(0, 1000000)); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	for turn := 1; turn <= 3; turn++ {
		if err := w.TurnResult(sampleResult(turn)); err != nil {
			t.Fatalf("TurnResult() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	entries, err := ReadRun(RunPath(dir, "test-run"))
	if err != nil {
		t.Fatalf("ReadRun() error = %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("entries = %d, want 4", len(entries))
	}

	head := entries[0]
	if head.Type != TypeSnapshot || head.TurnNo != 0 || head.RunID != "test-run" {
		t.Errorf("first entry = %+v, want snapshot at turn 0", head)
	}
	if head.State == nil || math.Abs(head.State.Cash()-1000000) > 1e-9 {
		t.Errorf("snapshot state not preserved: %+v", head.State)
	}

	for i, e := range entries[1:] {
		if e.Type != TypeTurnResult {
			t.Errorf("entry %d type = %s, want %s", i+1, e.Type, TypeTurnResult)
		}
		if e.TurnNo != i+1 {
			t.Errorf("entry %d turn = %d, want %d", i+1, e.TurnNo, i+1)
		}
		if e.Result == nil || e.Result.Declaration != "Hold course" {
			t.Errorf("entry %d result not preserved", i+1)
		}
	}
}

func TestReadRunMissingFile(t *testing.T) {
	if _, err := ReadRun(RunPath(t.TempDir(), "nope")); err == nil {
		t.Errorf("ReadRun() on missing file, want error")
	}
}

func TestSQLiteRecorder(t *testing.T) {
	dbPath := RunPath(t.TempDir(), "recorder") + ".db"
	r, err := NewSQLiteRecorder(nil, dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteRecorder() error = %v", err)
	}
	defer func() {
		_ = r.Close()
	}()

	if err := r.RecordSnapshot("run-1", sampleState(0, 1000000)); err != nil {
		t.Fatalf("RecordSnapshot() error = %v", err)
	}
	if err := r.RecordTurn("run-1", sampleResult(1)); err != nil {
		t.Fatalf("RecordTurn() error = %v", err)
	}

	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM turn_results WHERE run_id = ?`, "run-1").Scan(&count); err != nil {
		t.Fatalf("count query error = %v", err)
	}
	if count != 1 {
		t.Errorf("turn_results rows = %d, want 1", count)
	}
}
