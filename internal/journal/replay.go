package journal

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ChandlerShores/Green-Cut-Sim/internal/state"
)

// TurnRunner re-resolves one logged turn. Satisfied by turn.Resolver.
type TurnRunner interface {
	ResolveTurn(s state.CompanyState, declaration string, eval state.EvaluatorOutput) state.TurnResult
}

// ReplayReport summarizes a determinism check of one run log.
type ReplayReport struct {
	RunID      string
	Turns      int
	Mismatches []string
}

// OK reports whether every recomputed turn matched the log.
func (r ReplayReport) OK() bool {
	return len(r.Mismatches) == 0
}

// Replay re-runs every logged declaration through the resolver, starting
// from the logged snapshot, and compares each recomputed state against the
// recorded one. Because the core is a pure transform, any mismatch means
// either a tampered log or a behavior change in the engine.
func Replay(logger *zap.Logger, entries []Entry, runner TurnRunner) (ReplayReport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(entries) == 0 {
		return ReplayReport{}, fmt.Errorf("run log is empty")
	}
	first := entries[0]
	if first.Type != TypeSnapshot || first.State == nil {
		return ReplayReport{}, fmt.Errorf("run log does not start with a snapshot entry")
	}

	report := ReplayReport{RunID: first.RunID}
	current := first.State.Clone()

	for _, e := range entries[1:] {
		if e.Type != TypeTurnResult || e.Result == nil {
			continue
		}
		report.Turns++

		recomputed := runner.ResolveTurn(current, e.Result.Declaration, e.Result.Evaluation)
		if !statesEqual(recomputed.StateAfter, e.Result.StateAfter) {
			report.Mismatches = append(report.Mismatches,
				fmt.Sprintf("turn %d: recomputed state diverges from log", e.TurnNo))
		}
		current = e.Result.StateAfter.Clone()
	}

	logger.Info("replay finished",
		zap.String("op", "journal.Replay"),
		zap.String("run_id", report.RunID),
		zap.Int("turns", report.Turns),
		zap.Int("mismatches", len(report.Mismatches)),
	)
	return report, nil
}

// statesEqual compares via canonical JSON, which covers every field
// including the nested financial snapshot.
func statesEqual(a, b state.CompanyState) bool {
	aj, errA := json.Marshal(a)
	bj, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(aj) == string(bj)
}
