package journal

import (
	"database/sql"
	"fmt"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/ChandlerShores/Green-Cut-Sim/internal/state"
)

// Recorder mirrors the run log into a queryable store. The JSONL journal
// stays the source of truth for replay; recorders exist for dashboards and
// post-hoc analysis.
type Recorder interface {
	RecordSnapshot(runID string, s state.CompanyState) error
	RecordTurn(runID string, result state.TurnResult) error
	Close() error
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) RecordSnapshot(string, state.CompanyState) error { return nil }
func (NoopRecorder) RecordTurn(string, state.TurnResult) error       { return nil }
func (NoopRecorder) Close() error                                    { return nil }

// SQLiteRecorder persists turn summaries to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs
// migrations.
func NewSQLiteRecorder(logger *zap.Logger, dbPath string) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so reporting reads do not block the writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened",
		zap.String("op", "journal.NewSQLiteRecorder"),
		zap.String("path", dbPath),
	)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS run_snapshots (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			morale      REAL,
			credibility REAL,
			service     REAL,
			backlog     REAL,
			share       REAL,
			cash        REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_snapshots ON run_snapshots(run_id)`,

		`CREATE TABLE IF NOT EXISTS turn_results (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL,
			turn_no        INTEGER NOT NULL,
			event_name     TEXT,
			event_category TEXT,
			event_tier     INTEGER,
			revenue        REAL,
			cogs           REAL,
			ebitda         REAL,
			net_income     REAL,
			cash           REAL,
			debt           REAL,
			morale         REAL,
			credibility    REAL,
			service        REAL,
			backlog        REAL,
			share          REAL,
			balance_ok     INTEGER,
			cash_recon_ok  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_turn_results ON turn_results(run_id, turn_no)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSnapshot(runID string, s state.CompanyState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO run_snapshots
		(run_id, morale, credibility, service, backlog, share, cash)
		VALUES (?,?,?,?,?,?,?)`,
		runID, s.Morale, s.Credibility, s.Service, s.Backlog, s.Share, s.Cash(),
	)
	return err
}

func (r *SQLiteRecorder) RecordTurn(runID string, result state.TurnResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	after := result.StateAfter
	fin := result.Financials
	_, err := r.db.Exec(`INSERT INTO turn_results
		(run_id, turn_no, event_name, event_category, event_tier,
		 revenue, cogs, ebitda, net_income, cash, debt,
		 morale, credibility, service, backlog, share,
		 balance_ok, cash_recon_ok)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		runID, result.TurnNo,
		result.Evaluation.Event.Name, result.Evaluation.Event.Category, result.Evaluation.Event.Tier,
		fin.PL.Revenue, fin.PL.COGS, fin.PL.EBITDA, fin.PL.NetIncome,
		fin.Balance.Cash, fin.Balance.Debt,
		after.Morale, after.Credibility, after.Service, after.Backlog, after.Share,
		boolToInt(fin.BalanceOK), boolToInt(fin.CashReconOK),
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder", zap.String("op", "journal.SQLiteRecorder.Close"))
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
