// Package run owns simulation run lifecycle: creation, lookup, and turn
// advancement. The core engines have no notion of a persisted run and no
// locking; the single-writer-per-run precondition is enforced here with one
// mutex per run.
package run

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ChandlerShores/Green-Cut-Sim/internal/config"
	"github.com/ChandlerShores/Green-Cut-Sim/internal/evaluator"
	"github.com/ChandlerShores/Green-Cut-Sim/internal/journal"
	"github.com/ChandlerShores/Green-Cut-Sim/internal/rng"
	"github.com/ChandlerShores/Green-Cut-Sim/internal/state"
	"github.com/ChandlerShores/Green-Cut-Sim/internal/turn"
)

// ErrNotFound is returned for unknown run IDs.
var ErrNotFound = fmt.Errorf("run not found")

// Run is one live simulation.
type Run struct {
	ID      string
	mu      sync.Mutex
	current state.CompanyState
	history []state.TurnResult
	writer  *journal.Writer
}

// Manager creates and advances runs.
type Manager struct {
	logger    *zap.Logger
	cfg       *config.Configuration
	generator *rng.Generator
	evaluator *evaluator.Evaluator
	resolver  *turn.Resolver
	recorder  journal.Recorder

	mu   sync.RWMutex
	runs map[string]*Run
}

// NewManager wires the core engines against one configuration. A nil
// recorder defaults to the no-op recorder.
func NewManager(logger *zap.Logger, cfg *config.Configuration, recorder journal.Recorder) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = journal.NoopRecorder{}
	}
	return &Manager{
		logger:    logger,
		cfg:       cfg,
		generator: rng.NewGenerator(logger),
		evaluator: evaluator.New(logger),
		resolver: turn.NewResolver(logger, cfg.Caps,
			cfg.Finance.Baseline.Drivers(), cfg.Finance.Params, cfg.Finance.Policy),
		recorder: recorder,
		runs:     make(map[string]*Run),
	}
}

// Resolver exposes the shared turn resolver (used by replay tooling).
func (m *Manager) Resolver() *turn.Resolver {
	return m.resolver
}

// Create starts a new run from the configured initial state and logs its
// snapshot entry.
func (m *Manager) Create() (string, state.CompanyState, error) {
	id := uuid.NewString()
	initial := m.cfg.InitialState()

	writer, err := journal.NewWriter(m.logger, m.cfg.Journal.Dir, id)
	if err != nil {
		return "", state.CompanyState{}, err
	}
	if err := writer.Snapshot(initial); err != nil {
		_ = writer.Close()
		return "", state.CompanyState{}, err
	}
	if err := m.recorder.RecordSnapshot(id, initial); err != nil {
		m.logger.Warn("recorder snapshot failed",
			zap.String("op", "run.Create"),
			zap.String("run_id", id),
			zap.Error(err),
		)
	}

	r := &Run{ID: id, current: initial, writer: writer}
	m.mu.Lock()
	m.runs[id] = r
	m.mu.Unlock()

	m.logger.Info("run created",
		zap.String("op", "run.Create"),
		zap.String("run_id", id),
	)
	return id, initial.Clone(), nil
}

// State returns the current snapshot of a run.
func (m *Manager) State(id string) (state.CompanyState, error) {
	r, err := m.lookup(id)
	if err != nil {
		return state.CompanyState{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current.Clone(), nil
}

// History returns the resolved turns of a run in order.
func (m *Manager) History(id string) ([]state.TurnResult, error) {
	r, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]state.TurnResult(nil), r.history...), nil
}

// Advance resolves one turn for a run under its writer lock: generate the
// event, evaluate the declaration, run the core transform, persist, and
// swap in the new state as the authoritative continuation.
func (m *Manager) Advance(id, declaration string) (state.TurnResult, error) {
	r, err := m.lookup(id)
	if err != nil {
		return state.TurnResult{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	turnIndex := r.current.Turn + 1
	event := m.generator.Generate(r.current, turnIndex)
	eval := m.evaluator.Evaluate(declaration, event)

	result := m.resolver.ResolveTurn(r.current, declaration, eval)

	if err := r.writer.TurnResult(result); err != nil {
		return state.TurnResult{}, fmt.Errorf("failed to journal turn %d: %w", result.TurnNo, err)
	}
	if err := m.recorder.RecordTurn(id, result); err != nil {
		m.logger.Warn("recorder turn failed",
			zap.String("op", "run.Advance"),
			zap.String("run_id", id),
			zap.Int("turn_no", result.TurnNo),
			zap.Error(err),
		)
	}

	r.current = result.StateAfter.Clone()
	r.history = append(r.history, result)
	return result, nil
}

// Close releases every run's journal writer and the recorder.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var firstErr error
	for _, r := range m.runs {
		if err := r.writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := m.recorder.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (m *Manager) lookup(id string) (*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, nil
}
