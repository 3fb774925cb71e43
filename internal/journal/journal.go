// Package journal persists simulation runs as an append-only log: one JSON
// object per line, a snapshot entry at turn 0 and a turn_result entry for
// every subsequent turn. The core never writes this log; it only produces
// the payloads serialized into it.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ChandlerShores/Green-Cut-Sim/internal/state"
)

// Entry kinds.
const (
	TypeSnapshot   = "snapshot"
	TypeTurnResult = "turn_result"
)

// Entry is one line of the run log.
type Entry struct {
	Timestamp time.Time           `json:"timestamp"`
	RunID     string              `json:"runId"`
	TurnNo    int                 `json:"turn_no"`
	Type      string              `json:"type"`
	State     *state.CompanyState `json:"state,omitempty"`
	Result    *state.TurnResult   `json:"result,omitempty"`
}

// Writer appends entries for one run to a JSONL file.
type Writer struct {
	mu     sync.Mutex
	f      *os.File
	enc    *json.Encoder
	runID  string
	logger *zap.Logger
}

// NewWriter opens (or creates) the log file for a run under dir.
func NewWriter(logger *zap.Logger, dir, runID string) (*Writer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal dir %s: %w", dir, err)
	}
	path := RunPath(dir, runID)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log %s: %w", path, err)
	}
	return &Writer{f: f, enc: json.NewEncoder(f), runID: runID, logger: logger}, nil
}

// RunPath returns the JSONL path for a run.
func RunPath(dir, runID string) string {
	return filepath.Join(dir, runID+".jsonl")
}

// Snapshot appends the run-initialization entry.
func (w *Writer) Snapshot(s state.CompanyState) error {
	return w.append(Entry{
		Timestamp: time.Now().UTC(),
		RunID:     w.runID,
		TurnNo:    0,
		Type:      TypeSnapshot,
		State:     &s,
	})
}

// TurnResult appends one resolved turn.
func (w *Writer) TurnResult(result state.TurnResult) error {
	return w.append(Entry{
		Timestamp: time.Now().UTC(),
		RunID:     w.runID,
		TurnNo:    result.TurnNo,
		Type:      TypeTurnResult,
		Result:    &result,
	})
}

func (w *Writer) append(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(e); err != nil {
		return fmt.Errorf("failed to append journal entry: %w", err)
	}
	w.logger.Debug("journal entry appended",
		zap.String("op", "journal.append"),
		zap.String("run_id", e.RunID),
		zap.Int("turn_no", e.TurnNo),
		zap.String("type", e.Type),
	)
	return nil
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}

// ReadRun loads every entry of a run log in order.
func ReadRun(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("failed to decode journal line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan run log: %w", err)
	}
	return entries, nil
}
