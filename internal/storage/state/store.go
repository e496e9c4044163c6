// Package state persists the scanner's four state tables as JSON files.
// Each table loads independently and a corrupt or missing file degrades to
// an empty default instead of halting startup. Writes go through a temp
// file and rename so a crash never leaves a torn table behind.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/armpit-symphony/pump-me-fun/internal/domain"
)

const (
	seenFile     = "seen.json"
	countersFile = "counters.json"
	historyFile  = "history.json"
	summaryFile  = "summary.json"
)

// State is everything the scanner persists between cycles, apart from the
// append-only alert log.
type State struct {
	// Seen maps token address to the time of the last successful alert.
	Seen map[string]time.Time
	// Counters maps token address to its per-UTC-day alert counter.
	Counters map[string]domain.DailyCounter
	// History maps token address to its observation history.
	History map[string]*domain.HistoryRecord
	// Summary singleton weekly-summary state.
	Summary SummaryState
}

// SummaryState records when the weekly digest was last dispatched.
type SummaryState struct {
	LastSummaryDate string `json:"last_summary_date"`
}

// Store reads and writes the state tables under a single directory.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore creates the state directory if needed.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create state dir")
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Load reads all tables. Individual table failures are logged and replaced
// with empty defaults; Load itself never fails.
func (s *Store) Load() *State {
	st := &State{
		Seen:     make(map[string]time.Time),
		Counters: make(map[string]domain.DailyCounter),
		History:  make(map[string]*domain.HistoryRecord),
	}

	s.loadSeen(st)
	s.loadTable(countersFile, &st.Counters)
	s.loadTable(historyFile, &st.History)
	s.loadTable(summaryFile, &st.Summary)

	if st.Counters == nil {
		st.Counters = make(map[string]domain.DailyCounter)
	}
	if st.History == nil {
		st.History = make(map[string]*domain.HistoryRecord)
	}

	return st
}

// Save writes all tables atomically, one file at a time. Called once per
// poll cycle after every decision for the cycle is final.
func (s *Store) Save(st *State) error {
	if err := s.saveTable(seenFile, st.Seen); err != nil {
		return err
	}
	if err := s.saveTable(countersFile, st.Counters); err != nil {
		return err
	}
	if err := s.saveTable(historyFile, st.History); err != nil {
		return err
	}
	return s.saveTable(summaryFile, st.Summary)
}

// loadSeen reads the seen table, converting the legacy list-of-addresses
// shape to the current map shape. Migrated entries get the load time as
// their alert timestamp, so cooldowns start fresh rather than instantly
// expired.
func (s *Store) loadSeen(st *State) {
	raw, err := os.ReadFile(filepath.Join(s.dir, seenFile))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to read state table, starting empty",
				zap.String("table", seenFile), zap.Error(err))
		}
		return
	}
	if len(raw) == 0 {
		return
	}

	seen := make(map[string]time.Time)
	if err := json.Unmarshal(raw, &seen); err == nil {
		st.Seen = seen
		return
	}

	var legacy []string
	if err := json.Unmarshal(raw, &legacy); err != nil {
		s.logger.Warn("corrupt state table, starting empty",
			zap.String("table", seenFile), zap.Error(err))
		return
	}

	now := time.Now().UTC()
	for _, addr := range legacy {
		st.Seen[addr] = now
	}
	s.logger.Info("migrated legacy seen-token list",
		zap.Int("addresses", len(legacy)))
}

func (s *Store) loadTable(name string, dst any) {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to read state table, starting empty",
				zap.String("table", name), zap.Error(err))
		}
		return
	}
	if len(raw) == 0 {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Warn("corrupt state table, starting empty",
			zap.String("table", name), zap.Error(err))
	}
}

func (s *Store) saveTable(name string, table any) error {
	payload, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", name)
	}

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrapf(err, "write %s temp file", name)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, "persist %s", name)
	}

	return nil
}
