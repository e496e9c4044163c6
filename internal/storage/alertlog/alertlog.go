// Package alertlog persists dispatched alerts in an append-only WAL.
// Segment rotation bounds growth: the oldest segments fall off once the
// limit is reached, which keeps far more than the weekly summary window at
// any plausible alert rate.
package alertlog

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/armpit-symphony/pump-me-fun/internal/domain"
)

const (
	segmentLimit = 1000
	maxSegments  = 20

	alertKeyPrefix = "alert_"
)

// Store is a WAL-backed append-only alert log.
type Store struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewStore initializes the alert log in the given directory.
func NewStore(dir string) (*Store, error) {
	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "alert_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init alert log WAL")
	}

	return &Store{wal: wal}, nil
}

// Append writes one alert entry.
func (s *Store) Append(entry domain.AlertLogEntry) error {
	if s == nil || s.wal == nil {
		return errors.New("alert log is not initialized")
	}
	if entry.Address == "" {
		return errors.New("alert log entry address is required")
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "marshal alert log entry")
	}

	key := fmt.Sprintf("%s%s", alertKeyPrefix, entry.Address)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// EntriesSince returns all entries with a timestamp at or after the cutoff,
// in append order. Entries that fail to decode are skipped.
func (s *Store) EntriesSince(cutoff time.Time) ([]domain.AlertLogEntry, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("alert log is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []domain.AlertLogEntry
	current := s.wal.CurrentIndex()
	for idx := uint64(1); idx <= current; idx++ {
		_, payload, err := s.wal.Get(idx)
		if err != nil {
			// rotated-out or unreadable segment entry
			continue
		}

		var entry domain.AlertLogEntry
		if err := json.Unmarshal(payload, &entry); err != nil {
			continue
		}
		if entry.Timestamp.Before(cutoff) {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Close closes the underlying WAL.
func (s *Store) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("alert log is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
