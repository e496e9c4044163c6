// Package history maintains the bounded per-token observation series that
// momentum detection compares against.
package history

import (
	"time"

	"github.com/armpit-symphony/pump-me-fun/internal/domain"
)

const (
	// RetentionWindow maximum age of an individual sample.
	RetentionWindow = 7 * 24 * time.Hour
	// MaxSamples hard cap on samples kept per token.
	MaxSamples = 500
)

// Tracker owns the in-memory history records for the duration of a run.
// Records are loaded from the persistent store at startup and written back
// once per poll cycle; the tracker itself is not safe for concurrent use.
type Tracker struct {
	records map[string]*domain.HistoryRecord
	maxAge  time.Duration
}

// NewTracker creates a tracker over the given records. records may be nil.
func NewTracker(records map[string]*domain.HistoryRecord, maxAge time.Duration) *Tracker {
	if records == nil {
		records = make(map[string]*domain.HistoryRecord)
	}
	return &Tracker{records: records, maxAge: maxAge}
}

// Get returns the record for the address, nil if the token was never observed.
func (t *Tracker) Get(address string) *domain.HistoryRecord {
	return t.records[address]
}

// Records exposes the underlying map for persistence at end of cycle.
func (t *Tracker) Records() map[string]*domain.HistoryRecord {
	return t.records
}

// Len returns the number of tracked tokens.
func (t *Tracker) Len() int {
	return len(t.records)
}

// Update appends an observation for the token and returns its record.
// A zero price or nil activity falls back to the last known value, so a
// partially failed upstream call degrades instead of erasing state.
// Samples older than the retention window are evicted and the newest
// MaxSamples are kept.
func (t *Tracker) Update(address string, snap domain.TokenSnapshot, activity *domain.ActivityStats, now time.Time) *domain.HistoryRecord {
	rec, ok := t.records[address]
	if !ok {
		rec = &domain.HistoryRecord{}
		t.records[address] = rec
	}

	price := snap.Price
	if price.IsZero() {
		price = rec.Price
	}

	rec.Samples = append(rec.Samples, domain.Sample{
		Timestamp: now,
		Price:     price,
		Liquidity: snap.Liquidity,
	})
	rec.Samples = trim(rec.Samples, now)

	rec.Price = price
	rec.Liquidity = snap.Liquidity
	if activity != nil {
		rec.Activity = activity
	}
	rec.UpdatedAt = now

	return rec
}

// SampleAtOrBefore returns the most recent sample for the address with a
// timestamp at or before target. The second return is false when the token
// has no such sample, i.e. it was not tracked that far back.
func (t *Tracker) SampleAtOrBefore(address string, target time.Time) (domain.Sample, bool) {
	rec, ok := t.records[address]
	if !ok {
		return domain.Sample{}, false
	}
	return rec.SampleAtOrBefore(target)
}

// Prune drops whole records whose last update is older than the staleness
// threshold. Called once per poll cycle, before analysis.
func (t *Tracker) Prune(now time.Time) int {
	cutoff := now.Add(-t.maxAge)
	removed := 0
	for addr, rec := range t.records {
		if rec.UpdatedAt.Before(cutoff) {
			delete(t.records, addr)
			removed++
		}
	}
	return removed
}

func trim(samples []domain.Sample, now time.Time) []domain.Sample {
	cutoff := now.Add(-RetentionWindow)
	start := 0
	for start < len(samples) && samples[start].Timestamp.Before(cutoff) {
		start++
	}
	samples = samples[start:]
	if len(samples) > MaxSamples {
		samples = samples[len(samples)-MaxSamples:]
	}
	return samples
}
