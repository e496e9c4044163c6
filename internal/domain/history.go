package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sample is one timestamped (price, liquidity) observation retained for
// trend computation.
type Sample struct {
	Timestamp time.Time       `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
	Liquidity decimal.Decimal `json:"liquidity"`
}

// HistoryRecord is the persisted per-token observation history. Samples are
// ordered by non-decreasing timestamp and bounded both by age and by count.
type HistoryRecord struct {
	// Price last known USD price. Zero if never observed.
	Price decimal.Decimal `json:"price"`
	// Liquidity last known USD liquidity.
	Liquidity decimal.Decimal `json:"liquidity"`
	// Activity last known market activity, nil if never observed.
	Activity *ActivityStats `json:"activity,omitempty"`
	// UpdatedAt time of the most recent observation.
	UpdatedAt time.Time `json:"updated_at"`
	// Samples bounded observation series, oldest first.
	Samples []Sample `json:"samples"`
}

// SampleAtOrBefore returns the most recent sample with a timestamp at or
// before target, and whether one exists.
func (r *HistoryRecord) SampleAtOrBefore(target time.Time) (Sample, bool) {
	// samples are ordered, walk from the newest end
	for i := len(r.Samples) - 1; i >= 0; i-- {
		if !r.Samples[i].Timestamp.After(target) {
			return r.Samples[i], true
		}
	}
	return Sample{}, false
}
