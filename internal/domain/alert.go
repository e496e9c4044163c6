package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayKeyLayout formats a UTC calendar day used for daily alert counters.
const DayKeyLayout = "2006-01-02"

// DayKey returns the UTC calendar-day key for the given instant.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayKeyLayout)
}

// DailyCounter counts alerts dispatched for one token on one UTC day.
// The count is only meaningful while Day matches the current day key.
type DailyCounter struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// CountFor returns the counter value for the given instant, zero if the
// stored day key belongs to another day.
func (c DailyCounter) CountFor(now time.Time) int {
	if c.Day != DayKey(now) {
		return 0
	}
	return c.Count
}

// AlertLogEntry is an immutable append-only record of one dispatched alert.
type AlertLogEntry struct {
	Timestamp  time.Time       `json:"timestamp"`
	Address    string          `json:"address"`
	Name       string          `json:"name"`
	Symbol     string          `json:"symbol"`
	Liquidity  decimal.Decimal `json:"liquidity"`
	Indicators []Indicator     `json:"indicators"`
}
