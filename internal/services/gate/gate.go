// Package gate decides whether a candidate alert may actually be dispatched,
// applying the re-alert cooldown and the per-day cap.
package gate

import (
	"time"

	"github.com/armpit-symphony/pump-me-fun/internal/domain"
)

// Gate applies the alert dedup policy. Cooldown and the daily cap are
// independent checks; only a successful dispatch mutates state, so a
// suppressed token stays retryable next cycle.
type Gate struct {
	realertWindow time.Duration
	maxPerDay     int
}

// New creates a gate. A zero realertWindow means a token may alert once ever.
func New(realertWindow time.Duration, maxPerDay int) *Gate {
	return &Gate{realertWindow: realertWindow, maxPerDay: maxPerDay}
}

// ShouldAlert reports whether the cooldown allows another alert now.
// lastAlert is the zero time when the token never alerted.
func (g *Gate) ShouldAlert(lastAlert time.Time, now time.Time) bool {
	if lastAlert.IsZero() {
		return true
	}
	if g.realertWindow == 0 {
		return false
	}
	return now.Sub(lastAlert) >= g.realertWindow
}

// DailyCapReached reports whether the token already hit the per-UTC-day cap.
// The counter resets implicitly when the stored day key belongs to a
// previous day.
func (g *Gate) DailyCapReached(counter domain.DailyCounter, now time.Time) bool {
	return counter.CountFor(now) >= g.maxPerDay
}

// RecordDispatch returns the counter advanced by one successful dispatch.
func (g *Gate) RecordDispatch(counter domain.DailyCounter, now time.Time) domain.DailyCounter {
	day := domain.DayKey(now)
	if counter.Day != day {
		counter = domain.DailyCounter{Day: day}
	}
	counter.Count++
	return counter
}
