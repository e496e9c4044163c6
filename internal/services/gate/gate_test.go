package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/armpit-symphony/pump-me-fun/internal/domain"
)

func TestShouldAlertCooldown(t *testing.T) {
	g := New(6*time.Hour, 10)
	alertedAt := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	assert.True(t, g.ShouldAlert(time.Time{}, alertedAt), "never alerted")

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"immediately after", alertedAt.Add(time.Second), false},
		{"just inside window", alertedAt.Add(6*time.Hour - time.Second), false},
		{"exactly at window", alertedAt.Add(6 * time.Hour), true},
		{"past window", alertedAt.Add(7 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.ShouldAlert(alertedAt, tt.now))
		})
	}
}

func TestZeroWindowMeansAlertOnceEver(t *testing.T) {
	g := New(0, 10)
	alertedAt := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	assert.True(t, g.ShouldAlert(time.Time{}, alertedAt))
	assert.False(t, g.ShouldAlert(alertedAt, alertedAt.Add(1000*time.Hour)))
}

func TestDailyCap(t *testing.T) {
	g := New(0, 10)
	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	counter := domain.DailyCounter{}
	for i := 0; i < 10; i++ {
		assert.False(t, g.DailyCapReached(counter, now), "alert %d should pass", i+1)
		counter = g.RecordDispatch(counter, now)
	}

	assert.True(t, g.DailyCapReached(counter, now), "11th alert on the same day is suppressed")

	nextDay := now.Add(24 * time.Hour)
	assert.False(t, g.DailyCapReached(counter, nextDay), "cap resets at UTC day boundary")

	counter = g.RecordDispatch(counter, nextDay)
	assert.Equal(t, 1, counter.Count)
	assert.Equal(t, domain.DayKey(nextDay), counter.Day)
}

func TestDailyCapResetsExactlyAtDayBoundary(t *testing.T) {
	g := New(0, 1)
	endOfDay := time.Date(2026, 8, 20, 23, 59, 59, 0, time.UTC)

	counter := g.RecordDispatch(domain.DailyCounter{}, endOfDay)
	assert.True(t, g.DailyCapReached(counter, endOfDay))

	startOfNext := time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)
	assert.False(t, g.DailyCapReached(counter, startOfNext))
}
