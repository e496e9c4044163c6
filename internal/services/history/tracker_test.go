package history

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armpit-symphony/pump-me-fun/internal/domain"
)

const testMaxAge = 200 * time.Hour

func snapshot(addr string, liquidity, price int64) domain.TokenSnapshot {
	return domain.TokenSnapshot{
		Address:   addr,
		Liquidity: decimal.NewFromInt(liquidity),
		Price:     decimal.NewFromInt(price),
	}
}

func TestUpdateCreatesRecordOnFirstObservation(t *testing.T) {
	tr := NewTracker(nil, testMaxAge)
	now := time.Now().UTC()

	rec := tr.Update("addr1", snapshot("addr1", 50_000, 2), nil, now)

	require.NotNil(t, rec)
	require.Len(t, rec.Samples, 1)
	assert.True(t, rec.Liquidity.Equal(decimal.NewFromInt(50_000)))
	assert.True(t, rec.Price.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, now, rec.UpdatedAt)
	assert.Equal(t, 1, tr.Len())
}

func TestUpdateFallsBackToLastKnownValues(t *testing.T) {
	tr := NewTracker(nil, testMaxAge)
	now := time.Now().UTC()

	tr.Update("addr1", snapshot("addr1", 50_000, 2), &domain.ActivityStats{TxnsH1: 12}, now)

	// second observation is missing price and activity
	snap := snapshot("addr1", 60_000, 0)
	rec := tr.Update("addr1", snap, nil, now.Add(time.Minute))

	assert.True(t, rec.Price.Equal(decimal.NewFromInt(2)), "price should fall back to last known")
	require.NotNil(t, rec.Activity)
	assert.Equal(t, 12, rec.Activity.TxnsH1)
	assert.True(t, rec.Liquidity.Equal(decimal.NewFromInt(60_000)))
}

func TestUpdateTrimsSamplesOutsideRetentionWindow(t *testing.T) {
	tr := NewTracker(nil, testMaxAge)
	start := time.Now().UTC().Add(-8 * 24 * time.Hour)

	tr.Update("addr1", snapshot("addr1", 10_000, 1), nil, start)
	now := time.Now().UTC()
	rec := tr.Update("addr1", snapshot("addr1", 20_000, 1), nil, now)

	require.Len(t, rec.Samples, 1, "8-day-old sample must be evicted")
	assert.Equal(t, now, rec.Samples[0].Timestamp)
}

func TestUpdateCapsSampleCount(t *testing.T) {
	tr := NewTracker(nil, testMaxAge)
	base := time.Now().UTC().Add(-6 * 24 * time.Hour)

	for i := 0; i < MaxSamples+50; i++ {
		tr.Update("addr1", snapshot("addr1", int64(i), 1), nil, base.Add(time.Duration(i)*time.Minute))
	}

	rec := tr.Get("addr1")
	require.Len(t, rec.Samples, MaxSamples)
	// the newest samples are the ones kept
	assert.True(t, rec.Samples[len(rec.Samples)-1].Liquidity.Equal(decimal.NewFromInt(MaxSamples+49)))

	for i := 1; i < len(rec.Samples); i++ {
		assert.False(t, rec.Samples[i].Timestamp.Before(rec.Samples[i-1].Timestamp),
			"samples must be ordered by non-decreasing timestamp")
	}
}

func TestSampleAtOrBefore(t *testing.T) {
	tr := NewTracker(nil, testMaxAge)
	now := time.Now().UTC()

	tr.Update("addr1", snapshot("addr1", 100, 1), nil, now.Add(-30*time.Hour))
	tr.Update("addr1", snapshot("addr1", 200, 1), nil, now.Add(-25*time.Hour))
	tr.Update("addr1", snapshot("addr1", 300, 1), nil, now.Add(-1*time.Hour))

	s, ok := tr.SampleAtOrBefore("addr1", now.Add(-24*time.Hour))
	require.True(t, ok)
	assert.True(t, s.Liquidity.Equal(decimal.NewFromInt(200)), "most recent sample at or before target")

	_, ok = tr.SampleAtOrBefore("addr1", now.Add(-31*time.Hour))
	assert.False(t, ok, "no sample that far back")

	_, ok = tr.SampleAtOrBefore("unknown", now)
	assert.False(t, ok)
}

func TestSampleAtExactTimestamp(t *testing.T) {
	tr := NewTracker(nil, testMaxAge)
	now := time.Now().UTC()
	target := now.Add(-24 * time.Hour)

	tr.Update("addr1", snapshot("addr1", 100, 1), nil, target)

	s, ok := tr.SampleAtOrBefore("addr1", target)
	require.True(t, ok)
	assert.Equal(t, target, s.Timestamp)
}

func TestPruneRemovesStaleRecords(t *testing.T) {
	tr := NewTracker(nil, testMaxAge)
	now := time.Now().UTC()

	tr.Update("stale", snapshot("stale", 100, 1), nil, now.Add(-201*time.Hour))
	tr.Update("fresh", snapshot("fresh", 100, 1), nil, now.Add(-199*time.Hour))

	removed := tr.Prune(now)

	assert.Equal(t, 1, removed)
	assert.Nil(t, tr.Get("stale"))
	assert.NotNil(t, tr.Get("fresh"))
}
