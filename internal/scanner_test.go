package internal

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/armpit-symphony/pump-me-fun/config"
	"github.com/armpit-symphony/pump-me-fun/internal/domain"
	"github.com/armpit-symphony/pump-me-fun/internal/services/activity"
	"github.com/armpit-symphony/pump-me-fun/internal/storage/alertlog"
	"github.com/armpit-symphony/pump-me-fun/internal/storage/state"
	"github.com/armpit-symphony/pump-me-fun/pkg/retrier"
)

type stubFeed struct {
	batches [][]domain.TokenSnapshot
	err     error
}

func (f *stubFeed) FetchCandidates(context.Context, int) ([]domain.TokenSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.batches) == 0 {
		return nil, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch, nil
}

type stubActivitySource struct{}

func (stubActivitySource) FetchActivity(context.Context, string) (*domain.ActivityStats, error) {
	return nil, nil
}

type stubNotifier struct {
	messages []string
	fail     bool
}

func (n *stubNotifier) Send(_ context.Context, message string) error {
	if n.fail {
		return errors.New("telegram unavailable")
	}
	n.messages = append(n.messages, message)
	return nil
}

func testScannerConfig() config.Config {
	conf := config.Default()
	conf.MinLiquidity = decimal.NewFromInt(10_000)
	conf.ActivityCacheTTL = time.Minute
	return conf
}

func newTestScanner(t *testing.T, conf config.Config, feed FeedSource, notifier Notifier) *Scanner {
	t.Helper()

	store, err := state.NewStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	log, err := alertlog.NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		log.Close()
	})

	fetcher := activity.NewFetcher(stubActivitySource{}, conf.ActivityCacheTTL, 2, zap.NewNop())
	s := NewScanner(conf, zap.NewNop(), feed, fetcher, notifier, store, log)
	s.retrier = retrier.New(retrier.WithInitialInterval(time.Millisecond), retrier.WithMaxRetries(1))
	return s
}

func gem(addr string, ageHours float64, liquidity int64, now time.Time) domain.TokenSnapshot {
	return domain.TokenSnapshot{
		Address:   addr,
		Name:      "Gem",
		Symbol:    "GEM",
		CreatedAt: now.Add(-time.Duration(ageHours * float64(time.Hour))),
		Liquidity: decimal.NewFromInt(liquidity),
	}
}

func TestTwoPollLiquidityGrowthScenario(t *testing.T) {
	start := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	feed := &stubFeed{batches: [][]domain.TokenSnapshot{
		{gem("addr1", 10, 50_000, start)},
		{gem("addr1", 10, 80_000, start)},
	}}
	notifier := &stubNotifier{}

	s := newTestScanner(t, testScannerConfig(), feed, notifier)

	now := start
	s.now = func() time.Time { return now }
	ctx := context.Background()

	// first sight: history created, no alert possible
	s.runCycle(ctx)
	assert.Empty(t, notifier.messages)
	require.NotNil(t, s.tracker.Get("addr1"))
	assert.True(t, s.state.Seen["addr1"].IsZero())

	// second poll: liquidity 50k -> 80k, ratio 1.6 fires
	now = start.Add(5 * time.Minute)
	s.runCycle(ctx)

	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "Gem")
	assert.Contains(t, notifier.messages[0], "liquidity x1.60")
	assert.Equal(t, now, s.state.Seen["addr1"])
	assert.Equal(t, 1, s.state.Counters["addr1"].Count)

	entries, err := s.alertLog.EntriesSince(start)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "addr1", entries[0].Address)
}

func TestCooldownSuppressesRepeatAlert(t *testing.T) {
	start := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	feed := &stubFeed{batches: [][]domain.TokenSnapshot{
		{gem("addr1", 10, 50_000, start)},
		{gem("addr1", 10, 80_000, start)},
		{gem("addr1", 10, 130_000, start)},
	}}
	notifier := &stubNotifier{}

	s := newTestScanner(t, testScannerConfig(), feed, notifier)

	now := start
	s.now = func() time.Time { return now }
	ctx := context.Background()

	s.runCycle(ctx)
	now = start.Add(5 * time.Minute)
	s.runCycle(ctx)
	require.Len(t, notifier.messages, 1)

	// growth fires again 5 minutes later but the 6h cooldown holds
	now = start.Add(10 * time.Minute)
	s.runCycle(ctx)
	assert.Len(t, notifier.messages, 1)
}

func TestFeedFailureDegradesToEmptyCycle(t *testing.T) {
	feed := &stubFeed{err: errors.New("boom")}
	notifier := &stubNotifier{}

	s := newTestScanner(t, testScannerConfig(), feed, notifier)

	s.runCycle(context.Background())

	assert.Empty(t, notifier.messages)
	assert.Equal(t, 0, s.tracker.Len())
}

func TestDispatchFailureKeepsStateRetryable(t *testing.T) {
	start := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	feed := &stubFeed{batches: [][]domain.TokenSnapshot{
		{gem("addr1", 10, 50_000, start)},
		{gem("addr1", 10, 80_000, start)},
	}}
	notifier := &stubNotifier{fail: true}

	s := newTestScanner(t, testScannerConfig(), feed, notifier)

	now := start
	s.now = func() time.Time { return now }
	ctx := context.Background()

	s.runCycle(ctx)
	now = start.Add(5 * time.Minute)
	s.runCycle(ctx)

	assert.True(t, s.state.Seen["addr1"].IsZero(), "failed dispatch must not start the cooldown")
	assert.Equal(t, 0, s.state.Counters["addr1"].Count)
}

func TestWeeklySummaryIdempotentPerDay(t *testing.T) {
	// 2026-08-23 is a Sunday
	sundayNoon := time.Date(2026, 8, 23, 12, 5, 0, 0, time.UTC)

	feed := &stubFeed{}
	notifier := &stubNotifier{}

	s := newTestScanner(t, testScannerConfig(), feed, notifier)
	require.NoError(t, s.alertLog.Append(domain.AlertLogEntry{
		Timestamp: sundayNoon.Add(-24 * time.Hour),
		Address:   "addr1",
		Name:      "Gem",
		Symbol:    "GEM",
		Liquidity: decimal.NewFromInt(250_000),
	}))

	now := sundayNoon
	s.now = func() time.Time { return now }
	ctx := context.Background()

	s.runCycle(ctx)
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "WEEKLY DIGEST")
	assert.Equal(t, "2026-08-23", s.state.Summary.LastSummaryDate)

	// second check the same day is a no-op
	now = sundayNoon.Add(10 * time.Minute)
	s.runCycle(ctx)
	assert.Len(t, notifier.messages, 1)
}

func TestFormatAlertIncludesLink(t *testing.T) {
	now := time.Now().UTC()
	snap := gem("addr1", 10, 250_000, now)

	msg := formatAlert(snap, []domain.Indicator{
		{Kind: domain.IndicatorLiquidityGrowth, Magnitude: decimal.NewFromFloat(1.6)},
	}, now)

	assert.Contains(t, msg, "https://pump.fun/addr1")
	assert.Contains(t, msg, "250000")
	assert.Contains(t, msg, "10.0h old")
}
