// Package internal wires the scanner pipeline: feed fetch, per-token
// analysis, alert gating, dispatch and persistence.
package internal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/armpit-symphony/pump-me-fun/config"
	"github.com/armpit-symphony/pump-me-fun/internal/domain"
	"github.com/armpit-symphony/pump-me-fun/internal/services/activity"
	"github.com/armpit-symphony/pump-me-fun/internal/services/analyzer"
	"github.com/armpit-symphony/pump-me-fun/internal/services/gate"
	"github.com/armpit-symphony/pump-me-fun/internal/services/history"
	"github.com/armpit-symphony/pump-me-fun/internal/services/summary"
	"github.com/armpit-symphony/pump-me-fun/internal/storage/state"
	"github.com/armpit-symphony/pump-me-fun/pkg/retrier"
)

// FeedSource is the token-listing feed.
type FeedSource interface {
	FetchCandidates(ctx context.Context, limit int) ([]domain.TokenSnapshot, error)
}

// Notifier is the notification sink.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// AlertLog is the append-only record of dispatched alerts.
type AlertLog interface {
	Append(entry domain.AlertLogEntry) error
	EntriesSince(cutoff time.Time) ([]domain.AlertLogEntry, error)
}

// Scanner runs the poll loop. One cycle is strictly sequential: prune,
// fetch, enrich, analyze, gate, dispatch, persist. Failures inside a cycle
// are isolated per token and never abort the batch.
type Scanner struct {
	cfg      config.Config
	logger   *zap.Logger
	feed     FeedSource
	activity *activity.Fetcher
	notifier Notifier
	store    *state.Store
	alertLog AlertLog

	state    *state.State
	tracker  *history.Tracker
	engine   *analyzer.Engine
	gate     *gate.Gate
	reporter *summary.Reporter
	retrier  *retrier.Retrier

	// now is injected so tests can drive the clock.
	now func() time.Time
}

// NewScanner loads persisted state and assembles the pipeline.
func NewScanner(cfg config.Config, logger *zap.Logger, feed FeedSource, fetcher *activity.Fetcher,
	notifier Notifier, store *state.Store, log AlertLog) *Scanner {

	st := store.Load()
	tracker := history.NewTracker(st.History, cfg.HistoryMaxAge)

	return &Scanner{
		cfg:      cfg,
		logger:   logger,
		feed:     feed,
		activity: fetcher,
		notifier: notifier,
		store:    store,
		alertLog: log,
		state:    st,
		tracker:  tracker,
		engine:   analyzer.NewEngine(cfg, tracker, logger),
		gate:     gate.New(cfg.RealertWindow, cfg.MaxAlertsPerTokenDay),
		reporter: summary.NewReporter(cfg.SummaryWeekday, cfg.SummaryHourUTC, cfg.SummaryTopN),
		retrier:  retrier.New(),
		now:      time.Now,
	}
}

// Run polls until the context is cancelled. The sleep between cycles is
// the only suspension point, so cancellation takes effect between cycles.
func (s *Scanner) Run(ctx context.Context) error {
	s.logger.Info("scanner starting",
		zap.String("min_liquidity", s.cfg.MinLiquidity.StringFixed(0)),
		zap.String("max_age_hours", s.cfg.MaxAgeHours.String()),
		zap.Duration("poll_interval", s.cfg.PollInterval),
		zap.Int("tracked_tokens", s.tracker.Len()))

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	s.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scanner stopping")
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// runCycle executes one Polling pass. It always returns to Idle, whatever
// fails inside.
func (s *Scanner) runCycle(ctx context.Context) {
	now := s.now()

	if pruned := s.tracker.Prune(now); pruned > 0 {
		s.logger.Info("pruned stale history records", zap.Int("removed", pruned))
	}

	snapshots, err := s.feed.FetchCandidates(ctx, s.cfg.FetchLimit)
	if err != nil {
		// degrade to an empty batch for this cycle
		s.logger.Error("feed fetch failed", zap.Error(err))
		snapshots = nil
	}

	addresses := make([]string, 0, len(snapshots))
	for _, snap := range snapshots {
		addresses = append(addresses, snap.Address)
	}
	activities := s.activity.FetchAll(ctx, addresses)

	alerts := 0
	for _, snap := range snapshots {
		if s.processToken(ctx, snap, activities[snap.Address], now) {
			alerts++
		}
	}

	s.maybeSendSummary(ctx, now)

	if err := s.store.Save(s.state); err != nil {
		// in-memory state stays authoritative, next cycle retries the write
		s.logger.Error("failed to persist state", zap.Error(err))
	}

	s.logger.Info("cycle complete",
		zap.Int("candidates", len(snapshots)),
		zap.Int("alerts", alerts),
		zap.Int("tracked_tokens", s.tracker.Len()))
}

// processToken runs one token through analysis, gating and dispatch.
// Returns true when an alert went out.
func (s *Scanner) processToken(ctx context.Context, snap domain.TokenSnapshot, stats *domain.ActivityStats, now time.Time) bool {
	indicators := s.engine.Analyze(snap, stats, now)
	if len(indicators) == 0 {
		return false
	}

	logger := s.logger.With(zap.String("address", snap.Address), zap.String("symbol", snap.Symbol))

	if !s.gate.ShouldAlert(s.state.Seen[snap.Address], now) {
		logger.Debug("alert suppressed by cooldown")
		return false
	}

	counter := s.state.Counters[snap.Address]
	if s.gate.DailyCapReached(counter, now) {
		logger.Info("alert suppressed by daily cap", zap.Int("count", counter.Count))
		return false
	}

	message := formatAlert(snap, indicators, now)
	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		return s.notifier.Send(ctx, message)
	})
	if err != nil {
		// dispatch failed after retries; state untouched so next cycle retries
		logger.Error("alert dispatch failed", zap.Error(err))
		return false
	}

	s.state.Seen[snap.Address] = now
	s.state.Counters[snap.Address] = s.gate.RecordDispatch(counter, now)

	if err := s.alertLog.Append(domain.AlertLogEntry{
		Timestamp:  now,
		Address:    snap.Address,
		Name:       snap.Name,
		Symbol:     snap.Symbol,
		Liquidity:  snap.Liquidity,
		Indicators: indicators,
	}); err != nil {
		logger.Error("failed to append alert log entry", zap.Error(err))
	}

	logger.Info("alert dispatched",
		zap.String("liquidity", snap.Liquidity.StringFixed(0)),
		zap.Int("indicators", len(indicators)))

	return true
}

func (s *Scanner) maybeSendSummary(ctx context.Context, now time.Time) {
	if !s.reporter.Due(now, s.state.Summary.LastSummaryDate) {
		return
	}

	entries, err := s.alertLog.EntriesSince(now.Add(-summary.Window))
	if err != nil {
		s.logger.Error("failed to read alert log for summary", zap.Error(err))
		return
	}

	digest := s.reporter.Build(entries)
	if digest == "" {
		// quiet week: still mark the day so the check stays idempotent
		s.state.Summary.LastSummaryDate = domain.DayKey(now)
		s.logger.Info("no alerts in summary window, skipping digest")
		return
	}

	err = s.retrier.Do(ctx, func(ctx context.Context) error {
		return s.notifier.Send(ctx, digest)
	})
	if err != nil {
		s.logger.Error("summary dispatch failed", zap.Error(err))
		return
	}

	s.state.Summary.LastSummaryDate = domain.DayKey(now)
	s.logger.Info("weekly summary dispatched", zap.Int("entries", len(entries)))
}

func formatAlert(snap domain.TokenSnapshot, indicators []domain.Indicator, now time.Time) string {
	reasons := make([]string, 0, len(indicators))
	for _, ind := range indicators {
		reasons = append(reasons, ind.String())
	}

	return fmt.Sprintf(`💎 *PUMP.FUN GEM FOUND*

*%s* (%s)
`+"`%s`"+`

💧 Liquidity: $%s
⏰ %sh old
📈 %s

🔗 https://pump.fun/%s`,
		snap.Name, snap.Symbol, snap.ShortAddress(),
		snap.Liquidity.StringFixed(0),
		snap.AgeHours(now).StringFixed(1),
		strings.Join(reasons, ", "),
		snap.Address)
}
