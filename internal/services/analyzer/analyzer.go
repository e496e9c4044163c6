// Package analyzer computes the momentum indicators for a token snapshot
// against its recorded history.
package analyzer

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/armpit-symphony/pump-me-fun/config"
	"github.com/armpit-symphony/pump-me-fun/internal/domain"
	"github.com/armpit-symphony/pump-me-fun/internal/services/history"
)

const weekOldAgeHours = 168

// Engine evaluates the indicator rule set. Rules 2-4 and 6 are additive
// signals; the 24h growth rule is a hard gate that discards the candidate
// outright when it fails, even one with strong momentum elsewhere. That is
// the product rule, do not "fix" it here.
type Engine struct {
	cfg     config.Config
	tracker *history.Tracker
	logger  *zap.Logger
}

// NewEngine creates an indicator engine over the given tracker.
func NewEngine(cfg config.Config, tracker *history.Tracker, logger *zap.Logger) *Engine {
	return &Engine{cfg: cfg, tracker: tracker, logger: logger}
}

// Analyze evaluates the rules for one snapshot and updates the token's
// history. History is updated for every observed snapshot, whether or not
// indicators fire: that is what makes momentum detectable on the next poll.
// A missing or zero prior silently skips the affected rule.
func (e *Engine) Analyze(snap domain.TokenSnapshot, activity *domain.ActivityStats, now time.Time) []domain.Indicator {
	prior := e.tracker.Get(snap.Address)
	defer e.tracker.Update(snap.Address, snap, activity, now)

	age := snap.AgeHours(now)
	if !e.eligible(snap, age) {
		return nil
	}
	if prior == nil {
		// first sighting, no baseline to compare against
		return nil
	}

	var indicators []domain.Indicator

	if change, ok := priceChange(snap.Price, prior.Price); ok && change.GreaterThanOrEqual(e.cfg.MinPriceMomentum) {
		indicators = append(indicators, domain.Indicator{Kind: domain.IndicatorPriceMomentum, Magnitude: change})
	}

	liqRatio := decimal.Zero
	if prior.Liquidity.IsPositive() {
		liqRatio = snap.Liquidity.Div(prior.Liquidity)
		if liqRatio.GreaterThanOrEqual(e.cfg.MinLiquidityGrowth) {
			indicators = append(indicators, domain.Indicator{Kind: domain.IndicatorLiquidityGrowth, Magnitude: liqRatio})
		}
		if age.GreaterThanOrEqual(decimal.NewFromInt(weekOldAgeHours)) && liqRatio.GreaterThanOrEqual(e.cfg.WeekOldLiqMultiplier) {
			indicators = append(indicators, domain.Indicator{Kind: domain.IndicatorWeekOldGrowth, Magnitude: liqRatio})
		}
	}

	if age.GreaterThanOrEqual(decimal.NewFromInt(24)) {
		if old, ok := e.tracker.SampleAtOrBefore(snap.Address, now.Add(-24*time.Hour)); ok && old.Liquidity.IsPositive() {
			ratio24 := snap.Liquidity.Div(old.Liquidity)
			if ratio24.LessThan(e.cfg.MinLiqGrowth24h) {
				// hard gate: insufficient 24h growth rejects the token for
				// this poll regardless of other signals
				e.logger.Debug("rejected by 24h growth gate",
					zap.String("address", snap.Address),
					zap.String("ratio", ratio24.StringFixed(3)))
				return nil
			}
			indicators = append(indicators, domain.Indicator{Kind: domain.IndicatorLiquidityGrowth24h, Magnitude: ratio24})
		}
	}

	if spike, ok := txnSpike(activity, prior.Activity, e.cfg.MinTxnsForSpike); ok && spike.GreaterThanOrEqual(e.cfg.MinVolumeSpike) {
		indicators = append(indicators, domain.Indicator{Kind: domain.IndicatorVolumeSpike, Magnitude: spike})
	}

	return indicators
}

func (e *Engine) eligible(snap domain.TokenSnapshot, age decimal.Decimal) bool {
	if age.LessThan(e.cfg.MinAgeHours) || age.GreaterThan(e.cfg.MaxAgeHours) {
		return false
	}
	if snap.Liquidity.LessThan(e.cfg.MinLiquidity) {
		return false
	}
	if !e.cfg.MaxLiquidity.IsZero() && snap.Liquidity.GreaterThan(e.cfg.MaxLiquidity) {
		return false
	}
	return true
}

func priceChange(current, prior decimal.Decimal) (decimal.Decimal, bool) {
	if !current.IsPositive() || !prior.IsPositive() {
		return decimal.Zero, false
	}
	return current.Sub(prior).Div(prior), true
}

func txnSpike(current, prior *domain.ActivityStats, noiseFloor int) (decimal.Decimal, bool) {
	if current == nil || prior == nil {
		return decimal.Zero, false
	}
	// the noise floor keeps near-dead tokens from producing huge multiples
	if prior.TxnsH1 < noiseFloor {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(int64(current.TxnsH1)).Div(decimal.NewFromInt(int64(prior.TxnsH1))), true
}
