package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// IndicatorKind tags the reason an indicator fired.
type IndicatorKind string

const (
	// IndicatorPriceMomentum relative price rise since the previous observation.
	IndicatorPriceMomentum IndicatorKind = "price_momentum"
	// IndicatorLiquidityGrowth liquidity ratio since the previous observation.
	IndicatorLiquidityGrowth IndicatorKind = "liquidity_growth"
	// IndicatorWeekOldGrowth liquidity ratio on a token at least a week old.
	IndicatorWeekOldGrowth IndicatorKind = "weekold_growth"
	// IndicatorLiquidityGrowth24h liquidity ratio against the sample 24h ago.
	IndicatorLiquidityGrowth24h IndicatorKind = "liquidity_growth_24h"
	// IndicatorVolumeSpike 1h transaction count multiple over the previous observation.
	IndicatorVolumeSpike IndicatorKind = "volume_spike"
)

// Indicator is a tagged reason-for-alert produced by the analyzer. Transient,
// persisted only embedded in an alert log entry.
type Indicator struct {
	Kind      IndicatorKind   `json:"kind"`
	Magnitude decimal.Decimal `json:"magnitude"`
}

// String returns a human-readable representation.
func (i Indicator) String() string {
	switch i.Kind {
	case IndicatorPriceMomentum:
		return fmt.Sprintf("price +%s%%", i.Magnitude.Mul(decimal.NewFromInt(100)).StringFixed(1))
	case IndicatorLiquidityGrowth:
		return fmt.Sprintf("liquidity x%s", i.Magnitude.StringFixed(2))
	case IndicatorWeekOldGrowth:
		return fmt.Sprintf("week-old liquidity x%s", i.Magnitude.StringFixed(2))
	case IndicatorLiquidityGrowth24h:
		return fmt.Sprintf("24h liquidity x%s", i.Magnitude.StringFixed(2))
	case IndicatorVolumeSpike:
		return fmt.Sprintf("volume spike x%s", i.Magnitude.StringFixed(1))
	}
	return string(i.Kind)
}
