// Package domain defines core data structures used throughout the scanner.
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TokenSnapshot is one observation of a token as reported by the listing feed.
// Immutable once fetched.
type TokenSnapshot struct {
	// Address uniquely identifies the token mint.
	Address string
	// Name human-readable token name.
	Name string
	// Symbol ticker symbol.
	Symbol string
	// CreatedAt token creation time reported by the feed.
	CreatedAt time.Time
	// Liquidity USD value locked in the token's pool.
	Liquidity decimal.Decimal
	// Price current USD price. Zero means the feed did not report one.
	Price decimal.Decimal
}

// AgeHours returns the token age at the given instant, in hours.
func (t *TokenSnapshot) AgeHours(now time.Time) decimal.Decimal {
	return decimal.NewFromFloat(now.Sub(t.CreatedAt).Hours())
}

// ShortAddress returns the address truncated for display.
func (t *TokenSnapshot) ShortAddress() string {
	if len(t.Address) > 20 {
		return t.Address[:20] + "..."
	}
	return t.Address
}

// String returns a human-readable representation.
func (t *TokenSnapshot) String() string {
	return fmt.Sprintf("%s (%s) liquidity=%s", t.Name, t.Symbol, t.Liquidity.StringFixed(0))
}

// ActivityStats market activity over the trailing 1h and 24h windows,
// reported by the enrichment source. May be absent for a snapshot.
type ActivityStats struct {
	TxnsH1    int             `json:"txns_h1"`
	TxnsH24   int             `json:"txns_h24"`
	VolumeH1  decimal.Decimal `json:"volume_h1"`
	VolumeH24 decimal.Decimal `json:"volume_h24"`
}
