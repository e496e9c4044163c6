// Package summary builds the weekly top-token digest from the alert log.
package summary

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/armpit-symphony/pump-me-fun/internal/domain"
)

// Window is how far back the digest aggregates alerts.
const Window = 7 * 24 * time.Hour

// Reporter decides when the weekly digest is due and formats it.
type Reporter struct {
	weekday time.Weekday
	hourUTC int
	topN    int
}

// NewReporter creates a reporter dispatching on the given UTC weekday/hour.
func NewReporter(weekday time.Weekday, hourUTC, topN int) *Reporter {
	return &Reporter{weekday: weekday, hourUTC: hourUTC, topN: topN}
}

// Due reports whether a digest should be sent now. lastSummaryDate is the
// UTC day key of the previous dispatch; matching today's key makes the
// check a no-op, so repeated calls within one day send at most one digest.
func (r *Reporter) Due(now time.Time, lastSummaryDate string) bool {
	utc := now.UTC()
	if utc.Weekday() != r.weekday || utc.Hour() != r.hourUTC {
		return false
	}
	return lastSummaryDate != domain.DayKey(now)
}

type tokenCount struct {
	address   string
	name      string
	symbol    string
	count     int
	liquidity string
}

// Build aggregates the trailing-week alert entries into a ranked digest.
// Returns an empty string when there is nothing to report.
func (r *Reporter) Build(entries []domain.AlertLogEntry) string {
	if len(entries) == 0 {
		return ""
	}

	byAddress := make(map[string]*tokenCount)
	for _, e := range entries {
		tc, ok := byAddress[e.Address]
		if !ok {
			tc = &tokenCount{address: e.Address, name: e.Name, symbol: e.Symbol}
			byAddress[e.Address] = tc
		}
		tc.count++
		// keep the liquidity from the most recent alert
		tc.liquidity = e.Liquidity.StringFixed(0)
	}

	ranked := make([]*tokenCount, 0, len(byAddress))
	for _, tc := range byAddress {
		ranked = append(ranked, tc)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].address < ranked[j].address
	})
	if len(ranked) > r.topN {
		ranked = ranked[:r.topN]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 *WEEKLY DIGEST* — %d alerts, %d tokens\n", len(entries), len(byAddress))
	for i, tc := range ranked {
		fmt.Fprintf(&b, "\n%d. *%s* (%s) — %d alerts, liq $%s", i+1, tc.name, tc.symbol, tc.count, tc.liquidity)
	}
	return b.String()
}
