// Package activity fronts the market-activity source with a short-lived
// read-through cache and a bounded parallel fan-out across tokens.
package activity

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/armpit-symphony/pump-me-fun/internal/domain"
)

// Source fetches activity stats for a single token. Absence is a valid,
// non-error outcome.
type Source interface {
	FetchActivity(ctx context.Context, address string) (*domain.ActivityStats, error)
}

// Fetcher is a read-through cache over a Source. Duplicate requests within
// the TTL, within or across overlapping cycles, hit the cache; expired
// entries are fetched fresh. Cached absence is cached too, so a token with
// no pairs is not re-queried every cycle.
type Fetcher struct {
	source      Source
	cache       *gocache.Cache
	concurrency int
	logger      *zap.Logger
}

// NewFetcher creates a fetcher with the given cache TTL and fan-out width.
func NewFetcher(source Source, ttl time.Duration, concurrency int, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		source:      source,
		cache:       gocache.New(ttl, 2*ttl),
		concurrency: concurrency,
		logger:      logger,
	}
}

// Fetch returns activity for one token, consulting the cache first.
func (f *Fetcher) Fetch(ctx context.Context, address string) (*domain.ActivityStats, error) {
	if cached, ok := f.cache.Get(address); ok {
		return cached.(*domain.ActivityStats), nil
	}

	stats, err := f.source.FetchActivity(ctx, address)
	if err != nil {
		return nil, err
	}

	f.cache.SetDefault(address, stats)
	return stats, nil
}

// FetchAll resolves activity for every address in parallel, bounded by the
// configured concurrency, and returns results keyed by address. A failed
// lookup is logged and yields absence for that token; completion order
// cannot influence the result shape, so analysis stays deterministic.
func (f *Fetcher) FetchAll(ctx context.Context, addresses []string) map[string]*domain.ActivityStats {
	results := make(map[string]*domain.ActivityStats, len(addresses))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for _, addr := range addresses {
		g.Go(func() error {
			stats, err := f.Fetch(gctx, addr)
			if err != nil {
				f.logger.Warn("activity lookup failed",
					zap.String("address", addr), zap.Error(err))
				return nil
			}
			if stats == nil {
				return nil
			}

			mu.Lock()
			results[addr] = stats
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait() // workers never return errors, failures degrade to absence

	return results
}
