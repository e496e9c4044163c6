package activity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/armpit-symphony/pump-me-fun/internal/domain"
)

type stubSource struct {
	mu    sync.Mutex
	calls map[string]int
	stats map[string]*domain.ActivityStats
	fail  map[string]bool
}

func newStubSource() *stubSource {
	return &stubSource{
		calls: make(map[string]int),
		stats: make(map[string]*domain.ActivityStats),
		fail:  make(map[string]bool),
	}
}

func (s *stubSource) FetchActivity(_ context.Context, address string) (*domain.ActivityStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[address]++
	if s.fail[address] {
		return nil, errors.New("upstream down")
	}
	return s.stats[address], nil
}

func (s *stubSource) callCount(address string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[address]
}

func TestFetchCachesWithinTTL(t *testing.T) {
	source := newStubSource()
	source.stats["addr1"] = &domain.ActivityStats{TxnsH1: 7}

	f := NewFetcher(source, time.Minute, 2, zap.NewNop())
	ctx := context.Background()

	first, err := f.Fetch(ctx, "addr1")
	require.NoError(t, err)
	second, err := f.Fetch(ctx, "addr1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, source.callCount("addr1"), "second fetch must hit the cache")
}

func TestFetchCachesAbsence(t *testing.T) {
	source := newStubSource()

	f := NewFetcher(source, time.Minute, 2, zap.NewNop())
	ctx := context.Background()

	stats, err := f.Fetch(ctx, "addr1")
	require.NoError(t, err)
	assert.Nil(t, stats)

	_, err = f.Fetch(ctx, "addr1")
	require.NoError(t, err)
	assert.Equal(t, 1, source.callCount("addr1"), "absence is cached too")
}

func TestFetchAllMergesByAddress(t *testing.T) {
	source := newStubSource()
	source.stats["addr1"] = &domain.ActivityStats{TxnsH1: 1}
	source.stats["addr2"] = &domain.ActivityStats{TxnsH1: 2}
	source.fail["addr3"] = true

	f := NewFetcher(source, time.Minute, 2, zap.NewNop())

	results := f.FetchAll(context.Background(), []string{"addr1", "addr2", "addr3", "addr4"})

	require.Len(t, results, 2)
	assert.Equal(t, 1, results["addr1"].TxnsH1)
	assert.Equal(t, 2, results["addr2"].TxnsH1)
	_, ok := results["addr3"]
	assert.False(t, ok, "failed lookup degrades to absence")
	_, ok = results["addr4"]
	assert.False(t, ok, "nil stats are not reported")
}
