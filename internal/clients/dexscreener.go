package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/armpit-symphony/pump-me-fun/internal/domain"
)

const (
	dexScreenerBaseURL = "https://api.dexscreener.com"
	dexScreenerTimeout = 10 * time.Second
)

// DexScreenerClient fetches per-token market activity. No API key required.
type DexScreenerClient struct {
	baseURL string
	client  *http.Client
}

// NewDexScreenerClient creates the enrichment client.
func NewDexScreenerClient() *DexScreenerClient {
	return &DexScreenerClient{
		baseURL: dexScreenerBaseURL,
		client:  &http.Client{Timeout: dexScreenerTimeout},
	}
}

// NewDexScreenerClientWithBaseURL creates an enrichment client against a
// custom base URL, used by tests.
func NewDexScreenerClientWithBaseURL(baseURL string) *DexScreenerClient {
	c := NewDexScreenerClient()
	c.baseURL = baseURL
	return c
}

type dexScreenerResponse struct {
	Pairs []dexScreenerPair `json:"pairs"`
}

type dexScreenerPair struct {
	Liquidity struct {
		USD decimal.Decimal `json:"usd"`
	} `json:"liquidity"`
	Txns struct {
		H1 struct {
			Buys  int `json:"buys"`
			Sells int `json:"sells"`
		} `json:"h1"`
		H24 struct {
			Buys  int `json:"buys"`
			Sells int `json:"sells"`
		} `json:"h24"`
	} `json:"txns"`
	Volume struct {
		H1  decimal.Decimal `json:"h1"`
		H24 decimal.Decimal `json:"h24"`
	} `json:"volume"`
}

// FetchActivity returns market activity for the token, taken from its most
// liquid pair. A token with no listed pairs returns (nil, nil): absence is
// a valid, non-error outcome.
func (d *DexScreenerClient) FetchActivity(ctx context.Context, address string) (*domain.ActivityStats, error) {
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", d.baseURL, address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build activity request")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch token activity")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("activity source returned status %d", resp.StatusCode)
	}

	var payload dexScreenerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "decode activity response")
	}

	if len(payload.Pairs) == 0 {
		return nil, nil
	}

	best := payload.Pairs[0]
	for _, p := range payload.Pairs[1:] {
		if p.Liquidity.USD.GreaterThan(best.Liquidity.USD) {
			best = p
		}
	}

	return &domain.ActivityStats{
		TxnsH1:    best.Txns.H1.Buys + best.Txns.H1.Sells,
		TxnsH24:   best.Txns.H24.Buys + best.Txns.H24.Sells,
		VolumeH1:  best.Volume.H1,
		VolumeH24: best.Volume.H24,
	}, nil
}
