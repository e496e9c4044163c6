// Package clients contains the HTTP collaborators of the scanner: the
// token-listing feed, the market-activity enrichment source and the
// notification sink.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/armpit-symphony/pump-me-fun/internal/domain"
)

const (
	moralisBaseURL = "https://solana-gateway.moralis.io"
	moralisTimeout = 30 * time.Second
)

// MoralisClient fetches newly created pump.fun tokens from Moralis.
type MoralisClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewMoralisClient creates the feed client.
func NewMoralisClient(apiKey string, logger *zap.Logger) *MoralisClient {
	return &MoralisClient{
		apiKey:  apiKey,
		baseURL: moralisBaseURL,
		client:  &http.Client{Timeout: moralisTimeout},
		logger:  logger,
	}
}

// NewMoralisClientWithBaseURL creates a feed client against a custom base
// URL, used by tests.
func NewMoralisClientWithBaseURL(apiKey, baseURL string, logger *zap.Logger) *MoralisClient {
	c := NewMoralisClient(apiKey, logger)
	c.baseURL = baseURL
	return c
}

type moralisResponse struct {
	Result []rawToken `json:"result"`
}

type rawToken struct {
	TokenAddress string          `json:"tokenAddress"`
	Name         string          `json:"name"`
	Symbol       string          `json:"symbol"`
	CreatedAt    string          `json:"createdAt"`
	Liquidity    json.RawMessage `json:"liquidity"`
	PriceUSD     json.RawMessage `json:"priceUsd"`
}

// FetchCandidates returns up to limit new-token snapshots. A malformed
// record is skipped with a logged reason; the rest of the batch proceeds.
func (m *MoralisClient) FetchCandidates(ctx context.Context, limit int) ([]domain.TokenSnapshot, error) {
	url := fmt.Sprintf("%s/token/mainnet/exchange/pumpfun/new?limit=%d", m.baseURL, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build feed request")
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("X-API-Key", m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch new tokens")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Errorf("feed returned status %d: %s", resp.StatusCode, body)
	}

	var payload moralisResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "decode feed response")
	}

	snapshots := make([]domain.TokenSnapshot, 0, len(payload.Result))
	for _, raw := range payload.Result {
		snap, err := parseToken(raw)
		if err != nil {
			m.logger.Warn("skipping malformed feed record",
				zap.String("address", raw.TokenAddress), zap.Error(err))
			continue
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots, nil
}

// parseToken converts one raw feed record, reporting exactly which field
// made the record unusable.
func parseToken(raw rawToken) (domain.TokenSnapshot, error) {
	if raw.TokenAddress == "" {
		return domain.TokenSnapshot{}, errors.New("missing token address")
	}
	if raw.CreatedAt == "" {
		return domain.TokenSnapshot{}, errors.New("missing creation timestamp")
	}

	createdAt, err := time.Parse(time.RFC3339, raw.CreatedAt)
	if err != nil {
		return domain.TokenSnapshot{}, errors.Wrap(err, "unparsable creation timestamp")
	}

	liquidity, ok, err := parseDecimalField(raw.Liquidity)
	if err != nil {
		return domain.TokenSnapshot{}, errors.Wrap(err, "unparsable liquidity")
	}
	if !ok {
		return domain.TokenSnapshot{}, errors.New("missing liquidity")
	}

	// price is optional on the feed
	price, _, err := parseDecimalField(raw.PriceUSD)
	if err != nil {
		return domain.TokenSnapshot{}, errors.Wrap(err, "unparsable price")
	}

	return domain.TokenSnapshot{
		Address:   raw.TokenAddress,
		Name:      raw.Name,
		Symbol:    raw.Symbol,
		CreatedAt: createdAt.UTC(),
		Liquidity: liquidity,
		Price:     price,
	}, nil
}

// parseDecimalField parses a JSON field that upstream serves either as a
// number or as a quoted string. Returns ok=false when the field is absent
// or null.
func parseDecimalField(raw json.RawMessage) (decimal.Decimal, bool, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, false, nil
	}
	val := bytes.Trim(raw, `"`)
	d, err := decimal.NewFromString(string(val))
	if err != nil {
		return decimal.Zero, false, err
	}
	return d, true, nil
}
