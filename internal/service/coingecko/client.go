package coingecko

import (
	"context"
	"fmt"
	"strconv"

	"CryptoBooster/internal/domain/models"
	drepo "CryptoBooster/internal/domain/repository"
	"CryptoBooster/internal/service/ratelimit"
	pkghttp "CryptoBooster/pkg/http"
)

// Client implements MarketDataSource backed by the CoinGecko REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *pkghttp.Client
	limiter *ratelimit.Limiter

	// token bucket parameters; CoinGecko's demo tier allows ~30 calls/min
	burst      float64
	refillRate float64
}

// New creates a CoinGecko market data source. apiKey may be empty for the
// keyless public tier.
func New(baseURL, apiKey string, httpClient *pkghttp.Client, limiter *ratelimit.Limiter, burst, refillPerSec float64) drepo.MarketDataSource {
	if baseURL == "" {
		baseURL = "https://api.coingecko.com/api/v3"
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		http:       httpClient,
		limiter:    limiter,
		burst:      burst,
		refillRate: refillPerSec,
	}
}

// FetchOHLC returns native candles for the lookback window.
// Upstream shape: [[ts_ms, open, high, low, close], ...].
func (c *Client) FetchOHLC(ctx context.Context, coinID string, days int) ([]models.OHLCPoint, error) {
	if err := c.wait(ctx, "ohlc"); err != nil {
		return nil, err
	}

	var raw [][]float64
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    fmt.Sprintf("%s/coins/%s/ohlc", c.baseURL, coinID),
		QueryParams: map[string][]string{
			"vs_currency": {"usd"},
			"days":        {strconv.Itoa(days)},
		},
		Headers: c.headers(),
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("coingecko ohlc %s/%dd: %w", coinID, days, err)
	}

	out := make([]models.OHLCPoint, 0, len(raw))
	for _, row := range raw {
		if len(row) < 5 {
			continue // malformed row, skip rather than abort the series
		}
		out = append(out, models.OHLCPoint{
			Ts:    int64(row[0]),
			Open:  row[1],
			High:  row[2],
			Low:   row[3],
			Close: row[4],
		})
	}
	return out, nil
}

// FetchPrices returns raw price samples from the market_chart endpoint.
// interval "daily" requests one sample per day; empty lets the API choose.
func (c *Client) FetchPrices(ctx context.Context, coinID string, days int, interval string) ([]models.PricePoint, error) {
	if err := c.wait(ctx, "market_chart"); err != nil {
		return nil, err
	}

	params := map[string][]string{
		"vs_currency": {"usd"},
		"days":        {strconv.Itoa(days)},
	}
	if interval != "" {
		params["interval"] = []string{interval}
	}

	var resp struct {
		Prices [][]float64 `json:"prices"`
	}
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:      pkghttp.MethodGet,
		URL:         fmt.Sprintf("%s/coins/%s/market_chart", c.baseURL, coinID),
		QueryParams: params,
		Headers:     c.headers(),
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("coingecko market_chart %s/%dd: %w", coinID, days, err)
	}

	out := make([]models.PricePoint, 0, len(resp.Prices))
	for _, row := range resp.Prices {
		if len(row) < 2 {
			continue
		}
		out = append(out, models.PricePoint{Ts: int64(row[0]), Price: row[1]})
	}
	return out, nil
}

func (c *Client) wait(ctx context.Context, endpoint string) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx, "coingecko:"+endpoint, c.burst, c.refillRate)
}

func (c *Client) headers() map[string]string {
	h := map[string]string{"Accept": "application/json"}
	if c.apiKey != "" {
		h["x-cg-demo-api-key"] = c.apiKey
	}
	return h
}
