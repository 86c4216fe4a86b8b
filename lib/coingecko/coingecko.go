package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/kv-base-hack/coin-tracker/internal/httputil"
)

const providerName = "coingecko"

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

const (
	marketsEndpoint = "%s/coins/markets"
	chartEndpoint   = "%s/coins/%s/market_chart"
	detailsEndpoint = "%s/coins/%s"

	marketsPerPage = "100"
)

// ErrFetch is returned by every fetcher when no 2xx response could be obtained.
var ErrFetch = errors.New(providerName + ": fetch failed")

// CoinGecko fetches market data through a retrying client.
type CoinGecko struct {
	client  *httputil.RetryClient
	baseURL string
}

// NewCoinGecko creates a client for baseURL; an empty baseURL means the public API.
func NewCoinGecko(baseURL string, client *httputil.RetryClient) *CoinGecko {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = httputil.NewRetryClient()
	}
	return &CoinGecko{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (cg *CoinGecko) BaseURL() string {
	return cg.baseURL
}

// Markets returns the top 100 coins by market cap, priced in currency.
func (cg *CoinGecko) Markets(ctx context.Context, currency string) ([]CoinSummary, error) {
	q := url.Values{}
	q.Set("vs_currency", currency)
	q.Set("order", "market_cap_desc")
	q.Set("per_page", marketsPerPage)
	q.Set("page", "1")
	q.Set("sparkline", "false")

	var coins []CoinSummary
	if err := cg.get(ctx, fmt.Sprintf(marketsEndpoint, cg.baseURL), q, &coins); err != nil {
		return nil, err
	}
	return coins, nil
}

// Chart returns the price series of coinID over the last days.
func (cg *CoinGecko) Chart(ctx context.Context, coinID, currency string, days int) (ChartSeries, error) {
	q := url.Values{}
	q.Set("vs_currency", currency)
	q.Set("days", fmt.Sprint(days))

	var series ChartSeries
	if err := cg.get(ctx, fmt.Sprintf(chartEndpoint, cg.baseURL, url.PathEscape(coinID)), q, &series); err != nil {
		return ChartSeries{}, err
	}
	return series, nil
}

// Details returns the coin bundle with market data and without the auxiliary sections.
func (cg *CoinGecko) Details(ctx context.Context, coinID string) (CoinDetail, error) {
	q := url.Values{}
	q.Set("localization", "false")
	q.Set("tickers", "false")
	q.Set("market_data", "true")
	q.Set("community_data", "false")
	q.Set("developer_data", "false")
	q.Set("sparkline", "false")

	var detail CoinDetail
	if err := cg.get(ctx, fmt.Sprintf(detailsEndpoint, cg.baseURL, url.PathEscape(coinID)), q, &detail); err != nil {
		return CoinDetail{}, err
	}
	return detail, nil
}

func (cg *CoinGecko) get(ctx context.Context, endpoint string, q url.Values, out interface{}) error {
	rsp, err := cg.client.Get(ctx, endpoint+"?"+q.Encode())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer rsp.Body.Close()

	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		return fmt.Errorf("%w: unexpected status code: %s", ErrFetch, rsp.Status)
	}
	respBody, err := io.ReadAll(rsp.Body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: decode: %w", ErrFetch, err)
	}
	return nil
}
