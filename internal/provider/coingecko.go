// Package provider contains the HTTP clients for the two market data
// feeds: the coin market endpoint and the pair-search endpoint. Both are
// treated as unreliable; callers collapse any failure to an empty result.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"fivecoin/internal/model"
)

const coinsPerPage = 50

// CoinClient fetches coin records ranked by market cap.
type CoinClient struct {
	baseURL    string
	currency   string
	httpClient *http.Client
}

// NewCoinClient creates a client for the coin market feed.
func NewCoinClient(baseURL, currency string, timeout time.Duration) *CoinClient {
	return &CoinClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		currency:   currency,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchMarkets returns one page of coin records, optionally restricted to
// the given identifiers. The list arrives ordered by market cap descending.
func (c *CoinClient) FetchMarkets(ctx context.Context, ids []string, page int) ([]model.Coin, error) {
	q := url.Values{}
	q.Set("vs_currency", c.currency)
	q.Set("order", "market_cap_desc")
	q.Set("per_page", strconv.Itoa(coinsPerPage))
	q.Set("page", strconv.Itoa(page))
	q.Set("sparkline", "false")
	if len(ids) > 0 {
		q.Set("ids", strings.ToLower(strings.Join(ids, ",")))
	}
	endpoint := c.baseURL + "/coins/markets?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("market feed status %d: %s", resp.StatusCode, body)
	}

	var coins []model.Coin
	if err := json.NewDecoder(resp.Body).Decode(&coins); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return coins, nil
}

// FetchMarketPages fetches pages 1..pages concurrently and concatenates
// the results in page order. A failed leg contributes an empty list
// instead of failing the whole fetch.
func (c *CoinClient) FetchMarketPages(ctx context.Context, ids []string, pages int) []model.Coin {
	if pages < 1 {
		pages = 1
	}
	results := make([][]model.Coin, pages)

	var wg sync.WaitGroup
	for i := 0; i < pages; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			coins, err := c.FetchMarkets(ctx, ids, i+1)
			if err != nil {
				return // leg degrades to empty
			}
			results[i] = coins
		}(i)
	}
	wg.Wait()

	var merged []model.Coin
	for _, page := range results {
		merged = append(merged, page...)
	}
	return merged
}
