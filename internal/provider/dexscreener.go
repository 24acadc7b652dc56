package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fivecoin/internal/model"
)

// searchResponse is the pair-search wire envelope.
type searchResponse struct {
	SchemaVersion *string      `json:"schemaVersion,omitempty"`
	Pairs         []model.Pair `json:"pairs"`
}

// PairClient fetches trading pairs matching a free-text query.
type PairClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewPairClient creates a client for the pair-search feed.
func NewPairClient(baseURL string, timeout time.Duration) *PairClient {
	return &PairClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Search returns the pairs matching query. A nil pairs field in the
// response decodes as an empty slice.
func (c *PairClient) Search(ctx context.Context, query string) ([]model.Pair, error) {
	endpoint := c.baseURL + "/latest/dex/search/?q=" + url.QueryEscape(query)

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
		return nil, fmt.Errorf("pair search status %d: %s", resp.StatusCode, body)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return sr.Pairs, nil
}
