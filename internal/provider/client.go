// Package provider fetches token snapshots from the CoinMarketCap pro API
// and normalizes them into canonical tokens. Any failure falls back to a
// built-in static token set, so the table always has data.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sangram-sethi/Axiom-pulse/internal/domain"
	"github.com/sangram-sethi/Axiom-pulse/internal/observability"
)

// Default configuration values.
const (
	DefaultBaseURL      = "https://pro-api.coinmarketcap.com"
	DefaultTimeout      = 30 * time.Second
	DefaultListingLimit = 50
	DefaultTableSize    = 25
)

// Client fetches token listings over HTTP.
type Client struct {
	baseURL   string
	apiKey    string
	client    *http.Client
	logger    *zap.Logger
	limit     int
	tableSize int
	now       func() time.Time
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithClock sets the time source used for age computation. Test hook.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a snapshot provider client. An empty apiKey is allowed;
// Fetch then serves the fallback set without touching the network.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		apiKey:    apiKey,
		client:    &http.Client{Timeout: DefaultTimeout},
		logger:    zap.NewNop(),
		limit:     DefaultListingLimit,
		tableSize: DefaultTableSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("provider")
	return c
}

// FetchResult is the outcome of one snapshot fetch.
type FetchResult struct {
	Tokens       []domain.Token
	UsedFallback bool
	// Reason explains why the fallback was used. Empty on a live fetch.
	Reason string
}

// Fetch retrieves the current listing and maps it into canonical tokens.
// It never returns an error: every failure path degrades to the fallback
// set, with the reason recorded in the result.
func (c *Client) Fetch(ctx context.Context) FetchResult {
	if c.apiKey == "" {
		c.logger.Warn("api key not set, using fallback tokens")
		return c.fallback("missing api key")
	}

	listings, err := c.fetchListings(ctx)
	if err != nil {
		c.logger.Error("listings fetch failed, using fallback", zap.Error(err))
		return c.fallback(err.Error())
	}

	if len(listings) > c.tableSize {
		listings = listings[:c.tableSize]
	}

	// Logos are cosmetic: a failed info call degrades to empty avatars,
	// never to the fallback set.
	logos := c.fetchLogos(ctx, listings)

	tokens := make([]domain.Token, 0, len(listings))
	for _, l := range listings {
		tokens = append(tokens, c.mapListing(l, logos[l.ID]))
	}
	return FetchResult{Tokens: tokens}
}

func (c *Client) fallback(reason string) FetchResult {
	observability.RecordFallbackLoad()
	return FetchResult{
		Tokens:       FallbackTokens(),
		UsedFallback: true,
		Reason:       reason,
	}
}

type listing struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Rank        int    `json:"cmc_rank"`
	LastUpdated string `json:"last_updated"`
	Quote       struct {
		USD *struct {
			Price            float64 `json:"price"`
			Volume24h        float64 `json:"volume_24h"`
			MarketCap        float64 `json:"market_cap"`
			PercentChange24h float64 `json:"percent_change_24h"`
		} `json:"USD"`
	} `json:"quote"`
}

type apiStatus struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type listingsResponse struct {
	Status apiStatus `json:"status"`
	Data   []listing `json:"data"`
}

type infoResponse struct {
	Status apiStatus `json:"status"`
	Data   map[string]struct {
		ID   int64  `json:"id"`
		Logo string `json:"logo"`
	} `json:"data"`
}

func (c *Client) fetchListings(ctx context.Context) ([]listing, error) {
	params := url.Values{
		"start":   {"1"},
		"limit":   {strconv.Itoa(c.limit)},
		"convert": {"USD"},
		"sort":    {"market_cap"},
	}

	var resp listingsResponse
	if err := c.get(ctx, "/v1/cryptocurrency/listings/latest?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Status.ErrorCode != 0 {
		return nil, fmt.Errorf("listings error %d: %s", resp.Status.ErrorCode, resp.Status.ErrorMessage)
	}
	return resp.Data, nil
}

// fetchLogos resolves logo URLs for the listed IDs. Best effort: any failure
// returns the partial (or empty) map.
func (c *Client) fetchLogos(ctx context.Context, listings []listing) map[int64]string {
	if len(listings) == 0 {
		return nil
	}

	ids := make([]string, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, strconv.FormatInt(l.ID, 10))
	}

	var resp infoResponse
	if err := c.get(ctx, "/v1/cryptocurrency/info?id="+strings.Join(ids, ","), &resp); err != nil {
		c.logger.Warn("logo fetch failed, continuing without logos", zap.Error(err))
		return nil
	}
	if resp.Status.ErrorCode != 0 {
		c.logger.Warn("logo fetch rejected, continuing without logos",
			zap.Int("code", resp.Status.ErrorCode),
			zap.String("message", resp.Status.ErrorMessage))
		return nil
	}

	logos := make(map[int64]string, len(resp.Data))
	for _, entry := range resp.Data {
		if entry.Logo != "" {
			logos[entry.ID] = entry.Logo
		}
	}
	return logos
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-CMC_PRO_API_KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
