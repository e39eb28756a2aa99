package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Options configures a Client. Zero values fall back to the package defaults
// below.
type Options struct {
	Endpoint    string        // simple-price endpoint, e.g. CoinGecko's
	TokenID     string        // upstream asset id, e.g. "solana"
	Timeout     time.Duration // HTTP timeout per fetch
	CachePath   string        // where the last good price is remembered
	MaxStale    time.Duration // how long a cached price stays acceptable
	FallbackUSD float64       // last resort when fetch and cache both fail
	Logger      *slog.Logger
}

const (
	DefaultEndpoint = "https://api.coingecko.com/api/v3/simple/price"
	DefaultTokenID  = "solana"

	defaultTimeout  = 10 * time.Second
	defaultMaxStale = time.Hour
	defaultFallback = 150.0
)

// Client fetches the reference price over HTTP and keeps the last good value
// in a small JSON cache file. The fallback chain (live → cached → constant)
// means PriceUSD always produces a number.
type Client struct {
	endpoint    string
	tokenID     string
	cachePath   string
	maxStale    time.Duration
	fallbackUSD float64
	httpClient  *http.Client
	log         *slog.Logger
}

func NewClient(opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.TokenID == "" {
		opts.TokenID = DefaultTokenID
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxStale <= 0 {
		opts.MaxStale = defaultMaxStale
	}
	if opts.FallbackUSD <= 0 {
		opts.FallbackUSD = defaultFallback
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Client{
		endpoint:    opts.Endpoint,
		tokenID:     opts.TokenID,
		cachePath:   opts.CachePath,
		maxStale:    opts.MaxStale,
		fallbackUSD: opts.FallbackUSD,
		httpClient:  &http.Client{Timeout: opts.Timeout},
		log:         opts.Logger,
	}
}

// PriceUSD returns the current reference price. Network problems are
// absorbed here: a failed fetch falls back to the cache, an expired or
// missing cache falls back to the configured constant.
func (c *Client) PriceUSD(ctx context.Context) float64 {
	price, err := c.fetch(ctx)
	if err == nil && price > 0 {
		c.writeCache(cacheEntry{PriceUSD: price, FetchedAt: time.Now().UTC()})
		return price
	}
	c.log.Warn("price fetch failed, using fallback chain", "err", err)

	if entry, ok := c.readCache(); ok {
		age := time.Since(entry.FetchedAt)
		if age <= c.maxStale {
			c.log.Warn("using cached price", "price_usd", entry.PriceUSD, "age", age)
			return entry.PriceUSD
		}
		c.log.Warn("cached price too stale", "age", age, "max_stale", c.maxStale)
	}

	c.log.Warn("using constant fallback price", "price_usd", c.fallbackUSD)
	return c.fallbackUSD
}

func (c *Client) fetch(ctx context.Context) (float64, error) {
	params := url.Values{}
	params.Set("ids", c.tokenID)
	params.Set("vs_currencies", "usd")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("price API status %d", resp.StatusCode)
	}

	// {"solana": {"usd": 151.23}}
	var body map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode price response: %w", err)
	}

	price := body[c.tokenID]["usd"]
	if price <= 0 {
		return 0, fmt.Errorf("price API returned no usd price for %q", c.tokenID)
	}
	return price, nil
}

// cacheEntry is the on-disk shape of the last good price.
type cacheEntry struct {
	PriceUSD  float64   `json:"price_usd"`
	FetchedAt time.Time `json:"fetched_at"`
}

func (c *Client) readCache() (cacheEntry, bool) {
	if c.cachePath == "" {
		return cacheEntry{}, false
	}
	data, err := os.ReadFile(c.cachePath)
	if err != nil {
		return cacheEntry{}, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.PriceUSD <= 0 {
		return cacheEntry{}, false
	}
	return entry, true
}

func (c *Client) writeCache(entry cacheEntry) {
	if c.cachePath == "" {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.cachePath), 0755); err != nil {
		return
	}
	// A torn cache write only costs one fallback, not correctness.
	if err := os.WriteFile(c.cachePath, data, 0644); err != nil {
		c.log.Warn("write price cache failed", "err", err)
	}
}
