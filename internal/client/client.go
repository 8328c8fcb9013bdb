package client

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var ErrUpstream = errors.New("upstream error")

type Source string

const (
	SourceEbay           Source = "eBay"
	SourceAmazon         Source = "Amazon"
	SourceWalmart        Source = "Walmart"
	SourceGoogleShopping Source = "Google Shopping"
)

type Config struct {
	EbayClientID      string
	EbayClientSecret  string
	EbayMarketplaceID string
	SerpAPIKey        string
	UseSerpAPI        bool
	CacheTTL          time.Duration
	WebhookURL        string
}

// URLs are the upstream endpoints, replaced by httptest servers in tests.
type URLs struct {
	EbayToken  string
	EbaySearch string
	SerpAPI    string
}

func DefaultURLs() URLs {
	return URLs{
		EbayToken:  "https://api.ebay.com/identity/v1/oauth2/token",
		EbaySearch: "https://api.ebay.com/buy/browse/v1/item_summary/search",
		SerpAPI:    "https://serpapi.com/search.json",
	}
}

type Client struct {
	*http.Client
	Redis  *redis.Client
	Logger logger
	Config Config
	URLs   URLs

	ebayToken *tokenCache
}

type logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}

type tokenCache struct {
	mu      sync.Mutex
	token   string
	expires time.Time
}

// New returns a Client. rdb may be nil, tokens are then cached in process and search
// results are not cached.
func New(httpClient *http.Client, rdb *redis.Client, l logger, cfg Config) Client {
	return Client{
		Client:    httpClient,
		Redis:     rdb,
		Logger:    l,
		Config:    cfg,
		URLs:      DefaultURLs(),
		ebayToken: &tokenCache{},
	}
}

// Sources lists the enabled retailer sources, the primary one first.
func (c Client) Sources() []Source {
	var sources []Source
	if c.ebayEnabled() {
		sources = append(sources, SourceEbay)
	}
	if c.serpAPIEnabled() {
		sources = append(sources, SourceAmazon, SourceWalmart, SourceGoogleShopping)
	}
	return sources
}

func (c Client) ebayEnabled() bool {
	return c.Config.EbayClientID != "" && c.Config.EbayClientSecret != ""
}

func (c Client) serpAPIEnabled() bool {
	return c.Config.UseSerpAPI && c.Config.SerpAPIKey != ""
}

func newRequest(ctx context.Context, method string, url string, body io.Reader) (*http.Request, error) {
	r, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	setDefaultRequestHeader(r)
	return r, nil
}

func setDefaultRequestHeader(r *http.Request) {
	r.Header.Set("User-Agent", "pricecompare/1.0")
	r.Header.Set("Accept", "application/json")
}

func (c Client) closeBody(fn string, resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.Logger.Errorf("%s: Error closing response body, url: %s, err: %v", fn, resp.Request.URL.Redacted(), err)
	}
}
