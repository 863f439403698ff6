// Package geocode resolves freeform addresses to coordinates through a
// Nominatim-compatible HTTP endpoint.
package geocode

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/helix-group/trials-cli/internal/resilience"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// Client geocodes freeform address strings.
type Client interface {
	// Geocode resolves a single address. An address the backend cannot
	// resolve yields an unmatched Result, not an error.
	Geocode(ctx context.Context, address string) (*Result, error)

	// BatchGeocode resolves multiple addresses in parallel. The returned
	// slice is index-aligned with the input.
	BatchGeocode(ctx context.Context, addresses []string) ([]Result, error)
}

// Result holds the geocoding output for an address.
type Result struct {
	Latitude    float64
	Longitude   float64
	DisplayName string
	Matched     bool
	Source      string
}

// Cache stores geocode results keyed by normalized address hash. Both
// matches and non-matches are cached so repeat misses skip the backend.
type Cache interface {
	Get(ctx context.Context, key string) (*Result, bool, error)
	Put(ctx context.Context, key string, result *Result) error
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithBaseURL overrides the Nominatim endpoint.
func WithBaseURL(baseURL string) Option {
	return func(g *geocoder) {
		g.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit for backend calls.
func WithRateLimit(rps float64) Option {
	return func(g *geocoder) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithCache attaches a result cache consulted before backend calls.
func WithCache(c Cache) Option {
	return func(g *geocoder) {
		g.cache = c
	}
}

// WithUserAgent sets the User-Agent header sent to the backend. Public
// Nominatim instances reject requests without an identifying agent.
func WithUserAgent(ua string) Option {
	return func(g *geocoder) {
		g.userAgent = ua
	}
}

// WithBatchConcurrency sets the max parallel calls for BatchGeocode.
func WithBatchConcurrency(n int) Option {
	return func(g *geocoder) {
		if n > 0 {
			g.batchConcurrency = n
		}
	}
}

// WithRetry overrides the retry policy for backend requests.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(g *geocoder) {
		g.retry = cfg
	}
}

type geocoder struct {
	httpClient       *http.Client
	baseURL          string
	userAgent        string
	limiter          *rate.Limiter
	cache            Cache
	batchConcurrency int
	retry            resilience.RetryConfig
}

// NewClient creates a geocoding Client with the given options.
func NewClient(opts ...Option) Client {
	g := &geocoder{
		httpClient:       &http.Client{Timeout: 30 * time.Second},
		baseURL:          defaultBaseURL,
		userAgent:        "trials-cli",
		limiter:          rate.NewLimiter(1, 1), // public Nominatim usage policy
		batchConcurrency: defaultBatchConcurrency(),
		retry:            resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func defaultBatchConcurrency() int {
	n := runtime.NumCPU() * 5
	if n > 32 {
		n = 32
	}
	return n
}

// Geocode resolves a single address. Backend failures are logged and
// reported as unmatched so enrichment runs never abort on one address.
func (g *geocoder) Geocode(ctx context.Context, address string) (*Result, error) {
	key := cacheKey(address)

	if g.cache != nil {
		if cached, ok, err := g.cache.Get(ctx, key); err == nil && ok {
			return cached, nil
		}
	}

	result, err := g.geocodeNominatim(ctx, address)
	if err != nil {
		logGeocodeFailure(address, err)
		return &Result{Matched: false, Source: "nominatim"}, nil
	}

	if g.cache != nil {
		_ = g.cache.Put(ctx, key, result)
	}
	return result, nil
}

// BatchGeocode resolves addresses in parallel, bounded by the configured
// concurrency. Individual failures yield unmatched results.
func (g *geocoder) BatchGeocode(ctx context.Context, addresses []string) ([]Result, error) {
	if len(addresses) == 0 {
		return nil, nil
	}

	results := make([]Result, len(addresses))

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.batchConcurrency)

	for i, addr := range addresses {
		eg.Go(func() error {
			r, err := g.Geocode(gCtx, addr)
			if err != nil || r == nil {
				results[i] = Result{Matched: false, Source: "nominatim"}
				return nil //nolint:nilerr // individual failures don't fail the batch
			}
			results[i] = *r
			return nil
		})
	}

	_ = eg.Wait()
	return results, nil
}
