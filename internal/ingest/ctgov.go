// Package ingest fetches study records from the ClinicalTrials.gov v2 API
// and flattens them into the pipeline's trial shape.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/helix-group/trials-cli/internal/model"
	"github.com/helix-group/trials-cli/internal/resilience"
)

const defaultBaseURL = "https://clinicaltrials.gov/api/v2"

// Client pages through the ClinicalTrials.gov studies endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	pageSize   int
	condition  string
	retry      resilience.RetryConfig
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPageSize sets the number of studies requested per page.
func WithPageSize(n int) Option {
	return func(c *Client) { c.pageSize = n }
}

// WithRateLimit caps requests per second against the API.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithCondition restricts the fetch to studies matching a condition
// query (the API's query.cond parameter).
func WithCondition(cond string) Option {
	return func(c *Client) { c.condition = cond }
}

// NewClient creates a ClinicalTrials.gov client with sane defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    defaultBaseURL,
		limiter:    rate.NewLimiter(3, 1),
		pageSize:   1000,
		retry:      resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// studiesPage is the paginated API envelope.
type studiesPage struct {
	Studies       []json.RawMessage `json:"studies"`
	NextPageToken string            `json:"nextPageToken"`
}

// FetchAll pages through every study, flattening each into a Trial.
// Studies that fail to decode are skipped with a warning rather than
// aborting the run.
func (c *Client) FetchAll(ctx context.Context) ([]model.Trial, error) {
	var trials []model.Trial
	pageToken := ""
	skipped := 0

	for {
		page, err := c.fetchPage(ctx, pageToken)
		if err != nil {
			return nil, err
		}
		if len(page.Studies) == 0 {
			break
		}

		for _, raw := range page.Studies {
			trial, err := flattenStudy(raw)
			if err != nil {
				skipped++
				zap.L().Warn("ingest: skipping malformed study", zap.Error(err))
				continue
			}
			trials = append(trials, trial)
		}

		zap.L().Info("ingest: fetched page",
			zap.Int("studies", len(page.Studies)),
			zap.Int("total", len(trials)),
		)

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	if skipped > 0 {
		zap.L().Warn("ingest: skipped malformed studies", zap.Int("count", skipped))
	}
	return trials, nil
}

// fetchPage requests one page, honoring the rate limit and retrying
// transient failures.
func (c *Client) fetchPage(ctx context.Context, pageToken string) (*studiesPage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "ingest: rate limiter")
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("pageSize", strconv.Itoa(c.pageSize))
	if c.condition != "" {
		q.Set("query.cond", c.condition)
	}
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	reqURL := fmt.Sprintf("%s/studies?%s", c.baseURL, q.Encode())

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*studiesPage, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "ingest: build request")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "ingest: fetch studies")
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("ingest: studies endpoint returned %d", resp.StatusCode)
			if resilience.RetryableStatus(resp.StatusCode) {
				return nil, resilience.Transient(err, resp.StatusCode)
			}
			return nil, err
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, resilience.Transient(eris.Wrap(err, "ingest: read body"), 0)
		}

		var page studiesPage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, eris.Wrap(err, "ingest: decode studies page")
		}
		return &page, nil
	})
}
