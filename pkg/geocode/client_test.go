package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helix-group/trials-cli/internal/resilience"
)

const cambridgeResponse = `[{"lat":"42.3736","lon":"-71.1097","display_name":"Cambridge, Middlesex County, Massachusetts, USA"}]`

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
	}
}

func newTestClient(serverURL string, opts ...Option) Client {
	base := []Option{
		WithBaseURL(serverURL),
		WithRateLimit(1000),
		WithRetry(fastRetry()),
	}
	return NewClient(append(base, opts...)...)
}

func TestGeocode_Match(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "Cambridge, MA", r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(cambridgeResponse)) //nolint:errcheck
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	r, err := c.Geocode(context.Background(), "Cambridge, MA")
	require.NoError(t, err)
	require.True(t, r.Matched)
	assert.InDelta(t, 42.3736, r.Latitude, 1e-6)
	assert.InDelta(t, -71.1097, r.Longitude, 1e-6)
	assert.Equal(t, "nominatim", r.Source)
	assert.Contains(t, r.DisplayName, "Cambridge")
}

func TestGeocode_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`)) //nolint:errcheck
	}))
	defer srv.Close()

	r, err := newTestClient(srv.URL).Geocode(context.Background(), "nowhere at all")
	require.NoError(t, err)
	assert.False(t, r.Matched)
}

func TestGeocode_EmptyAddress(t *testing.T) {
	r, err := newTestClient("http://invalid.test").Geocode(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, r.Matched)
}

func TestGeocode_ServerErrorIsUnmatchedNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r, err := newTestClient(srv.URL).Geocode(context.Background(), "1 Main St")
	require.NoError(t, err)
	assert.False(t, r.Matched)
}

func TestGeocode_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(cambridgeResponse)) //nolint:errcheck
	}))
	defer srv.Close()

	r, err := newTestClient(srv.URL).Geocode(context.Background(), "Cambridge, MA")
	require.NoError(t, err)
	assert.True(t, r.Matched)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGeocode_CacheHitSkipsBackend(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Write([]byte(cambridgeResponse)) //nolint:errcheck
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, WithCache(NewMemoryCache()))
	ctx := context.Background()

	first, err := c.Geocode(ctx, "Cambridge, MA")
	require.NoError(t, err)
	second, err := c.Geocode(ctx, "Cambridge, MA")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGeocode_NegativeResultCached(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Write([]byte(`[]`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, WithCache(NewMemoryCache()))
	ctx := context.Background()

	_, err := c.Geocode(ctx, "nowhere")
	require.NoError(t, err)
	_, err = c.Geocode(ctx, "nowhere")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestBatchGeocode_IndexAligned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "nowhere" {
			w.Write([]byte(`[]`)) //nolint:errcheck
			return
		}
		w.Write([]byte(cambridgeResponse)) //nolint:errcheck
	}))
	defer srv.Close()

	results, err := newTestClient(srv.URL).BatchGeocode(context.Background(),
		[]string{"Cambridge, MA", "nowhere", "Cambridge, MA"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.True(t, results[0].Matched)
	assert.False(t, results[1].Matched)
	assert.True(t, results[2].Matched)
}

func TestBatchGeocode_Empty(t *testing.T) {
	results, err := newTestClient("http://invalid.test").BatchGeocode(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestCacheKey_NormalizesWhitespaceAndCase(t *testing.T) {
	assert.Equal(t, cacheKey("1 Main St,  Boston"), cacheKey("  1 main st, boston "))
	assert.NotEqual(t, cacheKey("1 Main St"), cacheKey("2 Main St"))
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	want := &Result{Latitude: 1, Longitude: 2, Matched: true, Source: "nominatim"}
	require.NoError(t, c.Put(ctx, "k", want))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}
