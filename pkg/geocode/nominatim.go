package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/helix-group/trials-cli/internal/resilience"
)

// nominatimPlace is one entry of the /search JSON response. Nominatim
// serializes coordinates as strings.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// geocodeNominatim queries the /search endpoint for the best match.
func (g *geocoder) geocodeNominatim(ctx context.Context, address string) (*Result, error) {
	if address == "" {
		return &Result{Matched: false, Source: "nominatim"}, nil
	}

	params := url.Values{
		"q":      {address},
		"format": {"jsonv2"},
		"limit":  {"1"},
	}
	reqURL := g.baseURL + "/search?" + params.Encode()

	return resilience.DoVal(ctx, g.retry, func(ctx context.Context) (*Result, error) {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "geocode: rate limit")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "geocode: build request")
		}
		req.Header.Set("User-Agent", g.userAgent)

		resp, err := g.httpClient.Do(req)
		if err != nil {
			return nil, resilience.Transient(eris.Wrap(err, "geocode: request"), 0)
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("geocode: backend returned status %d", resp.StatusCode)
			if resilience.RetryableStatus(resp.StatusCode) {
				return nil, resilience.Transient(err, resp.StatusCode)
			}
			return nil, err
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, resilience.Transient(eris.Wrap(err, "geocode: read body"), 0)
		}

		var places []nominatimPlace
		if err := json.Unmarshal(body, &places); err != nil {
			return nil, eris.Wrap(err, "geocode: parse response")
		}

		if len(places) == 0 {
			return &Result{Matched: false, Source: "nominatim"}, nil
		}

		lat, err := strconv.ParseFloat(places[0].Lat, 64)
		if err != nil {
			return nil, eris.Wrap(err, "geocode: parse latitude")
		}
		lon, err := strconv.ParseFloat(places[0].Lon, 64)
		if err != nil {
			return nil, eris.Wrap(err, "geocode: parse longitude")
		}

		return &Result{
			Latitude:    lat,
			Longitude:   lon,
			DisplayName: places[0].DisplayName,
			Matched:     true,
			Source:      "nominatim",
		}, nil
	})
}

func logGeocodeFailure(address string, err error) {
	zap.L().Warn("geocode: address failed, treating as unmatched",
		zap.String("address", address),
		zap.Error(err),
	)
}
