//go:build !integration

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helix-group/trials-cli/internal/geo"
	"github.com/helix-group/trials-cli/internal/match"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	norm := match.NewNormalizer(match.Options{})
	idx := match.BuildIndex(norm, []string{"Acme Therapeutics, Inc."})
	matcher := match.NewMatcher(norm, idx, []string{"university"})
	hubs := []geo.Hub{
		{Name: "Boston", Latitude: 42.3601, Longitude: -71.0589},
		{Name: "San Diego", Latitude: 32.7157, Longitude: -117.1611},
	}
	return buildRouter(matcher, hubs, 100)
}

func TestBuildRouter_Health(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	err := json.Unmarshal(rr.Body.Bytes(), &body)
	require.NoError(t, err)
	assert.Equal(t, "ok", body["status"])
}

func TestBuildRouter_Match_LeadSponsor(t *testing.T) {
	router := newTestRouter(t)

	payload, _ := json.Marshal(map[string]any{
		"lead_sponsor": "Acme Therapeutics Inc",
	})
	req := httptest.NewRequest(http.MethodPost, "/match", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "lead", resp["status"])
	assert.Equal(t, "Acme Therapeutics, Inc.", resp["company"])
}

func TestBuildRouter_Match_Collaborator(t *testing.T) {
	router := newTestRouter(t)

	payload, _ := json.Marshal(map[string]any{
		"lead_sponsor":  "Unheard Of Biosciences",
		"collaborators": []string{"Acme Therapeutics"},
	})
	req := httptest.NewRequest(http.MethodPost, "/match", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "collaborator", resp["status"])
	assert.Equal(t, "Acme Therapeutics, Inc.", resp["company"])
	assert.Equal(t, "Acme Therapeutics", resp["via"])
}

func TestBuildRouter_Match_BannedLead(t *testing.T) {
	router := newTestRouter(t)

	payload, _ := json.Marshal(map[string]any{
		"lead_sponsor": "Example University Hospital",
	})
	req := httptest.NewRequest(http.MethodPost, "/match", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "excluded", resp["status"])
	assert.Empty(t, resp["company"])
}

func TestBuildRouter_Match_MissingLead(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/match", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "lead_sponsor is required")
}

func TestBuildRouter_Match_InvalidJSON(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/match", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")
}

func TestBuildRouter_ClosestHub(t *testing.T) {
	router := newTestRouter(t)

	// Cambridge MA, a few km from the Boston hub point.
	req := httptest.NewRequest(http.MethodGet, "/hubs/closest?lat=42.3736&lon=-71.1097", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Hub        string  `json:"hub"`
		DistanceKm float64 `json:"distance_km"`
		Matched    bool    `json:"matched"`
	}
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.True(t, resp.Matched)
	assert.Equal(t, "Boston", resp.Hub)
	assert.Less(t, resp.DistanceKm, 10.0)
}

func TestBuildRouter_ClosestHub_OutsideThreshold(t *testing.T) {
	router := newTestRouter(t)

	// Middle of the Atlantic, far beyond the 100 km threshold.
	req := httptest.NewRequest(http.MethodGet, "/hubs/closest?lat=30.0&lon=-40.0", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Matched bool `json:"matched"`
	}
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.False(t, resp.Matched)
}

func TestBuildRouter_ClosestHub_MissingParams(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/hubs/closest?lat=42.0", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "lat and lon are required")
}
