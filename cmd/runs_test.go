//go:build !integration

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/helix-group/trials-cli/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:        "run-1",
			Label:     "geoprox",
			Status:    model.RunStatusComplete,
			Summary:   &model.RunSummary{GeocodedAddresses: 40, UnmatchedAddresses: 2},
			CreatedAt: created,
			UpdatedAt: created.Add(90 * time.Second),
		},
		{
			ID:        "run-2",
			Label:     "geoprox",
			Status:    model.RunStatusFailed,
			CreatedAt: created,
			UpdatedAt: created,
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)
	out := buf.String()

	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "40")
	assert.Contains(t, out, "1m30s")
	// Failed run without a summary renders placeholders.
	assert.Contains(t, out, "run-2")
	assert.Contains(t, out, "-")
}

func TestFormatProximityResults(t *testing.T) {
	hub := "Boston"
	dist := 12.34
	results := []model.ProximityResult{
		{CompanyID: "c1", CompanyName: "Acme Therapeutics", ClosestHub: &hub, DistanceKm: &dist},
		{CompanyID: "c2", CompanyName: "Beta Bio"},
	}

	var buf bytes.Buffer
	formatProximityResults(&buf, results)
	out := buf.String()

	assert.Contains(t, out, "Acme Therapeutics")
	assert.Contains(t, out, "Boston")
	assert.Contains(t, out, "12.3")
	assert.Contains(t, out, "Beta Bio")
}
