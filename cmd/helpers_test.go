//go:build !integration

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helix-group/trials-cli/internal/geo"
	"github.com/helix-group/trials-cli/internal/match"
	"github.com/helix-group/trials-cli/internal/model"
	"github.com/helix-group/trials-cli/pkg/geocode"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "companies.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCompanyNames(t *testing.T) {
	path := writeTempCSV(t, "Company Name\n\"Acme Therapeutics, Inc.\"\n\"Beta Bio\"\nGamma Pharma\n")

	names, err := loadCompanyNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Therapeutics, Inc.", "Beta Bio", "Gamma Pharma"}, names)
}

func TestLoadCompanyNames_QuotedRosterIndexesClean(t *testing.T) {
	path := writeTempCSV(t, "Company Name\n\"Acme Therapeutics, Inc.\"\n")

	names, err := loadCompanyNames(path)
	require.NoError(t, err)

	norm := match.NewNormalizer(match.Options{})
	idx := match.BuildIndex(norm, names)
	matcher := match.NewMatcher(norm, idx, nil)

	m := matcher.MatchTrial(&model.Trial{LeadSponsor: "Acme Therapeutics"})
	assert.Equal(t, match.StatusLead, m.Status)
	assert.Equal(t, "Acme Therapeutics, Inc.", m.Company)
	// The header row never enters the roster, even when its words are not
	// suffix tokens.
	unmatched := matcher.MatchTrial(&model.Trial{LeadSponsor: "Company Name"})
	assert.Equal(t, match.StatusUnknown, unmatched.Status)
}

func TestLoadCompanyNames_SkipsBlankRows(t *testing.T) {
	path := writeTempCSV(t, "Company Name\n\"Acme\"\n\n\"  \"\n")

	names, err := loadCompanyNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme"}, names)
}

func TestLoadCompanyNames_FileMissing(t *testing.T) {
	_, err := loadCompanyNames(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
}

func TestParseCompaniesCSV(t *testing.T) {
	path := writeTempCSV(t, "COMPANYID,COMPANYNAME,ADDRESS\nc1,Acme Therapeutics,1 Main St Boston MA\nc2,Beta Bio,\n")

	companies, err := parseCompaniesCSV(path)
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, model.Company{ID: "c1", Name: "Acme Therapeutics", Address: "1 Main St Boston MA"}, companies[0])
	assert.Equal(t, model.Company{ID: "c2", Name: "Beta Bio"}, companies[1])
}

func TestParseCompaniesCSV_CaseInsensitiveHeaders(t *testing.T) {
	path := writeTempCSV(t, "company_id,company_name,company_address\nc1,Acme,somewhere\n")

	companies, err := parseCompaniesCSV(path)
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "c1", companies[0].ID)
	assert.Equal(t, "somewhere", companies[0].Address)
}

func TestParseCompaniesCSV_MissingColumns(t *testing.T) {
	path := writeTempCSV(t, "foo,bar\n1,2\n")

	_, err := parseCompaniesCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing COMPANYID or COMPANYNAME")
}

func TestParseCompaniesCSV_SkipsBlankRows(t *testing.T) {
	path := writeTempCSV(t, "COMPANYID,COMPANYNAME\nc1,Acme\n,\n")

	companies, err := parseCompaniesCSV(path)
	require.NoError(t, err)
	assert.Len(t, companies, 1)
}

func TestParseCompaniesCSV_FileMissing(t *testing.T) {
	_, err := parseCompaniesCSV(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
}

// stubGeocoder returns canned results keyed by address.
type stubGeocoder struct {
	results map[string]geocode.Result
}

func (s *stubGeocoder) Geocode(_ context.Context, address string) (*geocode.Result, error) {
	r, ok := s.results[address]
	if !ok {
		return &geocode.Result{}, nil
	}
	return &r, nil
}

func (s *stubGeocoder) BatchGeocode(ctx context.Context, addresses []string) ([]geocode.Result, error) {
	out := make([]geocode.Result, len(addresses))
	for i, a := range addresses {
		r, err := s.Geocode(ctx, a)
		if err != nil {
			return nil, err
		}
		out[i] = *r
	}
	return out, nil
}

func TestResolveProximity(t *testing.T) {
	companies := []model.Company{
		{ID: "c1", Name: "Acme", Address: "1 Main St Cambridge MA"},
		{ID: "c2", Name: "Beta", Address: "unknown place"},
	}
	hubs := []geo.Hub{{Name: "Boston", Latitude: 42.3601, Longitude: -71.0589}}
	gc := &stubGeocoder{results: map[string]geocode.Result{
		"1 Main St Cambridge MA": {Latitude: 42.3736, Longitude: -71.1097, Matched: true},
	}}

	results, geocoded, summary, err := resolveProximity(context.Background(), gc, companies, hubs, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Len(t, geocoded, 2)

	require.NotNil(t, results[0].ClosestHub)
	assert.Equal(t, "Boston", *results[0].ClosestHub)
	assert.Less(t, *results[0].DistanceKm, 10.0)
	assert.NotNil(t, geocoded[0].Latitude)

	assert.Nil(t, results[1].ClosestHub)
	assert.Nil(t, geocoded[1].Latitude)

	assert.Equal(t, 1, summary.GeocodedAddresses)
	assert.Equal(t, 1, summary.UnmatchedAddresses)
}

func TestResolveProximity_ThresholdExcludes(t *testing.T) {
	companies := []model.Company{{ID: "c1", Name: "Acme", Address: "far away"}}
	hubs := []geo.Hub{{Name: "Boston", Latitude: 42.3601, Longitude: -71.0589}}
	gc := &stubGeocoder{results: map[string]geocode.Result{
		"far away": {Latitude: 51.5074, Longitude: -0.1278, Matched: true},
	}}

	results, _, summary, err := resolveProximity(context.Background(), gc, companies, hubs, 100)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].ClosestHub)
	assert.Equal(t, 1, summary.GeocodedAddresses)
}
