package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/helix-group/trials-cli/internal/config"
	"github.com/helix-group/trials-cli/internal/ingest"
	"github.com/helix-group/trials-cli/internal/match"
	"github.com/helix-group/trials-cli/internal/model"
	"github.com/helix-group/trials-cli/internal/store"
	"github.com/helix-group/trials-cli/pkg/geocode"
)

// openStore opens the configured store backend and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		st, err = store.NewSQLite(cfg.Store.SQLitePath)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// newMatcher builds the company matcher from the configured resource files.
func newMatcher() (*match.Matcher, error) {
	companies, err := loadCompanyNames(cfg.Match.CompaniesFile)
	if err != nil {
		return nil, eris.Wrap(err, "load companies")
	}

	var banned []string
	if cfg.Match.BannedFile != "" {
		banned, err = config.LoadLines(cfg.Match.BannedFile)
		if err != nil {
			return nil, eris.Wrap(err, "load banned phrases")
		}
	}

	opts := match.Options{DropShortTrailing: cfg.Match.DropShortTrailing}
	if cfg.Match.SuffixesFile != "" {
		opts.Suffixes, err = config.LoadLines(cfg.Match.SuffixesFile)
		if err != nil {
			return nil, eris.Wrap(err, "load suffixes")
		}
	}

	norm := match.NewNormalizer(opts)
	idx := match.BuildIndex(norm, companies)
	return match.NewMatcher(norm, idx, banned), nil
}

// newGeocoder builds the geocode client, with the store as result cache
// when one is available.
func newGeocoder(st store.Store) geocode.Client {
	opts := []geocode.Option{
		geocode.WithBaseURL(cfg.Geocode.BaseURL),
		geocode.WithUserAgent(cfg.Geocode.UserAgent),
		geocode.WithRateLimit(cfg.Geocode.RateLimitRPS),
	}
	if cfg.Geocode.BatchConcurrency > 0 {
		opts = append(opts, geocode.WithBatchConcurrency(cfg.Geocode.BatchConcurrency))
	}
	if st != nil {
		ttl := time.Duration(cfg.Geocode.CacheTTLHours) * time.Hour
		opts = append(opts, geocode.WithCache(store.NewGeocodeCache(st, ttl)))
	} else {
		opts = append(opts, geocode.WithCache(geocode.NewMemoryCache()))
	}
	return geocode.NewClient(opts...)
}

// loadTrialsFile reads a flattened-trials JSON file.
func loadTrialsFile(path string) ([]model.Trial, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	return ingest.LoadTrials(data)
}

// writeTrialsFile writes trials as indented JSON.
func writeTrialsFile(path string, trials []model.Trial) error {
	data, err := json.MarshalIndent(trials, "", "  ")
	if err != nil {
		return eris.Wrap(err, "marshal trials")
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "write %s", path)
}

// loadCompanyNames reads the company roster CSV: a header row followed by
// one (possibly quoted) company name per line. Quotes are the CSV reader's
// concern; the returned names are unquoted.
func loadCompanyNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	if _, err := r.Read(); err != nil {
		return nil, eris.Wrapf(err, "read header of %s", path)
	}

	var names []string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "read %s", path)
		}
		if len(row) == 0 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// parseCompaniesCSV reads a company export with COMPANYID, COMPANYNAME,
// and address columns. Header names are matched case-insensitively.
func parseCompaniesCSV(path string) ([]model.Company, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "read header of %s", path)
	}

	idCol, nameCol, addrCol := -1, -1, -1
	for i, h := range header {
		switch strings.ToUpper(strings.TrimSpace(h)) {
		case "COMPANYID", "COMPANY_ID":
			idCol = i
		case "COMPANYNAME", "COMPANY_NAME":
			nameCol = i
		case "ADDRESS", "COMPANY_ADDRESS":
			addrCol = i
		}
	}
	if idCol < 0 || nameCol < 0 {
		return nil, eris.Errorf("%s: missing COMPANYID or COMPANYNAME column", path)
	}

	var companies []model.Company
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "read %s", path)
		}
		c := model.Company{
			ID:   strings.TrimSpace(row[idCol]),
			Name: strings.TrimSpace(row[nameCol]),
		}
		if addrCol >= 0 && addrCol < len(row) {
			c.Address = strings.TrimSpace(row[addrCol])
		}
		if c.ID == "" && c.Name == "" {
			continue
		}
		companies = append(companies, c)
	}
	return companies, nil
}
