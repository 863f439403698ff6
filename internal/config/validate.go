package config

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks that every field a command mode depends on is set.
// Errors are collected so the operator sees all missing fields at once.
func (c *Config) Validate(mode string) error {
	var problems []string

	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	checkStore := func() {
		switch c.Store.Driver {
		case "sqlite":
			check(c.Store.SQLitePath != "", "store.sqlite_path is required")
		case "postgres":
			check(c.Store.DatabaseURL != "", "store.database_url is required")
		default:
			check(false, "store.driver must be sqlite or postgres")
		}
	}

	switch mode {
	case "fetch":
		check(c.Fetch.BaseURL != "", "fetch.base_url is required")
		check(c.Fetch.PageSize > 0, "fetch.page_size must be > 0")
	case "aggregate":
		check(c.Match.CompaniesFile != "", "match.companies_file is required")
	case "classify":
		check(c.Anthropic.Key != "", "anthropic.key is required")
		check(c.Anthropic.Model != "", "anthropic.model is required")
	case "geoprox":
		check(c.Hubs.File != "", "hubs.file is required")
		check(c.Hubs.ThresholdKm >= 0, "hubs.threshold_km must be >= 0")
		check(c.Geocode.BaseURL != "", "geocode.base_url is required")
		checkStore()
	case "serve":
		check(c.Server.Port > 0, "server.port must be > 0")
		check(c.Hubs.File != "", "hubs.file is required")
		check(c.Match.CompaniesFile != "", "match.companies_file is required")
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}
