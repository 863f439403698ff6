package config

import (
	"bufio"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Match     MatchConfig     `yaml:"match" mapstructure:"match"`
	Geocode   GeocodeConfig   `yaml:"geocode" mapstructure:"geocode"`
	Hubs      HubsConfig      `yaml:"hubs" mapstructure:"hubs"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// FetchConfig configures the ClinicalTrials.gov fetch.
type FetchConfig struct {
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	PageSize     int     `yaml:"page_size" mapstructure:"page_size"`
	RateLimitRPS float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
}

// MatchConfig configures company-name matching.
type MatchConfig struct {
	CompaniesFile     string `yaml:"companies_file" mapstructure:"companies_file"`
	BannedFile        string `yaml:"banned_file" mapstructure:"banned_file"`
	SuffixesFile      string `yaml:"suffixes_file" mapstructure:"suffixes_file"`
	DropShortTrailing bool   `yaml:"drop_short_trailing" mapstructure:"drop_short_trailing"`
}

// GeocodeConfig configures the address geocoder.
type GeocodeConfig struct {
	BaseURL          string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent        string  `yaml:"user_agent" mapstructure:"user_agent"`
	RateLimitRPS     float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	CacheTTLHours    int     `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
	BatchConcurrency int     `yaml:"batch_concurrency" mapstructure:"batch_concurrency"`
}

// HubsConfig configures hub proximity resolution.
type HubsConfig struct {
	File        string  `yaml:"file" mapstructure:"file"`
	ThresholdKm float64 `yaml:"threshold_km" mapstructure:"threshold_km"`
}

// OutputConfig configures where reports are written.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TRIALS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "trials.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("fetch.base_url", "https://clinicaltrials.gov/api/v2")
	v.SetDefault("fetch.page_size", 1000)
	v.SetDefault("fetch.rate_limit_rps", 3)
	v.SetDefault("match.companies_file", "resources/companies.txt")
	v.SetDefault("match.banned_file", "resources/banned_phrases.txt")
	v.SetDefault("match.drop_short_trailing", false)
	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.user_agent", "trials-cli")
	v.SetDefault("geocode.rate_limit_rps", 1)
	v.SetDefault("geocode.cache_ttl_hours", 720)
	v.SetDefault("hubs.file", "resources/hubs.csv")
	v.SetDefault("hubs.threshold_km", 0)
	v.SetDefault("output.dir", "output")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

// LoadLines reads a one-entry-per-line resource file, trimming whitespace
// and skipping blank lines and '#' comments.
func LoadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "config: read %s", path)
	}
	return lines, nil
}
