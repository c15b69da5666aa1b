// Package config loads newsetl settings from defaults, a YAML file, .env
// files and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned by RequireAPIKey when no Gemini key is set.
var ErrMissingAPIKey = errors.New("missing required config: Gemini API key")

type Config struct {
	API     APIConfig
	Input   InputConfig
	Gemini  GeminiConfig
	News    NewsConfig
	Report  ReportConfig
	Log     LogConfig
	Storage StorageConfig
}

type APIConfig struct {
	URL        string
	TimeoutSec int
}

// Timeout returns the per-request timeout for the record service.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

type InputConfig struct {
	CSVPath string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type NewsConfig struct {
	IconURL string
}

type ReportConfig struct {
	Path      string
	WrapWidth int
}

type LogConfig struct {
	Level string
}

// SlogLevel parses Level, falling back to info for unknown names.
func (c LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

type StorageConfig struct {
	DataDir string
	Ledger  bool
}

const (
	defaultAPIURL  = "https://usersapipython.up.railway.app"
	defaultIconURL = "https://digitalinnovationone.github.io/santander-dev-week-2023-api/icons/credit.svg"
)

func defaults() Config {
	return Config{
		API: APIConfig{
			URL:        defaultAPIURL,
			TimeoutSec: 20,
		},
		Input: InputConfig{
			CSVPath: "data/users_ids.csv",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
		News: NewsConfig{
			IconURL: defaultIconURL,
		},
		Report: ReportConfig{
			Path:      "report_etl.csv",
			WrapWidth: 75,
		},
		Log: LogConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
			Ledger:  true,
		},
	}
}

// Load reads configuration from the YAML file at ConfigFilePath, then from a
// .env file in the working directory, then from the environment. Variables
// already exported are never replaced by .env values.
//
// Load does not require the Gemini key; commands that call the service check
// it with RequireAPIKey.
func Load() (Config, error) {
	_ = godotenv.Load()
	return loadWith(newFileBackend(ConfigFilePath()))
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	cfg.API.URL = strings.TrimRight(cfg.API.URL, "/")
	if cfg.API.TimeoutSec <= 0 {
		slog.Warn("ignoring non-positive api.timeout_sec", "value", cfg.API.TimeoutSec)
		cfg.API.TimeoutSec = defaults().API.TimeoutSec
	}
	if cfg.Report.WrapWidth <= 0 {
		cfg.Report.WrapWidth = defaults().Report.WrapWidth
	}

	return cfg, nil
}

// RequireAPIKey reports ErrMissingAPIKey when cfg has no Gemini key.
func RequireAPIKey(cfg Config) error {
	if cfg.Gemini.APIKey == "" {
		return fmt.Errorf("%w. Set it via environment variable GEMINI_API_KEY or a .env file", ErrMissingAPIKey)
	}
	return nil
}
