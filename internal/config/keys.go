package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kBool
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "api.url", typ: kString, env: "API_URL",
		apply:   func(cfg *Config, v any) { cfg.API.URL = v.(string) },
		extract: func(cfg Config) any { return cfg.API.URL },
	},
	{
		key: "api.timeout_sec", typ: kInt, env: "TIMEOUT_SEC",
		apply:   func(cfg *Config, v any) { cfg.API.TimeoutSec = v.(int) },
		extract: func(cfg Config) any { return cfg.API.TimeoutSec },
	},
	{
		key: "input.csv_path", typ: kString, env: "CSV_PATH",
		apply:   func(cfg *Config, v any) { cfg.Input.CSVPath = v.(string) },
		extract: func(cfg Config) any { return cfg.Input.CSVPath },
	},
	{
		key: "gemini.api_key", typ: kString, env: "GEMINI_API_KEY",
		secret: true,
		apply:   func(cfg *Config, v any) { cfg.Gemini.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Gemini.APIKey },
	},
	{
		key: "gemini.model", typ: kString, env: "GEMINI_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Gemini.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.Gemini.Model },
	},
	{
		key: "news.icon_url", typ: kString, env: "ICON_URL",
		apply:   func(cfg *Config, v any) { cfg.News.IconURL = v.(string) },
		extract: func(cfg Config) any { return cfg.News.IconURL },
	},
	{
		key: "report.path", typ: kString, env: "REPORT_PATH",
		apply:   func(cfg *Config, v any) { cfg.Report.Path = v.(string) },
		extract: func(cfg Config) any { return cfg.Report.Path },
	},
	{
		key: "report.wrap_width", typ: kInt, env: "WRAP_NEWS_WIDTH",
		apply:   func(cfg *Config, v any) { cfg.Report.WrapWidth = v.(int) },
		extract: func(cfg Config) any { return cfg.Report.WrapWidth },
	},
	{
		key: "log.level", typ: kString, env: "LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
	{
		key: "storage.data_dir", typ: kString, env: "NEWSETL_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "storage.ledger", typ: kBool, env: "NEWSETL_LEDGER",
		apply:   func(cfg *Config, v any) { cfg.Storage.Ledger = v.(bool) },
		extract: func(cfg Config) any { return cfg.Storage.Ledger },
	},
}

// applyBackend copies stored values into cfg. Secrets are never read from
// the backend.
func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kBool:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				if bv, err := strconv.ParseBool(v); err == nil {
					s.apply(cfg, bv)
				} else {
					slog.Warn("could not parse bool from config key, using default value", "key", s.key, "value", v, "error", err)
				}
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		v, err := s.parse(raw)
		if err != nil {
			slog.Warn("could not parse env var, using default value", "env", s.env, "value", raw, "error", err)
			continue
		}
		s.apply(cfg, v)
	}
}

// parse converts raw text to the key's type.
func (s keySpec) parse(raw string) (any, error) {
	switch s.typ {
	case kInt:
		i, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid integer value for %s: %w", s.key, err)
		}
		return i, nil
	case kBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean value for %s: %w", s.key, err)
		}
		return b, nil
	}
	return raw, nil
}

func lookupKey(key string) (keySpec, error) {
	for _, s := range specs {
		if s.key == key {
			return s, nil
		}
	}
	return keySpec{}, fmt.Errorf("unknown config key: %q", key)
}

// storeKey validates value against the key table and writes it to b.
// Booleans are stored as strings, matching how applyBackend reads them.
func storeKey(b ConfigBackend, key, value string) error {
	s, err := lookupKey(key)
	if err != nil {
		return err
	}
	if s.secret {
		return fmt.Errorf("cannot set secret %q via config; use environment variable %s", key, s.env)
	}
	v, err := s.parse(value)
	if err != nil {
		return err
	}
	switch v := v.(type) {
	case int:
		return b.SetInt(key, v)
	case bool:
		return b.SetString(key, strconv.FormatBool(v))
	default:
		return b.SetString(key, value)
	}
}
