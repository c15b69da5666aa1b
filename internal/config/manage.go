package config

import (
	"fmt"
)

// KeyInfo is one row of `config show`.
type KeyInfo struct {
	Key     string
	EnvVar  string
	Value   string
	Default bool
}

// ShowAll lists every non-secret key with its effective value in cfg and
// whether that value is still the built-in default.
func ShowAll(cfg Config) []KeyInfo {
	def := defaults()
	out := make([]KeyInfo, 0, len(specs))
	for _, s := range specs {
		if s.secret {
			continue
		}
		v := s.extract(cfg)
		out = append(out, KeyInfo{
			Key:     s.key,
			EnvVar:  s.env,
			Value:   fmt.Sprint(v),
			Default: v == s.extract(def),
		})
	}
	return out
}

// SetKey persists key to the YAML file at ConfigFilePath.
func SetKey(key, value string) error {
	return storeKey(newFileBackend(ConfigFilePath()), key, value)
}

// ValidKeys returns the keys accepted by SetKey.
func ValidKeys() []string {
	var keys []string
	for _, s := range specs {
		if !s.secret {
			keys = append(keys, s.key)
		}
	}
	return keys
}
