// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvJWTSecret overrides the token signing secret.
const EnvJWTSecret = "TYPIST_JWT_SECRET"

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Server   ServerConfig   `toml:"server"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Practice PracticeConfig `toml:"practice"`
}

// ServerConfig maps HTTP server settings.
type ServerConfig struct {
	Addr      *string   `toml:"addr"`
	DB        *string   `toml:"db"`
	JWTSecret *string   `toml:"jwt-secret"`
	TokenTTL  *Duration `toml:"token-ttl"`
}

// MetricsConfig maps metric computation settings.
type MetricsConfig struct {
	WPMBasis *string `toml:"wpm-basis"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Lang       *string  `toml:"lang"`
	Words      *int     `toml:"words"`
	CapsPct    *float64 `toml:"caps"`
	PunctPct   *float64 `toml:"punct"`
	PunctSet   *string  `toml:"punct-set"`
	FocusWeak  *bool    `toml:"focus-weak"`
	WeakTop    *int     `toml:"weak-top"`
	WeakFactor *float64 `toml:"weak-factor"`
	WeakWindow *int     `toml:"weak-window"`
}

// Duration decodes TOML strings such as "90m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
// Environment overrides are applied after decoding.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	var cfg FileConfig
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
		}
	} else if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *FileConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvJWTSecret)); v != "" {
		cfg.Server.JWTSecret = &v
	}
}
