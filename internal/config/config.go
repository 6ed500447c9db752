// Package config loads service settings from defaults, an optional TOML
// file and HORIZON_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"projection-engine/internal/tax"
)

// Config holds application configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Tax    TaxConfig    `mapstructure:"tax"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port         int `mapstructure:"port"`
	MaxBodyBytes int `mapstructure:"max_body_bytes"`
}

// StoreConfig holds the scenario library location.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// TaxConfig selects the tax resolver. TablePath overrides the built-in
// bracket table; RegistryURL fetches tables remotely, falling back to the
// local ones; a non-zero Year pins every period to one table.
type TaxConfig struct {
	TablePath   string `mapstructure:"table_path"`
	RegistryURL string `mapstructure:"registry_url"`
	Year        int    `mapstructure:"year"`
}

// Load reads configuration from file and env. Env var overrides use prefix
// HORIZON_; the bare PORT variable is honoured for the listener port.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_body_bytes", 4<<20)
	v.SetDefault("store.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "horizon", "scenarios.db"))
	v.SetDefault("tax.table_path", "")
	v.SetDefault("tax.registry_url", "")
	v.SetDefault("tax.year", 0)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("HORIZON_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "horizon"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("HORIZON")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.BindEnv("server.port", "HORIZON_SERVER_PORT", "PORT"); err != nil {
		return Config{}, fmt.Errorf("bind port env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing default file is fine; an explicit one must load.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || cfgPath != "" {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return Config{}, fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return c, nil
}

// Resolver builds the tax resolver described by c.
func (c TaxConfig) Resolver() (tax.Resolver, error) {
	schedule := tax.DefaultSchedule()
	if c.TablePath != "" {
		s, err := tax.LoadSchedule(c.TablePath)
		if err != nil {
			return nil, err
		}
		schedule = s
	}
	var r tax.Resolver = schedule
	if c.RegistryURL != "" {
		r = tax.NewRegistry(c.RegistryURL, schedule)
	}
	if c.Year != 0 {
		r = tax.FixedYear{Resolver: r, Year: c.Year}
	}
	return r, nil
}
