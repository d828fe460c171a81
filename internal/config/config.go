// Package config loads and validates markerstore configuration via Viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/datapipe-tools/markerstore/pkg/marker"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	DB      DBConfig      `mapstructure:"db"`
	Marker  MarkerConfig  `mapstructure:"marker"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// DBConfig holds the warehouse connection credentials.
type DBConfig struct {
	// Host is "hostname" or "hostname:port"; the port defaults to 5432.
	Host     string `mapstructure:"host"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// MarkerConfig carries the process-wide marker settings shared by every
// target in the process.
type MarkerConfig struct {
	Table string `mapstructure:"table"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment. Environment variables use the
// MARKER prefix, e.g. MARKER_DB_HOST.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MARKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("marker.table", marker.DefaultMarkerTable)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values.
func (c Config) Validate() error {
	if c.DB.Host == "" {
		return fmt.Errorf("db.host is required")
	}
	if c.DB.Database == "" {
		return fmt.Errorf("db.database is required")
	}
	if c.DB.User == "" {
		return fmt.Errorf("db.user is required")
	}
	if c.Marker.Table == "" {
		return fmt.Errorf("marker.table must not be empty")
	}
	return nil
}

// MarkerSettings converts the loaded config into the library's settings
// value.
func (c Config) MarkerSettings() marker.Settings {
	return marker.Settings{MarkerTable: c.Marker.Table}
}
