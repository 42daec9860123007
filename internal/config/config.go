package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// DatabaseConfig selects the persistence driver. For sqlite the DSN is a file
// path (or ":memory:"); for postgres it is a lib/pq connection string.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// LogConfig mirrors logger.Config in file form.
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Dev        bool   `mapstructure:"dev"`
	Level      string `mapstructure:"level"`
}

// DragConfig holds the activation thresholds served to the drag UI.
type DragConfig struct {
	PointerDistance float64       `mapstructure:"pointer_distance"`
	TouchDelay      time.Duration `mapstructure:"touch_delay"`
	TouchTolerance  float64       `mapstructure:"touch_tolerance"`
}

// IDConfig selects the id generator ("uuid" or "counter").
type IDConfig struct {
	Mode string `mapstructure:"mode"`
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Drag     DragConfig     `mapstructure:"drag"`
	IDs      IDConfig       `mapstructure:"ids"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./data/questboard.db")

	v.SetDefault("log.dir", "./logs")
	v.SetDefault("log.file", "questboard.log")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.dev", true)
	v.SetDefault("log.level", "info")

	v.SetDefault("drag.pointer_distance", 8)
	v.SetDefault("drag.touch_delay", 250*time.Millisecond)
	v.SetDefault("drag.touch_tolerance", 5)

	v.SetDefault("ids.mode", "uuid")
}

// Load reads configuration from the YAML file at path, then applies
// QUESTBOARD_* environment overrides (e.g. QUESTBOARD_DATABASE_DSN).
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("questboard")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that have a closed set of options.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn must not be empty")
	}
	switch c.IDs.Mode {
	case "uuid", "counter":
	default:
		return fmt.Errorf("ids.mode must be uuid or counter, got %q", c.IDs.Mode)
	}
	return nil
}
