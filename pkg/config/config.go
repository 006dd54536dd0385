// Package config loads pricematrix settings from .pricematrix.yaml and
// PRICEMATRIX_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	// BackendDisk stores the matrix document on the local filesystem.
	BackendDisk = "disk"
	// BackendRedis stores the matrix document in Redis.
	BackendRedis = "redis"
)

// Config holds every setting used by the commands.
type Config struct {
	Path      string        `mapstructure:"path"`
	Store     string        `mapstructure:"backend"`
	Redis     string        `mapstructure:"redis_url"`
	Remote    string        `mapstructure:"remote"`
	Listen    string        `mapstructure:"listen"`
	Rules     []string      `mapstructure:"rules"`
	IOTimeout time.Duration `mapstructure:"io_timeout"`
	LogLevel  string        `mapstructure:"log_level"`
	LogFormat string        `mapstructure:"log_format"`
	LogFile   string        `mapstructure:"log_file"`
}

// Load reads the config file (if any) and the environment.
func Load() (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigName(".pricematrix") // .yaml is implicit
	v.SetEnvPrefix("PRICEMATRIX")
	v.AutomaticEnv()

	if override := os.Getenv("PRICEMATRIX_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}
	return FromViper(v)
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("path", "~/.pricematrix.db")
	v.SetDefault("backend", BackendDisk)
	v.SetDefault("redis_url", "redis://127.0.0.1:6379/0")
	v.SetDefault("remote", "")
	v.SetDefault("listen", "127.0.0.1:8080")
	v.SetDefault("rules", []string{"value >= 0.0"})
	v.SetDefault("io_timeout", 10*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_file", "")
}

// FromViper decodes and validates the settings held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	// Environment overrides arrive as a single ";"-separated string.
	rules := make([]string, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		rules = append(rules, splitRules(r)...)
	}
	cfg.Rules = rules
	path, err := homedir.Expand(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("config: expand path: %w", err)
	}
	cfg.Path = path
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	cfg.Remote = strings.TrimRight(strings.TrimSpace(cfg.Remote), "/")

	switch cfg.Store {
	case BackendDisk, BackendRedis:
	default:
		return nil, fmt.Errorf("config: unknown backend %q (expected %s or %s)", cfg.Store, BackendDisk, BackendRedis)
	}
	if cfg.IOTimeout < 0 {
		return nil, errors.New("config: io_timeout must not be negative")
	}
	return cfg, nil
}

func splitRules(raw string) []string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// BasePath is the directory of the disk document store.
func (c *Config) BasePath() string {
	return c.Path
}

// Backend names the document store kind.
func (c *Config) Backend() string {
	return c.Store
}

// RedisURL is the connection URL for the redis document store.
func (c *Config) RedisURL() string {
	return c.Redis
}
