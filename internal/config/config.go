// Package config loads issues settings from .issues.yaml, ISSUES_* environment
// variables and command flags through viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robby/issues/internal/domain"
	"github.com/spf13/viper"
)

// Defaults
const (
	DefaultAPIURL     = "http://localhost:5000"
	DefaultTimeout    = 10 * time.Second
	DefaultPageSize   = 10
	DefaultSortBy     = domain.FieldUpdatedAt
	DefaultSortOrder  = "desc"
	DefaultLogLevel   = "info"
	DefaultUpdateMode = "full"
	EnvPrefix         = "ISSUES"
	FileName          = ".issues"
)

// Config represents the full client configuration
type Config struct {
	API    APIConfig    `mapstructure:"api"`
	List   ListConfig   `mapstructure:"list"`
	Web    WebConfig    `mapstructure:"web"`
	Log    LogConfig    `mapstructure:"log"`
	Update UpdateConfig `mapstructure:"update"`
}

// APIConfig locates the issue server
type APIConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ListConfig holds the initial list parameters
type ListConfig struct {
	PageSize  int    `mapstructure:"page_size"`
	SortBy    string `mapstructure:"sort_by"`
	SortOrder string `mapstructure:"sort_order"`
}

// WebConfig points at an optional browser UI for the same server
type WebConfig struct {
	URL string `mapstructure:"url"`
}

// LogConfig controls the log destination for the TUI
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// UpdateConfig selects the edit payload shape ("full" or "diff")
type UpdateConfig struct {
	Mode string `mapstructure:"mode"`
}

// Setup points v at the config file and the ISSUES_ environment. An empty
// cfgFile searches for .issues.yaml in the working directory and $HOME.
// A missing config file is not an error.
func Setup(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if cwd, err := os.Getwd(); err == nil {
			v.AddConfigPath(cwd)
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(FileName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	RegisterDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// RegisterDefaults registers every key with v so environment overrides are
// picked up by Unmarshal.
func RegisterDefaults(v *viper.Viper) {
	v.SetDefault("api.url", DefaultAPIURL)
	v.SetDefault("api.timeout", DefaultTimeout)
	v.SetDefault("list.page_size", DefaultPageSize)
	v.SetDefault("list.sort_by", DefaultSortBy)
	v.SetDefault("list.sort_order", DefaultSortOrder)
	v.SetDefault("web.url", "")
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("update.mode", DefaultUpdateMode)
}

// Load loads configuration from v
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	if cfg.API.URL == "" {
		cfg.API.URL = DefaultAPIURL
	}

	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = DefaultTimeout
	}

	if cfg.List.PageSize == 0 {
		cfg.List.PageSize = DefaultPageSize
	}

	if cfg.List.SortBy == "" {
		cfg.List.SortBy = DefaultSortBy
	}

	if cfg.List.SortOrder == "" {
		cfg.List.SortOrder = DefaultSortOrder
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}

	if cfg.Log.File == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			dir = os.TempDir()
		}
		cfg.Log.File = filepath.Join(dir, "issues", "issues.log")
	}

	if cfg.Update.Mode == "" {
		cfg.Update.Mode = DefaultUpdateMode
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api.url: %q (must be an http or https URL)", c.API.URL)
	}

	if c.API.Timeout < 0 {
		return fmt.Errorf("invalid api.timeout: %s", c.API.Timeout)
	}

	if c.List.PageSize < 1 {
		return fmt.Errorf("invalid list.page_size: %d (must be at least 1)", c.List.PageSize)
	}

	validSort := false
	for _, f := range domain.SortFields {
		if f == c.List.SortBy {
			validSort = true
			break
		}
	}
	if !validSort {
		return fmt.Errorf("invalid list.sort_by: %s", c.List.SortBy)
	}

	if c.List.SortOrder != string(domain.SortAsc) && c.List.SortOrder != string(domain.SortDesc) {
		return fmt.Errorf("invalid list.sort_order: %s (must be asc or desc)", c.List.SortOrder)
	}

	if c.Web.URL != "" {
		if _, err := url.ParseRequestURI(c.Web.URL); err != nil {
			return fmt.Errorf("invalid web.url: %w", err)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level: %s (must be debug, info, warn or error)", c.Log.Level)
	}

	if c.Update.Mode != "full" && c.Update.Mode != "diff" {
		return fmt.Errorf("invalid update.mode: %s (must be full or diff)", c.Update.Mode)
	}

	return nil
}
