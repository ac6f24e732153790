package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		API:    APIConfig{URL: "http://localhost:5000", Timeout: time.Second},
		List:   ListConfig{PageSize: 10, SortBy: "updatedAt", SortOrder: "desc"},
		Log:    LogConfig{Level: "info"},
		Update: UpdateConfig{Mode: "full"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "bad api url",
			mutate:  func(c *Config) { c.API.URL = "localhost:5000" },
			wantErr: true,
			errMsg:  "invalid api.url",
		},
		{
			name:    "zero page size",
			mutate:  func(c *Config) { c.List.PageSize = 0 },
			wantErr: true,
			errMsg:  "invalid list.page_size",
		},
		{
			name:    "unknown sort field",
			mutate:  func(c *Config) { c.List.SortBy = "colour" },
			wantErr: true,
			errMsg:  "invalid list.sort_by",
		},
		{
			name:    "unknown sort order",
			mutate:  func(c *Config) { c.List.SortOrder = "up" },
			wantErr: true,
			errMsg:  "invalid list.sort_order",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: true,
			errMsg:  "invalid log.level",
		},
		{
			name:    "unknown update mode",
			mutate:  func(c *Config) { c.Update.Mode = "patch" },
			wantErr: true,
			errMsg:  "invalid update.mode",
		},
		{
			name:    "diff update mode",
			mutate:  func(c *Config) { c.Update.Mode = "diff" },
			wantErr: false,
		},
		{
			name:    "web url",
			mutate:  func(c *Config) { c.Web.URL = "http://localhost:4200" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	RegisterDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultAPIURL, cfg.API.URL)
	assert.Equal(t, DefaultTimeout, cfg.API.Timeout)
	assert.Equal(t, 10, cfg.List.PageSize)
	assert.Equal(t, "updatedAt", cfg.List.SortBy)
	assert.Equal(t, "desc", cfg.List.SortOrder)
	assert.Equal(t, "full", cfg.Update.Mode)
	assert.Equal(t, "issues.log", filepath.Base(cfg.Log.File))
}

func TestSetup_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "issues.yaml")
	content := `api:
  url: http://issues.internal:8000
  timeout: 3s
list:
  page_size: 25
  sort_by: priority
update:
  mode: diff
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("ISSUES_LIST_SORT_ORDER", "asc")

	v := viper.New()
	require.NoError(t, Setup(v, path))

	cfg, err := Load(v)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://issues.internal:8000", cfg.API.URL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, 25, cfg.List.PageSize)
	assert.Equal(t, "priority", cfg.List.SortBy)
	assert.Equal(t, "asc", cfg.List.SortOrder)
	assert.Equal(t, "diff", cfg.Update.Mode)
}

func TestSetup_MissingFileIsNotAnError(t *testing.T) {
	origWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(origWD) })
	t.Setenv("HOME", t.TempDir())

	v := viper.New()
	require.NoError(t, Setup(v, ""))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.API.URL)
}
