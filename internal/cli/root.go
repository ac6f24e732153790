// Package cli implements the issues command line: the interactive TUI at the
// root plus non-interactive list, show, create and edit subcommands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/robby/issues/internal/config"
	"github.com/robby/issues/internal/domain"
	"github.com/robby/issues/internal/form"
	"github.com/robby/issues/internal/logging"
	"github.com/robby/issues/internal/source"
	"github.com/robby/issues/internal/store"
	"github.com/robby/issues/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// newSource builds the issue source for a command. Tests replace it.
var newSource = func(cfg *config.Config, logger *slog.Logger) (source.Source, error) {
	return source.New(source.Config{
		BaseURL: cfg.API.URL,
		Timeout: cfg.API.Timeout,
		Logger:  logger,
	})
}

var rootCmd = &cobra.Command{
	Use:   "issues",
	Short: "Terminal client for the issue tracker",
	Long: `issues is a terminal client for a remote issue-tracking service.

Without a subcommand it starts an interactive table of issues with search,
filters, sorting and paging, a detail view, and create/edit forms.

Configuration:
  .issues.yaml in the working directory or $HOME (or --config)
  ISSUES_* environment variables, e.g. ISSUES_API_URL=http://localhost:5000`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

// Execute runs the root command. Commands stop when ctx is cancelled.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .issues.yaml)")
	rootCmd.PersistentFlags().String("api-url", "", "issue server base URL")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("api.url", rootCmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if err := config.Setup(viper.GetViper(), cfgFile); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig loads and validates the effective configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// cliLogger returns the stderr logger used by subcommands.
func cliLogger(cfg *config.Config) *slog.Logger {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.NewStderr(level)
}

// initialState seeds list parameters from the config.
func initialState(cfg *config.Config) store.State {
	st := store.DefaultState()
	st.PageSize = cfg.List.PageSize
	st.SortBy = cfg.List.SortBy
	st.SortOrder = domain.SortOrder(cfg.List.SortOrder)
	return st
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger, closeLog, err := logging.OpenFile(cfg.Log.File, level)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()
	slog.SetDefault(logger)

	src, err := newSource(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create issue source: %w", err)
	}

	s := store.New(src, logger)
	s.SetState(initialState(cfg))

	logger.Info("starting tui", "api_url", cfg.API.URL, "page_size", cfg.List.PageSize)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	err = tui.Run(ctx, src, s, tui.Options{
		Logger:     logger,
		WebURL:     cfg.Web.URL,
		UpdateMode: form.UpdateMode(cfg.Update.Mode),
	})
	if err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}
