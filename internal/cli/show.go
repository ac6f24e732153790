package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/robby/issues/internal/source"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one issue",
	Long: `Show every field of one issue.

Examples:
  issues show a1b2c3d4
  issues show a1b2c3d4 -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringP("output", "o", formatText, "Output format: text, json, yaml")
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := cliLogger(cfg)
	output, _ := cmd.Flags().GetString("output")

	src, err := newSource(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create issue source: %w", err)
	}
	return showIssue(cmd.Context(), cmd.OutOrStdout(), src, logger, args[0], output)
}

func showIssue(ctx context.Context, w io.Writer, src source.Source, logger *slog.Logger, id, output string) error {
	if err := checkFormat(output, formatText, formatJSON, formatYAML); err != nil {
		return err
	}

	issue, err := src.Get(ctx, id)
	if err != nil {
		logger.Error("failed to load issue", "id", id, "error", err)
		return fmt.Errorf("%s: %s (%w)", id, source.UserMessage(err), err)
	}

	switch output {
	case formatJSON:
		return writeJSON(w, issue)
	case formatYAML:
		return writeYAML(w, issue)
	default:
		return writeIssueText(w, issue)
	}
}
