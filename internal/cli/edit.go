package cli

import (
	"errors"
	"fmt"

	"github.com/robby/issues/internal/form"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit an issue",
	Long: `Edit an issue. Fields not given keep their current value.

With update.mode set to diff only the changed fields are sent.

Example:
  issues edit a1b2c3d4 --status closed`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
	addFieldFlags(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	values := changedFields(cmd)
	if len(values) == 0 {
		return errors.New("nothing to change: pass at least one of --title, --description, --status, --priority, --assignee")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := cliLogger(cfg)

	src, err := newSource(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create issue source: %w", err)
	}

	f, err := newEditForm(cmd.Context(), src, logger, args[0], form.UpdateMode(cfg.Update.Mode))
	if err != nil {
		return err
	}
	return submitForm(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), f, values)
}
