package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/robby/issues/internal/form"
	"github.com/robby/issues/internal/source"
	"github.com/spf13/cobra"
)

// errInvalidForm is returned after field errors have been printed.
var errInvalidForm = errors.New("issue has invalid fields")

// fieldFlags are the issue field flags shared by create and edit.
var fieldFlags = []struct {
	name  string
	field form.Field
	usage string
}{
	{"title", form.FieldTitle, "Issue title (at least 3 characters)"},
	{"description", form.FieldDescription, "Issue description"},
	{"status", form.FieldStatus, "Status: open, in-progress, closed"},
	{"priority", form.FieldPriority, "Priority: low, medium, high"},
	{"assignee", form.FieldAssignee, "Assignee email"},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an issue",
	Long: `Create an issue. Status defaults to open and priority to medium.

Example:
  issues create --title "Login bug" --description "Cannot log in" --assignee dev@example.com`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
	addFieldFlags(createCmd)
}

func addFieldFlags(cmd *cobra.Command) {
	for _, ff := range fieldFlags {
		cmd.Flags().String(ff.name, "", ff.usage)
	}
}

// changedFields returns the field flags the user set explicitly.
func changedFields(cmd *cobra.Command) map[form.Field]string {
	values := map[form.Field]string{}
	for _, ff := range fieldFlags {
		if cmd.Flags().Changed(ff.name) {
			values[ff.field], _ = cmd.Flags().GetString(ff.name)
		}
	}
	return values
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := cliLogger(cfg)

	src, err := newSource(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create issue source: %w", err)
	}
	f := form.NewCreate(src, form.Options{Logger: logger})
	return submitForm(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), f, changedFields(cmd))
}

// submitForm overlays values onto f and submits it. Field errors are written
// to errW, the saved issue to w.
func submitForm(ctx context.Context, w, errW io.Writer, f *form.Form, values map[form.Field]string) error {
	for field, value := range values {
		if err := f.Set(field, value); err != nil {
			return err
		}
	}

	out, ok := f.Submit(ctx)
	if !ok {
		for _, field := range form.Fields {
			if msg := f.Error(field); msg != "" {
				fmt.Fprintf(errW, "  --%s: %s\n", field, msg)
			}
		}
		return errInvalidForm
	}
	if out.Err != nil {
		return fmt.Errorf("save failed: %s (%w)", source.UserMessage(out.Err), out.Err)
	}

	verb := "Created"
	if f.Mode() == form.ModeEdit {
		verb = "Updated"
	}
	fmt.Fprintf(w, "%s issue %s\n\n", verb, out.Issue.ID)
	return writeIssueText(w, out.Issue)
}

// newEditForm fetches id and returns an edit form pre-populated with it.
func newEditForm(ctx context.Context, src source.Source, logger *slog.Logger, id string, mode form.UpdateMode) (*form.Form, error) {
	issue, err := src.Get(ctx, id)
	if err != nil {
		logger.Error("failed to load issue", "id", id, "error", err)
		return nil, fmt.Errorf("%s: %s (%w)", id, source.UserMessage(err), err)
	}
	return form.NewEdit(src, *issue, form.Options{Logger: logger, UpdateMode: mode}), nil
}
