package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/robby/issues/internal/domain"
	"github.com/robby/issues/internal/source"
	"github.com/robby/issues/internal/store"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues",
	Long: `List one page of issues.

Filters combine: search matches title or description, status and priority
match exactly, assignee matches a substring of the email.

Examples:
  issues list --status open --sort-by priority
  issues list --search login -o json
  issues list --page 2 --page-size 25`,
	Args: cobra.NoArgs,
	RunE: runList,
}

// listOptions are the list flags.
type listOptions struct {
	Search    string
	Status    string
	Priority  string
	Assignee  string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
	Output    string
}

func init() {
	rootCmd.AddCommand(listCmd)

	f := listCmd.Flags()
	f.String("search", "", "Search title and description")
	f.String("status", "", "Filter by status (open, in-progress, closed)")
	f.String("priority", "", "Filter by priority (low, medium, high)")
	f.String("assignee", "", "Filter by assignee email")
	f.String("sort-by", "", "Sort field (default from list.sort_by)")
	f.String("sort-order", "", "Sort direction, asc or desc (default from list.sort_order)")
	f.Int("page", 1, "Page number")
	f.Int("page-size", 0, "Issues per page (default from list.page_size)")
	f.StringP("output", "o", formatTable, "Output format: table, json, yaml")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := cliLogger(cfg)

	f := cmd.Flags()
	opts := listOptions{}
	opts.Search, _ = f.GetString("search")
	opts.Status, _ = f.GetString("status")
	opts.Priority, _ = f.GetString("priority")
	opts.Assignee, _ = f.GetString("assignee")
	opts.SortBy, _ = f.GetString("sort-by")
	opts.SortOrder, _ = f.GetString("sort-order")
	opts.Page, _ = f.GetInt("page")
	opts.PageSize, _ = f.GetInt("page-size")
	opts.Output, _ = f.GetString("output")

	st := initialState(cfg)
	if opts.SortBy == "" {
		opts.SortBy = st.SortBy
	}
	if opts.SortOrder == "" {
		opts.SortOrder = string(st.SortOrder)
	}
	if opts.PageSize == 0 {
		opts.PageSize = st.PageSize
	}

	src, err := newSource(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create issue source: %w", err)
	}
	return listIssues(cmd.Context(), cmd.OutOrStdout(), src, logger, opts)
}

// listIssues drives the list store through one load and prints the page.
func listIssues(ctx context.Context, w io.Writer, src source.Source, logger *slog.Logger, opts listOptions) error {
	if err := checkFormat(opts.Output, formatTable, formatJSON, formatYAML); err != nil {
		return err
	}
	if !store.ValidSortField(opts.SortBy) {
		return fmt.Errorf("invalid --sort-by %q (want one of %v)", opts.SortBy, domain.SortFields)
	}
	order := domain.SortOrder(opts.SortOrder)
	if order != domain.SortAsc && order != domain.SortDesc {
		return fmt.Errorf("invalid --sort-order %q (want asc or desc)", opts.SortOrder)
	}
	if opts.Page < 1 || opts.PageSize < 1 {
		return fmt.Errorf("--page and --page-size must be at least 1")
	}

	s := store.New(src, logger)
	s.SetState(store.State{
		Page:      opts.Page,
		PageSize:  opts.PageSize,
		Search:    opts.Search,
		Status:    opts.Status,
		Priority:  opts.Priority,
		Assignee:  opts.Assignee,
		SortBy:    opts.SortBy,
		SortOrder: order,
	})

	if err := s.ReloadSync(ctx); err != nil {
		return fmt.Errorf("failed to list issues: %s (%w)", source.UserMessage(err), err)
	}

	res := s.Result()
	switch opts.Output {
	case formatJSON:
		return writeJSON(w, res)
	case formatYAML:
		return writeYAML(w, res)
	default:
		return writeIssueTable(w, res)
	}
}
