package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/robby/issues/internal/domain"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	formatTable = "table"
	formatText  = "text"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Bold(true).Width(10)
)

// checkFormat rejects formats outside allowed.
func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unknown output format %q (want %s)", format, strings.Join(allowed, ", "))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// writeIssueTable renders one page as a table followed by a paging line.
func writeIssueTable(w io.Writer, res *domain.PaginatedResult) error {
	if len(res.Issues) == 0 {
		_, err := fmt.Fprintln(w, "No issues found.")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "STATUS", "PRIORITY", "ASSIGNEE", "UPDATED").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, issue := range res.Issues {
		t.Row(
			issue.ID,
			issue.Title,
			string(issue.Status),
			string(issue.Priority),
			issue.Assignee,
			issue.UpdatedAt.String(),
		)
	}

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "page %d/%d (%d issues)\n", res.Page, max(res.TotalPages, 1), res.Total)
	return err
}

// writeIssueText renders one issue as labelled lines and its description.
func writeIssueText(w io.Writer, issue *domain.Issue) error {
	rows := []struct{ label, value string }{
		{"ID", issue.ID},
		{"Title", issue.Title},
		{"Status", string(issue.Status)},
		{"Priority", string(issue.Priority)},
		{"Assignee", issue.Assignee},
		{"Created", issue.CreatedAt.String()},
		{"Updated", issue.UpdatedAt.String()},
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(labelStyle.Render(r.label))
		b.WriteString(" ")
		b.WriteString(r.value)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(issue.Description)
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}
