package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/robby/issues/internal/domain"
	"github.com/robby/issues/internal/source"
)

// notFoundText is shown whenever the detail lookup fails.
const notFoundText = "Issue not found"

// Detail view styles
var (
	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	detailValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	panelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")).
				Padding(0, 1)
)

// detailState is the lifecycle of a detail lookup.
type detailState int

const (
	detailLoading detailState = iota
	detailLoaded
	detailFailed
)

// DetailModel shows one issue fetched by id. It is read-only.
type DetailModel struct {
	// Dependencies
	src    source.Source
	ctx    context.Context
	logger *slog.Logger
	webURL string

	id    string
	issue *domain.Issue
	state detailState
	err   error

	// UI components
	spinner  spinner.Model
	viewport viewport.Model

	errorToast string

	// View dimensions
	width  int
	height int
}

// NewDetailModel creates a detail model for id. The lookup starts in Init.
func NewDetailModel(id string, src source.Source, ctx context.Context, logger *slog.Logger, webURL string) DetailModel {
	if logger == nil {
		logger = slog.Default()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	vp := viewport.New(60, 10) // Will be resized in WindowSizeMsg
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	return DetailModel{
		src:      src,
		ctx:      ctx,
		logger:   logger,
		webURL:   webURL,
		id:       id,
		state:    detailLoading,
		spinner:  sp,
		viewport: vp,
	}
}

// Init initializes the detail model
func (m DetailModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.WindowSize(), m.fetch())
}

// fetch looks the issue up off the event loop.
func (m DetailModel) fetch() tea.Cmd {
	src, ctx, id := m.src, m.ctx, m.id
	return func() tea.Msg {
		issue, err := src.Get(ctx, id)
		return detailLoadedMsg{id: id, issue: issue, err: err}
	}
}

// Update handles messages
func (m DetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		(&m).resizeComponents()
		return m, nil

	case spinner.TickMsg:
		if m.state != detailLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case detailLoadedMsg:
		if msg.id != m.id {
			return m, nil
		}
		if msg.err != nil || msg.issue == nil {
			err := msg.err
			if err == nil {
				err = &source.NotFoundError{ID: msg.id}
			}
			m.logger.Error("failed to load issue", "id", msg.id, "error", err)
			m.state = detailFailed
			m.err = err
			return m, nil
		}
		m.state = detailLoaded
		m.issue = msg.issue
		(&m).updateViewportContent()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKeyPress processes keyboard input
func (m DetailModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc", "backspace":
		return m, func() tea.Msg { return closeDetailMsg{} }
	case "w":
		if m.issue == nil {
			return m, nil
		}
		if m.webURL == "" {
			m.errorToast = "web.url is not configured"
			return m, nil
		}
		if err := openURL(issueURL(m.webURL, m.issue.ID)); err != nil {
			m.logger.Error("failed to open browser", "id", m.issue.ID, "error", err)
			m.errorToast = fmt.Sprintf("Open failed: %v", err)
		}
	case "j", "down":
		m.viewport.LineDown(1)
	case "k", "up":
		m.viewport.LineUp(1)
	case "ctrl+d":
		m.viewport.HalfViewDown()
	case "ctrl+u":
		m.viewport.HalfViewUp()
	case "g":
		m.viewport.GotoTop()
	case "G":
		m.viewport.GotoBottom()
	}

	return m, nil
}

// resizeComponents calculates and sets component dimensions
func (m *DetailModel) resizeComponents() {
	// header(1) + metadata(7) + borders(2) + footer(1)
	m.viewport.Width = max(m.width-4, 20)
	m.viewport.Height = max(m.height-11, 3)
	if m.issue != nil {
		m.updateViewportContent()
	}
}

// updateViewportContent wraps the description to the viewport width.
func (m *DetailModel) updateViewportContent() {
	wrapWidth := max(m.viewport.Width-2, 10)
	body := strings.TrimSpace(m.issue.Description)
	if body == "" {
		m.viewport.SetContent(dimStyle.Render("No description provided."))
		return
	}
	m.viewport.SetContent(detailValueStyle.Render(wordwrap.String(body, wrapWidth)))
}

// View renders the detail screen
func (m DetailModel) View() string {
	width := m.width
	if width == 0 {
		width = 100
	}

	switch m.state {
	case detailLoading:
		return m.spinner.View() + " Loading issue " + m.id + "..."
	case detailFailed:
		var b strings.Builder
		b.WriteString(ErrorStyle.Render(notFoundText))
		b.WriteString("\n")
		if !errors.Is(m.err, source.ErrNotFound) {
			b.WriteString(dimStyle.Render(source.UserMessage(m.err)))
			b.WriteString("\n")
		}
		b.WriteString(HelpStyle.Render("[q]back"))
		return b.String()
	}

	issue := m.issue
	header := detailTitleStyle.Render(wordwrap.String(issue.Title, width-2))

	meta := strings.Join([]string{
		m.metaRow("ID", issue.ID),
		m.metaRow("Status", StatusBadge(issue.Status)),
		m.metaRow("Priority", PriorityBadge(issue.Priority)),
		m.metaRow("Assignee", issue.Assignee),
		m.metaRow("Created", issue.CreatedAt.String()),
		m.metaRow("Updated", fmt.Sprintf("%s (%s)", issue.UpdatedAt.String(), formatTimeAgo(issue.UpdatedAt.Time, time.Now()))),
	}, "\n")

	body := panelBorderStyle.Width(width - 4).Render(m.viewport.View())

	return lipgloss.JoinVertical(lipgloss.Left, header, "", meta, body, m.renderFooter(width))
}

func (m DetailModel) metaRow(label, value string) string {
	return labelStyle.Render(label) + " " + value
}

// renderFooter renders key hints on the left and scroll position on the right
func (m DetailModel) renderFooter(width int) string {
	left := "[q]back [w]browser [j/k]scroll"
	if m.errorToast != "" {
		left = ErrorStyle.Render(m.errorToast)
	} else {
		left = dimStyle.Render(left)
	}

	var right string
	switch {
	case m.viewport.AtTop() && m.viewport.AtBottom():
		right = ""
	case m.viewport.AtTop():
		right = "TOP"
	case m.viewport.AtBottom():
		right = "END"
	default:
		right = fmt.Sprintf("%d%%", int(m.viewport.ScrollPercent()*100))
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}
	return left + strings.Repeat(" ", padding) + dimStyle.Render(right)
}

// formatTimeAgo converts a timestamp to relative time
func formatTimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}

	duration := now.Sub(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		return fmt.Sprintf("%dm ago", int(duration.Minutes()))
	case duration < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(duration.Hours()))
	case duration < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(duration.Hours()/24))
	case duration < 30*24*time.Hour:
		return fmt.Sprintf("%dw ago", int(duration.Hours()/24/7))
	case duration < 365*24*time.Hour:
		return fmt.Sprintf("%dmo ago", int(duration.Hours()/24/30))
	default:
		return fmt.Sprintf("%dy ago", int(duration.Hours()/24/365))
	}
}
