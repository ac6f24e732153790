package tui

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"
	"github.com/robby/issues/internal/domain"
	"github.com/robby/issues/internal/source"
	"github.com/robby/issues/internal/store"
)

// Layout constants
const (
	headerLines    = 3 // title/status, filters, toast or prompt
	footerLines    = 1
	minTableHeight = 4
	cellPadding    = 2 // table cells are padded one column each side

	idColumnWidth       = 10
	statusColumnWidth   = 11
	priorityColumnWidth = 8
	updatedColumnWidth  = 16
	minFlexColumnWidth  = 10
)

// pageSizes are the sizes +/- step through.
var pageSizes = []int{5, 10, 25, 50}

// openURL is swapped out in tests.
var openURL = browser.OpenURL

// promptMode is the text prompt shown above the table, if any.
type promptMode int

const (
	promptNone promptMode = iota
	promptSearch
	promptAssignee
)

// ListModel is the paginated issue table bound to the list store.
type ListModel struct {
	// Dependencies
	store  *store.Store
	ctx    context.Context
	logger *slog.Logger
	webURL string

	// UI components
	keymap  KeyMap
	help    HelpModel
	spinner spinner.Model
	table   table.Model
	input   textinput.Model
	picker  *OptionPickerModel

	// View state
	prompt     promptMode
	promptPrev string // value restored when a prompt is cancelled
	width      int
	height     int
	showHelp   bool
	errorToast string
	infoToast  string
}

// NewListModel creates a list model. webURL may be empty, in which case
// opening issues in a browser is unavailable.
func NewListModel(s *store.Store, ctx context.Context, logger *slog.Logger, webURL string) ListModel {
	if logger == nil {
		logger = slog.Default()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.CharLimit = 200

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("205")).
		Bold(false)

	m := ListModel{
		store:   s,
		ctx:     ctx,
		logger:  logger,
		webURL:  webURL,
		keymap:  DefaultKeyMap(),
		help:    NewHelpModel(DefaultKeyMap()),
		spinner: sp,
		input:   ti,
	}
	m.table = table.New(
		table.WithColumns(m.columns()),
		table.WithFocused(true),
		table.WithHeight(minTableHeight),
		table.WithStyles(styles),
	)
	return m
}

// Init starts the first load.
func (m ListModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tea.WindowSize(),
		m.Reload(),
	)
}

// Reload re-issues the current query.
func (m ListModel) Reload() tea.Cmd {
	return m.load(m.store.Reload())
}

// load runs a store Load off the event loop and reports back with listLoadedMsg.
func (m ListModel) load(load store.Load) tea.Cmd {
	s, ctx := m.store, m.ctx
	return func() tea.Msg {
		return listLoadedMsg{result: s.Fetch(ctx, load)}
	}
}

// Update handles messages
func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		(&m).resize()
		return m, nil

	case listLoadedMsg:
		if !m.store.Apply(msg.result) {
			return m, nil
		}
		if err := m.store.Err(); err != nil {
			m.errorToast = "Load failed: " + source.UserMessage(err)
		} else {
			m.errorToast = ""
		}
		(&m).refreshRows()
		return m, nil

	case optionSelectedMsg:
		m.picker = nil
		return m.applyOption(msg)

	case optionCanceledMsg:
		m.picker = nil
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

// applyOption applies a picker choice to the store.
func (m ListModel) applyOption(msg optionSelectedMsg) (tea.Model, tea.Cmd) {
	switch msg.purpose {
	case pickStatus:
		load, err := m.store.SetFilter(store.FilterStatus, msg.value)
		if err != nil {
			return m, nil
		}
		return m, m.load(load)
	case pickPriority:
		load, err := m.store.SetFilter(store.FilterPriority, msg.value)
		if err != nil {
			return m, nil
		}
		return m, m.load(load)
	case pickSortField:
		if load, ok := m.store.SetSort(msg.value, m.store.State().SortOrder); ok {
			return m, m.load(load)
		}
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m ListModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.picker != nil {
		picker, cmd := m.picker.Update(msg)
		m.picker = &picker
		return m, cmd
	}

	// Help overlay
	if m.showHelp {
		if msg.String() == "?" || msg.String() == "q" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	if m.prompt != promptNone {
		return m.handlePrompt(msg)
	}

	m.infoToast = ""
	st := m.store.State()

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = true

	case key.Matches(msg, m.keymap.Search):
		return m.openPrompt(promptSearch, st.Search)

	case key.Matches(msg, m.keymap.AssigneeFilter):
		return m.openPrompt(promptAssignee, st.Assignee)

	case key.Matches(msg, m.keymap.StatusFilter):
		p := newStatusPicker(st.Status)
		m.picker = &p

	case key.Matches(msg, m.keymap.PriorityFilter):
		p := newPriorityPicker(st.Priority)
		m.picker = &p

	case key.Matches(msg, m.keymap.SortField):
		p := newSortPicker(st.SortBy)
		m.picker = &p

	case key.Matches(msg, m.keymap.SortOrder):
		if load, ok := m.store.SetSort(st.SortBy, store.ToggleOrder(st.SortOrder)); ok {
			return m, m.load(load)
		}

	case key.Matches(msg, m.keymap.ClearFilters):
		return m, m.load(m.store.ClearFilters())

	case key.Matches(msg, m.keymap.NextPage):
		if load, ok := m.store.NextPage(); ok {
			return m, m.load(load)
		}

	case key.Matches(msg, m.keymap.PrevPage):
		if load, ok := m.store.PrevPage(); ok {
			return m, m.load(load)
		}

	case key.Matches(msg, m.keymap.PageSizeUp):
		if size := stepPageSize(st.PageSize, 1); size != st.PageSize {
			return m, m.load(m.store.SetPage(1, size))
		}

	case key.Matches(msg, m.keymap.PageSizeDown):
		if size := stepPageSize(st.PageSize, -1); size != st.PageSize {
			return m, m.load(m.store.SetPage(1, size))
		}

	case key.Matches(msg, m.keymap.Refresh):
		return m, m.Reload()

	case key.Matches(msg, m.keymap.Open):
		if issue := m.selectedIssue(); issue != nil {
			id := issue.ID
			return m, func() tea.Msg { return openDetailMsg{id: id} }
		}

	case key.Matches(msg, m.keymap.Create):
		return m, func() tea.Msg { return openFormMsg{} }

	case key.Matches(msg, m.keymap.Edit):
		if issue := m.selectedIssue(); issue != nil {
			return m, func() tea.Msg { return openFormMsg{issue: issue} }
		}

	case key.Matches(msg, m.keymap.Browser):
		if issue := m.selectedIssue(); issue != nil {
			(&m).openInBrowser(issue.ID)
		}

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m ListModel) openPrompt(mode promptMode, value string) (tea.Model, tea.Cmd) {
	m.prompt = mode
	m.promptPrev = value
	switch mode {
	case promptSearch:
		m.input.Prompt = "/ "
		m.input.Placeholder = "search title or description"
	case promptAssignee:
		m.input.Prompt = "assignee: "
		m.input.Placeholder = "email, empty for any"
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

// handlePrompt routes keys to the search or assignee input. Search is
// applied as the user types; assignee on enter.
func (m ListModel) handlePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mode := m.prompt

	switch {
	case key.Matches(msg, m.keymap.Apply):
		m.prompt = promptNone
		m.input.Blur()
		value := strings.TrimSpace(m.input.Value())
		st := m.store.State()
		switch mode {
		case promptSearch:
			if value != st.Search {
				return m, m.load(m.store.SetSearch(value))
			}
		case promptAssignee:
			if value != st.Assignee {
				load, err := m.store.SetFilter(store.FilterAssignee, value)
				if err == nil {
					return m, m.load(load)
				}
			}
		}
		return m, nil

	case key.Matches(msg, m.keymap.Cancel):
		m.prompt = promptNone
		m.input.Blur()
		if mode == promptSearch && m.store.State().Search != m.promptPrev {
			return m, m.load(m.store.SetSearch(m.promptPrev))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if mode == promptSearch {
		if value := strings.TrimSpace(m.input.Value()); value != m.store.State().Search {
			return m, tea.Batch(cmd, m.load(m.store.SetSearch(value)))
		}
	}
	return m, cmd
}

// openInBrowser opens the issue page of the configured web UI.
func (m *ListModel) openInBrowser(id string) {
	if m.webURL == "" {
		m.errorToast = "web.url is not configured"
		return
	}
	if err := openURL(issueURL(m.webURL, id)); err != nil {
		m.logger.Error("failed to open browser", "id", id, "error", err)
		m.errorToast = fmt.Sprintf("Open failed: %v", err)
	}
}

func issueURL(webURL, id string) string {
	return strings.TrimRight(webURL, "/") + "/issue/" + url.PathEscape(id)
}

// stepPageSize returns the next larger (dir > 0) or smaller page size.
func stepPageSize(current, dir int) int {
	if dir > 0 {
		for _, s := range pageSizes {
			if s > current {
				return s
			}
		}
		return current
	}
	for i := len(pageSizes) - 1; i >= 0; i-- {
		if pageSizes[i] < current {
			return pageSizes[i]
		}
	}
	return current
}

// SetInfo shows a transient confirmation in the header.
func (m *ListModel) SetInfo(text string) {
	m.infoToast = text
	m.errorToast = ""
}

// SetError shows a transient error in the header.
func (m *ListModel) SetError(text string) {
	m.errorToast = text
	m.infoToast = ""
}

// selectedIssue returns a copy of the highlighted issue, or nil.
func (m ListModel) selectedIssue() *domain.Issue {
	res := m.store.Result()
	if res == nil {
		return nil
	}
	i := m.table.Cursor()
	if i < 0 || i >= len(res.Issues) {
		return nil
	}
	issue := res.Issues[i]
	return &issue
}

// refreshRows rebuilds table rows from the displayed page.
func (m *ListModel) refreshRows() {
	var rows []table.Row
	if res := m.store.Result(); res != nil {
		rows = make([]table.Row, 0, len(res.Issues))
		for _, issue := range res.Issues {
			rows = append(rows, table.Row{
				issue.ID,
				issue.Title,
				string(issue.Status),
				string(issue.Priority),
				issue.Assignee,
				issue.UpdatedAt.String(),
			})
		}
	}
	m.table.SetColumns(m.columns())
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// resize fits the table into the window.
func (m *ListModel) resize() {
	h := m.height - headerLines - footerLines
	if h < minTableHeight {
		h = minTableHeight
	}
	m.table.SetColumns(m.columns())
	m.table.SetWidth(m.width)
	m.table.SetHeight(h)
	m.input.Width = m.width - 12
}

// columns returns the table columns sized to the window, with an arrow on
// the sorted column.
func (m ListModel) columns() []table.Column {
	width := m.width
	if width == 0 {
		width = 100
	}

	fixed := idColumnWidth + statusColumnWidth + priorityColumnWidth + updatedColumnWidth
	flex := width - fixed - 6*cellPadding
	titleWidth := max(flex*6/10, minFlexColumnWidth)
	assigneeWidth := max(flex-titleWidth, minFlexColumnWidth)

	cols := []struct {
		field string
		title string
		width int
	}{
		{domain.FieldID, "ID", idColumnWidth},
		{domain.FieldTitle, "Title", titleWidth},
		{domain.FieldStatus, "Status", statusColumnWidth},
		{domain.FieldPriority, "Priority", priorityColumnWidth},
		{domain.FieldAssignee, "Assignee", assigneeWidth},
		{domain.FieldUpdatedAt, "Updated", updatedColumnWidth},
	}

	st := m.store.State()
	out := make([]table.Column, len(cols))
	for i, c := range cols {
		title := c.title
		if c.field == st.SortBy {
			title += " " + sortArrow(st.SortOrder)
		}
		out[i] = table.Column{Title: title, Width: c.width}
	}
	return out
}

func sortArrow(order domain.SortOrder) string {
	if order == domain.SortAsc {
		return "↑"
	}
	return "↓"
}

// View renders the list screen
func (m ListModel) View() string {
	width := m.width
	height := m.height
	if width == 0 {
		width = 100
	}
	if height == 0 {
		height = 24
	}
	bodyHeight := max(height-headerLines-footerLines, minTableHeight)

	sections := []string{
		m.renderHeader(width),
		m.renderFilters(),
		m.renderToastOrPrompt(),
	}

	res := m.store.Result()
	switch {
	case m.showHelp:
		sections = append(sections, m.help.View(width))
	case m.picker != nil:
		sections = append(sections, lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Center, m.picker.View()))
	case res == nil && m.store.Loading():
		sections = append(sections, lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Center, m.spinner.View()+" Loading issues..."))
	case res == nil:
		sections = append(sections, lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Center, "No issues loaded. Press 'r' to retry."))
	case len(res.Issues) == 0:
		sections = append(sections, lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Center, "No issues match the current filters."))
	default:
		sections = append(sections, m.table.View())
	}

	sections = append(sections, dimStyle.Render(m.help.ShortView(width)))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the title on the left and paging status on the right
func (m ListModel) renderHeader(width int) string {
	title := TitleStyle.Render("Issues")

	var statusParts []string
	if m.store.Loading() {
		statusParts = append(statusParts, m.spinner.View()+"loading")
	}
	if res := m.store.Result(); res != nil {
		statusParts = append(statusParts, fmt.Sprintf("page %d/%d (%d issues)", res.Page, max(res.TotalPages, 1), res.Total))
	}
	st := m.store.State()
	statusParts = append(statusParts, fmt.Sprintf("sort %s %s", st.SortBy, sortArrow(st.SortOrder)))
	statusParts = append(statusParts, fmt.Sprintf("%d/page", st.PageSize))
	status := dimStyle.Render(strings.Join(statusParts, " | "))

	padding := width - lipgloss.Width(title) - lipgloss.Width(status) - 1
	if padding < 1 {
		padding = 1
	}
	return title + strings.Repeat(" ", padding) + status
}

// renderFilters renders one chip per active filter
func (m ListModel) renderFilters() string {
	st := m.store.State()
	var chips []string
	if st.Search != "" {
		chips = append(chips, filterChipStyle.Render("/"+st.Search))
	}
	if st.Status != "" {
		chips = append(chips, filterChipStyle.Render("status:"+st.Status))
	}
	if st.Priority != "" {
		chips = append(chips, filterChipStyle.Render("priority:"+st.Priority))
	}
	if st.Assignee != "" {
		chips = append(chips, filterChipStyle.Render("assignee:"+st.Assignee))
	}
	if len(chips) == 0 {
		return dimStyle.Render("no filters")
	}
	return strings.Join(chips, " ")
}

func (m ListModel) renderToastOrPrompt() string {
	switch {
	case m.prompt != promptNone:
		return PromptStyle.Render(m.input.View())
	case m.errorToast != "":
		return ErrorStyle.Render(m.errorToast)
	case m.infoToast != "":
		return SuccessStyle.Render(m.infoToast)
	}
	return ""
}
