package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robby/issues/internal/domain"
	"github.com/robby/issues/internal/source"
	"github.com/robby/issues/internal/source/sourcetest"
	"github.com/robby/issues/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebURL = "https://issues.example.com"

// createTestIssues returns n issues, issue-01 updated first and issue-n last.
func createTestIssues(n int) []domain.Issue {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	issues := make([]domain.Issue, n)
	for i := range issues {
		issues[i] = domain.Issue{
			ID:          fmt.Sprintf("issue-%02d", i+1),
			Title:       fmt.Sprintf("Issue %02d", i+1),
			Description: "Description",
			Status:      domain.Statuses[i%3],
			Priority:    domain.Priorities[i%3],
			Assignee:    fmt.Sprintf("dev%d@example.com", i%2+1),
			CreatedAt:   domain.NewTimestamp(base),
			UpdatedAt:   domain.NewTimestamp(base.Add(time.Duration(i) * time.Hour)),
		}
	}
	return issues
}

// createTestList returns a list model that has applied its first page.
func createTestList(t *testing.T, n int) (ListModel, *store.Store, *sourcetest.Fake) {
	t.Helper()
	fake := sourcetest.New(createTestIssues(n)...)
	s := store.New(fake, nil)
	m := NewListModel(s, context.Background(), nil, testWebURL)
	m = feedList(t, m, m.Reload())
	require.NotNil(t, s.Result())
	return m, s, fake
}

// drain runs cmd and returns the messages it produces, expanding batches.
// Timer-driven commands (spinner ticks, cursor blinks) are dropped.
func drain(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-ch:
	case <-time.After(50 * time.Millisecond):
		return nil
	}

	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(t, c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// feedList runs cmd and applies every resulting message to m, following
// the commands those messages return in turn.
func feedList(t *testing.T, m ListModel, cmd tea.Cmd) ListModel {
	t.Helper()
	for _, msg := range drain(t, cmd) {
		model, next := m.Update(msg)
		m = feedList(t, model.(ListModel), next)
	}
	return m
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// pressList sends one key and applies whatever it triggers.
func pressList(t *testing.T, m ListModel, key string) ListModel {
	t.Helper()
	model, cmd := m.Update(keyPress(key))
	return feedList(t, model.(ListModel), cmd)
}

func rowIDs(m ListModel) []string {
	var ids []string
	for _, row := range m.table.Rows() {
		ids = append(ids, row[0])
	}
	return ids
}

func TestListModel_LoadPopulatesRows(t *testing.T) {
	m, _, _ := createTestList(t, 25)

	ids := rowIDs(m)
	require.Len(t, ids, 10)
	assert.Equal(t, "issue-25", ids[0], "newest update first by default")
	assert.Equal(t, "issue-16", ids[9])

	view := m.View()
	assert.Contains(t, view, "page 1/3 (25 issues)")
	assert.Contains(t, view, "no filters")
}

func TestListModel_StaleLoadIgnored(t *testing.T) {
	m, s, _ := createTestList(t, 25)

	filter, err := s.SetFilter(store.FilterStatus, string(domain.StatusClosed))
	require.NoError(t, err)
	older := m.load(filter)
	newer := m.load(s.ClearFilters())

	// Newest response arrives first, then the superseded one.
	m = feedList(t, m, newer)
	m = feedList(t, m, older)

	assert.Equal(t, 25, s.Result().Total)
	assert.Len(t, rowIDs(m), 10)
	assert.Empty(t, s.State().Status)
}

func TestListModel_StatusPickerResetsPage(t *testing.T) {
	m, s, fake := createTestList(t, 25)

	m = pressList(t, m, "n")
	require.Equal(t, 2, s.State().Page)

	m = pressList(t, m, "s")
	require.NotNil(t, m.picker)

	// "(any status)" is first, "open" second.
	m = pressList(t, m, "down")
	m = pressList(t, m, "enter")
	assert.Nil(t, m.picker)

	st := s.State()
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, string(domain.StatusOpen), st.Status)

	calls := fake.Calls()
	last := calls[len(calls)-1]
	assert.Equal(t, "list", last.Op)
	assert.Equal(t, string(domain.StatusOpen), last.Query.Status)
	assert.Equal(t, 1, last.Query.Page)

	for _, row := range m.table.Rows() {
		assert.Equal(t, string(domain.StatusOpen), row[2])
	}
	assert.Contains(t, m.View(), "status:open")
}

func TestListModel_PickerCancel(t *testing.T) {
	m, s, fake := createTestList(t, 5)
	before := fake.CallCount("list")

	m = pressList(t, m, "p")
	require.NotNil(t, m.picker)
	m = pressList(t, m, "esc")

	assert.Nil(t, m.picker)
	assert.Empty(t, s.State().Priority)
	assert.Equal(t, before, fake.CallCount("list"))
}

func TestListModel_SortOrderToggle(t *testing.T) {
	m, s, _ := createTestList(t, 25)

	m = pressList(t, m, "O")

	assert.Equal(t, domain.SortAsc, s.State().SortOrder)
	assert.Equal(t, "issue-01", rowIDs(m)[0])

	var updated string
	for _, c := range m.table.Columns() {
		if strings.HasPrefix(c.Title, "Updated") {
			updated = c.Title
		}
	}
	assert.Equal(t, "Updated ↑", updated)
}

func TestListModel_SortPicker(t *testing.T) {
	m, s, _ := createTestList(t, 5)

	m = pressList(t, m, "o")
	require.NotNil(t, m.picker)

	model, cmd := m.Update(optionSelectedMsg{purpose: pickSortField, value: domain.FieldTitle})
	m = feedList(t, model.(ListModel), cmd)

	assert.Equal(t, domain.FieldTitle, s.State().SortBy)
	assert.Equal(t, domain.SortDesc, s.State().SortOrder)
	assert.Equal(t, "issue-05", rowIDs(m)[0])
}

func TestListModel_Paging(t *testing.T) {
	m, s, fake := createTestList(t, 25)

	m = pressList(t, m, "n")
	m = pressList(t, m, "n")
	assert.Equal(t, 3, s.State().Page)
	assert.Len(t, rowIDs(m), 5)

	calls := fake.CallCount("list")
	m = pressList(t, m, "n")
	assert.Equal(t, 3, s.State().Page, "no page past the last")
	assert.Equal(t, calls, fake.CallCount("list"))

	m = pressList(t, m, "b")
	assert.Equal(t, 2, s.State().Page)
	assert.Len(t, rowIDs(m), 10)
}

func TestListModel_PageSize(t *testing.T) {
	m, s, _ := createTestList(t, 25)

	m = pressList(t, m, "n")
	m = pressList(t, m, "+")

	assert.Equal(t, 25, s.State().PageSize)
	assert.Equal(t, 1, s.State().Page)
	assert.Len(t, rowIDs(m), 25)

	m = pressList(t, m, "-")
	assert.Equal(t, 10, s.State().PageSize)
	assert.Len(t, rowIDs(m), 10)
}

func TestListModel_SearchPrompt(t *testing.T) {
	m, s, _ := createTestList(t, 25)

	m = pressList(t, m, "/")
	require.Equal(t, promptSearch, m.prompt)

	m = pressList(t, m, "Issue 1")
	assert.Equal(t, "Issue 1", s.State().Search, "search applies while typing")
	assert.Equal(t, 10, s.Result().Total)

	m = pressList(t, m, "enter")
	assert.Equal(t, promptNone, m.prompt)
	assert.Contains(t, m.View(), "/Issue 1")

	// Escape restores the search that was active when the prompt opened.
	m = pressList(t, m, "/")
	m = pressList(t, m, "x")
	assert.Equal(t, "Issue 1x", s.State().Search)
	m = pressList(t, m, "esc")
	assert.Equal(t, promptNone, m.prompt)
	assert.Equal(t, "Issue 1", s.State().Search)
	assert.Equal(t, 10, s.Result().Total)
}

func TestListModel_AssigneePrompt(t *testing.T) {
	m, s, fake := createTestList(t, 10)

	m = pressList(t, m, "a")
	require.Equal(t, promptAssignee, m.prompt)

	before := fake.CallCount("list")
	m = pressList(t, m, "dev2@example.com")
	assert.Equal(t, before, fake.CallCount("list"), "assignee applies on enter only")

	m = pressList(t, m, "enter")
	assert.Equal(t, "dev2@example.com", s.State().Assignee)
	assert.Equal(t, 5, s.Result().Total)

	m = pressList(t, m, "x")
	assert.Empty(t, s.State().Assignee)
	assert.Equal(t, 10, s.Result().Total)
	assert.Len(t, rowIDs(m), 10)
}

func TestListModel_LoadErrorKeepsRows(t *testing.T) {
	m, s, fake := createTestList(t, 25)
	previous := s.Result()

	fake.ListErr = &source.NetworkError{Op: "list issues", Err: errors.New("connection refused")}
	m = pressList(t, m, "r")

	assert.Same(t, previous, s.Result())
	assert.Len(t, rowIDs(m), 10)
	assert.Contains(t, m.errorToast, "Load failed")

	// A later success clears the error.
	fake.ListErr = nil
	m = pressList(t, m, "r")
	assert.Empty(t, m.errorToast)
}

func TestListModel_EmptyResult(t *testing.T) {
	m, s, _ := createTestList(t, 0)

	assert.Equal(t, 0, s.Result().Total)
	assert.Empty(t, rowIDs(m))
	assert.Contains(t, m.View(), "No issues match")
}

func TestListModel_Actions(t *testing.T) {
	m, _, _ := createTestList(t, 3)

	_, cmd := m.Update(keyPress("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, openDetailMsg{id: "issue-03"}, cmd())

	_, cmd = m.Update(keyPress("c"))
	require.NotNil(t, cmd)
	assert.Equal(t, openFormMsg{}, cmd())

	_, cmd = m.Update(keyPress("e"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(openFormMsg)
	require.True(t, ok)
	require.NotNil(t, msg.issue)
	assert.Equal(t, "issue-03", msg.issue.ID)
}

func TestListModel_OpenInBrowser(t *testing.T) {
	var opened []string
	orig := openURL
	openURL = func(u string) error {
		opened = append(opened, u)
		return nil
	}
	t.Cleanup(func() { openURL = orig })

	m, _, _ := createTestList(t, 3)
	m = pressList(t, m, "w")
	assert.Equal(t, []string{testWebURL + "/issue/issue-03"}, opened)
	assert.Empty(t, m.errorToast)

	m.webURL = ""
	m = pressList(t, m, "w")
	assert.Len(t, opened, 1)
	assert.Equal(t, "web.url is not configured", m.errorToast)
}

func TestListModel_HelpOverlay(t *testing.T) {
	m, _, _ := createTestList(t, 3)

	m = pressList(t, m, "?")
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "clear filters")

	m = pressList(t, m, "?")
	assert.False(t, m.showHelp)
}

func TestListModel_WindowResize(t *testing.T) {
	m, _, _ := createTestList(t, 3)

	model, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = model.(ListModel)

	assert.Equal(t, 120, m.width)
	// table.Height reports the rows viewport, below its 2-line column header.
	assert.Equal(t, 40-headerLines-footerLines-2, m.table.Height())
	assert.NotPanics(t, func() { _ = m.View() })
}

func TestStepPageSize(t *testing.T) {
	tests := []struct {
		current int
		dir     int
		want    int
	}{
		{10, 1, 25},
		{10, -1, 5},
		{50, 1, 50},
		{5, -1, 5},
		{7, 1, 10},
		{7, -1, 5},
		{100, -1, 50},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%+d", tt.current, tt.dir), func(t *testing.T) {
			assert.Equal(t, tt.want, stepPageSize(tt.current, tt.dir))
		})
	}
}

func TestIssueURL(t *testing.T) {
	assert.Equal(t, "https://x.test/issue/a1b2", issueURL("https://x.test", "a1b2"))
	assert.Equal(t, "https://x.test/issue/a1b2", issueURL("https://x.test/", "a1b2"))
	assert.Equal(t, "https://x.test/issue/a%2Fb", issueURL("https://x.test", "a/b"))
}
