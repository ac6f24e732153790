package tui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robby/issues/internal/form"
	"github.com/robby/issues/internal/source"
	"github.com/robby/issues/internal/store"
)

// AppScreen represents the different screens in the application.
type AppScreen int

const (
	ScreenList AppScreen = iota
	ScreenDetail
	ScreenForm
)

// Options configures the app.
type Options struct {
	Logger     *slog.Logger
	WebURL     string          // base URL of the web UI, optional
	UpdateMode form.UpdateMode // edit payload shape
}

// AppModel is the root Bubble Tea model that manages screen transitions.
// The list model is kept across screens so its query state survives
// navigation to the detail view and the form dialog.
type AppModel struct {
	// Dependencies
	src   source.Source
	store *store.Store
	ctx   context.Context
	opts  Options

	// Current state
	currentScreen AppScreen
	currentModel  tea.Model

	listModel ListModel
}

// NewAppModel creates the app around a source and its list store.
func NewAppModel(src source.Source, s *store.Store, ctx context.Context, opts Options) AppModel {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	list := NewListModel(s, ctx, opts.Logger, opts.WebURL)
	return AppModel{
		src:           src,
		store:         s,
		ctx:           ctx,
		opts:          opts,
		currentScreen: ScreenList,
		currentModel:  list,
		listModel:     list,
	}
}

// Init initializes the app model.
func (m AppModel) Init() tea.Cmd {
	return m.listModel.Init()
}

// Screen returns the screen currently shown.
func (m AppModel) Screen() AppScreen {
	return m.currentScreen
}

// Update handles messages and transitions between screens.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case listLoadedMsg:
		// List results always go to the list, whichever screen is showing.
		return m.updateList(msg)

	case spinner.TickMsg:
		// Spinners filter ticks by id; keep the list spinner alive off-screen.
		if m.currentScreen != ScreenList {
			next, listCmd := m.updateList(msg)
			m = next.(AppModel)
			var cmd tea.Cmd
			m.currentModel, cmd = m.currentModel.Update(msg)
			return m, tea.Batch(listCmd, cmd)
		}

	case openDetailMsg:
		m.currentScreen = ScreenDetail
		detailModel := NewDetailModel(msg.id, m.src, m.ctx, m.opts.Logger, m.opts.WebURL)
		m.currentModel = detailModel
		return m, detailModel.Init()

	case closeDetailMsg:
		// Back to the list without reloading.
		m.currentScreen = ScreenList
		m.currentModel = m.listModel
		return m, tea.WindowSize()

	case openFormMsg:
		formOpts := form.Options{Logger: m.opts.Logger, UpdateMode: m.opts.UpdateMode}
		var f *form.Form
		if msg.issue != nil {
			f = form.NewEdit(m.src, *msg.issue, formOpts)
		} else {
			f = form.NewCreate(m.src, formOpts)
		}
		m.currentScreen = ScreenForm
		formModel := NewFormModel(f, m.ctx)
		m.currentModel = formModel
		return m, tea.Batch(formModel.Init(), tea.WindowSize())

	case formClosedMsg:
		return m.closeForm(msg.outcome)
	}

	// Delegate to current screen's model
	if m.currentScreen == ScreenList {
		return m.updateList(msg)
	}
	if m.currentModel != nil {
		var cmd tea.Cmd
		m.currentModel, cmd = m.currentModel.Update(msg)
		return m, cmd
	}

	return m, nil
}

// updateList forwards msg to the cached list model.
func (m AppModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.listModel.Update(msg)
	if lm, ok := model.(ListModel); ok {
		m.listModel = lm
	}
	if m.currentScreen == ScreenList {
		m.currentModel = m.listModel
	}
	return m, cmd
}

// closeForm returns to the list. A form that produced an issue triggers
// exactly one list reload; a cancelled or failed form triggers none.
func (m AppModel) closeForm(out form.Outcome) (tea.Model, tea.Cmd) {
	m.currentScreen = ScreenList

	var cmd tea.Cmd
	switch {
	case out.Changed():
		verb := "Created"
		if f, ok := m.currentModel.(FormModel); ok && f.Form().Mode() == form.ModeEdit {
			verb = "Updated"
		}
		m.listModel.SetInfo(fmt.Sprintf("%s issue %s", verb, out.Issue.ID))
		cmd = m.listModel.Reload()
	case out.Err != nil:
		m.listModel.SetError("Save failed: " + source.UserMessage(out.Err))
	}

	m.currentModel = m.listModel
	return m, tea.Batch(cmd, tea.WindowSize())
}

// View renders the current screen.
func (m AppModel) View() string {
	if m.currentModel != nil {
		return m.currentModel.View()
	}
	return ""
}

// Run starts the TUI and blocks until the user quits.
func Run(ctx context.Context, src source.Source, s *store.Store, opts Options) error {
	program := tea.NewProgram(NewAppModel(src, s, ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}
