package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/robby/issues/internal/domain"
	"github.com/robby/issues/internal/form"
)

const dialogInputWidth = 50

// FormModel is the modal create/edit dialog around a form.Form. It closes
// by emitting exactly one formClosedMsg.
type FormModel struct {
	form *form.Form
	ctx  context.Context

	keymap  FormKeyMap
	help    HelpModel
	spinner spinner.Model

	// One text input per single-line field; description uses the textarea.
	inputs      map[form.Field]*textinput.Model
	description textarea.Model
	focus       int // index into form.Fields

	width  int
	height int
}

// NewFormModel wraps f in a dialog.
func NewFormModel(f *form.Form, ctx context.Context) FormModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	newInput := func(field form.Field, placeholder string, suggestions []string) *textinput.Model {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholder
		ti.Width = dialogInputWidth
		ti.CharLimit = 200
		ti.SetValue(f.Get(field))
		if len(suggestions) > 0 {
			ti.SetSuggestions(suggestions)
			ti.ShowSuggestions = true
		}
		return &ti
	}

	statuses := make([]string, len(domain.Statuses))
	for i, s := range domain.Statuses {
		statuses[i] = string(s)
	}
	priorities := make([]string, len(domain.Priorities))
	for i, p := range domain.Priorities {
		priorities[i] = string(p)
	}

	ta := textarea.New()
	ta.Placeholder = "What is the problem?"
	ta.CharLimit = 65535
	ta.ShowLineNumbers = false
	ta.SetWidth(dialogInputWidth)
	ta.SetHeight(5)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle() // No highlight on cursor line
	ta.SetValue(f.Get(form.FieldDescription))

	m := FormModel{
		form:    f,
		ctx:     ctx,
		keymap:  DefaultFormKeyMap(),
		help:    NewHelpModel(DefaultFormKeyMap()),
		spinner: sp,
		inputs: map[form.Field]*textinput.Model{
			form.FieldTitle:    newInput(form.FieldTitle, "At least 3 characters", nil),
			form.FieldStatus:   newInput(form.FieldStatus, strings.Join(statuses, " | "), statuses),
			form.FieldPriority: newInput(form.FieldPriority, strings.Join(priorities, " | "), priorities),
			form.FieldAssignee: newInput(form.FieldAssignee, "name@example.com", nil),
		},
		description: ta,
	}
	m.inputs[form.FieldTitle].Focus()
	return m
}

// Init initializes the dialog.
func (m FormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Form returns the underlying form controller.
func (m FormModel) Form() *form.Form { return m.form }

// Update handles messages
func (m FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.form.Submitting() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m.updateFocused(msg)
}

// handleKeyPress processes keyboard input
func (m FormModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Input is frozen while the request is in flight.
	if m.form.Submitting() {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Cancel):
		outcome := m.form.Cancel()
		return m, func() tea.Msg { return formClosedMsg{outcome: outcome} }

	case key.Matches(msg, m.keymap.Submit):
		(&m).sync()
		sub, ok := m.form.Prepare()
		if !ok {
			return m, (&m).focusFirstError()
		}
		ctx := m.ctx
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			return formClosedMsg{outcome: sub.Do(ctx)}
		})

	case key.Matches(msg, m.keymap.Next):
		return m, (&m).setFocus(m.focus + 1)

	case key.Matches(msg, m.keymap.Prev):
		return m, (&m).setFocus(m.focus - 1)

	case msg.String() == "enter" && m.focused() != form.FieldDescription:
		return m, (&m).setFocus(m.focus + 1)
	}

	return m.updateFocused(msg)
}

// updateFocused forwards msg to the focused input and, after the first
// submit attempt, keeps the field errors in step with the input.
func (m FormModel) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	field := m.focused()
	if field == form.FieldDescription {
		m.description, cmd = m.description.Update(msg)
	} else {
		updated, c := m.inputs[field].Update(msg)
		*m.inputs[field] = updated
		cmd = c
	}
	if m.form.Attempted() {
		_ = m.form.Set(field, m.value(field))
	}
	return m, cmd
}

func (m FormModel) focused() form.Field {
	return form.Fields[m.focus]
}

func (m FormModel) value(field form.Field) string {
	if field == form.FieldDescription {
		return m.description.Value()
	}
	return strings.TrimSpace(m.inputs[field].Value())
}

// sync copies every input into the form.
func (m *FormModel) sync() {
	for _, field := range form.Fields {
		_ = m.form.Set(field, m.value(field))
	}
}

// setFocus moves focus to index i, wrapping around.
func (m *FormModel) setFocus(i int) tea.Cmd {
	n := len(form.Fields)
	m.focus = ((i % n) + n) % n

	m.description.Blur()
	for _, in := range m.inputs {
		in.Blur()
	}
	if m.focused() == form.FieldDescription {
		return m.description.Focus()
	}
	return m.inputs[m.focused()].Focus()
}

func (m *FormModel) focusFirstError() tea.Cmd {
	for i, field := range form.Fields {
		if m.form.Error(field) != "" {
			return m.setFocus(i)
		}
	}
	return nil
}

// View renders the dialog
func (m FormModel) View() string {
	var b strings.Builder

	title := "New issue"
	if m.form.Mode() == form.ModeEdit {
		title = fmt.Sprintf("Edit issue %s", m.form.Original().ID)
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n\n")

	for i, field := range form.Fields {
		label := labelStyle.Render(fieldLabel(field))
		if i == m.focus {
			label = SelectedItemStyle.Width(10).Render(fieldLabel(field))
		}
		b.WriteString(label)
		b.WriteString("\n")
		if field == form.FieldDescription {
			b.WriteString(m.description.View())
		} else {
			b.WriteString(m.inputs[field].View())
		}
		b.WriteString("\n")
		if msg := m.form.Error(field); msg != "" {
			b.WriteString(ErrorStyle.Render("  " + msg))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.form.Submitting() {
		b.WriteString(m.spinner.View() + " Saving...")
	} else {
		b.WriteString(dimStyle.Render(m.help.ShortView(dialogInputWidth + 10)))
	}

	dialog := dialogStyle.Render(b.String())
	if m.width == 0 || m.height == 0 {
		return dialog
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialog)
}

func fieldLabel(field form.Field) string {
	s := string(field)
	return strings.ToUpper(s[:1]) + s[1:]
}
