package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robby/issues/internal/domain"
)

// pickerPurpose says what a selected option will be applied to.
type pickerPurpose int

const (
	pickStatus pickerPurpose = iota
	pickPriority
	pickSortField
)

// anyOption clears a filter.
const anyOption = ""

// optionItem is one choice in the picker.
type optionItem struct {
	value string
	label string
}

func (i optionItem) FilterValue() string { return i.label }
func (i optionItem) Title() string       { return i.label }
func (i optionItem) Description() string { return "" }

// optionDelegate renders a single-line option with a marker for the current value.
type optionDelegate struct {
	current string
}

func (d optionDelegate) Height() int                             { return 1 }
func (d optionDelegate) Spacing() int                            { return 0 }
func (d optionDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d optionDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(optionItem)
	if !ok {
		return
	}

	str := i.label
	if i.value == d.current {
		str += " ✓"
	}

	if index == m.Index() {
		fmt.Fprint(w, SelectedItemStyle.Render("> "+str))
	} else {
		fmt.Fprint(w, NormalItemStyle.Render("  "+str))
	}
}

// OptionPickerModel is a small list of choices for a filter or the sort field.
type OptionPickerModel struct {
	purpose pickerPurpose
	list    list.Model
}

// newStatusPicker lists every status plus "any".
func newStatusPicker(current string) OptionPickerModel {
	opts := []optionItem{{value: anyOption, label: "(any status)"}}
	for _, s := range domain.Statuses {
		opts = append(opts, optionItem{value: string(s), label: string(s)})
	}
	return newOptionPicker(pickStatus, "Filter by status", opts, current)
}

// newPriorityPicker lists every priority plus "any".
func newPriorityPicker(current string) OptionPickerModel {
	opts := []optionItem{{value: anyOption, label: "(any priority)"}}
	for _, p := range domain.Priorities {
		opts = append(opts, optionItem{value: string(p), label: string(p)})
	}
	return newOptionPicker(pickPriority, "Filter by priority", opts, current)
}

// newSortPicker lists every sortable field.
func newSortPicker(current string) OptionPickerModel {
	opts := make([]optionItem, len(domain.SortFields))
	for i, f := range domain.SortFields {
		opts[i] = optionItem{value: f, label: f}
	}
	return newOptionPicker(pickSortField, "Sort by", opts, current)
}

func newOptionPicker(purpose pickerPurpose, title string, opts []optionItem, current string) OptionPickerModel {
	items := make([]list.Item, len(opts))
	selected := 0
	for i, o := range opts {
		items[i] = o
		if o.value == current {
			selected = i
		}
	}

	l := list.New(items, optionDelegate{current: current}, 30, len(items)+4)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = TitleStyle
	l.Select(selected)

	return OptionPickerModel{
		purpose: purpose,
		list:    l,
	}
}

// Init initializes the model.
func (m OptionPickerModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m OptionPickerModel) Update(msg tea.Msg) (OptionPickerModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "esc":
			return m, func() tea.Msg { return optionCanceledMsg{} }
		case "enter":
			if item, ok := m.list.SelectedItem().(optionItem); ok {
				purpose := m.purpose
				return m, func() tea.Msg {
					return optionSelectedMsg{purpose: purpose, value: item.value}
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the model.
func (m OptionPickerModel) View() string {
	return dialogStyle.Render(m.list.View())
}

