// Package tui provides Bubble Tea models for the interactive TUI.
package tui

import (
	"github.com/robby/issues/internal/domain"
	"github.com/robby/issues/internal/form"
	"github.com/robby/issues/internal/store"
)

// Messages exchanged between the screens and the app.
type (
	// listLoadedMsg carries a finished list Load back to the event loop.
	listLoadedMsg struct {
		result store.LoadResult
	}

	// detailLoadedMsg carries the result of a detail lookup.
	detailLoadedMsg struct {
		id    string
		issue *domain.Issue
		err   error
	}

	openDetailMsg struct {
		id string
	}

	closeDetailMsg struct{}

	// openFormMsg opens the form dialog. A nil issue opens a create form.
	openFormMsg struct {
		issue *domain.Issue
	}

	// formClosedMsg is sent exactly once per form session.
	formClosedMsg struct {
		outcome form.Outcome
	}

	// optionSelectedMsg is emitted by the option picker.
	optionSelectedMsg struct {
		purpose pickerPurpose
		value   string
	}

	optionCanceledMsg struct{}
)
