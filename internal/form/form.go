// Package form implements the create and edit issue forms: field state,
// validation and submission to the remote source.
package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robby/issues/internal/domain"
	"github.com/robby/issues/internal/source"
)

// ErrUnknownField is returned by Set for a field the form does not have.
var ErrUnknownField = errors.New("unknown form field")

// validate caches struct metadata and is safe for concurrent use.
var validate = validator.New()

// Mode selects between creating a new issue and editing an existing one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// UpdateMode controls the shape of edit payloads.
type UpdateMode string

const (
	// UpdateFull sends every field and lets the server merge.
	UpdateFull UpdateMode = "full"
	// UpdateDiff sends only fields that differ from the original issue.
	UpdateDiff UpdateMode = "diff"
)

// Field names a form input. Values match the issue JSON field names.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldStatus      Field = "status"
	FieldPriority    Field = "priority"
	FieldAssignee    Field = "assignee"
)

// Fields lists every input in display and validation order.
var Fields = []Field{FieldTitle, FieldDescription, FieldStatus, FieldPriority, FieldAssignee}

// Values holds the raw text of every input.
type Values struct {
	Title       string `validate:"required,min=3"`
	Description string `validate:"required"`
	Status      string `validate:"required,oneof=open in-progress closed"`
	Priority    string `validate:"required,oneof=low medium high"`
	Assignee    string `validate:"required,email"`
}

// Input converts the values to a create/update payload.
func (v Values) Input() domain.IssueInput {
	return domain.IssueInput{
		Title:       v.Title,
		Description: v.Description,
		Status:      domain.Status(v.Status),
		Priority:    domain.Priority(v.Priority),
		Assignee:    v.Assignee,
	}
}

func valuesFrom(issue domain.Issue) Values {
	return Values{
		Title:       issue.Title,
		Description: issue.Description,
		Status:      string(issue.Status),
		Priority:    string(issue.Priority),
		Assignee:    issue.Assignee,
	}
}

// Options configures a Form.
type Options struct {
	Logger     *slog.Logger
	UpdateMode UpdateMode // defaults to UpdateFull
}

// Form is a single create or edit session. Like the list store it belongs
// to one event loop; only Submission.Do may run elsewhere.
type Form struct {
	src    source.Source
	logger *slog.Logger

	mode       Mode
	updateMode UpdateMode
	original   domain.Issue

	values Values
	errs   map[Field]string

	// attempted is set by the first submit; errors are shown from then on.
	attempted  bool
	submitting bool
}

// NewCreate returns an empty create form with status open and priority medium.
func NewCreate(src source.Source, opts Options) *Form {
	f := newForm(src, opts)
	f.mode = ModeCreate
	f.values = Values{
		Status:   string(domain.StatusOpen),
		Priority: string(domain.PriorityMedium),
	}
	return f
}

// NewEdit returns a form pre-populated from issue. Submissions update the
// issue with issue.ID.
func NewEdit(src source.Source, issue domain.Issue, opts Options) *Form {
	f := newForm(src, opts)
	f.mode = ModeEdit
	f.original = issue
	f.values = valuesFrom(issue)
	return f
}

func newForm(src source.Source, opts Options) *Form {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	updateMode := opts.UpdateMode
	if updateMode == "" {
		updateMode = UpdateFull
	}
	return &Form{
		src:        src,
		logger:     logger,
		updateMode: updateMode,
		errs:       map[Field]string{},
	}
}

// Mode returns whether the form creates or edits.
func (f *Form) Mode() Mode { return f.mode }

// Original returns the issue being edited. It is the zero Issue in create mode.
func (f *Form) Original() domain.Issue { return f.original }

// Values returns a copy of the current input values.
func (f *Form) Values() Values { return f.values }

// Get returns the value of one field.
func (f *Form) Get(field Field) string {
	switch field {
	case FieldTitle:
		return f.values.Title
	case FieldDescription:
		return f.values.Description
	case FieldStatus:
		return f.values.Status
	case FieldPriority:
		return f.values.Priority
	case FieldAssignee:
		return f.values.Assignee
	}
	return ""
}

// Set changes one field. After a submit attempt the field errors are
// recomputed so they track the input.
func (f *Form) Set(field Field, value string) error {
	switch field {
	case FieldTitle:
		f.values.Title = value
	case FieldDescription:
		f.values.Description = value
	case FieldStatus:
		f.values.Status = value
	case FieldPriority:
		f.values.Priority = value
	case FieldAssignee:
		f.values.Assignee = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if f.attempted {
		f.Validate()
	}
	return nil
}

// Validate checks every field and records one message per failing field,
// taken from the first rule it breaks. It reports whether the form is valid.
func (f *Form) Validate() bool {
	f.errs = map[Field]string{}
	err := validate.Struct(f.values)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// Only reachable on programmer error (e.g. a non-struct).
		f.logger.Error("form validation failed", "error", err)
		f.errs[FieldTitle] = err.Error()
		return false
	}
	for _, fe := range verrs {
		field := Field(strings.ToLower(fe.Field()))
		if _, seen := f.errs[field]; seen {
			continue
		}
		f.errs[field] = message(fe)
	}
	return false
}

// Valid reports whether the current values pass validation without
// recording errors.
func (f *Form) Valid() bool {
	return validate.Struct(f.values) == nil
}

// Attempted reports whether submit has been tried at least once.
func (f *Form) Attempted() bool { return f.attempted }

// Submitting reports whether a submission is in flight.
func (f *Form) Submitting() bool { return f.submitting }

// Error returns the recorded message for field, or "".
func (f *Form) Error(field Field) string { return f.errs[field] }

// Errors returns a copy of every recorded field message.
func (f *Form) Errors() map[Field]string {
	out := make(map[Field]string, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

// Input returns the payload the next submission would send. Edit forms in
// UpdateDiff mode send only changed fields.
func (f *Form) Input() domain.IssueInput {
	in := f.values.Input()
	if f.mode == ModeEdit && f.updateMode == UpdateDiff {
		return in.Diff(domain.InputFrom(f.original))
	}
	return in
}

// Prepare validates the form and, if valid, returns the submission to run.
// It returns false without a submission when validation fails or a
// submission is already in flight.
func (f *Form) Prepare() (Submission, bool) {
	f.attempted = true
	if f.submitting {
		return Submission{}, false
	}
	if !f.Validate() {
		f.logger.Debug("form submit blocked by validation", "mode", f.mode.String(), "errors", len(f.errs))
		return Submission{}, false
	}
	f.submitting = true
	return Submission{
		src:    f.src,
		logger: f.logger,
		Mode:   f.mode,
		ID:     f.original.ID,
		Input:  f.Input(),
	}, true
}

// Submit validates and, if valid, sends the form synchronously. ok is false
// when validation blocked the submission; no network call is made then.
func (f *Form) Submit(ctx context.Context) (out Outcome, ok bool) {
	sub, ok := f.Prepare()
	if !ok {
		return Outcome{}, false
	}
	out = sub.Do(ctx)
	f.submitting = false
	return out, true
}

// Cancel closes the form with no result.
func (f *Form) Cancel() Outcome {
	return Outcome{Canceled: true}
}

// Submission is one validated create or update request.
type Submission struct {
	src    source.Source
	logger *slog.Logger

	Mode  Mode
	ID    string // edit only
	Input domain.IssueInput
}

// Do sends the submission. It does not touch the form and may run off the
// event loop. Failures are logged and yield an Outcome without an Issue.
func (s Submission) Do(ctx context.Context) Outcome {
	var (
		issue *domain.Issue
		err   error
	)
	switch s.Mode {
	case ModeEdit:
		issue, err = s.src.Update(ctx, s.ID, s.Input)
	default:
		issue, err = s.src.Create(ctx, s.Input)
	}
	if err != nil {
		s.logger.Error("failed to submit issue form",
			"mode", s.Mode.String(),
			"id", s.ID,
			"error", err,
		)
		return Outcome{Err: err}
	}
	return Outcome{Issue: issue}
}

// Outcome is how a form session ended. Issue is the server's copy after a
// successful submit and nil otherwise.
type Outcome struct {
	Issue    *domain.Issue
	Err      error
	Canceled bool
}

// Changed reports whether the form produced an issue.
func (o Outcome) Changed() bool { return o.Issue != nil }

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return fmt.Sprintf("Minimum length is %s characters", fe.Param())
	case "email":
		return "Invalid email address"
	case "oneof":
		return "Must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	default:
		return fmt.Sprintf("Invalid value (%s)", fe.Tag())
	}
}
