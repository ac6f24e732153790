// Package sourcetest provides an in-memory source.Source for tests.
package sourcetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robby/issues/internal/domain"
	"github.com/robby/issues/internal/source"
)

// Call records one invocation of the fake.
type Call struct {
	Op    string // "list", "get", "create" or "update"
	Query domain.Query
	ID    string
	Input domain.IssueInput
}

// Fake is an in-memory issue store implementing source.Source.
// Filtering, sorting and pagination mirror the reference API server.
type Fake struct {
	mu     sync.Mutex
	issues []domain.Issue
	calls  []Call

	// Now returns the server time used for created/updated timestamps.
	Now func() time.Time

	// Per-operation failures. A non-nil value is returned instead of a result.
	ListErr   error
	GetErr    error
	CreateErr error
	UpdateErr error

	// ListHook, if set, replaces the built-in list implementation.
	ListHook func(q domain.Query) (*domain.PaginatedResult, error)
}

var _ source.Source = (*Fake)(nil)

// New creates a fake seeded with copies of issues.
func New(issues ...domain.Issue) *Fake {
	seeded := make([]domain.Issue, len(issues))
	copy(seeded, issues)
	return &Fake{
		issues: seeded,
		Now:    time.Now,
	}
}

// Calls returns a copy of every recorded call in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many calls of op were made.
func (f *Fake) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Issues returns a copy of the stored issues.
func (f *Fake) Issues() []domain.Issue {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Issue, len(f.issues))
	copy(out, f.issues)
	return out
}

// List implements source.Source.
func (f *Fake) List(ctx context.Context, q domain.Query) (*domain.PaginatedResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Op: "list", Query: q})
	hook, err := f.ListHook, f.ListErr
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if hook != nil {
		return hook(q)
	}
	if err := ctx.Err(); err != nil {
		return nil, &source.NetworkError{Op: "list issues", Err: err}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return Paginate(Filter(f.issues, q), q), nil
}

// Get implements source.Source.
func (f *Fake) Get(ctx context.Context, id string) (*domain.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "get", ID: id})

	if f.GetErr != nil {
		return nil, f.GetErr
	}
	for i := range f.issues {
		if f.issues[i].ID == id {
			issue := f.issues[i]
			return &issue, nil
		}
	}
	return nil, &source.NotFoundError{ID: id}
}

// Create implements source.Source.
func (f *Fake) Create(ctx context.Context, in domain.IssueInput) (*domain.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "create", Input: in})

	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	if in.Title == "" || in.Description == "" {
		return nil, &source.ValidationError{Op: "create issue", Message: "Title and description are required"}
	}

	now := domain.NewTimestamp(f.Now())
	issue := domain.Issue{
		ID:          uuid.NewString()[:8],
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		Assignee:    in.Assignee,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if issue.Status == "" {
		issue.Status = domain.StatusOpen
	}
	if issue.Priority == "" {
		issue.Priority = domain.PriorityMedium
	}
	f.issues = append(f.issues, issue)
	return &issue, nil
}

// Update implements source.Source with merge semantics: empty input fields
// leave the stored value untouched.
func (f *Fake) Update(ctx context.Context, id string, in domain.IssueInput) (*domain.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "update", ID: id, Input: in})

	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	for i := range f.issues {
		if f.issues[i].ID != id {
			continue
		}
		issue := &f.issues[i]
		if in.Title != "" {
			issue.Title = in.Title
		}
		if in.Description != "" {
			issue.Description = in.Description
		}
		if in.Status != "" {
			issue.Status = in.Status
		}
		if in.Priority != "" {
			issue.Priority = in.Priority
		}
		if in.Assignee != "" {
			issue.Assignee = in.Assignee
		}
		issue.UpdatedAt = domain.NewTimestamp(f.Now())
		out := *issue
		return &out, nil
	}
	return nil, &source.NotFoundError{ID: id}
}

// Filter applies the search, filter and sort parts of q.
func Filter(issues []domain.Issue, q domain.Query) []domain.Issue {
	search := strings.ToLower(q.Search)
	assignee := strings.ToLower(q.Assignee)

	out := make([]domain.Issue, 0, len(issues))
	for _, issue := range issues {
		if search != "" &&
			!strings.Contains(strings.ToLower(issue.Title), search) &&
			!strings.Contains(strings.ToLower(issue.Description), search) {
			continue
		}
		if q.Status != "" && string(issue.Status) != q.Status {
			continue
		}
		if q.Priority != "" && string(issue.Priority) != q.Priority {
			continue
		}
		if assignee != "" && !strings.Contains(strings.ToLower(issue.Assignee), assignee) {
			continue
		}
		out = append(out, issue)
	}

	less := sortKey(q.SortBy)
	desc := q.SortOrder == domain.SortDesc
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// Paginate slices one page out of an already filtered set.
func Paginate(issues []domain.Issue, q domain.Query) *domain.PaginatedResult {
	page, pageSize := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	total := len(issues)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	pageIssues := make([]domain.Issue, end-start)
	copy(pageIssues, issues[start:end])

	return &domain.PaginatedResult{
		Issues:     pageIssues,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: domain.TotalPages(total, pageSize),
	}
}

var priorityRank = map[domain.Priority]int{
	domain.PriorityLow:    1,
	domain.PriorityMedium: 2,
	domain.PriorityHigh:   3,
}

func sortKey(field string) func(a, b domain.Issue) bool {
	switch field {
	case domain.FieldID:
		return func(a, b domain.Issue) bool { return a.ID < b.ID }
	case domain.FieldTitle:
		return func(a, b domain.Issue) bool { return a.Title < b.Title }
	case domain.FieldStatus:
		return func(a, b domain.Issue) bool { return a.Status < b.Status }
	case domain.FieldPriority:
		return func(a, b domain.Issue) bool { return priorityRank[a.Priority] < priorityRank[b.Priority] }
	case domain.FieldAssignee:
		return func(a, b domain.Issue) bool { return a.Assignee < b.Assignee }
	case domain.FieldCreatedAt:
		return func(a, b domain.Issue) bool { return a.CreatedAt.Before(b.CreatedAt.Time) }
	default:
		return func(a, b domain.Issue) bool { return a.UpdatedAt.Before(b.UpdatedAt.Time) }
	}
}

// SampleIssues returns three issues matching the reference server's seed data.
func SampleIssues() []domain.Issue {
	ts := func(s string) domain.Timestamp {
		t, _ := domain.ParseTimestamp(s)
		return t
	}
	return []domain.Issue{
		{
			ID:          "a1b2c3d4",
			Title:       "Login Bug",
			Description: "Users can't log in with valid credentials.",
			Status:      domain.StatusOpen,
			Priority:    domain.PriorityHigh,
			Assignee:    "dev1@example.com",
			CreatedAt:   ts("2024-01-15T10:00:00Z"),
			UpdatedAt:   ts("2024-01-15T10:00:00Z"),
		},
		{
			ID:          "e5f6a7b8",
			Title:       "UI Glitch on Mobile",
			Description: "Navigation menu overlaps on small screens.",
			Status:      domain.StatusInProgress,
			Priority:    domain.PriorityMedium,
			Assignee:    "dev2@example.com",
			CreatedAt:   ts("2024-01-16T14:30:00Z"),
			UpdatedAt:   ts("2024-01-17T09:15:00Z"),
		},
		{
			ID:          "c9d0e1f2",
			Title:       "Performance Issue",
			Description: "Page load time exceeds 5 seconds on dashboard.",
			Status:      domain.StatusClosed,
			Priority:    domain.PriorityLow,
			Assignee:    "dev3@example.com",
			CreatedAt:   ts("2024-01-10T08:45:00Z"),
			UpdatedAt:   ts("2024-01-20T16:20:00Z"),
		},
	}
}
