// Package domain defines the normalized domain types for the issue tracker.
// These types represent the core concepts independent of the remote API wire format.
package domain

// Status is the workflow state of an issue.
type Status string

// Status values accepted by the API.
const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in-progress"
	StatusClosed     Status = "closed"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusClosed}

// Priority is the urgency of an issue.
type Priority string

// Priority values accepted by the API.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority in display order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Issue is a server-owned issue record. The client only ever holds
// transient copies fetched per query or per detail lookup.
type Issue struct {
	ID          string    `json:"id" yaml:"id"`                   // Server-assigned, immutable
	Title       string    `json:"title" yaml:"title"`             // At least 3 characters
	Description string    `json:"description" yaml:"description"` // Free text
	Status      Status    `json:"status" yaml:"status"`
	Priority    Priority  `json:"priority" yaml:"priority"`
	Assignee    string    `json:"assignee" yaml:"assignee"` // Email address
	CreatedAt   Timestamp `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   Timestamp `json:"updatedAt" yaml:"updatedAt"`
}

// IssueInput is the client-writable subset of an Issue. It is the body of
// create requests and of update requests. Empty fields are omitted on the
// wire, so an update carrying only Status is a partial patch.
type IssueInput struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	Assignee    string   `json:"assignee,omitempty"`
}

// InputFrom copies the writable fields of an issue.
func InputFrom(issue Issue) IssueInput {
	return IssueInput{
		Title:       issue.Title,
		Description: issue.Description,
		Status:      issue.Status,
		Priority:    issue.Priority,
		Assignee:    issue.Assignee,
	}
}

// Diff returns the fields of in that differ from base. Unchanged fields are
// left empty so they are omitted from the payload.
func (in IssueInput) Diff(base IssueInput) IssueInput {
	var out IssueInput
	if in.Title != base.Title {
		out.Title = in.Title
	}
	if in.Description != base.Description {
		out.Description = in.Description
	}
	if in.Status != base.Status {
		out.Status = in.Status
	}
	if in.Priority != base.Priority {
		out.Priority = in.Priority
	}
	if in.Assignee != base.Assignee {
		out.Assignee = in.Assignee
	}
	return out
}

// IsEmpty reports whether no field is set.
func (in IssueInput) IsEmpty() bool {
	return in == IssueInput{}
}

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Sortable field names, exactly as the API expects them.
const (
	FieldID        = "id"
	FieldTitle     = "title"
	FieldStatus    = "status"
	FieldPriority  = "priority"
	FieldAssignee  = "assignee"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// SortFields lists every field the list can be sorted by.
var SortFields = []string{
	FieldUpdatedAt,
	FieldCreatedAt,
	FieldTitle,
	FieldStatus,
	FieldPriority,
	FieldAssignee,
	FieldID,
}

// Query is one snapshot of the list parameters sent to the remote list
// operation. Empty optional fields mean "no filter" and are never sent.
type Query struct {
	Page      int // 1-based
	PageSize  int
	Search    string
	Status    string
	Priority  string
	Assignee  string
	SortBy    string
	SortOrder SortOrder
}

// PaginatedResult is one page of issues plus metadata describing the full
// filtered set.
type PaginatedResult struct {
	Issues     []Issue `json:"issues" yaml:"issues"`
	Page       int     `json:"page" yaml:"page"`
	PageSize   int     `json:"pageSize" yaml:"pageSize"`
	Total      int     `json:"total" yaml:"total"`
	TotalPages int     `json:"totalPages" yaml:"totalPages"`
}

// TotalPages returns ceil(total / pageSize), or 0 when either is non-positive.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
