package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		pageSize int
		want     int
	}{
		{"partial last page", 25, 10, 3},
		{"exact multiple", 30, 10, 3},
		{"empty set", 0, 10, 0},
		{"single item", 1, 10, 1},
		{"page size one", 4, 1, 4},
		{"invalid page size", 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TotalPages(tt.total, tt.pageSize))
		})
	}
}

func TestIssueInput_Diff(t *testing.T) {
	base := IssueInput{
		Title:       "Login bug",
		Description: "Users cannot log in",
		Status:      StatusOpen,
		Priority:    PriorityHigh,
		Assignee:    "dev1@example.com",
	}

	changed := base
	changed.Status = StatusClosed

	diff := changed.Diff(base)
	assert.Equal(t, IssueInput{Status: StatusClosed}, diff)
	assert.True(t, base.Diff(base).IsEmpty())
}

func TestInputFrom(t *testing.T) {
	issue := Issue{
		ID:          "abc",
		Title:       "Title",
		Description: "Desc",
		Status:      StatusInProgress,
		Priority:    PriorityLow,
		Assignee:    "a@b.co",
	}

	in := InputFrom(issue)
	assert.Equal(t, "Title", in.Title)
	assert.Equal(t, StatusInProgress, in.Status)
	assert.Equal(t, PriorityLow, in.Priority)
	assert.Equal(t, "a@b.co", in.Assignee)
}
