// Package source provides access to the remote issue API.
// Source is the boundary the controllers depend on; Client is the REST
// implementation of it.
package source

import (
	"context"

	"github.com/robby/issues/internal/domain"
)

// Source is the remote issue data source. Every operation may block on the
// network and may fail with one of the error types in this package.
type Source interface {
	// List returns one page of issues matching q.
	List(ctx context.Context, q domain.Query) (*domain.PaginatedResult, error)

	// Get returns a single issue, or a *NotFoundError.
	Get(ctx context.Context, id string) (*domain.Issue, error)

	// Create stores a new issue and returns the server's copy.
	Create(ctx context.Context, in domain.IssueInput) (*domain.Issue, error)

	// Update patches the issue with the given id and returns the server's copy.
	Update(ctx context.Context, id string, in domain.IssueInput) (*domain.Issue, error)
}

var _ Source = (*Client)(nil)
