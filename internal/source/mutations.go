package source

import (
	"context"
	"net/http"
	"net/url"

	"github.com/robby/issues/internal/domain"
)

// Create posts a new issue. The payload never carries id or timestamps.
func (c *Client) Create(ctx context.Context, in domain.IssueInput) (*domain.Issue, error) {
	var issue domain.Issue
	if err := c.doRequest(ctx, "create issue", http.MethodPost, "/issues", nil, in, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// Update puts a partial issue. Fields left empty in the input are omitted
// from the body and left for the server to merge.
func (c *Client) Update(ctx context.Context, id string, in domain.IssueInput) (*domain.Issue, error) {
	var issue domain.Issue
	if err := c.doRequest(ctx, "update issue", http.MethodPut, "/issues/"+url.PathEscape(id), nil, in, &issue); err != nil {
		return nil, withID(err, id)
	}
	return &issue, nil
}
