package source

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/robby/issues/internal/domain"
)

// listResponse accepts both the "issues" and the "items" spelling of the page.
type listResponse struct {
	Issues     []domain.Issue `json:"issues"`
	Items      []domain.Issue `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	Total      int            `json:"total"`
	TotalPages *int           `json:"totalPages"`
}

// List fetches one page of issues. Unset filters are omitted from the query
// string rather than sent as empty values.
func (c *Client) List(ctx context.Context, q domain.Query) (*domain.PaginatedResult, error) {
	var resp listResponse
	if err := c.doRequest(ctx, "list issues", http.MethodGet, "/issues", QueryValues(q), nil, &resp); err != nil {
		return nil, err
	}

	issues := resp.Issues
	if issues == nil {
		issues = resp.Items
	}
	if issues == nil {
		issues = []domain.Issue{}
	}

	page := resp.Page
	if page == 0 {
		page = q.Page
	}
	pageSize := resp.PageSize
	if pageSize == 0 {
		pageSize = q.PageSize
	}
	totalPages := domain.TotalPages(resp.Total, pageSize)
	if resp.TotalPages != nil {
		totalPages = *resp.TotalPages
	}

	return &domain.PaginatedResult{
		Issues:     issues,
		Page:       page,
		PageSize:   pageSize,
		Total:      resp.Total,
		TotalPages: totalPages,
	}, nil
}

// Get fetches a single issue by id.
func (c *Client) Get(ctx context.Context, id string) (*domain.Issue, error) {
	var issue domain.Issue
	if err := c.doRequest(ctx, "get issue", http.MethodGet, "/issues/"+url.PathEscape(id), nil, nil, &issue); err != nil {
		return nil, withID(err, id)
	}
	return &issue, nil
}

// QueryValues encodes q as URL parameters. page and pageSize are always
// present; every other parameter only when non-empty.
func QueryValues(q domain.Query) url.Values {
	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("pageSize", strconv.Itoa(pageSize))
	setIfNotEmpty(v, "search", q.Search)
	setIfNotEmpty(v, "status", q.Status)
	setIfNotEmpty(v, "priority", q.Priority)
	setIfNotEmpty(v, "assignee", q.Assignee)
	setIfNotEmpty(v, "sortBy", q.SortBy)
	setIfNotEmpty(v, "sortOrder", string(q.SortOrder))
	return v
}

func setIfNotEmpty(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

// withID attaches the requested id to a not-found error.
func withID(err error, id string) error {
	if nf, ok := err.(*NotFoundError); ok {
		nf.ID = id
	}
	return err
}
