package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/robby/issues/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHTTPClient is a test double for HTTPClient.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{BaseURL: "ftp://example.com"})
	assert.Error(t, err)

	c, err := New(Config{BaseURL: "http://localhost:5000/"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", c.baseURL)
}

func TestQueryValues_OmitsEmptyFilters(t *testing.T) {
	v := QueryValues(domain.Query{
		Page:      2,
		PageSize:  25,
		Status:    "open",
		SortBy:    "updatedAt",
		SortOrder: domain.SortDesc,
	})

	assert.Equal(t, "2", v.Get("page"))
	assert.Equal(t, "25", v.Get("pageSize"))
	assert.Equal(t, "open", v.Get("status"))
	assert.Equal(t, "updatedAt", v.Get("sortBy"))
	assert.Equal(t, "desc", v.Get("sortOrder"))

	for _, key := range []string{"search", "priority", "assignee"} {
		_, present := v[key]
		assert.False(t, present, "%s should be omitted", key)
	}
}

func TestList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/issues", r.URL.Path)
		assert.Equal(t, "login", r.URL.Query().Get("search"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"issues": [{"id": "a1", "title": "Login Bug", "status": "open", "priority": "high",
				"assignee": "dev1@example.com", "createdAt": "2024-01-15T10:00:00Z", "updatedAt": "2024-01-15T10:00:00Z"}],
			"page": 3, "pageSize": 10, "total": 25, "totalPages": 3
		}`)
	})

	res, err := c.List(context.Background(), domain.Query{Page: 3, PageSize: 10, Search: "login"})
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "a1", res.Issues[0].ID)
	assert.Equal(t, domain.StatusOpen, res.Issues[0].Status)
	assert.Equal(t, 25, res.Total)
	assert.Equal(t, 3, res.TotalPages)
}

func TestList_ItemsAliasAndComputedTotalPages(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"items": [{"id": "x"}], "total": 21, "page": 1, "pageSize": 10}`)
	})

	res, err := c.List(context.Background(), domain.Query{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, 3, res.TotalPages)
}

func TestList_EmptyResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"issues": [], "total": 0, "page": 1, "pageSize": 10}`)
	})

	res, err := c.List(context.Background(), domain.Query{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
	assert.NotNil(t, res.Issues)
	assert.Equal(t, 0, res.TotalPages)
}

func TestGet_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/issues/nope", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error": "Issue not found"}`)
	})

	_, err := c.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "nope", nf.ID)
	assert.Equal(t, "Issue not found", UserMessage(err))
}

func TestCreate_SendsWritableFieldsOnly(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "New issue", body["title"])
		assert.NotContains(t, body, "id")
		assert.NotContains(t, body, "createdAt")
		assert.NotContains(t, body, "updatedAt")

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": "srv-1", "title": "New issue", "status": "open", "createdAt": "2024-02-01T00:00:00Z"}`)
	})

	issue, err := c.Create(context.Background(), domain.IssueInput{
		Title:       "New issue",
		Description: "Something",
		Status:      domain.StatusOpen,
		Priority:    domain.PriorityMedium,
		Assignee:    "a@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "srv-1", issue.ID)
}

func TestCreate_ValidationError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error": "Title and description are required"}`)
	})

	_, err := c.Create(context.Background(), domain.IssueInput{})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Title and description are required", ve.Message)
}

func TestUpdate_PartialBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/issues/a1", r.URL.Path)

		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"status": "closed"}`, string(raw))

		_, _ = io.WriteString(w, `{"id": "a1", "title": "Login Bug", "status": "closed"}`)
	})

	issue, err := c.Update(context.Background(), "a1", domain.IssueInput{Status: domain.StatusClosed})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, issue.Status)
}

func TestServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	})

	_, err := c.List(context.Background(), domain.Query{Page: 1, PageSize: 10})
	var se *ServerError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, "boom", se.Body)
	assert.Equal(t, "Server error (500)", UserMessage(err))
}

func TestUndecodableBodyIsServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>")
	})

	_, err := c.Get(context.Background(), "a1")
	var se *ServerError
	assert.True(t, errors.As(err, &se))
}

func TestNetworkError(t *testing.T) {
	mock := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		},
	}
	c, err := New(Config{BaseURL: "http://issues.invalid", HTTPClient: mock})
	require.NoError(t, err)

	_, err = c.List(context.Background(), domain.Query{Page: 1, PageSize: 10})
	var ne *NetworkError
	require.True(t, errors.As(err, &ne))
	assert.Contains(t, ne.Error(), "connection refused")
	assert.Equal(t, "Cannot reach the issue server", UserMessage(err))
}

func TestErrorMessage_DetailBody(t *testing.T) {
	assert.Equal(t, "bad title", errorMessage([]byte(`{"detail": "bad title"}`)))
	assert.Equal(t, `[{"loc":["body","title"]}]`, errorMessage([]byte(`{"detail": [{"loc":["body","title"]}]}`)))
	assert.Equal(t, "plain text", errorMessage([]byte("plain text")))
	assert.Equal(t, "invalid request", errorMessage(bytes.TrimSpace([]byte("  "))))
}
