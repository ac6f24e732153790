// Package store owns the issue list query state: search, filters, sort and
// pagination. Every mutation yields a sequence-tagged Load; only the result of
// the most recently issued Load may replace the displayed page.
//
// Store is not safe for concurrent use. All methods except Fetch must be
// called from the single event loop that owns it; Fetch only touches the
// immutable source and may run on any goroutine.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robby/issues/internal/domain"
	"github.com/robby/issues/internal/source"
)

var (
	// ErrUnknownFilter indicates a filter field other than status, priority or assignee.
	ErrUnknownFilter = errors.New("unknown filter field")
	// ErrNoResult indicates no page has been loaded yet.
	ErrNoResult = errors.New("no page loaded")
)

// Default list parameters.
const (
	DefaultPageSize  = 10
	DefaultSortBy    = domain.FieldUpdatedAt
	DefaultSortOrder = domain.SortDesc
)

// Filter names one of the exact-match filter fields.
type Filter string

const (
	FilterStatus   Filter = "status"
	FilterPriority Filter = "priority"
	FilterAssignee Filter = "assignee"
)

// State is the full set of list parameters.
type State struct {
	Page      int
	PageSize  int
	Search    string
	Status    string
	Priority  string
	Assignee  string
	SortBy    string
	SortOrder domain.SortOrder
}

// DefaultState returns page 1 of 10, newest updates first, no filters.
func DefaultState() State {
	return State{
		Page:      1,
		PageSize:  DefaultPageSize,
		SortBy:    DefaultSortBy,
		SortOrder: DefaultSortOrder,
	}
}

// Query derives the canonical remote query from the state.
func (st State) Query() domain.Query {
	return domain.Query{
		Page:      st.Page,
		PageSize:  st.PageSize,
		Search:    st.Search,
		Status:    st.Status,
		Priority:  st.Priority,
		Assignee:  st.Assignee,
		SortBy:    st.SortBy,
		SortOrder: st.SortOrder,
	}
}

// Load is one reload request, tagged with the sequence number it was issued under.
type Load struct {
	Seq   uint64
	Query domain.Query
}

// LoadResult is the outcome of running a Load against the source.
type LoadResult struct {
	Seq    uint64
	Query  domain.Query
	Result *domain.PaginatedResult
	Err    error
}

// Store manages the list query state and the currently displayed page.
type Store struct {
	src    source.Source
	logger *slog.Logger

	state State

	// seq is the sequence number of the most recently issued Load.
	seq uint64

	// Displayed page. Replaced only by the result of the latest Load.
	result  *domain.PaginatedResult
	loading bool
	err     error
}

// New creates a Store with the default state. A nil logger means slog.Default().
func New(src source.Source, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		src:    src,
		logger: logger,
		state:  DefaultState(),
	}
}

// State returns a copy of the current list parameters.
func (s *Store) State() State {
	return s.state
}

// SetState replaces the list parameters without issuing a Load. Invalid page
// numbers, page sizes and sort orders fall back to their defaults.
func (s *Store) SetState(st State) {
	if st.Page < 1 {
		st.Page = 1
	}
	if st.PageSize < 1 {
		st.PageSize = DefaultPageSize
	}
	if st.SortBy == "" {
		st.SortBy = DefaultSortBy
	}
	if st.SortOrder != domain.SortAsc && st.SortOrder != domain.SortDesc {
		st.SortOrder = DefaultSortOrder
	}
	s.state = st
}

// Query returns the query the next Load would send.
func (s *Store) Query() domain.Query {
	return s.state.Query()
}

// Result returns the displayed page, or nil before the first successful load.
func (s *Store) Result() *domain.PaginatedResult {
	return s.result
}

// Loading reports whether the latest Load is still outstanding.
func (s *Store) Loading() bool {
	return s.loading
}

// Err returns the failure of the latest Load, or nil.
func (s *Store) Err() error {
	return s.err
}

// SetSearch sets the free-text search and returns to page 1.
func (s *Store) SetSearch(term string) Load {
	s.state.Search = term
	s.state.Page = 1
	return s.Reload()
}

// SetFilter sets one exact-match filter and returns to page 1.
// An empty value clears the filter.
func (s *Store) SetFilter(field Filter, value string) (Load, error) {
	switch field {
	case FilterStatus:
		s.state.Status = value
	case FilterPriority:
		s.state.Priority = value
	case FilterAssignee:
		s.state.Assignee = value
	default:
		return Load{}, fmt.Errorf("%w: %s", ErrUnknownFilter, field)
	}
	s.state.Page = 1
	return s.Reload(), nil
}

// ClearFilters removes search and every filter and returns to page 1.
func (s *Store) ClearFilters() Load {
	s.state.Search = ""
	s.state.Status = ""
	s.state.Priority = ""
	s.state.Assignee = ""
	s.state.Page = 1
	return s.Reload()
}

// SetSort changes the sort column and direction, keeping the current page
// and filters. An empty (neutral) or unknown direction leaves the sort
// untouched and issues nothing; ok reports whether a Load was issued.
func (s *Store) SetSort(field string, order domain.SortOrder) (load Load, ok bool) {
	if order != domain.SortAsc && order != domain.SortDesc {
		return Load{}, false
	}
	if !ValidSortField(field) {
		s.logger.Warn("ignoring sort on unknown field", "field", field)
		return Load{}, false
	}
	s.state.SortBy = field
	s.state.SortOrder = order
	return s.Reload(), true
}

// SetPage moves to a 1-based page with the given page size. Filters and sort
// are kept. A non-positive size keeps the current size.
func (s *Store) SetPage(page, size int) Load {
	if page < 1 {
		page = 1
	}
	if size >= 1 {
		s.state.PageSize = size
	}
	s.state.Page = page
	return s.Reload()
}

// NextPage advances one page if the displayed result has more pages.
func (s *Store) NextPage() (Load, bool) {
	page := s.displayedPage()
	if s.result == nil || page >= s.result.TotalPages {
		return Load{}, false
	}
	return s.SetPage(page+1, s.state.PageSize), true
}

// PrevPage goes back one page unless already on the first.
func (s *Store) PrevPage() (Load, bool) {
	page := s.displayedPage()
	if page <= 1 {
		return Load{}, false
	}
	return s.SetPage(page-1, s.state.PageSize), true
}

// displayedPage is the page on screen. After a failed load the requested
// page may differ from the retained result.
func (s *Store) displayedPage() int {
	if s.result != nil && s.result.Page >= 1 {
		return s.result.Page
	}
	return s.state.Page
}

// Reload issues a new Load for the current state and marks the store as
// loading. Any Load issued earlier becomes stale.
func (s *Store) Reload() Load {
	s.seq++
	s.loading = true
	return Load{Seq: s.seq, Query: s.state.Query()}
}

// Fetch runs a Load against the source. It does not touch the store's
// mutable state and may be called off the event loop.
func (s *Store) Fetch(ctx context.Context, load Load) LoadResult {
	res, err := s.src.List(ctx, load.Query)
	return LoadResult{Seq: load.Seq, Query: load.Query, Result: res, Err: err}
}

// Apply reconciles a finished Load. Results of superseded Loads are dropped
// and Apply returns false. On failure the displayed page is kept and the
// error recorded; on success the page is replaced as a whole.
func (s *Store) Apply(res LoadResult) bool {
	if res.Seq != s.seq {
		s.logger.Debug("discarding stale list response", "seq", res.Seq, "latest", s.seq)
		return false
	}

	s.loading = false
	if res.Err == nil && res.Result == nil {
		res.Err = ErrNoResult
	}
	if res.Err != nil {
		s.err = res.Err
		s.logger.Error("failed to load issues",
			"page", res.Query.Page,
			"page_size", res.Query.PageSize,
			"search", res.Query.Search,
			"error", res.Err,
		)
		return true
	}

	result := *res.Result
	if result.TotalPages == 0 && result.Total > 0 {
		result.TotalPages = domain.TotalPages(result.Total, result.PageSize)
	}
	s.result = &result
	s.err = nil
	return true
}

// ReloadSync issues a Load, runs it and applies it in one step. It is meant
// for callers without an event loop, such as CLI commands.
func (s *Store) ReloadSync(ctx context.Context) error {
	load := s.Reload()
	s.Apply(s.Fetch(ctx, load))
	if s.err != nil {
		return s.err
	}
	if s.result == nil {
		return ErrNoResult
	}
	return nil
}

// ValidSortField reports whether field is one the API can sort by.
func ValidSortField(field string) bool {
	for _, f := range domain.SortFields {
		if f == field {
			return true
		}
	}
	return false
}

// ToggleOrder returns the opposite sort direction.
func ToggleOrder(order domain.SortOrder) domain.SortOrder {
	if order == domain.SortAsc {
		return domain.SortDesc
	}
	return domain.SortAsc
}
