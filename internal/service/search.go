package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/mmcdole/airwave/internal/domain"
)

// DefaultPageSize is the number of stations requested per search page
const DefaultPageSize = 10

// SearchRequest describes one directory query the controller wants issued.
// The Token ties the eventual response back to the controller state that
// produced it; responses carrying an old token are dropped.
type SearchRequest struct {
	Token    string
	Filter   string
	Kind     domain.FilterKind
	Page     int
	PageSize int
	Append   bool // LoadMore: merge into existing results instead of replacing
}

// SearchController tracks filter inputs, pagination and results for the
// directory search surface. It does no I/O of its own beyond Execute; state
// changes return the SearchRequest the caller should run.
type SearchController struct {
	directory domain.DirectoryRepository
	logger    *slog.Logger
	pageSize  int
	newToken  func() string

	mu        sync.Mutex
	filters   domain.SearchFilters
	visible   bool // search surface open
	wide      bool // layout at or above the wide threshold
	page      int
	results   []domain.Station
	status    domain.SearchStatus
	lastCount int // raw size of the last page received

	token    string // token of the latest issued request
	appendTo bool   // latest request merges into results
	cancel   context.CancelFunc
}

// NewSearchController creates a controller in the idle state on page 1
func NewSearchController(directory domain.DirectoryRepository, pageSize int, logger *slog.Logger) *SearchController {
	if logger == nil {
		logger = slog.Default()
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &SearchController{
		directory: directory,
		logger:    logger,
		pageSize:  pageSize,
		newToken:  func() string { return uuid.NewString() },
		page:      1,
		status:    domain.SearchIdle,
	}
}

// === Inputs ===

// SetTerm updates the station name filter
func (c *SearchController) SetTerm(term string) (SearchRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.filters.Term == term {
		return SearchRequest{}, false
	}
	c.filters.Term = term
	return c.refresh()
}

// SetCountry updates the country filter
func (c *SearchController) SetCountry(country string) (SearchRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.filters.Country == country {
		return SearchRequest{}, false
	}
	c.filters.Country = country
	return c.refresh()
}

// SetLanguage updates the language filter
func (c *SearchController) SetLanguage(language string) (SearchRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.filters.Language == language {
		return SearchRequest{}, false
	}
	c.filters.Language = language
	return c.refresh()
}

// SetVisible opens or closes the search surface
func (c *SearchController) SetVisible(visible bool) (SearchRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.visible == visible {
		return SearchRequest{}, false
	}
	c.visible = visible
	return c.refresh()
}

// SetWide records a layout change across the wide threshold.
// Becoming wide also makes the search surface visible.
func (c *SearchController) SetWide(wide bool) (SearchRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wide == wide {
		return SearchRequest{}, false
	}
	c.wide = wide
	if wide {
		c.visible = true
	}
	return c.refresh()
}

// Reset clears every filter and closes the surface
func (c *SearchController) Reset() (SearchRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = domain.SearchFilters{}
	c.visible = false
	return c.refresh()
}

// LoadMore requests the next page, to be appended to the current results.
// Ignored while a request is in flight or when no query is active.
func (c *SearchController) LoadMore() (SearchRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != domain.SearchLoaded {
		return SearchRequest{}, false
	}
	c.page++
	req, ok := c.issue(true)
	if !ok {
		c.page--
	}
	return req, ok
}

// refresh resets pagination and results, then issues the query for the
// current inputs. Caller holds c.mu.
func (c *SearchController) refresh() (SearchRequest, bool) {
	c.page = 1
	c.results = nil
	c.lastCount = 0
	return c.issue(false)
}

// issue cancels any in-flight request and, if the inputs call for one,
// starts a new one. Caller holds c.mu.
func (c *SearchController) issue(appendTo bool) (SearchRequest, bool) {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	value, kind, ok := c.filters.Active()
	if !ok {
		if !c.visible && !c.wide {
			c.token = ""
			c.status = domain.SearchIdle
			return SearchRequest{}, false
		}
		// Nothing typed: browse the whole directory
		value, kind = "", domain.FilterName
	}

	c.token = c.newToken()
	c.appendTo = appendTo
	c.status = domain.SearchLoading

	req := SearchRequest{
		Token:    c.token,
		Filter:   value,
		Kind:     kind,
		Page:     c.page,
		PageSize: c.pageSize,
		Append:   appendTo,
	}
	c.logger.Debug("search issued", "token", req.Token, "filter", value, "kind", kind.String(), "page", c.page)
	return req, true
}

// === Execution ===

// Execute runs req against the directory. A request superseded before or
// during the call is cancelled and returns ok=false. A request that is still
// the latest but whose context expired returns ok=true with no stations, so
// Complete settles it as an empty page.
func (c *SearchController) Execute(ctx context.Context, req SearchRequest) ([]domain.Station, bool) {
	c.mu.Lock()
	if req.Token == "" || req.Token != c.token {
		c.mu.Unlock()
		return nil, false
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	stations := c.directory.SearchStations(ctx, req.Filter, req.Kind, req.Page, req.PageSize)

	c.mu.Lock()
	latest := req.Token == c.token
	c.mu.Unlock()
	if !latest {
		return nil, false
	}
	if err := ctx.Err(); err != nil {
		c.logger.Warn("search request expired", "token", req.Token, "error", err)
		return nil, true
	}
	return stations, true
}

// Complete applies a response. Responses for anything but the latest
// request are discarded; returns whether the results changed.
func (c *SearchController) Complete(token string, stations []domain.Station) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token == "" || token != c.token {
		c.logger.Debug("dropping stale search response", "token", token, "latest", c.token)
		return false
	}

	if c.appendTo {
		c.results = DedupeStations(c.results, stations)
	} else {
		c.results = DedupeStations(stations)
	}
	c.lastCount = len(stations)
	c.status = domain.SearchLoaded
	c.cancel = nil
	c.logger.Debug("search loaded", "token", token, "received", len(stations), "total", len(c.results))
	return true
}

// DedupeStations concatenates lists and removes repeated identifiers.
// Order follows first appearance; the last record seen for an identifier wins.
func DedupeStations(lists ...[]domain.Station) []domain.Station {
	index := make(map[string]int)
	var out []domain.Station
	for _, list := range lists {
		for _, st := range list {
			if i, ok := index[st.ID]; ok {
				out[i] = st
				continue
			}
			index[st.ID] = len(out)
			out = append(out, st)
		}
	}
	return out
}

// === State ===

// Results returns a copy of the current result list
func (c *SearchController) Results() []domain.Station {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.results)
}

// Page returns the current page number (1-based)
func (c *SearchController) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Status returns the current request state
func (c *SearchController) Status() domain.SearchStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Filters returns the current filter inputs
func (c *SearchController) Filters() domain.SearchFilters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// Visible returns whether the search surface is open
func (c *SearchController) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// Wide returns whether the layout is at or above the wide threshold
func (c *SearchController) Wide() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wide
}

// CanLoadMore returns true if the last page came back full
func (c *SearchController) CanLoadMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status == domain.SearchLoaded && c.lastCount >= c.pageSize
}
