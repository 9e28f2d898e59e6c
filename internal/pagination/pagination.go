// Package pagination holds listing page state and the page-number window shown
// under a listing.
package pagination

import "sync"

// DefaultRadius is the number of pages listed either side of the current page.
const DefaultRadius = 1

// Pagination is the page metadata returned by the content API.
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

// Page is one page of mapped results.
type Page[T any] struct {
	Items      []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// PageCount returns ceil(total/pageSize), never less than 1.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// Normalize fills in a missing or inconsistent page count and clamps the page
// number into range.
func (p Pagination) Normalize() Pagination {
	if p.Total < 0 {
		p.Total = 0
	}
	if p.PageCount < 1 {
		p.PageCount = PageCount(p.Total, p.PageSize)
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > p.PageCount {
		p.Page = p.PageCount
	}
	return p
}

// Range returns the 1-based item bounds shown on the current page, as in
// "Showing from to to of total". An empty result gives 0, 0.
func (p Pagination) Range() (from, to int) {
	if p.Total <= 0 || p.PageSize <= 0 {
		return 0, 0
	}
	from = (p.Page-1)*p.PageSize + 1
	if from > p.Total {
		return 0, 0
	}
	to = p.Page * p.PageSize
	if to > p.Total {
		to = p.Total
	}
	return from, to
}

// Token is one entry of the page-number window: a page number or an ellipsis.
type Token struct {
	Page     int  `json:"page,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
	Current  bool `json:"current,omitempty"`
}

// Window returns the page-number tokens for current out of pageCount. The
// first and last pages are always present, pages within radius of current
// are listed, and each gap collapses into a single ellipsis.
func Window(current, pageCount, radius int) []Token {
	if pageCount <= 1 {
		return []Token{{Page: 1, Current: true}}
	}
	if radius < 0 {
		radius = 0
	}
	if current < 1 {
		current = 1
	}
	if current > pageCount {
		current = pageCount
	}

	lo := max(2, current-radius)
	hi := min(pageCount-1, current+radius)

	tokens := make([]Token, 0, hi-lo+5)
	tokens = append(tokens, Token{Page: 1, Current: current == 1})
	if lo > 2 {
		tokens = append(tokens, Token{Ellipsis: true})
	}
	for p := lo; p <= hi; p++ {
		tokens = append(tokens, Token{Page: p, Current: p == current})
	}
	if hi < pageCount-1 {
		tokens = append(tokens, Token{Ellipsis: true})
	}
	tokens = append(tokens, Token{Page: pageCount, Current: current == pageCount})
	return tokens
}

// Controller guards page navigation for one listing. A request for a page
// outside [1, pageCount], or any request while a load is in flight, is
// rejected and leaves the state unchanged.
type Controller struct {
	mu      sync.Mutex
	state   Pagination
	loading bool
	radius  int
}

// NewController creates a controller starting on page 1.
func NewController(pageSize, radius int) *Controller {
	if radius < 1 {
		radius = DefaultRadius
	}
	return &Controller{
		state:  Pagination{Page: 1, PageSize: pageSize, PageCount: 1},
		radius: radius,
	}
}

// State returns a copy of the current pagination.
func (c *Controller) State() Pagination {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Loading reports whether a load is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// SetLoading marks a load as started or finished.
func (c *Controller) SetLoading(loading bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = loading
}

// Update replaces the state with metadata from a completed load.
func (c *Controller) Update(p Pagination) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p.PageSize <= 0 {
		p.PageSize = c.state.PageSize
	}
	c.state = p.Normalize()
}

// Reset returns to page 1, keeping page size and the last known counts.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Page = 1
}

// Request validates a navigation to page. It returns the page to load and
// true, or the current page and false when the request is rejected.
func (c *Controller) Request(page int) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading || page < 1 || page > c.state.PageCount {
		return c.state.Page, false
	}
	return page, true
}

// Next requests the page after the current one.
func (c *Controller) Next() (int, bool) {
	return c.Request(c.State().Page + 1)
}

// Prev requests the page before the current one.
func (c *Controller) Prev() (int, bool) {
	return c.Request(c.State().Page - 1)
}

// Tokens returns the page-number window for the current state.
func (c *Controller) Tokens() []Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Window(c.state.Page, c.state.PageCount, c.radius)
}

// Range returns the item bounds of the current page.
func (c *Controller) Range() (from, to int) {
	return c.State().Range()
}
