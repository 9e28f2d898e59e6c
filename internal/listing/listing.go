// Package listing is the state container behind one paginated, filterable
// listing: filters, sort, current page, loaded items and the last error.
//
// Filter edits are debounced; sort changes, page navigation and clearing the
// filters load immediately. Every load is stamped with a sequence number and
// a response is applied only if no newer load was issued after it.
package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"sourcetalk/internal/debounce"
	"sourcetalk/internal/logging"
	"sourcetalk/internal/metrics"
	"sourcetalk/internal/pagination"
	"sourcetalk/internal/query"
)

// ErrClosed is returned by operations on a closed listing.
var ErrClosed = errors.New("listing closed")

// Fetcher loads one page. *content.Fetcher implements it.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, req query.Request) (pagination.Page[T], error)
}

// Options configures a Listing.
type Options struct {
	Resource       query.Resource
	PageSize       int
	Radius         int
	DebounceWindow time.Duration
	Sort           query.Sort

	// OnChange is called, outside any lock, after every state change.
	OnChange func()
}

// Listing holds the state of one listing.
type Listing[T any] struct {
	mu       sync.Mutex
	fetcher  Fetcher[T]
	resource query.Resource
	pageSize int
	filters  FilterState
	sort     query.Sort
	items    []T
	err      string
	seq      uint64
	lastReq  query.Request
	hasReq   bool
	closed   bool

	ctrl     *pagination.Controller
	gate     *debounce.Gate
	onChange func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a listing. Nothing is loaded until Load, Edit, SetSort, GoTo
// or ClearFilters is called.
func New[T any](fetcher Fetcher[T], opts Options) *Listing[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = 12
	}
	sort := opts.Sort
	if sort == "" {
		sort = query.DefaultSort(opts.Resource)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Listing[T]{
		fetcher:  fetcher,
		resource: opts.Resource,
		pageSize: opts.PageSize,
		sort:     sort,
		ctrl:     pagination.NewController(opts.PageSize, opts.Radius),
		gate:     debounce.NewGate(opts.DebounceWindow),
		onChange: opts.OnChange,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Snapshot is a consistent copy of the listing state for rendering.
type Snapshot[T any] struct {
	Resource   query.Resource
	Items      []T
	Pagination pagination.Pagination
	Tokens     []pagination.Token
	From, To   int
	Loading    bool
	Editing    bool
	Remaining  time.Duration
	Err        string
	Filters    FilterState
	Sort       query.Sort
}

// Snapshot returns the current state.
func (l *Listing[T]) Snapshot() Snapshot[T] {
	l.mu.Lock()
	defer l.mu.Unlock()

	from, to := l.ctrl.Range()
	items := make([]T, len(l.items))
	copy(items, l.items)
	return Snapshot[T]{
		Resource:   l.resource,
		Items:      items,
		Pagination: l.ctrl.State(),
		Tokens:     l.ctrl.Tokens(),
		From:       from,
		To:         to,
		Loading:    l.ctrl.Loading(),
		Editing:    l.gate.Pending(),
		Remaining:  l.gate.Remaining(),
		Err:        l.err,
		Filters:    l.filters.Clone(),
		Sort:       l.sort,
	}
}

// Load loads page immediately, bypassing the in-flight check. It is the
// initial load and the target of explicit refreshes.
func (l *Listing[T]) Load(page int) error {
	if page < 1 {
		page = 1
	}
	return l.start(page)
}

// Edit applies a filter change and schedules a load of page 1 once edits
// have been quiet for the debounce window.
func (l *Listing[T]) Edit(change func(*FilterState)) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	change(&l.filters)
	l.mu.Unlock()

	l.gate.Edit(func() {
		metrics.RecordDebounceTrigger(string(l.resource))
		logging.ListingDebug("%s: filters settled", l.resource)
		if err := l.start(1); err != nil {
			logging.ListingDebug("%s: debounced load skipped: %v", l.resource, err)
		}
	})
	l.notify()
	return nil
}

// ClearFilters resets every filter and loads page 1 immediately, cancelling
// any pending debounced load.
func (l *Listing[T]) ClearFilters() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.filters.clear()
	l.mu.Unlock()

	var err error
	l.gate.Flush(func() { err = l.start(1) })
	return err
}

// SetSort changes the sort option and loads page 1 immediately. Pending
// filter edits are included in that load.
func (l *Listing[T]) SetSort(sort query.Sort) error {
	if _, err := sort.Param(l.resource); err != nil {
		return err
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.sort = sort
	l.mu.Unlock()

	var err error
	l.gate.Flush(func() { err = l.start(1) })
	return err
}

// GoTo loads page. It reports false, changing nothing, when page is out of
// range or a load is in flight.
func (l *Listing[T]) GoTo(page int) bool {
	target, ok := l.ctrl.Request(page)
	if !ok {
		logging.ListingDebug("%s: page %d rejected", l.resource, page)
		return false
	}
	return l.start(target) == nil
}

// Next moves to the following page.
func (l *Listing[T]) Next() bool {
	return l.GoTo(l.ctrl.State().Page + 1)
}

// Prev moves to the preceding page.
func (l *Listing[T]) Prev() bool {
	return l.GoTo(l.ctrl.State().Page - 1)
}

// Retry reissues the last request.
func (l *Listing[T]) Retry() error {
	l.mu.Lock()
	if !l.hasReq {
		l.mu.Unlock()
		return l.start(1)
	}
	req := l.lastReq
	l.mu.Unlock()
	return l.issue(req)
}

// Wait blocks until every issued load has completed.
func (l *Listing[T]) Wait() {
	l.wg.Wait()
}

// Close cancels pending and in-flight loads and waits for them to finish.
func (l *Listing[T]) Close() {
	l.gate.Stop()
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.cancel()
	l.wg.Wait()
}

// start issues a load of page using the current filters and sort.
func (l *Listing[T]) start(page int) error {
	l.mu.Lock()
	req := query.Request{
		Page:     page,
		PageSize: l.pageSize,
		Sort:     l.sort,
		Filters:  l.filters.Filters(),
	}
	l.mu.Unlock()
	return l.issue(req)
}

func (l *Listing[T]) issue(req query.Request) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.seq++
	seq := l.seq
	l.lastReq = req
	l.hasReq = true
	l.ctrl.SetLoading(true)
	l.wg.Add(1)
	l.mu.Unlock()

	logging.ListingDebug("%s: load #%d page %d", l.resource, seq, req.Page)
	l.notify()

	go l.run(seq, req)
	return nil
}

func (l *Listing[T]) run(seq uint64, req query.Request) {
	defer l.wg.Done()

	page, err := l.fetcher.Fetch(l.ctx, req)

	l.mu.Lock()
	if seq != l.seq {
		l.mu.Unlock()
		metrics.RecordStaleResponse(string(l.resource))
		logging.ListingWarn("%s: dropped stale response #%d (latest #%d)", l.resource, seq, l.latest())
		return
	}
	l.ctrl.SetLoading(false)
	if err != nil {
		l.err = errorText(l.resource, err)
		l.mu.Unlock()
		if !errors.Is(err, context.Canceled) {
			logging.ListingWarn("%s: load #%d failed: %v", l.resource, seq, err)
		}
		l.notify()
		return
	}
	l.err = ""
	l.items = page.Items
	l.ctrl.Update(page.Pagination)
	l.mu.Unlock()

	logging.Listing("%s: page %d/%d, %d of %d items",
		l.resource, page.Pagination.Page, page.Pagination.PageCount, len(page.Items), page.Pagination.Total)
	l.notify()
}

func (l *Listing[T]) latest() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq
}

func (l *Listing[T]) notify() {
	if l.onChange != nil {
		l.onChange()
	}
}

// errorText is the single line shown for a failed load.
func errorText(resource query.Resource, err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if msg == "" {
		return fmt.Sprintf("Failed to fetch %s", resource)
	}
	return msg
}
