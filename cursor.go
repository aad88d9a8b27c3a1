package pagecursor

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// NoIndex is the index of a cursor whose window is empty.
const NoIndex = -1

// Direction is the last navigation direction taken. Informational only.
type Direction string

const (
	DirectionNone Direction = ""
	DirectionNext Direction = "next"
	DirectionPrev Direction = "prev"
)

// window is the state replaced wholesale by every successful load.
type window[T any] struct {
	buffer     []T
	index      int
	page       int
	totalCount int
	counted    bool
	hasMore    bool
	loaded     bool
}

// lastOffset is the global offset of the last record known to exist. Without
// a reported total that is the last record of the window.
func (w window[T]) lastOffset(pageSize int) int {
	if w.counted {
		return w.totalCount - 1
	}

	return OffsetOf(w.page, len(w.buffer), pageSize) - 1
}

// empty reports whether the window shows the collection has no records.
func (w window[T]) empty() bool {
	if len(w.buffer) > 0 {
		return false
	}

	return lo.Ternary(w.counted, w.totalCount == 0, w.page == 1)
}

func newWindow[T any](page, pageSize int, resp ListResponse[T]) window[T] {
	w := window[T]{
		buffer: append(make([]T, 0, len(resp.Rows)), resp.Rows...),
		index:  NoIndex,
		page:   page,
		loaded: true,
	}
	if len(w.buffer) > 0 {
		w.index = 0
	}

	// Without a reported total, a full page is taken as a sign of more data
	// and the count is only what the window holds.
	if resp.HasTotal() {
		w.totalCount = resp.Total
		w.counted = true
		w.hasMore = resp.Total > page*pageSize
	} else {
		w.totalCount = len(w.buffer)
		w.hasMore = len(w.buffer) >= pageSize
	}

	return w
}

// Snapshot is a point-in-time view of the cursor state, meant for debugging
// and logging.
type Snapshot struct {
	Endpoint      string    `json:"endpoint"`
	Records       int       `json:"records"`
	Index         int       `json:"index"`
	Page          int       `json:"page"`
	PageSize      int       `json:"pageSize"`
	TotalCount    int       `json:"count"`
	TotalPages    int       `json:"countPages"`
	HasMore       bool      `json:"hasMore"`
	Loaded        bool      `json:"loaded"`
	Loading       bool      `json:"loading"`
	LastDirection Direction `json:"lastMove,omitempty"`
	Filter        Filter    `json:"search,omitempty"`
}

// PagedCursor is a cursor over a paginated RemoteCollection. It holds one
// page of records and an index into it.
//
// A PagedCursor must not be used by several goroutines at once. Calls made
// while a network call is in flight are rejected with ErrBusy.
type PagedCursor[T any] struct {
	endpoint   string
	remote     RemoteCollection[T]
	pageSize   int
	primaryKey string
	reconcile  ReconcileStrategy
	sort       []string
	getters    Getters[T]
	comparator Comparator[T]
	clone      Cloner[T]
	logger     logrus.FieldLogger

	w             window[T]
	filter        Filter
	loading       *atomic.Bool
	lastDirection Direction
	lastErr       error

	// snapshot is the record seen at the last positioning call; Update skips
	// payloads equal to it.
	snapshot    T
	hasSnapshot bool
}

// New creates a cursor over remote. The endpoint is an opaque identity used
// in logs and Dump; it must not be empty. A nil cfg means defaults.
func New[T any](endpoint string, remote RemoteCollection[T], cfg *Config[T]) (*PagedCursor[T], error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, newValidationError("endpoint", "is required")
	}
	if remote == nil {
		return nil, newValidationError("remote", "is required")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &PagedCursor[T]{
		endpoint:   endpoint,
		remote:     remote,
		pageSize:   cfg.GetPageSize(),
		primaryKey: cfg.GetPrimaryKey(),
		reconcile:  cfg.GetReconcileStrategy(),
		sort:       slices.Clone(cfg.getSort()),
		getters:    cfg.getGetters(),
		comparator: cfg.getComparator(),
		clone:      cfg.getCloner(),
		logger:     cfg.getLogger(),
		w: window[T]{
			buffer: []T{},
			index:  NoIndex,
			page:   cfg.GetInitialPage(),
		},
		loading: atomic.NewBool(false),
	}, nil
}

// invoke runs a collaborator call under the loading flag.
func invoke[T, R any](c *PagedCursor[T], op string, fn func() (R, error)) (R, error) {
	if !c.loading.CompareAndSwap(false, true) {
		c.lastErr = ErrBusy
		return lo.Empty[R](), ErrBusy
	}
	defer c.loading.Store(false)

	ret, err := fn()
	if err != nil {
		err = newTransportError(op, err)
		c.lastErr = err
		c.log().WithField("op", op).WithError(err).Warn("remote call failed")
		return lo.Empty[R](), err
	}

	c.lastErr = nil

	return ret, nil
}

func (c *PagedCursor[T]) log() logrus.FieldLogger {
	return c.logger.WithFields(logrus.Fields{
		"endpoint": c.endpoint,
		"page":     c.w.page,
	})
}

func mergeFilters(base, overrides Filter) Filter {
	if len(base) == 0 && len(overrides) == 0 {
		return nil
	}

	return lo.Assign(base, overrides)
}

// loadPage fetches page and replaces the window. The window is untouched on
// failure.
func (c *PagedCursor[T]) loadPage(ctx context.Context, page int, overrides Filter) error {
	q := ListQuery{
		Filter: mergeFilters(c.filter, overrides),
		Page:   page,
		Limit:  c.pageSize,
		Sort:   c.sort,
	}

	resp, err := invoke(c, "list", func() (ListResponse[T], error) {
		return c.remote.List(ctx, q)
	})
	if err != nil {
		return err
	}

	c.w = newWindow(page, c.pageSize, resp)
	c.log().WithFields(logrus.Fields{
		"rows":  len(c.w.buffer),
		"total": c.w.totalCount,
	}).Debug("page loaded")

	return nil
}

// Load fetches the current page with the current filter, merged with the
// one-off overrides. On success the index is reset to the first record.
func (c *PagedCursor[T]) Load(ctx context.Context, overrides Filter) Result[[]T] {
	if err := c.loadPage(ctx, c.w.page, overrides); err != nil {
		return failResult[[]T](err)
	}

	return okResult(c.All())
}

// Current returns the record at the index. It reports false when the window
// is empty.
func (c *PagedCursor[T]) Current() (T, bool) {
	if c.w.index < 0 || c.w.index >= len(c.w.buffer) {
		return lo.Empty[T](), false
	}

	return c.w.buffer[c.w.index], true
}

// positioned returns the current record and remembers it for Update.
func (c *PagedCursor[T]) positioned() (T, bool) {
	cur, found := c.Current()
	c.snapshot, c.hasSnapshot = c.clone(cur), found

	return cur, found
}

// Next moves to the following record, loading the next page when the end of
// the window is reached. At the end of the data the current record is
// returned unchanged. A failed page load keeps the previous state and
// reports false.
func (c *PagedCursor[T]) Next(ctx context.Context) (T, bool) {
	c.lastDirection = DirectionNext

	if c.w.index < len(c.w.buffer)-1 {
		c.w.index++
		return c.positioned()
	}

	if c.w.hasMore {
		if err := c.loadPage(ctx, c.w.page+1, nil); err != nil {
			return lo.Empty[T](), false
		}
		return c.positioned()
	}

	return c.Current()
}

// Prev moves to the preceding record, loading the previous page (positioned
// on its last record) when the start of the window is reached. On the first
// record of the first page the current record is returned unchanged.
func (c *PagedCursor[T]) Prev(ctx context.Context) (T, bool) {
	c.lastDirection = DirectionPrev

	if c.w.index > 0 {
		c.w.index--
		return c.positioned()
	}

	if c.w.page > 1 {
		if err := c.loadPage(ctx, c.w.page-1, nil); err != nil {
			return lo.Empty[T](), false
		}
		c.w.index = len(c.w.buffer) - 1
		return c.positioned()
	}

	return c.Current()
}

// Goto positions the cursor on the record at the zero-based global offset.
// The containing page is always re-fetched. Offsets with no record report
// false and leave the previous state in place, unless the fetched page shows
// the collection is empty: the empty window is then kept.
func (c *PagedCursor[T]) Goto(ctx context.Context, offset int) (T, bool) {
	if offset < 0 {
		c.lastErr = fmt.Errorf("goto %d: %w", offset, ErrOutOfRange)
		return lo.Empty[T](), false
	}

	prev := c.w
	if err := c.loadPage(ctx, PageOf(offset, c.pageSize), nil); err != nil {
		return lo.Empty[T](), false
	}

	index := IndexOf(offset, c.pageSize)
	if index >= len(c.w.buffer) {
		if c.w.empty() {
			c.snapshot, c.hasSnapshot = lo.Empty[T](), false
		} else {
			c.w = prev
		}
		c.lastErr = fmt.Errorf("goto %d: %w", offset, ErrOutOfRange)
		return lo.Empty[T](), false
	}
	c.w.index = index

	return c.positioned()
}

// First positions the cursor on the first record of the collection.
func (c *PagedCursor[T]) First(ctx context.Context) (T, bool) {
	return c.Goto(ctx, 0)
}

// Last positions the cursor on the last record of the collection. When no
// page has been loaded yet, the current page is loaded first to learn the
// total. Without a reported total it is the last record of the window.
func (c *PagedCursor[T]) Last(ctx context.Context) (T, bool) {
	if !c.w.loaded {
		if err := c.loadPage(ctx, c.w.page, nil); err != nil {
			return lo.Empty[T](), false
		}
	}

	return c.Goto(ctx, c.w.lastOffset(c.pageSize))
}

// Search replaces the filter and loads the first page. A nil or empty filter
// clears filtering. On failure the previous filter and window are kept.
func (c *PagedCursor[T]) Search(ctx context.Context, filter Filter) Result[[]T] {
	prev := c.filter
	c.filter = lo.Ternary(len(filter) == 0, nil, filter.Clone())

	if err := c.loadPage(ctx, 1, nil); err != nil {
		c.filter = prev
		return failResult[[]T](err)
	}

	return okResult(c.All())
}

// FindBy is Search with a single field.
func (c *PagedCursor[T]) FindBy(ctx context.Context, field string, value any) Result[[]T] {
	if field == "" {
		return failResult[[]T](newValidationError("field", "is required"))
	}

	return c.Search(ctx, Filter{field: value})
}

// Position returns the global offset of the current record, or NoPosition.
func (c *PagedCursor[T]) Position() int {
	if _, found := c.Current(); !found {
		return NoPosition
	}

	return OffsetOf(c.w.page, c.w.index, c.pageSize)
}

// Bookmark returns a token for the current position, empty when the cursor
// points nowhere.
func (c *PagedCursor[T]) Bookmark() string {
	return EncodePosition(c.Position())
}

// GotoBookmark positions the cursor on a position previously returned by
// Bookmark.
func (c *PagedCursor[T]) GotoBookmark(ctx context.Context, token string) (T, bool) {
	offset, err := DecodePosition(token)
	if err != nil {
		c.lastErr = newValidationError("bookmark", err.Error())
		return lo.Empty[T](), false
	}
	if offset == NoPosition {
		return lo.Empty[T](), false
	}

	return c.Goto(ctx, offset)
}

// Endpoint returns the opaque collection identity given to New.
func (c *PagedCursor[T]) Endpoint() string {
	return c.endpoint
}

// All returns a copy of the loaded window.
func (c *PagedCursor[T]) All() []T {
	return slices.Clone(c.w.buffer)
}

// Index returns the index into the window, NoIndex when it is empty.
func (c *PagedCursor[T]) Index() int {
	return c.w.index
}

// Page returns the 1-based number of the loaded page.
func (c *PagedCursor[T]) Page() int {
	return c.w.page
}

func (c *PagedCursor[T]) PageSize() int {
	return c.pageSize
}

func (c *PagedCursor[T]) PrimaryKey() string {
	return c.primaryKey
}

// TotalCount returns the best-effort number of records matching the filter.
// Without a reported total it is the number of records in the window.
func (c *PagedCursor[T]) TotalCount() int {
	return c.w.totalCount
}

func (c *PagedCursor[T]) TotalPages() int {
	return TotalPages(c.w.totalCount, c.pageSize)
}

// HasMore reports whether a next page was believed non-empty at the last
// load.
func (c *PagedCursor[T]) HasMore() bool {
	return c.w.hasMore
}

// Filter returns a copy of the applied filter.
func (c *PagedCursor[T]) Filter() Filter {
	return c.filter.Clone()
}

// IsLoading reports whether a network call is in flight.
func (c *PagedCursor[T]) IsLoading() bool {
	return c.loading.Load()
}

func (c *PagedCursor[T]) LastDirection() Direction {
	return c.lastDirection
}

// LastError returns the error of the last failed operation, or nil when the
// last network call succeeded.
func (c *PagedCursor[T]) LastError() error {
	return c.lastErr
}

// Dump returns a snapshot of the cursor state.
func (c *PagedCursor[T]) Dump() Snapshot {
	return Snapshot{
		Endpoint:      c.endpoint,
		Records:       len(c.w.buffer),
		Index:         c.w.index,
		Page:          c.w.page,
		PageSize:      c.pageSize,
		TotalCount:    c.w.totalCount,
		TotalPages:    c.TotalPages(),
		HasMore:       c.w.hasMore,
		Loaded:        c.w.loaded,
		Loading:       c.IsLoading(),
		LastDirection: c.lastDirection,
		Filter:        c.Filter(),
	}
}
