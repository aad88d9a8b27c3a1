package pagecursor

import (
	"context"
	"maps"
)

// TotalUnknown is reported in ListResponse.Total by collections that do not
// count matching records.
const TotalUnknown = -1

// Filter maps field names to the scalar values they must equal. A nil or
// empty Filter means unfiltered.
type Filter map[string]any

// Clone returns a shallow copy of the filter. Nil stays nil.
func (f Filter) Clone() Filter {
	if f == nil {
		return nil
	}

	return maps.Clone(f)
}

// ListQuery addresses one page of a remote collection.
type ListQuery struct {
	Filter Filter `json:"filter,omitempty"`
	// Page is 1-based.
	Page  int `json:"page"`
	Limit int `json:"limit"`
	// Sort holds orderings in the "column asc|desc" format understood by
	// ParseSort. Collections may ignore it.
	Sort []string `json:"sort,omitempty"`
}

// Offset returns the global offset of the first record of the page.
func (q ListQuery) Offset() int {
	return (NormalizePage(q.Page) - 1) * q.Limit
}

// ListResponse is one page of records as returned by a RemoteCollection.
type ListResponse[T any] struct {
	// Rows in server order.
	Rows []T `json:"items"`
	// Total number of records matching the query, or TotalUnknown.
	Total int `json:"total"`
}

// HasTotal reports whether the collection counted the matching records.
func (r ListResponse[T]) HasTotal() bool {
	return r.Total >= 0
}

// RemoteCollection performs the network calls on behalf of a PagedCursor.
// Implementations own transport concerns such as timeouts, retries and
// authentication.
type RemoteCollection[T any] interface {
	List(ctx context.Context, q ListQuery) (ListResponse[T], error)
	Create(ctx context.Context, payload T) (T, error)
	Replace(ctx context.Context, id any, payload T) (T, error)
	Remove(ctx context.Context, id any) error
}
