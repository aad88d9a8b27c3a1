package pagecursor

import (
	"context"
	"slices"

	"github.com/samber/lo"
)

// Insert creates payload in the remote collection. With ReconcilePatch the
// created record is appended to the window and becomes current; with
// ReconcileReload the page is re-fetched and the created record becomes
// current when it is on the page.
func (c *PagedCursor[T]) Insert(ctx context.Context, payload T) Result[T] {
	if err := validatePayload(payload); err != nil {
		return failResult[T](err)
	}

	created, err := invoke(c, "create", func() (T, error) {
		return c.remote.Create(ctx, payload)
	})
	if err != nil {
		return failResult[T](err)
	}

	switch c.reconcile {
	case ReconcilePatch:
		c.w.buffer = append(c.w.buffer, created)
		c.w.index = len(c.w.buffer) - 1
		c.w.totalCount++
	case ReconcileReload:
		id, found := identityOf(created, c.primaryKey, c.getters)
		c.reloadAround(ctx, lo.Ternary(found, id, nil))
	}

	return okResult(created)
}

// Update replaces the record identified by id. Unless force is set, the call
// is skipped when the record seen at the last positioning call has this id
// and equals payload; the result then has Skipped set. The check is a hint only: records
// that became current through Load or Search are never considered
// unchanged.
func (c *PagedCursor[T]) Update(ctx context.Context, id any, payload T, force bool) Result[T] {
	if err := validateID(id); err != nil {
		return failResult[T](err)
	}
	if err := validatePayload(payload); err != nil {
		return failResult[T](err)
	}

	if !force && c.hasSnapshot && c.isRecord(c.snapshot, id) && c.comparator(c.snapshot, payload) {
		c.log().WithField("id", id).Debug("update skipped, payload unchanged")
		return Result[T]{Success: true, Data: payload, Skipped: true}
	}

	updated, err := invoke(c, "replace", func() (T, error) {
		return c.remote.Replace(ctx, id, payload)
	})
	if err != nil {
		return failResult[T](err)
	}

	switch c.reconcile {
	case ReconcilePatch:
		// A record missing from the window is not an error: the remote
		// update succeeded.
		if i := c.indexOf(id); i != NoIndex {
			c.w.buffer[i] = updated
		}
	case ReconcileReload:
		c.reloadAround(ctx, nil)
	}

	if cur, found := c.Current(); found && c.isRecord(cur, id) {
		c.snapshot, c.hasSnapshot = c.clone(cur), true
	}

	return okResult(updated)
}

// Delete removes the record identified by id. With ReconcilePatch the record
// is dropped from the window and the index is only clamped to the new window
// bounds, so it may land on the record that followed the removed one.
func (c *PagedCursor[T]) Delete(ctx context.Context, id any) Result[struct{}] {
	if err := validateID(id); err != nil {
		return failResult[struct{}](err)
	}

	_, err := invoke(c, "remove", func() (struct{}, error) {
		return struct{}{}, c.remote.Remove(ctx, id)
	})
	if err != nil {
		return failResult[struct{}](err)
	}

	switch c.reconcile {
	case ReconcilePatch:
		if i := c.indexOf(id); i != NoIndex {
			c.w.buffer = slices.Delete(c.w.buffer, i, i+1)
			c.w.totalCount = max(c.w.totalCount-1, 0)
			c.w.index = clampIndex(c.w.index, len(c.w.buffer))
		}
	case ReconcileReload:
		c.reloadAround(ctx, nil)
	}

	return okResult(struct{}{})
}

// reloadAround re-fetches the current page after a mutation. The record
// identified by focus becomes current when present; otherwise the previous
// index is kept, clamped to the new window. A page emptied by the mutation
// falls back to the last record of the previous page.
func (c *PagedCursor[T]) reloadAround(ctx context.Context, focus any) {
	prevIndex := c.w.index

	if err := c.loadPage(ctx, c.w.page, nil); err != nil {
		return
	}

	if len(c.w.buffer) == 0 && c.w.page > 1 {
		if err := c.loadPage(ctx, c.w.page-1, nil); err != nil {
			return
		}
		c.w.index = len(c.w.buffer) - 1
		return
	}

	if focus != nil {
		if i := c.indexOf(focus); i != NoIndex {
			c.w.index = i
			return
		}
	}

	c.w.index = clampIndex(prevIndex, len(c.w.buffer))
}

// indexOf locates the record with the given primary key in the window.
func (c *PagedCursor[T]) indexOf(id any) int {
	return slices.IndexFunc(c.w.buffer, func(rec T) bool {
		return c.isRecord(rec, id)
	})
}

func (c *PagedCursor[T]) isRecord(rec T, id any) bool {
	key, found := identityOf(rec, c.primaryKey, c.getters)
	return found && sameIdentity(key, id)
}

func clampIndex(index, length int) int {
	switch {
	case length == 0:
		return NoIndex
	case index < 0:
		return 0
	case index >= length:
		return length - 1
	default:
		return index
	}
}
