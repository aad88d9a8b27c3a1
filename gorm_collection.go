package pagecursor

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCollection is a RemoteCollection backed by a GORM model. T must be a
// struct type GORM can map to a table.
//
// Pages are fetched with LIMIT/OFFSET over a deterministic ordering; the
// primary key column is always appended as the last ordering column.
type GORMCollection[T any] struct {
	db          *gorm.DB
	primaryKey  string
	columns     ColumnMapping
	defaultSort Orderings
}

func NewGORMCollection[T any](db *gorm.DB) *GORMCollection[T] {
	return &GORMCollection[T]{
		db:         db,
		primaryKey: "id",
	}
}

// WithPrimaryKey sets the primary key column. Defaults to "id".
func (g *GORMCollection[T]) WithPrimaryKey(column string) *GORMCollection[T] {
	g.primaryKey = column

	return g
}

// WithColumnMapping restricts filter fields and sort aliases to the mapping
// and resolves them to column names. Without a mapping, filter fields are
// used as column names and ListQuery.Sort is ignored.
func (g *GORMCollection[T]) WithColumnMapping(mapping ColumnMapping) *GORMCollection[T] {
	g.columns = mapping

	return g
}

// WithDefaultSort sets the ordering used when a query carries no sort.
func (g *GORMCollection[T]) WithDefaultSort(orderBy ...OrderBy) *GORMCollection[T] {
	g.defaultSort = orderBy

	return g
}

// List implements RemoteCollection. The total is always counted.
func (g *GORMCollection[T]) List(ctx context.Context, q ListQuery) (ListResponse[T], error) {
	filter, err := g.resolveFilter(q.Filter)
	if err != nil {
		return ListResponse[T]{}, fmt.Errorf("cannot list records: %w", err)
	}

	sort, err := g.orderings(q.Sort)
	if err != nil {
		return ListResponse[T]{}, fmt.Errorf("cannot list records: %w", err)
	}

	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Model(new(T))
		if exp := filter.toConjunction().toGORMExpression(); exp != nil {
			db = db.Clauses(exp)
		}

		return db
	}
	db := g.db.WithContext(ctx)

	var total int64
	if err = db.Scopes(scope).Count(&total).Error; err != nil {
		return ListResponse[T]{}, fmt.Errorf("cannot count records: %w", err)
	}

	q.Limit = NormalizePageSize(q.Limit)

	rows := make([]T, 0, q.Limit)
	err = sort.Apply(db.Scopes(scope)).
		Limit(q.Limit).
		Offset(q.Offset()).
		Find(&rows).Error
	if err != nil {
		return ListResponse[T]{}, fmt.Errorf("cannot list records: %w", err)
	}

	return ListResponse[T]{Rows: rows, Total: int(total)}, nil
}

// Create implements RemoteCollection. The returned record carries the
// generated primary key.
func (g *GORMCollection[T]) Create(ctx context.Context, payload T) (T, error) {
	if err := g.db.WithContext(ctx).Create(&payload).Error; err != nil {
		return lo.Empty[T](), fmt.Errorf("cannot create record: %w", err)
	}

	return payload, nil
}

// Replace implements RemoteCollection. Every column but the primary key is
// overwritten, zero values included, and the stored record is read back.
func (g *GORMCollection[T]) Replace(ctx context.Context, id any, payload T) (T, error) {
	db := g.db.WithContext(ctx)

	err := db.Model(new(T)).
		Where(g.byID(id)).
		Select("*").
		Omit(g.primaryKey).
		Updates(&payload).Error
	if err != nil {
		return lo.Empty[T](), fmt.Errorf("cannot replace record: %w", err)
	}

	var stored T
	err = db.Model(new(T)).Where(g.byID(id)).Take(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return lo.Empty[T](), fmt.Errorf("cannot replace record %v: %w", id, ErrNotFound)
	} else if err != nil {
		return lo.Empty[T](), fmt.Errorf("cannot read replaced record: %w", err)
	}

	return stored, nil
}

// Remove implements RemoteCollection.
func (g *GORMCollection[T]) Remove(ctx context.Context, id any) error {
	res := g.db.WithContext(ctx).Where(g.byID(id)).Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("cannot remove record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cannot remove record %v: %w", id, ErrNotFound)
	}

	return nil
}

func (g *GORMCollection[T]) byID(id any) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: g.primaryKey}, Value: id}
}

func (g *GORMCollection[T]) resolveFilter(filter Filter) (Filter, error) {
	if g.columns == nil {
		return filter, filter.validate()
	}

	ret := make(Filter, len(filter))
	for alias, value := range filter {
		column, found := g.columns[alias]
		if !found {
			return nil, fmt.Errorf("unknown filter field '%s'. closest: '%s'", alias, closestAlias(alias, g.columns))
		}
		ret[column] = value
	}

	return ret, ret.validate()
}

// orderings resolves the query sort, falling back to the default sort, and
// appends the primary key so that pages never overlap.
func (g *GORMCollection[T]) orderings(sort []string) (Orderings, error) {
	ret := g.defaultSort

	if len(sort) > 0 && g.columns != nil {
		parsed, err := ParseSort(sort, g.columns)
		if err != nil {
			return nil, err
		}
		ret = parsed
	}

	ret = ret.withTieBreaker(g.primaryKey)
	if err := ret.validate(); err != nil {
		return nil, err
	}

	return ret, nil
}

var _ RemoteCollection[struct{}] = (*GORMCollection[struct{}])(nil)
