package pagecursor

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// SortDirection is the direction of one ordering column.
type SortDirection string

const (
	SortASC  SortDirection = "ASC"
	SortDESC SortDirection = "DESC"
)

func (o SortDirection) Valid() bool {
	return o == SortASC || o == SortDESC
}

type (
	// OrderBy is one column of a page ordering.
	OrderBy struct {
		Column    string
		Direction SortDirection
	}

	// Orderings is the full ordering of a list query, most significant first.
	Orderings []OrderBy

	ColumnAlias = string

	// ColumnMapping maps the field names callers use in ListQuery.Filter and
	// ListQuery.Sort to column names. Qualify the columns ("users.name") when
	// bare names would be ambiguous.
	ColumnMapping = map[ColumnAlias]string
)

var _availableColumnNameSymbols = append([]rune("_.'`\""), lo.AlphanumericCharset...)

func validColumnName(name string) bool {
	return name != "" && lo.Every(_availableColumnNameSymbols, []rune(name))
}

func (o OrderBy) validate() error {
	if !o.Direction.Valid() {
		return fmt.Errorf("invalid ordering direction '%s'", o.Direction)
	}
	if !validColumnName(o.Column) {
		return fmt.Errorf("ordering column name contains forbidden symbols '%s'", o.Column)
	}

	return nil
}

// String renders the orderings as an ORDER BY list, e.g. "age DESC, id ASC".
func (o Orderings) String() string {
	return strings.Join(lo.Map(o, func(ob OrderBy, _ int) string {
		return fmt.Sprintf("%s %s", ob.Column, ob.Direction)
	}), ", ")
}

// Apply adds the orderings to a gorm query.
func (o Orderings) Apply(db *gorm.DB) *gorm.DB {
	return db.Order(o.String())
}

// withTieBreaker appends column in ascending order unless it is already
// ordered on. Offset pages only partition the data under a total order.
func (o Orderings) withTieBreaker(column string) Orderings {
	if lo.ContainsBy(o, func(ob OrderBy) bool { return ob.Column == column }) {
		return o
	}

	return append(slices.Clone(o), OrderBy{Column: column, Direction: SortASC})
}

func (o Orderings) validate() error {
	if len(o) == 0 {
		return fmt.Errorf("empty ordering list")
	}

	for _, ordering := range o {
		if err := ordering.validate(); err != nil {
			return err
		}
	}

	return nil
}

// ParseSort resolves sort expressions through mapping. Accepted forms are
// "field", "field asc", "field desc" and "-field" (descending).
func ParseSort(sort []string, mapping ColumnMapping) (Orderings, error) {
	ret := make(Orderings, 0, len(sort))

	for _, expr := range sort {
		parts := strings.Fields(expr)
		if len(parts) == 0 || len(parts) > 2 {
			return nil, fmt.Errorf("invalid sort expression '%s'", expr)
		}

		alias, direction := parts[0], SortASC
		if rest, found := strings.CutPrefix(alias, "-"); found && len(parts) == 1 {
			alias, direction = rest, SortDESC
		}
		if len(parts) == 2 {
			direction = SortDirection(strings.ToUpper(parts[1]))
			if !direction.Valid() {
				return nil, fmt.Errorf("invalid sort direction in '%s'", expr)
			}
		}

		column, found := mapping[alias]
		if !found {
			return nil, fmt.Errorf("unknown sort field '%s'. closest: '%s'", alias, closestAlias(alias, mapping))
		}

		ret = append(ret, OrderBy{Column: column, Direction: direction})
	}

	return ret, nil
}

// closestAlias suggests the mapping key nearest to input by edit distance.
// Ties resolve to the alphabetically first key.
func closestAlias(input ColumnAlias, mapping ColumnMapping) ColumnAlias {
	aliases := slices.Sorted(maps.Keys(mapping))
	if len(aliases) == 0 {
		return ""
	}

	return lo.MinBy(aliases, func(a, b ColumnAlias) bool {
		return levenshtein([]rune(a), []rune(input)) < levenshtein([]rune(b), []rune(input))
	})
}
