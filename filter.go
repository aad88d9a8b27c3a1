package pagecursor

import (
	"database/sql/driver"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm/clause"
)

type (
	tConjunct struct {
		Column   string
		Value    any
		Operator Operator
	}

	// tConjunction is a list of conjuncts joined by AND. A Filter always
	// renders to a single conjunction:
	//
	//	{"a": 1, "b": nil} => a = 1 AND b IS NULL
	tConjunction []tConjunct
)

// toConjunction converts the filter into conjuncts ordered by field name, so
// the rendered SQL is deterministic.
func (f Filter) toConjunction() tConjunction {
	keys := lo.Keys(f)
	slices.Sort(keys)

	return lo.Map(keys, func(key string, _ int) tConjunct {
		return tConjunct{
			Column:   key,
			Value:    f[key],
			Operator: OperatorFor(f[key]),
		}
	})
}

// ToSQL returns the filter as an SQL condition with placeholders and the
// values for them. An empty filter renders "TRUE".
//
// Usage:
//
//	cond, args := filter.ToSQL()
//	query := fmt.Sprintf("SELECT * FROM table WHERE %s", cond)
func (f Filter) ToSQL() (string, []driver.Value) {
	return f.toConjunction().toSQLClause()
}

// validate guards against SQL injection by restricting the characters of
// filter field names.
func (f Filter) validate() error {
	for key := range f {
		if !validColumnName(key) {
			return fmt.Errorf("filter field name contains forbidden symbols '%s'", key)
		}
	}

	return nil
}

// toGORMExpression converts a conjunct of the form Operator(Column, Value)
// into an SQL condition represented as a clause.Expression.
//
// IMPORTANT: The method uses the SQL placeholder "?".
//
// Example:
//
//	tConjunct = { Column: "id", Operator: "=", Value: "123"}
//
// Result:
//
//	"id = 123"
func (c tConjunct) toGORMExpression() clause.Expression {
	sqlClause, arg := c.toSQLClause()
	if c.Operator == OperatorIs {
		return clause.Expr{SQL: sqlClause}
	}

	return clause.Expr{
		SQL:  sqlClause,
		Vars: []any{arg},
	}
}

// toSQLClause converts a conjunct to an SQL condition of the form
// "Column Operator ?" with a corresponding value. Nil values render
// "Column IS NULL" without a value.
//
// Example:
//
//	tConjunct = { Column: "id", Operator: "=", Value: 123}
//
// Result:
//
//	("id = ?", 123)
func (c tConjunct) toSQLClause() (string, driver.Value) {
	if c.Operator == OperatorIs {
		return fmt.Sprintf("%s IS NULL", c.Column), nil
	}

	return fmt.Sprintf("%s %s ?", c.Column, c.Operator), parseAnyValue(c.Value)
}

func parseAnyValue(v any) any {
	// Try parsing a value as time.Time. If it succeeds, return time.Time.
	// Otherwise return the original value.
	fnParseBytesToTimeOrValue := func(vBytes []byte) any {
		dst := time.Time{}
		err := dst.UnmarshalText(vBytes)
		if err == nil {
			return dst
		}

		return v
	}

	switch vt := v.(type) {
	case string:
		return fnParseBytesToTimeOrValue([]byte(vt))
	case []byte:
		return fnParseBytesToTimeOrValue(vt)
	default:
		return v
	}
}

// toGORMExpression converts a conjunction (K1, K2, K3) into a gorm expression
// "K1 AND K2 AND K3". Returns nil for an empty conjunction.
func (d tConjunction) toGORMExpression() clause.Expression {
	andExpressions := make([]clause.Expression, 0, len(d))
	for _, conjunct := range d {
		andExpressions = append(andExpressions, conjunct.toGORMExpression())
	}

	if len(andExpressions) == 1 {
		return andExpressions[0]
	} else if len(andExpressions) > 1 {
		return clause.And(andExpressions...)
	}

	return nil
}

// toSQLClause converts a conjunction (K1, K2, K3) into an SQL condition
// "(K1 AND K2 AND K3)" with corresponding values.
//
// Example:
//
//	tConjunction = {
//		{Column: "id", Operator: "=", Value: 5},
//		{Column: "name", Operator: "IS", Value: nil}
//	}
//
// Result:
//
//	("(id = ? AND name IS NULL)", [5])
func (d tConjunction) toSQLClause() (string, []driver.Value) {
	andClauses := make([]string, 0, len(d))
	andValues := make([]driver.Value, 0, len(d))

	for _, conjunct := range d {
		andClause, andValue := conjunct.toSQLClause()
		andClauses = append(andClauses, andClause)
		if conjunct.Operator != OperatorIs {
			andValues = append(andValues, andValue)
		}
	}

	if len(andClauses) >= 1 {
		return fmt.Sprintf("(%s)", strings.Join(andClauses, " AND ")), andValues
	}

	return "TRUE", nil
}
