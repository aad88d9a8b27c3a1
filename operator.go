package pagecursor

import "github.com/samber/lo"

// Operator defines the comparison a filter field is matched with.
type Operator string

func (o Operator) Valid() bool {
	return o == OperatorEq || o == OperatorIs
}

const (
	OperatorEq Operator = "="
	// OperatorIs is used ONLY for nil filter values, rendering "IS NULL".
	OperatorIs Operator = "IS"
)

// OperatorFor returns the operator matching a filter value.
func OperatorFor(value any) Operator {
	return lo.Ternary(lo.IsNil(value), OperatorIs, OperatorEq)
}
