package vectordb

import (
	"fmt"
	"strings"
)

// ── Filter expression tree ──────────────────────────────────────────────────

// FilterExpr is a node of a parsed where expression.
// Engines translate the tree into their own filter language; see ParseWhere.
type FilterExpr interface {
	isFilterExpr()
	String() string
}

// FieldPath names a column, optionally followed by a path into a json column
// ("meta.author.name" is column "meta", path ["author", "name"]).
type FieldPath []string

// Column returns the top-level column name.
func (p FieldPath) Column() string {
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

// Nested returns the path below the column.
func (p FieldPath) Nested() []string {
	if len(p) <= 1 {
		return nil
	}
	return p[1:]
}

// String joins the path with dots.
func (p FieldPath) String() string {
	return strings.Join(p, ".")
}

// CompareOp is a binary comparison operator.
type CompareOp string

const (
	OpEq   CompareOp = "="
	OpNe   CompareOp = "!="
	OpLt   CompareOp = "<"
	OpLte  CompareOp = "<="
	OpGt   CompareOp = ">"
	OpGte  CompareOp = ">="
	OpLike CompareOp = "LIKE"
)

// flip mirrors an operator so that "literal op field" can be rewritten as "field op' literal".
func (op CompareOp) flip() CompareOp {
	switch op {
	case OpLt:
		return OpGt
	case OpLte:
		return OpGte
	case OpGt:
		return OpLt
	case OpGte:
		return OpLte
	default:
		return op
	}
}

// Comparison matches rows where Field Op Value holds.
// Value is a string, int64, float64 or bool.
type Comparison struct {
	Field FieldPath
	Op    CompareOp
	Value any
}

func (*Comparison) isFilterExpr() {}

func (c *Comparison) String() string {
	return fmt.Sprintf("%s %s %s", c.Field, c.Op, formatLiteral(c.Value))
}

// InList matches rows whose field equals any of Values (or none of them when Negate is set).
type InList struct {
	Field  FieldPath
	Values []any
	Negate bool
}

func (*InList) isFilterExpr() {}

func (c *InList) String() string {
	items := make([]string, len(c.Values))
	for i, v := range c.Values {
		items[i] = formatLiteral(v)
	}
	op := "IN"
	if c.Negate {
		op = "NOT IN"
	}
	return fmt.Sprintf("%s %s (%s)", c.Field, op, strings.Join(items, ", "))
}

// NullCheck matches rows whose field is null (or not null when Negate is set).
type NullCheck struct {
	Field  FieldPath
	Negate bool
}

func (*NullCheck) isFilterExpr() {}

func (c *NullCheck) String() string {
	if c.Negate {
		return fmt.Sprintf("%s IS NOT NULL", c.Field)
	}
	return fmt.Sprintf("%s IS NULL", c.Field)
}

// And matches rows matching both sides.
type And struct {
	Left, Right FilterExpr
}

func (*And) isFilterExpr() {}

func (e *And) String() string {
	return fmt.Sprintf("(%s AND %s)", e.Left, e.Right)
}

// Or matches rows matching either side.
type Or struct {
	Left, Right FilterExpr
}

func (*Or) isFilterExpr() {}

func (e *Or) String() string {
	return fmt.Sprintf("(%s OR %s)", e.Left, e.Right)
}

// Not inverts its operand.
type Not struct {
	Expr FilterExpr
}

func (*Not) isFilterExpr() {}

func (e *Not) String() string {
	return fmt.Sprintf("NOT %s", e.Expr)
}

func formatLiteral(v any) string {
	switch val := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(val)
	}
}

// ── Constructors ────────────────────────────────────────────────────────────

// NewComparison creates a comparison on a dotted field path.
func NewComparison(field string, op CompareOp, value any) *Comparison {
	return &Comparison{Field: splitPath(field), Op: op, Value: NormalizeValue(value)}
}

// NewIn creates an IN list condition.
func NewIn(field string, values ...any) *InList {
	return &InList{Field: splitPath(field), Values: normalizeAll(values)}
}

// NewNotIn creates a NOT IN list condition.
func NewNotIn(field string, values ...any) *InList {
	return &InList{Field: splitPath(field), Values: normalizeAll(values), Negate: true}
}

// NewIsNull creates an IS NULL condition.
func NewIsNull(field string) *NullCheck {
	return &NullCheck{Field: splitPath(field)}
}

// NewIsNotNull creates an IS NOT NULL condition.
func NewIsNotNull(field string) *NullCheck {
	return &NullCheck{Field: splitPath(field), Negate: true}
}

// AllOf joins expressions with AND. Nil expressions are skipped.
func AllOf(exprs ...FilterExpr) FilterExpr {
	var out FilterExpr
	for _, e := range exprs {
		if e == nil {
			continue
		}
		if out == nil {
			out = e
			continue
		}
		out = &And{Left: out, Right: e}
	}
	return out
}

func splitPath(field string) FieldPath {
	return strings.Split(field, ".")
}

func normalizeAll(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = NormalizeValue(v)
	}
	return out
}

// WalkFields calls fn for every field referenced by the expression.
func WalkFields(expr FilterExpr, fn func(FieldPath)) {
	switch e := expr.(type) {
	case *Comparison:
		fn(e.Field)
	case *InList:
		fn(e.Field)
	case *NullCheck:
		fn(e.Field)
	case *And:
		WalkFields(e.Left, fn)
		WalkFields(e.Right, fn)
	case *Or:
		WalkFields(e.Left, fn)
		WalkFields(e.Right, fn)
	case *Not:
		WalkFields(e.Expr, fn)
	}
}
