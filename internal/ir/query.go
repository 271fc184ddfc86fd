package ir

import (
	"encoding/json"
	"fmt"
)

// ColumnRef references a column, optionally qualified with a table alias.
//
// Table is empty until resolution infers or confirms the owning table.
// The join stage only ever sees fully qualified references: resolution
// either fills Table in or fails the query before any row is produced.
type ColumnRef struct {
	Table string
	Name  string
}

// Qualified reports whether the reference carries a table alias.
func (c ColumnRef) Qualified() bool { return c.Table != "" }

// Key returns the qualified row key "alias.column".
// Must only be called on resolved references.
func (c ColumnRef) Key() string { return c.Table + "." + c.Name }

// UnmarshalJSON implements json.Unmarshaler for ColumnRef.
// A JSON null table maps to the unqualified (empty) form.
func (c *ColumnRef) UnmarshalJSON(data []byte) error {
	var raw struct {
		Table *string `json:"table"`
		Name  string  `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Name == "" {
		return fmt.Errorf("column reference missing name")
	}
	c.Name = raw.Name
	if raw.Table != nil {
		c.Table = *raw.Table
	} else {
		c.Table = ""
	}
	return nil
}

// MarshalJSON implements json.Marshaler for ColumnRef.
func (c ColumnRef) MarshalJSON() ([]byte, error) {
	raw := struct {
		Table *string `json:"table"`
		Name  string  `json:"name"`
	}{Name: c.Name}
	if c.Table != "" {
		raw.Table = &c.Table
	}
	return json.Marshal(raw)
}

// Expression is a sealed interface over the two condition operand forms.
// Only ColumnRef and Literal implement it. The marker method pattern
// prevents external implementations and enables exhaustive type switches
// in the classifier and the predicate compiler.
type Expression interface {
	exprNode() // Sealed - only types in this package implement it
}

func (ColumnRef) exprNode() {}

// Literal is a constant operand. Value is always Int or String.
type Literal struct {
	Value Value
}

func (Literal) exprNode() {}

// Operator is a binary comparison operator.
type Operator string

// The six supported comparison operators. There are no boolean
// connectives beyond the implicit AND across a condition list.
const (
	OpEq Operator = "="
	OpNe Operator = "!="
	OpLt Operator = "<"
	OpLe Operator = "<="
	OpGt Operator = ">"
	OpGe Operator = ">="
)

// Valid reports whether o is one of the supported operators.
func (o Operator) Valid() bool {
	switch o {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

// Condition is a single-level binary comparison between two operands.
// Conditions in a query's WHERE list combine with implicit AND.
type Condition struct {
	Left  Expression
	Right Expression
	Op    Operator
}

// conditionJSON is the wire form of a condition.
type conditionJSON struct {
	Left  json.RawMessage `json:"left"`
	Right json.RawMessage `json:"right"`
	Op    string          `json:"op"`
}

// UnmarshalJSON implements json.Unmarshaler for Condition.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var raw conditionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	op := Operator(raw.Op)
	if !op.Valid() {
		return fmt.Errorf("unsupported operator %q", raw.Op)
	}

	left, err := decodeExpression(raw.Left)
	if err != nil {
		return fmt.Errorf("left side: %w", err)
	}
	right, err := decodeExpression(raw.Right)
	if err != nil {
		return fmt.Errorf("right side: %w", err)
	}

	c.Left = left
	c.Right = right
	c.Op = op
	return nil
}

// decodeExpression decodes one side of a condition. The wire form is a
// tagged union: exactly one of "column" or "literal" must be present.
func decodeExpression(data []byte) (Expression, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("missing expression")
	}

	var raw struct {
		Column  *ColumnRef      `json:"column"`
		Literal json.RawMessage `json:"literal"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	switch {
	case raw.Column != nil && raw.Literal != nil:
		return nil, fmt.Errorf("expression has both column and literal")
	case raw.Column != nil:
		return *raw.Column, nil
	case raw.Literal != nil:
		v, err := DecodeLiteral(raw.Literal)
		if err != nil {
			return nil, err
		}
		return Literal{Value: v}, nil
	default:
		return nil, fmt.Errorf("expression has neither column nor literal")
	}
}

// SelectItem is one projected output column.
type SelectItem struct {
	Column ColumnRef `json:"column"`
	As     string    `json:"as"`
}

// FromItem names a source table and the alias it is joined under.
// Aliases must be pairwise distinct within a query: they namespace the
// qualified row keys of the joined row.
type FromItem struct {
	Source string `json:"source"`
	As     string `json:"as"`
}

// Query is a pre-parsed SELECT/FROM/WHERE description.
//
// Queries are inputs: the engine never mutates a caller's Query. The
// resolution and classification passes operate on a Clone and return the
// annotated copy.
type Query struct {
	Select []SelectItem `json:"select"`
	From   []FromItem   `json:"from"`
	Where  []Condition  `json:"where"`
}

// Clone returns a deep copy of the query. Expression values are
// immutable, so copying the slices is sufficient.
func (q *Query) Clone() *Query {
	out := &Query{
		Select: make([]SelectItem, len(q.Select)),
		From:   make([]FromItem, len(q.From)),
		Where:  make([]Condition, len(q.Where)),
	}
	copy(out.Select, q.Select)
	copy(out.From, q.From)
	copy(out.Where, q.Where)
	return out
}
