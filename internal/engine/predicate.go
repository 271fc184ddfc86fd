package engine

import (
	"fmt"

	"github.com/minirel/minirel/internal/ir"
	"github.com/minirel/minirel/internal/store"
)

// Predicate is a compiled, reusable row filter over a condition list
// with AND semantics: a row matches only if every comparison holds.
//
// Compilation resolves each side to a value accessor once; evaluation is
// a direct typed comparison per condition. No executable text is ever
// synthesized from query data.
type Predicate struct {
	conds []compiledCondition
}

type compiledCondition struct {
	op    ir.Operator
	left  accessor
	right accessor
}

// accessor produces one side's value for a row: either a qualified-name
// lookup or a fixed literal.
type accessor func(store.Row) ir.Value

// CompilePredicate compiles a condition list into a Predicate.
//
// Every column reference must already be resolved; an unqualified
// reference here means resolution and classification produced an
// inconsistent annotation, which is a programming error, so
// CompilePredicate panics rather than degrading into a silent non-match.
func CompilePredicate(conds []ir.Condition) *Predicate {
	compiled := make([]compiledCondition, 0, len(conds))
	for _, cond := range conds {
		compiled = append(compiled, compiledCondition{
			op:    cond.Op,
			left:  compileAccessor(cond.Left),
			right: compileAccessor(cond.Right),
		})
	}
	return &Predicate{conds: compiled}
}

// Matches reports whether the row satisfies every condition.
// An empty predicate matches every row (vacuous truth).
func (p *Predicate) Matches(row store.Row) bool {
	for _, c := range p.conds {
		if !compareValues(c.op, c.left(row), c.right(row)) {
			return false
		}
	}
	return true
}

func compileAccessor(expr ir.Expression) accessor {
	switch e := expr.(type) {
	case ir.ColumnRef:
		if !e.Qualified() {
			panic(fmt.Sprintf("engine: unresolved column reference %q reached predicate compilation", e.Name))
		}
		key := e.Key()
		return func(row store.Row) ir.Value {
			v, ok := row[key]
			if !ok {
				// The row was validated against the same schemas the
				// condition resolved against; a miss is an invariant
				// violation, not a non-match.
				panic(fmt.Sprintf("engine: row missing qualified column %q", key))
			}
			return v
		}
	case ir.Literal:
		v := e.Value
		return func(store.Row) ir.Value { return v }
	default:
		panic(fmt.Sprintf("engine: unknown expression type %T", expr))
	}
}

// compareValues applies a comparison operator to two values of the same
// kind. Integers compare numerically, strings lexicographically (byte
// order). The classifier guarantees both sides share one type; mixed
// kinds here are an invariant violation.
func compareValues(op ir.Operator, left, right ir.Value) bool {
	switch l := left.(type) {
	case ir.Int:
		r, ok := right.(ir.Int)
		if !ok {
			panic(fmt.Sprintf("engine: comparing int against %T", right))
		}
		return compareOrdered(op, int64(l), int64(r))
	case ir.String:
		r, ok := right.(ir.String)
		if !ok {
			panic(fmt.Sprintf("engine: comparing string against %T", right))
		}
		return compareOrdered(op, string(l), string(r))
	default:
		panic(fmt.Sprintf("engine: unknown value type %T", left))
	}
}

func compareOrdered[T int64 | string](op ir.Operator, l, r T) bool {
	switch op {
	case ir.OpEq:
		return l == r
	case ir.OpNe:
		return l != r
	case ir.OpLt:
		return l < r
	case ir.OpLe:
		return l <= r
	case ir.OpGt:
		return l > r
	case ir.OpGe:
		return l >= r
	default:
		panic(fmt.Sprintf("engine: unknown operator %q", op))
	}
}
