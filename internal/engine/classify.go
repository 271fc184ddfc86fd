package engine

import (
	"fmt"

	"github.com/minirel/minirel/internal/ir"
	"github.com/minirel/minirel/internal/store"
)

// Classification is the result of splitting a WHERE clause into
// predicate-pushdown groups.
//
// Early conditions reference exactly one table and can filter that table
// before the join. Late conditions reference more than one table and can
// only run on joined rows. Splitting changes performance, never results.
type Classification struct {
	// Early maps a table alias to the conditions evaluable on that
	// table alone.
	Early map[string][]ir.Condition

	// Late holds the conditions that must run after the join.
	Late []ir.Condition

	// ConstFalse is set when a literal-only condition evaluated false.
	// Such a condition can never be satisfied, so execution emits the
	// header and no rows.
	ConstFalse bool
}

// EarlyFor returns the early bucket for an alias, or nil.
func (c *Classification) EarlyFor(alias string) []ir.Condition {
	return c.Early[alias]
}

// Classify validates and annotates the WHERE clause.
//
// For each condition, column sides are resolved exactly like SELECT
// columns and their declared types recorded; literal sides contribute
// their runtime type label. More than one distinct type label across
// both sides is a type mismatch.
//
// Conditions referencing exactly one table go to that table's early
// bucket; conditions referencing more than one go to the late list.
// A condition with no column references is evaluated once, right here:
// constant-true conditions are dropped, a constant-false condition marks
// the whole classification ConstFalse. This is an explicit policy - such
// conditions are never silently bucketed.
//
// The input query is never mutated; Classify returns a new copy with
// every WHERE column fully qualified. Failures are wrapped with
// WHERE-clause context.
func Classify(q *ir.Query, tables []*store.Table) (*ir.Query, *Classification, error) {
	out := q.Clone()
	cls, err := classifyWhere(out, tables)
	if err != nil {
		return nil, nil, &ClauseError{Clause: ClauseWhere, Err: err}
	}
	return out, cls, nil
}

// classifyWhere qualifies q.Where in place and buckets each condition.
// Callers own q; Classify hands it a clone.
func classifyWhere(q *ir.Query, tables []*store.Table) (*Classification, error) {
	cls := &Classification{Early: make(map[string][]ir.Condition)}

	for i := range q.Where {
		cond := &q.Where[i]

		var types []string   // distinct type labels, first-encounter order
		var aliases []string // distinct referenced aliases, first-encounter order

		for _, side := range []*ir.Expression{&cond.Left, &cond.Right} {
			switch expr := (*side).(type) {
			case ir.ColumnRef:
				resolved, typ, err := resolveColumn(expr, tables)
				if err != nil {
					return nil, err
				}
				*side = resolved
				types = appendDistinct(types, string(typ))
				aliases = appendDistinct(aliases, resolved.Table)
			case ir.Literal:
				types = appendDistinct(types, string(expr.Value.Kind()))
			default:
				return nil, fmt.Errorf("unknown expression type %T", expr)
			}
		}

		if len(types) > 1 {
			return nil, NewTypeMismatch(types)
		}

		switch len(aliases) {
		case 0:
			// Literal-only condition: decide it now against no row.
			if !evalConstant(*cond) {
				cls.ConstFalse = true
			}
		case 1:
			alias := aliases[0]
			cls.Early[alias] = append(cls.Early[alias], *cond)
		default:
			cls.Late = append(cls.Late, *cond)
		}
	}

	return cls, nil
}

// evalConstant evaluates a condition whose sides are both literals.
// The classifier has already type-checked it.
func evalConstant(cond ir.Condition) bool {
	left := cond.Left.(ir.Literal).Value
	right := cond.Right.(ir.Literal).Value
	return compareValues(cond.Op, left, right)
}

func appendDistinct(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
