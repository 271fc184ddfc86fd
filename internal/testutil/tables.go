// Package testutil provides fixture builders shared across test packages.
package testutil

import (
	"testing"

	"github.com/minirel/minirel/internal/ir"
	"github.com/minirel/minirel/internal/store"
)

// UsersTable builds the canonical two-column users fixture:
//
//	u.id: int, u.name: string
func UsersTable(t *testing.T, alias string, rows [][]any) *store.Table {
	t.Helper()
	return MustBuild(t, alias, store.Schema{
		{Name: "id", Type: ir.TypeInt},
		{Name: "name", Type: ir.TypeString},
	}, rows)
}

// OrdersTable builds the canonical orders fixture:
//
//	o.id: int, o.user_id: int
func OrdersTable(t *testing.T, alias string, rows [][]any) *store.Table {
	t.Helper()
	return MustBuild(t, alias, store.Schema{
		{Name: "id", Type: ir.TypeInt},
		{Name: "user_id", Type: ir.TypeInt},
	}, rows)
}

// MustBuild builds a table from raw rows, failing the test on error.
func MustBuild(t *testing.T, alias string, schema store.Schema, rows [][]any) *store.Table {
	t.Helper()
	table, err := store.Build(alias, schema, rows)
	if err != nil {
		t.Fatalf("build table %q: %v", alias, err)
	}
	return table
}

// Col builds a column reference expression.
func Col(table, name string) ir.Expression {
	return ir.ColumnRef{Table: table, Name: name}
}

// IntLit builds an integer literal expression.
func IntLit(v int64) ir.Expression {
	return ir.Literal{Value: ir.Int(v)}
}

// StrLit builds a string literal expression.
func StrLit(s string) ir.Expression {
	return ir.Literal{Value: ir.String(s)}
}

// Cond builds a condition.
func Cond(left ir.Expression, op ir.Operator, right ir.Expression) ir.Condition {
	return ir.Condition{Left: left, Op: op, Right: right}
}
