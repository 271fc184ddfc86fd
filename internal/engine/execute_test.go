package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minirel/minirel/internal/ir"
	"github.com/minirel/minirel/internal/store"
	"github.com/minirel/minirel/internal/testutil"
)

func TestExecute_BasicJoin(t *testing.T) {
	q := &ir.Query{
		Select: []ir.SelectItem{
			{Column: ir.ColumnRef{Table: "u", Name: "name"}, As: "name"},
			{Column: ir.ColumnRef{Table: "o", Name: "id"}, As: "id"},
		},
		From: []ir.FromItem{{Source: "users", As: "u"}, {Source: "orders", As: "o"}},
		Where: []ir.Condition{
			testutil.Cond(testutil.Col("u", "id"), ir.OpEq, testutil.Col("o", "user_id")),
		},
	}

	cur, err := Execute(q, usersAndOrders(t))
	require.NoError(t, err)

	assert.Equal(t, Header{
		{Name: "name", Type: ir.TypeString},
		{Name: "id", Type: ir.TypeInt},
	}, cur.Header())

	rows := cur.All()
	require.Len(t, rows, 1)
	assert.Equal(t, []ir.Value{ir.String("Al"), ir.Int(10)}, rows[0])
}

func TestExecute_ValidationFailureBeforeAnyRow(t *testing.T) {
	q := &ir.Query{
		Select: []ir.SelectItem{{Column: ir.ColumnRef{Name: "id"}, As: "id"}},
		From:   []ir.FromItem{{Source: "users", As: "u"}, {Source: "orders", As: "o"}},
	}

	cur, err := Execute(q, usersAndOrders(t))
	require.Error(t, err)
	assert.Nil(t, cur)
	assert.True(t, IsAmbiguousColumn(err))
}

func TestExecute_CrossProductOrder(t *testing.T) {
	// Left-most table varies slowest: (a1,b1) (a1,b2) (a2,b1) (a2,b2).
	left := testutil.UsersTable(t, "a", [][]any{{1, "a1"}, {2, "a2"}})
	right := testutil.UsersTable(t, "b", [][]any{{1, "b1"}, {2, "b2"}})

	q := &ir.Query{
		Select: []ir.SelectItem{
			{Column: ir.ColumnRef{Table: "a", Name: "name"}, As: "left"},
			{Column: ir.ColumnRef{Table: "b", Name: "name"}, As: "right"},
		},
		From: []ir.FromItem{{Source: "t", As: "a"}, {Source: "t", As: "b"}},
	}

	cur, err := Execute(q, []*store.Table{left, right})
	require.NoError(t, err)

	rows := cur.All()
	require.Len(t, rows, 4)
	assert.Equal(t, []ir.Value{ir.String("a1"), ir.String("b1")}, rows[0])
	assert.Equal(t, []ir.Value{ir.String("a1"), ir.String("b2")}, rows[1])
	assert.Equal(t, []ir.Value{ir.String("a2"), ir.String("b1")}, rows[2])
	assert.Equal(t, []ir.Value{ir.String("a2"), ir.String("b2")}, rows[3])
}

func TestExecute_PushdownShrinksJoinInput(t *testing.T) {
	users := testutil.UsersTable(t, "u", [][]any{{1, "Al"}, {2, "Bo"}, {3, "Cy"}})
	orders := testutil.OrdersTable(t, "o", [][]any{{10, 1}, {11, 2}, {12, 3}, {13, 1}})

	q := &ir.Query{
		Select: []ir.SelectItem{{Column: ir.ColumnRef{Table: "o", Name: "id"}, As: "id"}},
		From:   []ir.FromItem{{Source: "users", As: "u"}, {Source: "orders", As: "o"}},
		Where: []ir.Condition{
			testutil.Cond(testutil.Col("u", "id"), ir.OpEq, testutil.IntLit(1)),
			testutil.Cond(testutil.Col("u", "id"), ir.OpEq, testutil.Col("o", "user_id")),
		},
	}

	cur, err := Execute(q, []*store.Table{users, orders})
	require.NoError(t, err)

	rows := cur.All()
	require.Len(t, rows, 2)
	assert.Equal(t, []ir.Value{ir.Int(10)}, rows[0])
	assert.Equal(t, []ir.Value{ir.Int(13)}, rows[1])

	// The early filter reduced u to one row, so the join enumerated
	// 1*4 tuples, not the unfiltered 3*4.
	assert.Equal(t, 4, cur.Visited())
	assert.Less(t, cur.Visited(), len(users.Rows)*len(orders.Rows))
}

func TestExecute_PushdownEquivalence(t *testing.T) {
	// Pushdown changes performance, never results: forcing every
	// condition late must produce the same row set.
	users := testutil.UsersTable(t, "u", [][]any{{1, "Al"}, {2, "Bo"}, {3, "Cy"}})
	orders := testutil.OrdersTable(t, "o", [][]any{{10, 1}, {11, 2}, {12, 3}, {13, 1}})

	q := &ir.Query{
		Select: []ir.SelectItem{
			{Column: ir.ColumnRef{Table: "u", Name: "name"}, As: "name"},
			{Column: ir.ColumnRef{Table: "o", Name: "id"}, As: "id"},
		},
		From: []ir.FromItem{{Source: "users", As: "u"}, {Source: "orders", As: "o"}},
		Where: []ir.Condition{
			testutil.Cond(testutil.Col("u", "id"), ir.OpGt, testutil.IntLit(1)),
			testutil.Cond(testutil.Col("u", "id"), ir.OpEq, testutil.Col("o", "user_id")),
		},
	}

	cur, err := Execute(q, []*store.Table{users, orders})
	require.NoError(t, err)
	pushed := cur.All()

	// Reference evaluation: full cross join, every condition late.
	annotated, _, err := Resolve(q, []*store.Table{users, orders})
	require.NoError(t, err)
	annotated, cls, err := Classify(annotated, []*store.Table{users, orders})
	require.NoError(t, err)

	var all []ir.Condition
	for _, bucket := range cls.Early {
		all = append(all, bucket...)
	}
	all = append(all, cls.Late...)
	pred := CompilePredicate(all)

	var reference [][]ir.Value
	for _, urow := range users.Rows {
		for _, orow := range orders.Rows {
			joined := make(store.Row)
			for k, v := range urow {
				joined[k] = v
			}
			for k, v := range orow {
				joined[k] = v
			}
			if pred.Matches(joined) {
				var projected []ir.Value
				for _, item := range annotated.Select {
					projected = append(projected, joined[item.Column.Key()])
				}
				reference = append(reference, projected)
			}
		}
	}

	assert.Equal(t, reference, pushed)
}

func TestExecute_LateConditionNeverMatches(t *testing.T) {
	q := &ir.Query{
		Select: []ir.SelectItem{{Column: ir.ColumnRef{Table: "u", Name: "name"}, As: "name"}},
		From:   []ir.FromItem{{Source: "users", As: "u"}, {Source: "orders", As: "o"}},
		Where: []ir.Condition{
			testutil.Cond(testutil.Col("u", "id"), ir.OpGt, testutil.Col("o", "id")),
		},
	}

	cur, err := Execute(q, usersAndOrders(t))
	require.NoError(t, err)

	// Header is available even though no row survives.
	assert.Len(t, cur.Header(), 1)
	assert.Empty(t, cur.All())
}

func TestExecute_ConstantFalseEmitsHeaderOnly(t *testing.T) {
	q := &ir.Query{
		Select: []ir.SelectItem{{Column: ir.ColumnRef{Table: "u", Name: "name"}, As: "name"}},
		From:   []ir.FromItem{{Source: "users", As: "u"}, {Source: "orders", As: "o"}},
		Where: []ir.Condition{
			testutil.Cond(testutil.IntLit(1), ir.OpEq, testutil.IntLit(2)),
		},
	}

	cur, err := Execute(q, usersAndOrders(t))
	require.NoError(t, err)
	assert.Len(t, cur.Header(), 1)
	assert.False(t, cur.Next())
	assert.Equal(t, 0, cur.Visited())
}

func TestExecute_EmptyTableYieldsNoRows(t *testing.T) {
	users := testutil.UsersTable(t, "u", nil)
	orders := testutil.OrdersTable(t, "o", [][]any{{10, 1}})

	q := &ir.Query{
		Select: []ir.SelectItem{{Column: ir.ColumnRef{Table: "o", Name: "id"}, As: "id"}},
		From:   []ir.FromItem{{Source: "users", As: "u"}, {Source: "orders", As: "o"}},
	}

	cur, err := Execute(q, []*store.Table{users, orders})
	require.NoError(t, err)
	assert.False(t, cur.Next())
}

func TestExecute_DuplicateAliasRejected(t *testing.T) {
	users := testutil.UsersTable(t, "u", [][]any{{1, "Al"}})
	q := &ir.Query{
		Select: []ir.SelectItem{{Column: ir.ColumnRef{Table: "u", Name: "id"}, As: "id"}},
		From:   []ir.FromItem{{Source: "users", As: "u"}, {Source: "users", As: "u"}},
	}

	_, err := Execute(q, []*store.Table{users, users})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate table alias")
}

func TestExecute_IsLazy(t *testing.T) {
	// One Next call must not enumerate the whole product.
	var rows [][]any
	for i := 0; i < 1000; i++ {
		rows = append(rows, []any{i, "n"})
	}
	left := testutil.UsersTable(t, "a", rows)
	right := testutil.UsersTable(t, "b", rows)

	q := &ir.Query{
		Select: []ir.SelectItem{{Column: ir.ColumnRef{Table: "a", Name: "id"}, As: "id"}},
		From:   []ir.FromItem{{Source: "t", As: "a"}, {Source: "t", As: "b"}},
	}

	cur, err := Execute(q, []*store.Table{left, right})
	require.NoError(t, err)

	require.True(t, cur.Next())
	assert.Equal(t, 1, cur.Visited())
}

func TestExecute_ProjectionOrderFollowsSelectList(t *testing.T) {
	q := &ir.Query{
		Select: []ir.SelectItem{
			{Column: ir.ColumnRef{Table: "o", Name: "id"}, As: "order"},
			{Column: ir.ColumnRef{Table: "u", Name: "name"}, As: "who"},
			{Column: ir.ColumnRef{Table: "u", Name: "id"}, As: "user"},
		},
		From: []ir.FromItem{{Source: "users", As: "u"}, {Source: "orders", As: "o"}},
		Where: []ir.Condition{
			testutil.Cond(testutil.Col("u", "id"), ir.OpEq, testutil.Col("o", "user_id")),
		},
	}

	cur, err := Execute(q, usersAndOrders(t))
	require.NoError(t, err)

	rows := cur.All()
	require.Len(t, rows, 1)
	assert.Equal(t, []ir.Value{ir.Int(10), ir.String("Al"), ir.Int(1)}, rows[0])
}

func TestExecute_TokenStamped(t *testing.T) {
	prev := SetTokenGenerator(NewFixedGenerator("run-1", "run-2"))
	defer SetTokenGenerator(prev)

	q := &ir.Query{
		Select: []ir.SelectItem{{Column: ir.ColumnRef{Table: "u", Name: "id"}, As: "id"}},
		From:   []ir.FromItem{{Source: "users", As: "u"}, {Source: "orders", As: "o"}},
	}

	cur, err := Execute(q, usersAndOrders(t))
	require.NoError(t, err)
	assert.Equal(t, "run-1", cur.Token())

	cur, err = Execute(q, usersAndOrders(t))
	require.NoError(t, err)
	assert.Equal(t, "run-2", cur.Token())
}
