package engine

import (
	"fmt"

	"github.com/minirel/minirel/internal/ir"
	"github.com/minirel/minirel/internal/store"
)

// Execute runs a query against the given tables and returns a lazy
// result cursor.
//
// The pipeline is: resolve the SELECT clause, classify the WHERE clause,
// filter each table with its early bucket, then lazily enumerate the
// cross product of the filtered tables, applying the late conditions and
// projecting survivors in select-list order.
//
// Any validation failure aborts before the cursor exists - zero partial
// output. The caller's query is never mutated.
//
// Tables must be supplied in FROM order, one per FROM item, keyed by
// alias. The join is an exhaustive nested loop: its cost is the product
// of the filtered table sizes. That is a stated property of this engine,
// not an oversight.
func Execute(q *ir.Query, tables []*store.Table) (*Cursor, error) {
	if err := checkFrom(q, tables); err != nil {
		return nil, err
	}

	annotated, header, err := Resolve(q, tables)
	if err != nil {
		return nil, err
	}

	annotated, cls, err := Classify(annotated, tables)
	if err != nil {
		return nil, err
	}

	// Predicate pushdown: shrink each table with its early bucket
	// before the join.
	joined := make([]*store.Table, len(tables))
	for i, t := range tables {
		if bucket := cls.EarlyFor(t.Alias); len(bucket) > 0 {
			joined[i] = t.Filter(CompilePredicate(bucket).Matches)
		} else {
			joined[i] = t
		}
	}

	cur := &Cursor{
		header: header,
		sel:    annotated.Select,
		tables: joined,
		late:   CompilePredicate(cls.Late),
		token:  tokenGenerator.Generate(),
	}

	if cls.ConstFalse {
		cur.done = true
		return cur, nil
	}

	cur.idx = make([]int, len(joined))
	for _, t := range joined {
		if len(t.Rows) == 0 {
			cur.done = true
			break
		}
	}
	return cur, nil
}

// checkFrom enforces the FROM invariants: pairwise-distinct aliases and
// one supplied table per FROM item, in order.
func checkFrom(q *ir.Query, tables []*store.Table) error {
	if len(q.From) == 0 {
		return fmt.Errorf("empty FROM clause")
	}
	if len(tables) != len(q.From) {
		return fmt.Errorf("got %d tables for %d FROM items", len(tables), len(q.From))
	}
	seen := make(map[string]bool, len(q.From))
	for i, item := range q.From {
		if seen[item.As] {
			return fmt.Errorf("duplicate table alias %q in FROM clause", item.As)
		}
		seen[item.As] = true
		if tables[i].Alias != item.As {
			return fmt.Errorf("table %d has alias %q, FROM declares %q", i, tables[i].Alias, item.As)
		}
	}
	return nil
}

// tokenGenerator stamps every execution with a run token for
// diagnostics. Swapped for a fixed generator in tests.
var tokenGenerator TokenGenerator = UUIDv7Generator{}

// SetTokenGenerator replaces the run-token source. Intended for tests
// that need deterministic tokens; returns the previous generator so it
// can be restored.
func SetTokenGenerator(g TokenGenerator) TokenGenerator {
	prev := tokenGenerator
	tokenGenerator = g
	return prev
}

// Cursor is a pull-based, forward-only, non-restartable result stream.
//
// The header is available before the first Next call; each Next performs
// exactly the work needed to produce (or rule out) one more row. A
// consumer that stops calling Next simply halts further computation.
//
// Cursor is single-threaded: it is not safe for concurrent use, though
// independent cursors over the same immutable tables need no locking.
type Cursor struct {
	header Header
	sel    []ir.SelectItem
	tables []*store.Table
	late   *Predicate
	token  string

	// idx is the nested-loop odometer: idx[0] (left-most FROM table)
	// varies slowest, the last index fastest.
	idx  []int
	done bool

	row     []ir.Value
	visited int
}

// Header returns the ordered output header. Valid before any Next call.
func (c *Cursor) Header() Header { return c.header }

// Token returns the run token stamped on this execution.
func (c *Cursor) Token() string { return c.token }

// Next advances to the next result row. It returns false when the
// stream is exhausted, after which Row must not be called.
func (c *Cursor) Next() bool {
	for !c.done {
		joined := c.joinCurrent()
		c.visited++
		c.advance()

		if c.late.Matches(joined) {
			c.row = c.project(joined)
			return true
		}
	}
	return false
}

// Row returns the current projected row, in select-list order.
// Only valid after a Next call that returned true.
func (c *Cursor) Row() []ir.Value { return c.row }

// Visited reports how many joined tuples have been enumerated so far.
// With effective pushdown this stays below the unfiltered cross-product
// size; it is exposed for tests and diagnostics.
func (c *Cursor) Visited() int { return c.visited }

// joinCurrent merges the rows under the current odometer position into
// one newly synthesized row. Aliases are unique, so keys never collide.
func (c *Cursor) joinCurrent() store.Row {
	size := 0
	for _, t := range c.tables {
		size += len(t.Schema)
	}
	joined := make(store.Row, size)
	for i, t := range c.tables {
		for k, v := range t.Rows[c.idx[i]] {
			joined[k] = v
		}
	}
	return joined
}

// advance steps the odometer, carrying right-to-left. Overflow of the
// left-most position exhausts the cursor.
func (c *Cursor) advance() {
	for i := len(c.idx) - 1; i >= 0; i-- {
		c.idx[i]++
		if c.idx[i] < len(c.tables[i].Rows) {
			return
		}
		c.idx[i] = 0
	}
	c.done = true
}

// project extracts each select item's qualified value from a joined row.
func (c *Cursor) project(joined store.Row) []ir.Value {
	out := make([]ir.Value, 0, len(c.sel))
	for _, item := range c.sel {
		key := item.Column.Key()
		v, ok := joined[key]
		if !ok {
			// Resolution validated every select column against the
			// schemas these rows were built from.
			panic(fmt.Sprintf("engine: joined row missing projected column %q", key))
		}
		out = append(out, v)
	}
	return out
}

// All drains the cursor and returns every remaining row. Convenience
// for callers that do not need streaming.
func (c *Cursor) All() [][]ir.Value {
	var rows [][]ir.Value
	for c.Next() {
		rows = append(rows, c.Row())
	}
	return rows
}
