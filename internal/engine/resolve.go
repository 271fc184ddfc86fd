package engine

import (
	"encoding/json"

	"github.com/minirel/minirel/internal/ir"
	"github.com/minirel/minirel/internal/store"
)

// HeaderColumn is one output header entry: the select item's alias and
// the resolved column type.
type HeaderColumn struct {
	Name string
	Type ir.ColumnType
}

// MarshalJSON renders the header entry as a [name, type] pair, matching
// the table-file header format.
func (h HeaderColumn) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{h.Name, string(h.Type)})
}

// Header is the ordered output header, in select-list order.
type Header []HeaderColumn

// Resolve validates the SELECT clause against the table schemas and
// produces the output header.
//
// Unqualified columns are inferred: exactly one table must declare the
// name. Qualified columns must name a FROM alias that declares them.
// The input query is never mutated; Resolve returns a new copy with
// every select item fully qualified.
//
// Failures are wrapped with SELECT-clause context.
func Resolve(q *ir.Query, tables []*store.Table) (*ir.Query, Header, error) {
	out := q.Clone()
	header, err := resolveSelect(out, tables)
	if err != nil {
		return nil, nil, &ClauseError{Clause: ClauseSelect, Err: err}
	}
	return out, header, nil
}

// resolveSelect qualifies q.Select in place and returns the header.
// Callers own q; Resolve hands it a clone.
func resolveSelect(q *ir.Query, tables []*store.Table) (Header, error) {
	header := make(Header, 0, len(q.Select))
	for i, item := range q.Select {
		resolved, typ, err := resolveColumn(item.Column, tables)
		if err != nil {
			return nil, err
		}
		q.Select[i].Column = resolved
		header = append(header, HeaderColumn{Name: item.As, Type: typ})
	}
	return header, nil
}

// resolveColumn qualifies a column reference and returns its declared
// type. Resolution is pure: identical tables and reference always yield
// the same result or the same error kind.
func resolveColumn(col ir.ColumnRef, tables []*store.Table) (ir.ColumnRef, ir.ColumnType, error) {
	if !col.Qualified() {
		table, err := inferTable(col.Name, tables)
		if err != nil {
			return ir.ColumnRef{}, "", err
		}
		col.Table = table.Alias
	}

	table := tableByAlias(col.Table, tables)
	if table == nil {
		return ir.ColumnRef{}, "", NewUnknownTable(col.Table)
	}
	typ, ok := table.Schema.Lookup(col.Name)
	if !ok {
		return ir.ColumnRef{}, "", NewUnknownColumn(col.Table, col.Name)
	}
	return col, typ, nil
}

// inferTable finds the single table declaring an unqualified column.
// Zero matches is a column-not-found error; more than one match is an
// ambiguity error naming every matching alias in FROM order.
func inferTable(column string, tables []*store.Table) (*store.Table, error) {
	var matches []*store.Table
	for _, t := range tables {
		if t.Schema.Has(column) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return nil, NewColumnNotFound(column)
	case 1:
		return matches[0], nil
	default:
		aliases := make([]string, len(matches))
		for i, t := range matches {
			aliases[i] = t.Alias
		}
		return nil, NewAmbiguousColumn(column, aliases)
	}
}

func tableByAlias(alias string, tables []*store.Table) *store.Table {
	for _, t := range tables {
		if t.Alias == alias {
			return t
		}
	}
	return nil
}
