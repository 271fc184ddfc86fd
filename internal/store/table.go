package store

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/minirel/minirel/internal/ir"
)

// Column is one schema entry: a column name and its declared type.
type Column struct {
	Name string
	Type ir.ColumnType
}

// Schema is the ordered column list of a table.
type Schema []Column

// Lookup returns the declared type of a column, if present.
func (s Schema) Lookup(name string) (ir.ColumnType, bool) {
	for _, c := range s {
		if c.Name == name {
			return c.Type, true
		}
	}
	return "", false
}

// Has reports whether the schema declares a column of the given name.
func (s Schema) Has(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Row maps qualified column names ("alias.column") to typed values.
// All rows of one table share the same key set.
type Row map[string]ir.Value

// Table is a named, schema-bearing, ordered row sequence.
//
// A table is not itself iterable; callers walk Rows. This keeps the
// entity (alias + schema) separate from its iteration capability.
// Tables are read-only for the lifetime of a query.
type Table struct {
	Alias  string
	Schema Schema
	Rows   []Row
}

// QualifiedName builds the row key for a column of an aliased table.
func QualifiedName(alias, column string) string {
	return alias + "." + column
}

// New assembles a table from already-typed rows. Rows must be keyed by
// qualified name and coerced to their schema types; New performs no
// further validation.
func New(alias string, schema Schema, rows []Row) *Table {
	return &Table{Alias: alias, Schema: schema, Rows: rows}
}

// Build assembles a table from raw row value lists, coercing each value
// to the declared type of its column and keying it by qualified name.
// Raw values come from JSON or YAML decoding, so integers may arrive as
// int, int64, json.Number, float64, or numeric strings.
func Build(alias string, schema Schema, raw [][]any) (*Table, error) {
	rows := make([]Row, 0, len(raw))
	for i, values := range raw {
		if len(values) != len(schema) {
			return nil, fmt.Errorf("table %q row %d: got %d values, schema has %d columns",
				alias, i, len(values), len(schema))
		}
		row := make(Row, len(schema))
		for j, col := range schema {
			v, err := Coerce(values[j], col.Type)
			if err != nil {
				return nil, fmt.Errorf("table %q row %d column %q: %w", alias, i, col.Name, err)
			}
			row[QualifiedName(alias, col.Name)] = v
		}
		rows = append(rows, row)
	}
	return New(alias, schema, rows), nil
}

// Filter returns a new table holding only the rows for which keep
// returns true. The alias and schema carry over; source rows are shared,
// never copied, since rows are read-only during execution.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return New(t.Alias, t.Schema, out)
}

// Coerce converts a raw decoded value to the declared column type.
func Coerce(v any, typ ir.ColumnType) (ir.Value, error) {
	switch typ {
	case ir.TypeInt:
		return coerceInt(v)
	case ir.TypeString:
		return coerceString(v)
	default:
		return nil, fmt.Errorf("unknown column type %q", typ)
	}
}

func coerceInt(v any) (ir.Value, error) {
	switch val := v.(type) {
	case int:
		return ir.Int(val), nil
	case int64:
		return ir.Int(val), nil
	case json.Number:
		i, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("non-integer value %s for int column", val)
		}
		return ir.Int(i), nil
	case float64:
		// encoding/json decodes numbers as float64 unless UseNumber is set.
		if val != float64(int64(val)) {
			return nil, fmt.Errorf("non-integer value %v for int column", val)
		}
		return ir.Int(int64(val)), nil
	case string:
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot coerce %q to int", val)
		}
		return ir.Int(i), nil
	default:
		return nil, fmt.Errorf("cannot coerce %T to int", v)
	}
}

func coerceString(v any) (ir.Value, error) {
	switch val := v.(type) {
	case string:
		return ir.String(val), nil
	case int:
		return ir.String(strconv.Itoa(val)), nil
	case int64:
		return ir.String(strconv.FormatInt(val, 10)), nil
	case json.Number:
		return ir.String(val.String()), nil
	case float64:
		if val == float64(int64(val)) {
			return ir.String(strconv.FormatInt(int64(val), 10)), nil
		}
		return nil, fmt.Errorf("cannot coerce %v to string", val)
	default:
		return nil, fmt.Errorf("cannot coerce %T to string", v)
	}
}
