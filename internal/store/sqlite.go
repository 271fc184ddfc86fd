package store

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/minirel/minirel/internal/ir"
)

// LoadDatabase loads one table per FROM item from a SQLite database.
// Each FROM source names a table in the database; its rows are read in
// storage order and loaded under the FROM item's alias.
//
// The two-valued schema is derived from SQLite column declarations:
// INTEGER maps to int, TEXT maps to string. Any other declared type is
// an error - the engine performs no further coercion after load, so the
// mapping must be exact.
func LoadDatabase(path string, from []ir.FromItem) ([]*Table, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// Read-only workload; a single connection avoids SQLITE_BUSY noise.
	db.SetMaxOpenConns(1)

	tables := make([]*Table, 0, len(from))
	for _, item := range from {
		t, err := loadSQLiteTable(db, item.Source, item.As)
		if err != nil {
			return nil, fmt.Errorf("load table %q: %w", item.Source, err)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func loadSQLiteTable(db *sql.DB, source, alias string) (*Table, error) {
	rows, err := db.Query("SELECT * FROM " + quoteIdent(source))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("get column types: %w", err)
	}

	schema := make(Schema, 0, len(colTypes))
	for _, ct := range colTypes {
		typ, err := sqliteColumnType(ct.DatabaseTypeName())
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", ct.Name(), err)
		}
		schema = append(schema, Column{Name: ct.Name(), Type: typ})
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(schema))
		ptrs := make([]any, len(schema))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(Row, len(schema))
		for i, col := range schema {
			v, err := sqliteValue(values[i], col.Type)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", col.Name, err)
			}
			row[QualifiedName(alias, col.Name)] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return New(alias, schema, out), nil
}

// sqliteColumnType maps a declared SQLite type to the two-valued model.
func sqliteColumnType(declared string) (ir.ColumnType, error) {
	switch strings.ToUpper(declared) {
	case "INTEGER", "INT", "BIGINT":
		return ir.TypeInt, nil
	case "TEXT", "VARCHAR":
		return ir.TypeString, nil
	default:
		return "", fmt.Errorf("unsupported SQLite column type %q (want INTEGER or TEXT)", declared)
	}
}

// sqliteValue converts a scanned SQLite value to a typed Value.
// NULLs are rejected: the row model has no null and a missing value
// cannot be silently defaulted.
func sqliteValue(v any, typ ir.ColumnType) (ir.Value, error) {
	if v == nil {
		return nil, fmt.Errorf("NULL values are not supported")
	}
	switch val := v.(type) {
	case int64:
		if typ != ir.TypeInt {
			return Coerce(val, typ)
		}
		return ir.Int(val), nil
	case string:
		if typ != ir.TypeString {
			return Coerce(val, typ)
		}
		return ir.String(val), nil
	case []byte:
		return Coerce(string(val), typ)
	default:
		return nil, fmt.Errorf("unsupported SQLite value type %T", v)
	}
}

// quoteIdent quotes a SQL identifier, doubling embedded quotes.
// Table names come from query documents, never from row data, but they
// are still untrusted input.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
