package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minirel/minirel/internal/ir"
)

// tableFileExt is the suffix of table files in a data folder.
const tableFileExt = ".table.json"

// LoadFolder loads one table per FROM item from JSON files in folder.
// Each source table lives in "<folder>/<source>.table.json" and is
// loaded under the FROM item's alias.
func LoadFolder(folder string, from []ir.FromItem) ([]*Table, error) {
	tables := make([]*Table, 0, len(from))
	for _, item := range from {
		t, err := LoadTableFile(filepath.Join(folder, item.Source+tableFileExt), item.As)
		if err != nil {
			return nil, fmt.Errorf("load table %q: %w", item.Source, err)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// LoadTableFile reads a single table file under the given alias.
//
// The file format is a JSON array whose first element is the header list
// of [name, type] pairs and whose remaining elements are row value
// arrays:
//
//	[
//	  [["id", "int"], ["name", "string"]],
//	  [1, "Al"],
//	  [2, "Bo"]
//	]
//
// Row values are coerced to their declared types on load.
func LoadTableFile(path, alias string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeTable(data, alias, path)
}

func decodeTable(data []byte, alias, origin string) (*Table, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var elements []json.RawMessage
	if err := dec.Decode(&elements); err != nil {
		return nil, fmt.Errorf("%s: %w", origin, err)
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("%s: missing header element", origin)
	}

	schema, err := decodeSchema(elements[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", origin, err)
	}

	raw := make([][]any, 0, len(elements)-1)
	for i, elem := range elements[1:] {
		rowDec := json.NewDecoder(bytes.NewReader(elem))
		rowDec.UseNumber()
		var values []any
		if err := rowDec.Decode(&values); err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", origin, i, err)
		}
		raw = append(raw, values)
	}

	return Build(alias, schema, raw)
}

func decodeSchema(data []byte) (Schema, error) {
	var pairs [][]string
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	schema := make(Schema, 0, len(pairs))
	for _, pair := range pairs {
		if len(pair) != 2 {
			return nil, fmt.Errorf("header entry %v: want [name, type] pair", pair)
		}
		typ, err := ir.ParseColumnType(pair[1])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", pair[0], err)
		}
		if schema.Has(pair[0]) {
			return nil, fmt.Errorf("duplicate column %q in header", pair[0])
		}
		schema = append(schema, Column{Name: pair[0], Type: typ})
	}
	return schema, nil
}
