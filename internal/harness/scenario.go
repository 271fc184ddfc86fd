package harness

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/minirel/minirel/internal/engine"
	"github.com/minirel/minirel/internal/ir"
	"github.com/minirel/minirel/internal/store"
)

// Scenario is a declarative end-to-end engine test: inline tables, a
// query document, and the expected outcome. Scenarios live in YAML
// files under testdata/scenarios and are compared against golden
// snapshots.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Tables defines the input tables, in FROM order.
	Tables []TableFixture `yaml:"tables"`

	// Query is the structured query document, in the same shape as the
	// JSON wire format.
	Query map[string]any `yaml:"query"`

	// Expect holds optional extra assertions beyond the golden snapshot.
	Expect Expectations `yaml:"expect,omitempty"`
}

// TableFixture is one inline input table.
type TableFixture struct {
	Alias  string          `yaml:"alias"`
	Schema []ColumnFixture `yaml:"schema"`
	Rows   [][]any         `yaml:"rows"`
}

// ColumnFixture is one schema entry of an inline table.
type ColumnFixture struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Expectations are assertions checked by the test runner in addition to
// the golden comparison.
type Expectations struct {
	// MaxVisited bounds how many joined tuples the cursor may
	// enumerate; used to verify predicate pushdown actually shrinks
	// the join input. Zero means unchecked.
	MaxVisited int `yaml:"max_visited,omitempty"`
}

// Result captures a scenario execution for snapshotting.
// Exactly one of Err or (Header, Rows) is meaningful.
type Result struct {
	Header  engine.Header
	Rows    [][]ir.Value
	Visited int
	Err     error
}

// LoadScenario reads and decodes a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("%s: scenario missing name", path)
	}
	return &s, nil
}

// Run builds the scenario's tables, decodes its query, and executes it.
// Validation failures land in Result.Err; anything else (malformed
// fixtures, undecodable query) is an error.
func Run(s *Scenario) (*Result, error) {
	tables, err := buildTables(s.Tables)
	if err != nil {
		return nil, err
	}

	query, err := decodeQuery(s.Query)
	if err != nil {
		return nil, err
	}

	cur, err := engine.Execute(query, tables)
	if err != nil {
		return &Result{Err: err}, nil
	}

	res := &Result{Header: cur.Header(), Rows: cur.All()}
	res.Visited = cur.Visited()
	return res, nil
}

func buildTables(fixtures []TableFixture) ([]*store.Table, error) {
	tables := make([]*store.Table, 0, len(fixtures))
	for _, f := range fixtures {
		schema := make(store.Schema, 0, len(f.Schema))
		for _, c := range f.Schema {
			typ, err := ir.ParseColumnType(c.Type)
			if err != nil {
				return nil, fmt.Errorf("table %q: %w", f.Alias, err)
			}
			schema = append(schema, store.Column{Name: c.Name, Type: typ})
		}
		t, err := store.Build(f.Alias, schema, f.Rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// decodeQuery round-trips the YAML query node through JSON so the same
// strict decoding rules apply as for wire documents.
func decodeQuery(node map[string]any) (*ir.Query, error) {
	raw, err := json.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("re-encode query: %w", err)
	}
	var q ir.Query
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, fmt.Errorf("decode query: %w", err)
	}
	return &q, nil
}
