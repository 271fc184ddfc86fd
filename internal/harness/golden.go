package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/minirel/minirel/internal/ir"
)

// RunWithGolden executes a scenario and compares its snapshot against
// the golden file testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the scenario cannot be run at all; golden mismatches
// fail the test via goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot, err := ir.MarshalCanonical(toCanonicalMap(scenario.Name, result))
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snapshot)

	return result, nil
}

// toCanonicalMap flattens a result into primitives MarshalCanonical
// accepts. Error results snapshot the message only; success results
// snapshot header and rows.
func toCanonicalMap(name string, r *Result) map[string]any {
	if r.Err != nil {
		return map[string]any{
			"name":  name,
			"error": r.Err.Error(),
		}
	}

	header := make([]any, len(r.Header))
	for i, h := range r.Header {
		header[i] = []any{h.Name, string(h.Type)}
	}

	rows := make([]any, len(r.Rows))
	for i, row := range r.Rows {
		vals := make([]any, len(row))
		for j, v := range row {
			vals[j] = v
		}
		rows[i] = vals
	}

	return map[string]any{
		"name":   name,
		"header": header,
		"rows":   rows,
	}
}
