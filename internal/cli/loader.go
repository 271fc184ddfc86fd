package cli

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/minirel/minirel/internal/ir"
)

//go:embed query_schema.cue
var querySchemaCUE string

// LoadQuery reads a query document, validates it against the embedded
// CUE schema, and decodes it. Schema validation runs first so malformed
// documents fail with a position-annotated message instead of a decoder
// error half-way through.
func LoadQuery(path string) (*ir.Query, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read query document: %w", err)
	}
	return DecodeQueryDocument(raw, path)
}

// DecodeQueryDocument validates and decodes query document bytes.
// origin names the source in error messages.
func DecodeQueryDocument(raw []byte, origin string) (*ir.Query, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(querySchemaCUE)
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile query schema: %w", err)
	}

	// JSON is valid CUE; extract it and unify with the schema.
	expr, err := cuejson.Extract(origin, raw)
	if err != nil {
		return nil, fmt.Errorf("parse query document: %w", err)
	}
	doc := ctx.BuildExpr(expr)
	if err := doc.Err(); err != nil {
		return nil, fmt.Errorf("build query document: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Query")).Unify(doc)
	if err := unified.Validate(cue.Final(), cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid query document: %w", err)
	}

	var q ir.Query
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, fmt.Errorf("decode query document: %w", err)
	}
	return &q, nil
}
