// Package harness runs declarative end-to-end scenarios against the
// engine.
//
// A scenario YAML file defines inline tables, a query document, and
// optional expectations; the runner executes it and compares a canonical
// JSON snapshot of the outcome (header + rows, or the validation error)
// against a golden file. Golden files are the source of truth for
// expected engine behavior.
package harness
