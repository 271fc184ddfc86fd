// Package store supplies the in-memory tables the engine executes over.
//
// A Table is an alias, an ordered Schema, and an ordered row sequence.
// Rows are keyed by qualified name ("alias.column") with values already
// coerced to their declared types; the engine performs no coercion.
//
// Tables can be assembled directly (New, Build), loaded from JSON table
// files (LoadFolder), or loaded from a SQLite database (LoadDatabase).
package store
