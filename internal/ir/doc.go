// Package ir defines the query and value data model for the engine.
//
// A Query is a pre-parsed SELECT/FROM/WHERE description: projections
// (SelectItem), source tables (FromItem), and an implicit-AND list of
// binary comparisons (Condition). Condition operands are a sealed
// Expression union of ColumnRef and Literal.
//
// The value model is deliberately two-valued (Int, String), matching the
// two declarable column types. JSON decoding is strict: floats, booleans
// and null are rejected rather than coerced.
package ir
