// Package engine evaluates structured queries against in-memory tables.
//
// The pipeline has three tightly coupled stages:
//
//  1. Resolve validates the SELECT clause, inferring table qualifiers
//     where absent, and produces the output header.
//  2. Classify validates the WHERE clause, type-checks each condition,
//     and splits conditions into per-table early buckets (evaluable
//     before the join) and a late list (evaluable only after).
//  3. Execute filters each table with its early bucket, then lazily
//     enumerates the cross product of the filtered tables, applying the
//     late conditions and projecting survivors.
//
// Resolution annotates column references with inferred table aliases;
// the join stage depends on those annotations. Both Resolve and Classify
// return annotated copies - the caller's query is never mutated.
//
// All validation failures surface before any row is produced, wrapped
// with the clause they occurred in. Predicates are compiled into typed
// accessors and compared directly; no executable text is ever built from
// query data.
package engine
