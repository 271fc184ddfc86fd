package engine

import (
	"errors"
	"fmt"
)

// ValidationError represents a query validation failure.
//
// All validation failures are detected before any row is produced and
// are deterministic functions of query + schema: nothing is retried, the
// fix is always to correct the input.
//
// ValidationError includes structured fields for diagnostics.
type ValidationError struct {
	// Code identifies the error category.
	Code ValidationErrorCode

	// Message is a human-readable description.
	Message string

	// Column is the offending column name, when applicable.
	Column string

	// Table is the offending table alias, when applicable.
	Table string

	// Tables lists every matching table alias for ambiguity errors.
	Tables []string

	// Types lists the mismatched type labels for type errors.
	Types []string
}

// ValidationErrorCode categorizes validation errors.
type ValidationErrorCode string

const (
	// ErrCodeAmbiguousColumn indicates an unqualified column name that
	// matches more than one table.
	ErrCodeAmbiguousColumn ValidationErrorCode = "AMBIGUOUS_COLUMN"

	// ErrCodeColumnNotFound indicates an unqualified column name that
	// matches no table.
	ErrCodeColumnNotFound ValidationErrorCode = "COLUMN_NOT_FOUND"

	// ErrCodeUnknownTable indicates a table alias not declared in FROM.
	ErrCodeUnknownTable ValidationErrorCode = "UNKNOWN_TABLE"

	// ErrCodeUnknownColumn indicates a column missing from the table it
	// was qualified with.
	ErrCodeUnknownColumn ValidationErrorCode = "UNKNOWN_COLUMN"

	// ErrCodeTypeMismatch indicates a condition whose sides resolve to
	// different types.
	ErrCodeTypeMismatch ValidationErrorCode = "TYPE_MISMATCH"
)

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsAmbiguousColumn returns true if the error is an ambiguous-column
// error. Uses errors.As to handle wrapped errors.
func IsAmbiguousColumn(err error) bool { return hasCode(err, ErrCodeAmbiguousColumn) }

// IsColumnNotFound returns true if the error is a column-not-found
// error. Uses errors.As to handle wrapped errors.
func IsColumnNotFound(err error) bool { return hasCode(err, ErrCodeColumnNotFound) }

// IsUnknownTable returns true if the error is an unknown-table error.
func IsUnknownTable(err error) bool { return hasCode(err, ErrCodeUnknownTable) }

// IsUnknownColumn returns true if the error is an unknown-column error.
func IsUnknownColumn(err error) bool { return hasCode(err, ErrCodeUnknownColumn) }

// IsTypeMismatch returns true if the error is a type-mismatch error.
func IsTypeMismatch(err error) bool { return hasCode(err, ErrCodeTypeMismatch) }

func hasCode(err error, code ValidationErrorCode) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code == code
	}
	return false
}

// NewAmbiguousColumn creates a ValidationError for an unqualified column
// present in more than one table. tables lists every match in FROM order.
func NewAmbiguousColumn(column string, tables []string) *ValidationError {
	return &ValidationError{
		Code:    ErrCodeAmbiguousColumn,
		Message: fmt.Sprintf("column %q is ambiguous: present in tables %v", column, tables),
		Column:  column,
		Tables:  tables,
	}
}

// NewColumnNotFound creates a ValidationError for an unqualified column
// present in no table.
func NewColumnNotFound(column string) *ValidationError {
	return &ValidationError{
		Code:    ErrCodeColumnNotFound,
		Message: fmt.Sprintf("column %q not found in any table", column),
		Column:  column,
	}
}

// NewUnknownTable creates a ValidationError for a table alias missing
// from the FROM clause.
func NewUnknownTable(table string) *ValidationError {
	return &ValidationError{
		Code:    ErrCodeUnknownTable,
		Message: fmt.Sprintf("table %q referenced, but not in FROM clause", table),
		Table:   table,
	}
}

// NewUnknownColumn creates a ValidationError for a column missing from
// the table it was qualified with.
func NewUnknownColumn(table, column string) *ValidationError {
	return &ValidationError{
		Code:    ErrCodeUnknownColumn,
		Message: fmt.Sprintf("column %q not in table %q", column, table),
		Column:  column,
		Table:   table,
	}
}

// NewTypeMismatch creates a ValidationError for a condition whose sides
// resolve to different types. types is in first-encounter order (left
// side first) so the message is deterministic.
func NewTypeMismatch(types []string) *ValidationError {
	return &ValidationError{
		Code:    ErrCodeTypeMismatch,
		Message: fmt.Sprintf("left and right types do not match %v", types),
		Types:   types,
	}
}

// Clause names for ClauseError.
const (
	ClauseSelect = "SELECT"
	ClauseWhere  = "WHERE"
)

// ClauseError wraps a validation failure with the clause it occurred in.
// The underlying error is preserved and reachable via errors.As/Is.
type ClauseError struct {
	Clause string
	Err    error
}

// Error implements the error interface.
func (e *ClauseError) Error() string {
	return fmt.Sprintf("Error in %s clause: %v", e.Clause, e.Err)
}

// Unwrap returns the underlying validation error.
func (e *ClauseError) Unwrap() error {
	return e.Err
}
