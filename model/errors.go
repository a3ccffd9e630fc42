package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration is the sentinel wrapped by every ConfigError.
	ErrConfiguration = errors.New("configuration error")
	// ErrSchema is the sentinel wrapped by every SchemaError.
	ErrSchema = errors.New("schema error")
	// ErrDuplicateID is the sentinel wrapped by every DuplicateIDError.
	ErrDuplicateID = errors.New("duplicate identifier")
)

// ConfigError indicates an invalid join configuration.
// It is reported before any record is read.
type ConfigError struct {
	// Field names the offending option (e.g. "threshold").
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// SchemaError indicates a record missing a configured field.
type SchemaError struct {
	Table string
	// Row is the zero-based record position within the table.
	Row int
	// ID is the record identifier, empty if the identifier itself is missing.
	ID    string
	Field string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "schema error: table %q row %d", e.Table, e.Row)
	if e.ID != "" {
		fmt.Fprintf(&b, " (id %q)", e.ID)
	}
	fmt.Fprintf(&b, ": missing field %q", e.Field)
	return b.String()
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// DuplicateIDError indicates an identifier used by more than one record.
// It is only produced in strict mode.
type DuplicateIDError struct {
	Table string
	ID    string
	// Rows holds the positions of the first and the repeated record.
	Rows [2]int
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate identifier %q in table %q (rows %d and %d)", e.ID, e.Table, e.Rows[0], e.Rows[1])
}

func (e *DuplicateIDError) Unwrap() error { return ErrDuplicateID }
