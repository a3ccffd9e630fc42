package fuzzyjoin

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/fuzzyjoin/model"
	"github.com/hupe1980/fuzzyjoin/table"
)

var (
	// ErrConfiguration matches every configuration error.
	ErrConfiguration = model.ErrConfiguration
	// ErrSchema matches every schema error.
	ErrSchema = model.ErrSchema
	// ErrDuplicateID matches duplicate identifier errors in strict mode.
	ErrDuplicateID = model.ErrDuplicateID
	// ErrNoMatches is returned by the writers for an empty match set.
	ErrNoMatches = table.ErrNoMatches
	// ErrCancelled is returned when a join is interrupted by its context.
	ErrCancelled = errors.New("join cancelled")
)

// ConfigError reports an invalid option.
type ConfigError = model.ConfigError

// SchemaError reports a record lacking the identifier or comparison field.
type SchemaError = model.SchemaError

// DuplicateIDError reports a repeated identifier in strict mode.
type DuplicateIDError = model.DuplicateIDError

// LoadError reports a table that could not be read.
type LoadError = table.LoadError

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	return err
}
