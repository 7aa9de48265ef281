package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoMappedColumns is returned when no column of the file targets a field.
var ErrNoMappedColumns = errors.New("no mapped columns: map at least one column to a field")

// ErrUnknownSchema is returned for schema identifiers missing from the registry.
var ErrUnknownSchema = errors.New("unknown schema")

var errMixedBatch = errors.New("batch mixes schemas or owners")

// ParseError reports file bytes that could not be read as tabular data.
type ParseError struct {
	Format string // Detected MIME type, empty if detection failed
	Err    error
}

func (e *ParseError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("invalid spreadsheet (%s): %v", e.Format, e.Err)
	}
	return fmt.Sprintf("invalid spreadsheet: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// EmptyFileError reports a file without a header row.
type EmptyFileError struct{}

func (e *EmptyFileError) Error() string { return "empty file: no header row found" }

// MissingRequiredFieldError reports schema-critical fields that have neither a
// mapped column nor a batch default.
type MissingRequiredFieldError struct {
	Schema SchemaID
	Fields []FieldDescriptor
}

func (e *MissingRequiredFieldError) Error() string {
	labels := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		labels[i] = f.Label
	}
	return fmt.Sprintf("missing required field for %s: map a column or select a default for %s",
		e.Schema, strings.Join(labels, ", "))
}

// FieldIDs returns the identifiers of the unsatisfied fields.
func (e *MissingRequiredFieldError) FieldIDs() []string {
	ids := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		ids[i] = f.ID
	}
	return ids
}

// CommitError reports a rejected batch write. Nothing from the batch persists.
type CommitError struct {
	Schema  SchemaID
	Records int
	Err     error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit %d %s records: %v", e.Records, e.Schema, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
