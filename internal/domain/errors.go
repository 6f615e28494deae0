package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNilDataset       = errors.New("dataset is nil")
	ErrSnapshotNotReady = errors.New("snapshot not ready")
	ErrUnknownReport    = errors.New("unknown report")
	ErrUnknownTab       = errors.New("unknown tab")
	ErrUnknownTable     = errors.New("unknown table")
)

// SchemaError is returned when an input table lacks a required column
type SchemaError struct {
	Table  string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %s is missing required column %s", e.Table, e.Column)
}

// RowError wraps a failure to parse or validate a single source row.
// Line is 1-based and counts the header for CSV sources.
type RowError struct {
	Table string
	Line  int
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("table %s line %d: %v", e.Table, e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
