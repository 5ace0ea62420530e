package converter

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/sells-group/tariff-cli/internal/tariff"
)

// Converter turns one contract type's raw source files into canonical records.
// Implementations are pure functions of their own input files.
type Converter interface {
	// Name returns the contract type this converter produces (e.g., "tempo").
	Name() string

	// Sources returns the files the converter reads, for listing and diagnostics.
	Sources() []string

	// Convert reads the sources from fsys and returns records grouped by
	// subscribed power level.
	Convert(ctx context.Context, fsys afero.Fs) (*Result, error)
}

// Result holds one converter's output.
type Result struct {
	Levels tariff.PowerLevels

	// Skipped counts data rows dropped because a required field was empty.
	Skipped int
}

func newResult() *Result {
	return &Result{Levels: tariff.PowerLevels{}}
}

// RowError reports an unparseable value in a non-empty required field.
type RowError struct {
	Path   string
	Row    int // 1-based data row, header excluded
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("converter: %s row %d column %s: %v", e.Path, e.Row, e.Column, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
