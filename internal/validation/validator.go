// =============================================================================
// Sales Aggregator - Validation
// =============================================================================
//
// This module defines the structural error taxonomy and the checks that
// raise it. Structural problems always abort a run:
//   - MissingInputError: an input path does not exist
//   - SchemaError:       loaded data lacks a required column
//   - AmountError:       a cleaned row has an unusable quantity or price
//
// Row-level data-quality problems (a null critical field, an unparsable
// date) are NOT errors. The cleaning steps filter those rows and report
// how many were removed.
//
// Every error type matches a sentinel through errors.Is and exposes its
// details through errors.As.
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ginjaninja78/sales-aggregator/internal/types"
	"github.com/ginjaninja78/sales-aggregator/pkg/utils"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrMissingInput matches any *MissingInputError.
	ErrMissingInput = errors.New("missing input")

	// ErrSchema matches any *SchemaError.
	ErrSchema = errors.New("schema mismatch")

	// ErrInvalidAmount matches any *AmountError.
	ErrInvalidAmount = errors.New("invalid amount")
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// MissingInputError lists configured input paths that do not exist.
type MissingInputError struct {
	Paths []string
}

// Error implements the error interface.
func (e *MissingInputError) Error() string {
	if len(e.Paths) == 1 {
		return fmt.Sprintf("input file not found: %s", e.Paths[0])
	}
	return fmt.Sprintf("%d input files not found: %s", len(e.Paths), strings.Join(e.Paths, ", "))
}

// Is reports whether target is ErrMissingInput.
func (e *MissingInputError) Is(target error) bool {
	return target == ErrMissingInput
}

// SchemaError reports required columns absent from loaded data.
type SchemaError struct {
	// Source names the data that was checked, a file path or "combined".
	Source string

	// Missing holds the absent column names, in the order they were required.
	Missing []string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("missing required column(s): %s", strings.Join(e.Missing, ", "))
	if e.Source != "" {
		msg = fmt.Sprintf("%s: %s", e.Source, msg)
	}
	return msg
}

// Is reports whether target is ErrSchema.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// AmountError describes a row whose quantity or price cannot be used.
type AmountError struct {
	Source string
	Line   int
	Field  string
	Value  string
	Reason string
}

// Error implements the error interface.
func (e *AmountError) Error() string {
	loc := e.Source
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Source, e.Line)
	}
	if loc == "" {
		loc = "row"
	}
	return fmt.Sprintf("%s: field '%s' %s (value: '%s')", loc, e.Field, e.Reason, e.Value)
}

// Is reports whether target is ErrInvalidAmount.
func (e *AmountError) Is(target error) bool {
	return target == ErrInvalidAmount
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator performs the structural checks of a run.
type Validator struct {
	logger *zap.Logger
}

// NewValidator creates a validator. A nil logger disables logging.
func NewValidator(logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{logger: logger.With(zap.String("component", "validator"))}
}

// ValidateFilesExist checks every path and reports all missing ones at once.
// Directories count as missing.
func (v *Validator) ValidateFilesExist(paths []string) error {
	var missing []string
	for _, path := range paths {
		if !utils.FileExists(path) {
			v.logger.Error("Input file not found", zap.String("file", path))
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		return &MissingInputError{Paths: missing}
	}

	v.logger.Debug("All input files exist", zap.Int("files", len(paths)))
	return nil
}

// ValidateColumns checks that rs has every required column.
func (v *Validator) ValidateColumns(rs *types.RecordSet, required []string, source string) error {
	var missing []string
	for _, column := range required {
		if !rs.HasColumn(column) {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		v.logger.Error("Missing required columns",
			zap.String("source", source),
			zap.Strings("missing", missing))
		return &SchemaError{Source: source, Missing: missing}
	}
	return nil
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats a list of problems for display.
func FormatErrors(errs []error) string {
	if len(errs) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation completed with %d error(s):\n\n", len(errs)))
	for i, err := range errs {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}
	return builder.String()
}
