// Package errs defines the error taxonomy of the blending pipeline.
//
// Every failure is a programming or configuration error reported
// synchronously; there is nothing to retry. Callers match with errors.Is.
// A pixel without coverage is not an error: it is reported through the
// validity mask.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrPrecondition reports a violated call contract: mismatched view
	// counts, an ROI outside the canvas, a zero-area ROI, or an operation
	// invoked in the wrong accumulator state.
	ErrPrecondition = errors.New("precondition violation")

	// ErrOverflowRisk reports a configuration whose accumulation range
	// could wrap around.
	ErrOverflowRisk = errors.New("numeric overflow risk")
)

// Precondition returns an error wrapping ErrPrecondition.
func Precondition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

// OverflowRisk returns an error wrapping ErrOverflowRisk.
func OverflowRisk(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrOverflowRisk, fmt.Sprintf(format, args...))
}
