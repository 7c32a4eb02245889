package core

import (
	"errors"
	"fmt"
)

// ConfigError reports an invalid Config. No Core is built from a Config that
// fails validation.
type ConfigError struct {
	// Field names the offending configuration field.
	Field string

	// Message is a human-readable description.
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid core config: %s: %s", e.Field, e.Message)
}

// InvariantCode categorizes invariant violations.
type InvariantCode string

const (
	// ErrCodeLayerRange indicates a layer index outside [0, LayerCount).
	ErrCodeLayerRange InvariantCode = "LAYER_RANGE"

	// ErrCodeLayerOrder indicates Advance was called with a layer index
	// lower than a previous call.
	ErrCodeLayerOrder InvariantCode = "LAYER_ORDER"

	// ErrCodeVectorLength indicates a population or growth vector whose
	// length differs from the species count.
	ErrCodeVectorLength InvariantCode = "VECTOR_LENGTH"

	// ErrCodeNegativeThickness indicates a layer with negative thickness.
	ErrCodeNegativeThickness InvariantCode = "NEGATIVE_THICKNESS"

	// ErrCodeNonFinite indicates a NaN or infinite input.
	ErrCodeNonFinite InvariantCode = "NON_FINITE"

	// ErrCodeInputSign indicates a negative population or clastic rate, or
	// a positive erosion signal.
	ErrCodeInputSign InvariantCode = "INPUT_SIGN"

	// ErrCodeConservation indicates slot heights no longer sum to the
	// layer thickness.
	ErrCodeConservation InvariantCode = "CONSERVATION"
)

// InvariantError is the panic value raised when the core detects a broken
// invariant. It signals a bug in the caller or upstream, never bad luck.
type InvariantError struct {
	Code    InvariantCode
	Layer   int
	Message string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s (layer=%d)", e.Code, e.Message, e.Layer)
}

// IsInvariantError returns true if err is or wraps an *InvariantError.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

func violate(code InvariantCode, layer int, format string, args ...any) {
	panic(&InvariantError{
		Code:    code,
		Layer:   layer,
		Message: fmt.Sprintf(format, args...),
	})
}
