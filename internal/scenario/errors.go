package scenario

import (
	"fmt"

	"cuelang.org/go/cue/token"
)

// Error codes for scenario loading, shared with the CLI's error output.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeReadFailed    = "E002" // File read error
	ErrCodeUnknownFormat = "E003" // Unsupported file extension or format
	ErrCodeLoadFailed    = "E004" // CUE compile failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeSchema        = "E006" // CUE schema violation
	ErrCodeDecodeFailed  = "E007" // YAML/JSON decode error
	ErrCodeInvalid       = "E010" // Semantic validation failed
)

// LoadError reports a scenario that could not be loaded.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
