package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/reefcore/internal/scenario"
)

// ValidationError is one problem found in a scenario.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Scenario string            `json:"scenario,omitempty"`
	Hash     string            `json:"hash,omitempty"`
	Steps    int               `json:"steps,omitempty"`
	Layers   int               `json:"layers,omitempty"`
	Species  []string          `json:"species,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// WriteText prints the result for humans.
func (r ValidationResult) WriteText(w io.Writer) error {
	if !r.Valid {
		for _, e := range r.Errors {
			if e.Line > 0 {
				fmt.Fprintf(w, "  [%s] line %d: %s\n", e.Code, e.Line, e.Message)
			} else {
				fmt.Fprintf(w, "  [%s] %s\n", e.Code, e.Message)
			}
		}
		return nil
	}
	_, err := fmt.Fprintf(w, "Scenario %s is valid: %d steps, %d layers, species %v\nhash %s\n",
		r.Scenario, r.Steps, r.Layers, r.Species, r.Hash)
	return err
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario>",
		Short: "Validate a scenario without running it",
		Long: `Validate a scenario file (.yaml, .yml, .cue or .json).

Checks the schema, the time grid and every forcing series, then reports
the step and layer counts and the scenario's content hash.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	formatter.VerboseLog("Validating %s", path)

	s, err := scenario.Load(path)
	if err != nil {
		var loadErr *scenario.LoadError
		verr := ValidationError{Code: scenario.ErrCodeGeneric, Message: err.Error()}
		if errors.As(err, &loadErr) {
			verr = ValidationError{Code: loadErr.Code, Message: loadErr.Message}
			if loadErr.Pos.IsValid() {
				verr.Line = loadErr.Pos.Line()
			}
		}
		result := ValidationResult{Valid: false, Errors: []ValidationError{verr}}
		if opts.Format == "json" {
			if err := formatter.Error(verr.Code, "validation failed", result); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(formatter.Writer, "Validation failed: %s\n", path)
			result.WriteText(formatter.Writer)
		}
		return NewExitError(ExitFailure, "validation failed")
	}

	hash, err := s.Hash()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to hash scenario", err)
	}
	species := make([]string, len(s.Species))
	for i, sp := range s.Species {
		species[i] = sp.Name
	}

	return formatter.Success(ValidationResult{
		Valid:    true,
		Scenario: s.Name,
		Hash:     hash,
		Steps:    s.StepCount(),
		Layers:   s.LayerCount(),
		Species:  species,
	})
}
