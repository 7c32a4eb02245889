package scenario

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// decodeCUE compiles a CUE scenario, unifies it with #Scenario and decodes
// the concrete result.
func decodeCUE(data []byte, filename string) (*Scenario, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, cueError(ErrCodeGeneric, "compiling embedded schema", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, cueError(ErrCodeLoadFailed, "compiling CUE", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Scenario")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError(ErrCodeSchema, "scenario does not match schema", err)
	}

	raw, err := unified.MarshalJSON()
	if err != nil {
		return nil, cueError(ErrCodeDecodeFailed, "exporting CUE", err)
	}

	var s Scenario
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("decoding CUE export: %v", err)}
	}
	return &s, nil
}

// cueError keeps the first CUE error and its source position.
func cueError(code, context string, err error) *LoadError {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: fmt.Sprintf("%s: %v", context, err)}
	}

	first := errs[0]
	loadErr := &LoadError{Code: code, Message: fmt.Sprintf("%s: %v", context, first)}
	if positions := errors.Positions(first); len(positions) > 0 {
		loadErr.Pos = positions[0]
	}
	return loadErr
}
