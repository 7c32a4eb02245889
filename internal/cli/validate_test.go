package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	out, err := executeRoot(t, "validate", "testdata/small.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Scenario small is valid: 4 steps, 3 layers")
}

func TestValidate_JSON(t *testing.T) {
	out, err := executeRoot(t, "--format", "json", "validate", "testdata/small.yaml")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, []string{"reef"}, resp.Data.Species)
	assert.Len(t, resp.Data.Hash, 64)
}

func TestValidate_InvalidGrid(t *testing.T) {
	out, err := executeRoot(t, "validate", "testdata/bad_grid.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Validation failed")
	assert.Contains(t, out, "E010")
	assert.Contains(t, out, "whole multiple")
}

func TestValidate_MissingFileJSON(t *testing.T) {
	out, err := executeRoot(t, "--format", "json", "validate", "testdata/nope.yaml")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E005", resp.Error.Code)
}
