package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeRoot runs the root command with args and returns stdout.
func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "reefcore", cmd.Use)
	assert.Contains(t, cmd.Long, "reef core")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"validate", "run", "runs", "export", "replay", "serve"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestDatabaseFlagsRequired(t *testing.T) {
	for _, args := range [][]string{
		{"run", "testdata/small.yaml"},
		{"runs"},
		{"export", "some-run"},
		{"replay", "some-run"},
	} {
		t.Run(args[0], func(t *testing.T) {
			_, err := executeRoot(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "required flag")
			assert.Contains(t, err.Error(), "db")
		})
	}
}

func TestServeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	serveCmd, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", serveCmd.Flags().Lookup("addr").DefValue)
	assert.Equal(t, "0s", serveCmd.Flags().Lookup("interval").DefValue)
	assert.Equal(t, "0", serveCmd.Flags().Lookup("wait").DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := executeRoot(t, "--format", "xml", "validate", "testdata/small.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
