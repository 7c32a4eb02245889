package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/reefcore/internal/canon"
	"github.com/roach88/reefcore/internal/sim"
)

// RunWithGolden runs a case and compares the canonical JSON of its final
// record against testdata/golden/<case name>.golden.
func RunWithGolden(t *testing.T, c *Case) (*Result, error) {
	t.Helper()

	result, err := Run(c)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, c.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's final record against its
// golden file without re-running.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := canon.MarshalCanonical(sim.SnapshotCanonical(result.Snapshot))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
