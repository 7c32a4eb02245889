package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reefcore/internal/core"
	"github.com/roach88/reefcore/internal/forcing"
)

func twoLayers() (core.Snapshot, []forcing.Sample) {
	snap := core.Snapshot{
		Slots:     []string{"reef", core.ClasticName},
		Thickness: []float64{2, 0.5},
		Deposit:   [][]float64{{1.5, 0}, {0.5, 0.5}},
		Karst:     []float64{0.5, 0},
		Top:       2,
	}
	layers := []forcing.Sample{
		{Time: 0, SeaLevel: 0, Tectonic: 0.125, Clastic: 0.25, Flow: 0.5},
		{Time: 100, SeaLevel: -1, Tectonic: 0.125, Clastic: 0, Flow: 0.5, Karst: 0.75},
	}
	return snap, layers
}

func TestNewTable_CSVGolden(t *testing.T) {
	snap, layers := twoLayers()
	table, err := NewTable(snap, layers)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf, ','))

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "two_layers.csv", buf.Bytes())
}

func TestNewTable_Depths(t *testing.T) {
	snap, layers := twoLayers()
	table, err := NewTable(snap, layers)
	require.NoError(t, err)

	// The youngest layer sits at the final water depth.
	assert.Equal(t, 2.5, table.Rows[0][0])
	assert.Equal(t, 2.0, table.Rows[1][0])
}

func TestNewTable_EmptyLayerHasZeroProportions(t *testing.T) {
	snap, layers := twoLayers()
	snap.Thickness[1] = 0
	snap.Deposit[1][1] = 0

	table, err := NewTable(snap, layers)
	require.NoError(t, err)
	// prop_reef, prop_clastic, acc_reef, acc_clastic
	assert.Equal(t, []float64{0, 0, 0, 0}, table.Rows[1][3:7])
}

func TestNewTable_RejectsMismatchedLayers(t *testing.T) {
	snap, layers := twoLayers()
	_, err := NewTable(snap, layers[:1])
	assert.Error(t, err)
}

func TestWriteCSV_Separator(t *testing.T) {
	snap, layers := twoLayers()
	table, err := NewTable(snap, layers)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf, ';'))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "depth;th_reef;th_clastic;"))
	assert.Equal(t, "2;0;0.5;0;1;0;1;-1;0.5;0;0.125;0", lines[2])
}

func TestParseSeparator(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{",", ',', false},
		{"tab", '\t', false},
		{`\t`, '\t', false},
		{"semicolon", ';', false},
		{"|", '|', false},
		{"", 0, true},
		{"::", 0, true},
		{`"`, 0, true},
	}
	for _, tt := range tests {
		got, err := ParseSeparator(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestSummarize(t *testing.T) {
	snap, _ := twoLayers()
	snap.UnmetErosion = 0.25

	s := Summarize(snap)
	assert.Equal(t, []float64{1.5, 1}, s.Totals)
	assert.Equal(t, 2.5, s.TotalThickness)
	assert.Equal(t, 0.5, s.TotalKarst)
	assert.Equal(t, []string{"reef", core.ClasticName}, s.Facies)

	var buf bytes.Buffer
	require.NoError(t, s.WriteText(&buf))
	assert.Contains(t, buf.String(), "unmet erosion")
	assert.Contains(t, buf.String(), "reef")
}

func TestSummarize_EmptyLayer(t *testing.T) {
	snap := core.Snapshot{
		Slots:     []string{"reef", core.ClasticName},
		Thickness: []float64{0},
		Deposit:   [][]float64{{0}, {0}},
		Karst:     []float64{1},
	}
	assert.Equal(t, []string{""}, Summarize(snap).Facies)
}
