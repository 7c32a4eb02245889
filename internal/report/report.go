// Package report turns a finished core record into tables for export.
package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/roach88/reefcore/internal/canon"
	"github.com/roach88/reefcore/internal/core"
	"github.com/roach88/reefcore/internal/forcing"
)

// Table is a rectangular export of a core, one row per layer, oldest
// layer first.
type Table struct {
	Header []string
	Rows   [][]float64
}

// NewTable builds the per-layer core table. layers holds the forcing
// sampled at each layer's start time and must match the snapshot's layer
// count.
//
// Columns are depth, th_<slot>, prop_<slot> and acc_<slot> for every slot,
// then sealevel, waterflow, sedinput, tecrate and karstification. Depth is
// measured down from the water surface to the top of the layer: the final
// water depth plus the thickness of every younger layer.
func NewTable(snap core.Snapshot, layers []forcing.Sample) (*Table, error) {
	n := snap.LayerCount()
	if len(layers) != n {
		return nil, fmt.Errorf("report: %d forcing samples for %d layers", len(layers), n)
	}
	if len(snap.Deposit) != len(snap.Slots) {
		return nil, fmt.Errorf("report: %d deposit slots for %d slot names", len(snap.Deposit), len(snap.Slots))
	}

	header := []string{"depth"}
	for _, prefix := range []string{"th_", "prop_", "acc_"} {
		for _, name := range snap.Slots {
			header = append(header, prefix+name)
		}
	}
	header = append(header, "sealevel", "waterflow", "sedinput", "tecrate", "karstification")

	depths := make([]float64, n)
	above := snap.Top
	for k := n - 1; k >= 0; k-- {
		depths[k] = above
		above += snap.Thickness[k]
	}

	rows := make([][]float64, n)
	slots := len(snap.Slots)
	for k := 0; k < n; k++ {
		row := make([]float64, 0, len(header))
		row = append(row, depths[k])
		for s := 0; s < slots; s++ {
			row = append(row, snap.Deposit[s][k])
		}
		props := proportions(snap, k)
		row = append(row, props...)
		var acc float64
		for _, p := range props {
			acc += p
			row = append(row, acc)
		}
		f := layers[k]
		row = append(row, f.SeaLevel, f.Flow, f.Clastic, f.Tectonic, snap.Karst[k])
		rows[k] = row
	}

	return &Table{Header: header, Rows: rows}, nil
}

// proportions returns each slot's share of layer k. An empty layer has all
// shares zero.
func proportions(snap core.Snapshot, k int) []float64 {
	props := make([]float64, len(snap.Slots))
	th := snap.Thickness[k]
	if th <= 0 {
		return props
	}
	for s := range props {
		props[s] = snap.Deposit[s][k] / th
	}
	return props
}

// WriteCSV writes the table with sep as the field separator.
func (t *Table) WriteCSV(w io.Writer, sep rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep

	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(t.Header))
	for i, row := range t.Rows {
		for j, v := range row {
			s, err := canon.FormatFloat(v)
			if err != nil {
				return fmt.Errorf("row %d column %s: %w", i, t.Header[j], err)
			}
			record[j] = s
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParseSeparator maps a command-line separator to a rune. It accepts a
// single character or one of the names "tab", "comma", "semicolon".
func ParseSeparator(s string) (rune, error) {
	switch s {
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	}
	r := []rune(s)
	if len(r) != 1 || r[0] == '"' || r[0] == '\r' || r[0] == '\n' {
		return 0, fmt.Errorf("invalid separator %q", s)
	}
	return r[0], nil
}
