package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/roach88/reefcore/internal/core"
)

// Summary condenses a core record.
type Summary struct {
	Slots          []string  `json:"slots"`
	Totals         []float64 `json:"totals"`
	TotalThickness float64   `json:"total_thickness"`
	TotalKarst     float64   `json:"total_karst"`
	Top            float64   `json:"top"`
	UnmetErosion   float64   `json:"unmet_erosion"`

	// Facies names the dominant slot of each layer, oldest first. Empty
	// layers have no facies and are reported as "".
	Facies []string `json:"facies"`
}

// Summarize totals a snapshot per slot and picks each layer's dominant
// facies, the slot with the greatest height. Ties go to the lower slot.
func Summarize(snap core.Snapshot) Summary {
	sum := Summary{
		Slots:        append([]string(nil), snap.Slots...),
		Totals:       make([]float64, len(snap.Slots)),
		Top:          snap.Top,
		UnmetErosion: snap.UnmetErosion,
		Facies:       make([]string, snap.LayerCount()),
	}

	for k := 0; k < snap.LayerCount(); k++ {
		sum.TotalThickness += snap.Thickness[k]
		sum.TotalKarst += snap.Karst[k]

		best, bestHeight := -1, 0.0
		for s := range snap.Deposit {
			h := snap.Deposit[s][k]
			sum.Totals[s] += h
			if h > bestHeight {
				best, bestHeight = s, h
			}
		}
		if best >= 0 {
			sum.Facies[k] = snap.Slots[best]
		}
	}
	return sum
}

// WriteText prints the summary as an aligned table.
func (s Summary) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLOT\tTHICKNESS")
	for i, name := range s.Slots {
		fmt.Fprintf(tw, "%s\t%.6g\n", name, s.Totals[i])
	}
	fmt.Fprintf(tw, "total\t%.6g\n", s.TotalThickness)
	fmt.Fprintf(tw, "karst\t%.6g\n", s.TotalKarst)
	fmt.Fprintf(tw, "top\t%.6g\n", s.Top)
	if s.UnmetErosion > 0 {
		fmt.Fprintf(tw, "unmet erosion\t%.6g\n", s.UnmetErosion)
	}
	return tw.Flush()
}
