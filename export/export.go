// Package export bundles a financial year's results into a single
// downloadable report file.
package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/brunosouza-justauto/crypto-portfolio/cgt"
	"github.com/jedib0t/go-pretty/v6/table"
)

// sheet is one named section of the artifact. A sheet can hold more
// than one table; they render in order under the same header.
type sheet struct {
	name   string
	tables []table.Writer
}

// Artifact is a rendered report ready to serve or write to disk.
type Artifact struct {
	Filename string
	sheets   []sheet
}

// Workbook builds the three-sheet report for one financial year: the
// disposals, the tax position (CGT summary plus the income tax split),
// and the per-asset rollup.
func Workbook(events []*cgt.Event, summary *cgt.TaxSummary, result *cgt.TaxResult, assets []*cgt.AssetStat, label string) *Artifact {
	return &Artifact{
		Filename: fmt.Sprintf("cgt-report-%s.csv", label),
		sheets: []sheet{
			{name: "Events", tables: []table.Writer{cgt.EventsTable(events, label)}},
			{name: "Summary", tables: []table.Writer{
				cgt.SummaryTable(summary, label),
				cgt.TaxTable(result, label),
			}},
			{name: "Per-Asset", tables: []table.Writer{cgt.AssetsTable(assets, label)}},
		},
	}
}

// WriteCSV writes the sheets as delimited CSV sections.
func (a *Artifact) WriteCSV(w io.Writer) error {
	for i, s := range a.sheets {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return fmt.Errorf("cannot write sheet separator: %v", err)
			}
		}
		if _, err := fmt.Fprintf(w, "=== %s ===\n", s.name); err != nil {
			return fmt.Errorf("cannot write sheet header: %v", err)
		}
		for j, t := range s.tables {
			if j > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return fmt.Errorf("cannot write table separator: %v", err)
				}
			}
			if _, err := io.WriteString(w, t.RenderCSV()); err != nil {
				return fmt.Errorf("cannot write sheet %s: %v", s.name, err)
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return fmt.Errorf("cannot finish sheet %s: %v", s.name, err)
			}
		}
	}
	return nil
}

// Bytes renders the whole artifact in memory.
func (a *Artifact) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := a.WriteCSV(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
