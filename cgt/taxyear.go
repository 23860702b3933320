package cgt

import (
	"fmt"
	"time"

	"github.com/brunosouza-justauto/crypto-portfolio/trade"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// TaxYear stores info about an Australian financial year,
// July 1 through June 30.
type TaxYear struct {
	Label      string
	Start, End time.Time
}

func newTaxYear(startYear int) *TaxYear {
	return &TaxYear{
		Label: fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100),
		Start: time.Date(startYear, time.July, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(startYear+1, time.June, 30, 23, 59, 59, 999000000, time.UTC),
	}
}

// YearOf returns the financial year a timestamp falls in. July through
// December belong to the year starting that calendar year, January
// through June to the one started the calendar year before.
func YearOf(ts time.Time) *TaxYear {
	start := ts.Year()
	if ts.Month() < time.July {
		start--
	}
	return newTaxYear(start)
}

// ParseYear resolves a label like "2024-25" to its financial year.
func ParseYear(label string) (*TaxYear, error) {
	var start, end int
	if _, err := fmt.Sscanf(label, "%d-%d", &start, &end); err != nil {
		return nil, fmt.Errorf("cannot parse financial year label %q: %v", label, err)
	}
	ty := newTaxYear(start)
	if ty.Label != label {
		return nil, fmt.Errorf("invalid financial year label %q, want %q", label, ty.Label)
	}
	return ty, nil
}

// Contains reports whether ts falls in the year, both boundaries inclusive.
func (ty *TaxYear) Contains(ts time.Time) bool {
	return !ts.Before(ty.Start) && !ts.After(ty.End)
}

// Years returns the sorted financial year labels that have at least one
// closed trade. Open trades carry no disposal date and are skipped.
func Years(trades []*trade.Trade) []string {
	seen := make(map[string]bool)
	for _, t := range trades {
		if !t.Closed() {
			continue
		}
		seen[YearOf(t.SellDate).Label] = true
	}
	labels := maps.Keys(seen)
	slices.Sort(labels)
	return labels
}
