package cgt

import (
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// TaxBracket is one marginal band of a financial year's resident income
// tax table. Min and Max are inclusive dollar boundaries; a Max of 0
// marks the open-ended top bracket.
type TaxBracket struct {
	Min  float64
	Max  float64
	Rate float64
}

// bracketTables holds the ATO resident rate tables keyed by financial
// year label. Populated once at init, read-only afterwards.
var bracketTables map[string][]TaxBracket

func init() {
	bracketTables = make(map[string][]TaxBracket)
	legacy := []TaxBracket{
		{Min: 0, Max: 18200, Rate: 0},
		{Min: 18201, Max: 45000, Rate: 0.19},
		{Min: 45001, Max: 120000, Rate: 0.325},
		{Min: 120001, Max: 180000, Rate: 0.37},
		{Min: 180001, Max: 0, Rate: 0.45},
	}
	stage3 := []TaxBracket{
		{Min: 0, Max: 18200, Rate: 0},
		{Min: 18201, Max: 45000, Rate: 0.16},
		{Min: 45001, Max: 135000, Rate: 0.30},
		{Min: 135001, Max: 190000, Rate: 0.37},
		{Min: 190001, Max: 0, Rate: 0.45},
	}
	for _, label := range []string{"2020-21", "2021-22", "2022-23", "2023-24"} {
		bracketTables[label] = legacy
	}
	for _, label := range []string{"2024-25", "2025-26", "2026-27"} {
		bracketTables[label] = stage3
	}
}

// BracketsFor returns the bracket table for a financial year label. An
// unknown label falls back to the most recent table so a report is still
// produced for years the tables have not caught up with.
func BracketsFor(label string) []TaxBracket {
	if brackets, ok := bracketTables[label]; ok {
		return brackets
	}
	labels := maps.Keys(bracketTables)
	slices.Sort(labels)
	latest := labels[len(labels)-1]
	log.Warningf("no tax bracket table for %q, using the %s table", label, latest)
	return bracketTables[latest]
}

// width returns how much income the bracket holds and whether it is
// bounded at all. Adjacent brackets share a dollar boundary, so a
// bracket starting above zero begins at Min-1.
func (b TaxBracket) width() (float64, bool) {
	if b.Max == 0 {
		return 0, false
	}
	if b.Min == 0 {
		return b.Max, true
	}
	return b.Max - (b.Min - 1), true
}
