package cgt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProgressiveTax(t *testing.T) {
	rq := require.New(t)
	stage3 := BracketsFor("2024-25")
	legacy := BracketsFor("2023-24")

	rq.InDelta(0.0, progressiveTax(0, stage3), 1e-9)
	rq.InDelta(0.0, progressiveTax(0, legacy), 1e-9)
	rq.InDelta(0.0, progressiveTax(18200, stage3), 1e-9)
	rq.InDelta(0.16, progressiveTax(18201, stage3), 1e-9)
	rq.InDelta(4288.0, progressiveTax(45000, stage3), 1e-6)
	rq.InDelta(5788.0, progressiveTax(50000, stage3), 1e-6)
	rq.InDelta(5092.0, progressiveTax(45000, legacy), 1e-6)
	rq.InDelta(60667.0, progressiveTax(200000, legacy), 1e-6)
}

func TestCalculateTaxFreeThreshold(t *testing.T) {
	rq := require.New(t)
	r := CalculateTax(18200, 0, "2024-25")
	rq.InDelta(0.0, r.TaxOnOtherIncome, 1e-9)
	rq.InDelta(0.0, r.TaxOnCryptoGain, 1e-9)
	rq.InDelta(364.0, r.MedicareLevy, 1e-9)
	rq.InDelta(364.0, r.TotalTax, 1e-9)
	rq.InDelta(0.0, r.EffectiveCryptoRate, 1e-9)
}

func TestCalculateTaxMarginalAttribution(t *testing.T) {
	rq := require.New(t)
	r := CalculateTax(40000, 10000, "2024-25")

	// The gain stacks on top of the salary: 5000 at 16%, 5000 at 30%.
	rq.InDelta(3488.0, r.TaxOnOtherIncome, 1e-6)
	rq.InDelta(2300.0, r.TaxOnCryptoGain, 1e-6)
	rq.InDelta(1000.0, r.MedicareLevy, 1e-6)
	rq.InDelta(6788.0, r.TotalTax, 1e-6)
	rq.InDelta(0.23, r.EffectiveCryptoRate, 1e-9)

	rq.Len(r.Breakdown, 3)
	rq.Equal("$0 - $18,200", r.Breakdown[0].Range)
	rq.InDelta(18200.0, r.Breakdown[0].OtherAmount, 1e-9)
	rq.InDelta(0.0, r.Breakdown[0].CryptoAmount, 1e-9)

	// Other income fills the bracket before crypto gets the rest.
	rq.Equal("$18,201 - $45,000", r.Breakdown[1].Range)
	rq.InDelta(21800.0, r.Breakdown[1].OtherAmount, 1e-9)
	rq.InDelta(5000.0, r.Breakdown[1].CryptoAmount, 1e-9)
	rq.InDelta(800.0, r.Breakdown[1].CryptoTax, 1e-6)

	rq.Equal("$45,001 - $135,000", r.Breakdown[2].Range)
	rq.InDelta(0.0, r.Breakdown[2].OtherAmount, 1e-9)
	rq.InDelta(5000.0, r.Breakdown[2].CryptoAmount, 1e-9)
	rq.InDelta(1500.0, r.Breakdown[2].CryptoTax, 1e-6)
}

func TestCalculateTaxTopBracket(t *testing.T) {
	rq := require.New(t)
	r := CalculateTax(200000, 50000, "2024-25")
	last := r.Breakdown[len(r.Breakdown)-1]
	rq.Equal("$190,001+", last.Range)
	rq.InDelta(50000.0, last.CryptoAmount, 1e-9)
	rq.InDelta(0.45, r.EffectiveCryptoRate, 1e-9)
}

func TestCalculateTaxNegativeCryptoGain(t *testing.T) {
	rq := require.New(t)
	r := CalculateTax(50000, -2000, "2024-25")
	rq.InDelta(5788.0, r.TaxOnOtherIncome, 1e-6)
	rq.InDelta(0.0, r.TaxOnCryptoGain, 1e-9)
	rq.InDelta(0.0, r.EffectiveCryptoRate, 1e-9)
	rq.InDelta(1000.0, r.MedicareLevy, 1e-9, "a capital loss does not shrink the levy base")
}

func TestCalculateTaxUnknownYearFallsBack(t *testing.T) {
	rq := require.New(t)
	unknown := CalculateTax(90000, 5000, "2031-32")
	latest := CalculateTax(90000, 5000, "2026-27")
	rq.InDelta(latest.TotalTax, unknown.TotalTax, 1e-9)
	rq.InDelta(latest.TaxOnCryptoGain, unknown.TaxOnCryptoGain, 1e-9)
}

func TestBracketTablesDiffer(t *testing.T) {
	rq := require.New(t)

	// Stage 3 cut the second bracket from 19% to 16%.
	rq.InDelta(0.19, BracketsFor("2023-24")[1].Rate, 1e-9)
	rq.InDelta(0.16, BracketsFor("2024-25")[1].Rate, 1e-9)
}
