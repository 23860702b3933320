package cgt

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// medicareLevyRate is the flat levy applied to the combined income.
const medicareLevyRate = 0.02

var moneyPrinter = message.NewPrinter(language.English)

// BracketBreakdown is one row of the per-bracket split. Other income
// claims a bracket's room before the crypto gain does, so the crypto
// stream pays the marginal rates stacked on top.
type BracketBreakdown struct {
	Range        string
	Rate         float64
	OtherAmount  float64
	CryptoAmount float64
	OtherTax     float64
	CryptoTax    float64
}

// TaxResult is the income tax position for one financial year.
// EffectiveCryptoRate is a fraction (0.3 means 30%).
type TaxResult struct {
	TaxOnOtherIncome    float64
	TaxOnCryptoGain     float64
	MedicareLevy        float64
	TotalTax            float64
	EffectiveCryptoRate float64
	Breakdown           []BracketBreakdown
}

// CalculateTax computes income tax for other (non-crypto) income plus a
// crypto taxable gain under the year's bracket table. The crypto tax is
// the marginal difference between taxing both streams and taxing other
// income alone. A negative crypto gain contributes no income and no
// deduction.
func CalculateTax(otherIncome, cryptoGain float64, label string) *TaxResult {
	if otherIncome < 0 {
		otherIncome = 0
	}
	crypto := math.Max(0, cryptoGain)
	brackets := BracketsFor(label)
	totalIncome := otherIncome + crypto

	res := &TaxResult{}
	taxOnTotal := progressiveTax(totalIncome, brackets)
	res.TaxOnOtherIncome = progressiveTax(otherIncome, brackets)
	res.TaxOnCryptoGain = taxOnTotal - res.TaxOnOtherIncome
	res.MedicareLevy = totalIncome * medicareLevyRate
	res.TotalTax = taxOnTotal + res.MedicareLevy
	if cryptoGain > 0 {
		res.EffectiveCryptoRate = res.TaxOnCryptoGain / cryptoGain
	}
	res.Breakdown = breakdown(otherIncome, crypto, brackets)
	return res
}

// progressiveTax walks the brackets ascending, taxing as much of the
// remaining income as each bracket holds.
func progressiveTax(income float64, brackets []TaxBracket) float64 {
	var tax float64
	remaining := income
	for _, b := range brackets {
		if remaining <= 0 {
			break
		}
		taxable := remaining
		if w, bounded := b.width(); bounded {
			taxable = math.Min(remaining, w)
		}
		tax += taxable * b.Rate
		remaining -= taxable
	}
	return tax
}

// breakdown allocates both streams into the brackets, other income
// first. Brackets where neither stream lands produce no row.
func breakdown(otherIncome, cryptoGain float64, brackets []TaxBracket) []BracketBreakdown {
	var rows []BracketBreakdown
	otherLeft, cryptoLeft := otherIncome, cryptoGain
	for _, b := range brackets {
		if otherLeft <= 0 && cryptoLeft <= 0 {
			break
		}
		room := otherLeft + cryptoLeft
		if w, bounded := b.width(); bounded {
			room = w
		}
		other := math.Min(otherLeft, room)
		room -= other
		crypto := math.Min(cryptoLeft, room)
		otherLeft -= other
		cryptoLeft -= crypto
		if other == 0 && crypto == 0 {
			continue
		}
		rows = append(rows, BracketBreakdown{
			Range:        b.rangeLabel(),
			Rate:         b.Rate,
			OtherAmount:  other,
			CryptoAmount: crypto,
			OtherTax:     other * b.Rate,
			CryptoTax:    crypto * b.Rate,
		})
	}
	return rows
}

func (b TaxBracket) rangeLabel() string {
	if b.Max == 0 {
		return moneyPrinter.Sprintf("$%.0f+", b.Min)
	}
	return moneyPrinter.Sprintf("$%.0f - $%.0f", b.Min, b.Max)
}
