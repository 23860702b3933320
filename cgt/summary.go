package cgt

import "math"

// TaxSummary is a financial year's aggregate CGT position. Gains and
// losses are non-negative magnitudes; at most one of TaxableCapitalGain
// and CarryForwardLoss is non-zero.
type TaxSummary struct {
	TotalGains         float64
	TotalLosses        float64
	NetCapitalGain     float64
	ShortTermGains     float64
	LongTermGains      float64
	DiscountAmount     float64
	TaxableCapitalGain float64
	CarryForwardLoss   float64
	ShortTermCount     int
	LongTermCount      int
}

// Summarize folds a year's events and a carried-forward loss into the
// taxable position. Losses and the carry-in offset short-term gains
// before long-term ones; the 50% discount applies to the long-term gain
// left after the offset.
func Summarize(events []*Event, carryForwardLoss float64) *TaxSummary {
	if carryForwardLoss < 0 {
		carryForwardLoss = 0
	}
	s := &TaxSummary{}
	for _, e := range events {
		if e.LongTerm {
			s.LongTermCount++
		} else {
			s.ShortTermCount++
		}
		switch {
		case e.Gain > 0 && e.LongTerm:
			s.LongTermGains += e.Gain
		case e.Gain > 0:
			s.ShortTermGains += e.Gain
		case e.Gain < 0:
			s.TotalLosses += -e.Gain
		}
	}
	s.TotalGains = s.ShortTermGains + s.LongTermGains
	s.NetCapitalGain = s.TotalGains - s.TotalLosses

	net := s.TotalGains - s.TotalLosses - carryForwardLoss
	if net <= 0 {
		// Nothing taxable; the shortfall carries forward. An exact
		// zero net is neither a gain nor a carried loss.
		s.CarryForwardLoss = math.Abs(net)
		return s
	}
	remaining := s.TotalLosses + carryForwardLoss
	offsetShort := math.Min(remaining, s.ShortTermGains)
	remaining -= offsetShort
	offsetLong := math.Min(remaining, s.LongTermGains)

	residualShort := s.ShortTermGains - offsetShort
	residualLong := s.LongTermGains - offsetLong
	s.DiscountAmount = residualLong * cgtDiscount
	s.TaxableCapitalGain = residualShort + (residualLong - s.DiscountAmount)
	return s
}
