package cgt

import (
	"math"
	"sort"
	"time"

	"github.com/brunosouza-justauto/crypto-portfolio/trade"
)

// washSaleWindow is how long after a disposal a repurchase of the same
// asset is flagged, inclusive of the final day.
const washSaleWindow = 30 * 24 * time.Hour

// WashSaleWarning flags a loss disposal followed by a repurchase of the
// same asset within the window. Advisory only; nothing in the tax
// figures changes because of it.
type WashSaleWarning struct {
	Asset       string
	SellDate    time.Time
	LossAmount  float64
	RebuyDate   time.Time
	DaysBetween int
}

// DetectWashSales pairs each loss event with the earliest repurchase of
// the same asset inside the window. The repurchase must be strictly
// after the sell date; one warning per loss.
func DetectWashSales(events []*Event, trades []*trade.Trade) []*WashSaleWarning {
	sorted := make([]*trade.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BuyDate.Before(sorted[j].BuyDate)
	})

	var warnings []*WashSaleWarning
	for _, e := range events {
		if e.Gain >= 0 {
			continue
		}
		for _, t := range sorted {
			if t.Asset != e.Asset {
				continue
			}
			diff := t.BuyDate.Sub(e.SellDate)
			if diff <= 0 || diff > washSaleWindow {
				continue
			}
			warnings = append(warnings, &WashSaleWarning{
				Asset:       e.Asset,
				SellDate:    e.SellDate,
				LossAmount:  math.Abs(e.Gain),
				RebuyDate:   t.BuyDate,
				DaysBetween: int(math.Ceil(diff.Hours() / 24)),
			})
			break
		}
	}
	return warnings
}
