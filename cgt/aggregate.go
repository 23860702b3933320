package cgt

import (
	"math"
	"sort"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// MonthlyStat is one financial-year month's disposal activity. Gains and
// Losses are magnitudes; Net = Gains - Losses.
type MonthlyStat struct {
	Month  time.Month
	Gains  float64
	Losses float64
	Net    float64
	Count  int
}

// MonthlyBreakdown buckets events into the twelve months of the
// financial year, July first. Months with no disposals still appear.
func MonthlyBreakdown(events []*Event) []*MonthlyStat {
	stats := make([]*MonthlyStat, 12)
	for i := range stats {
		stats[i] = &MonthlyStat{Month: time.Month((int(time.July)-1+i)%12 + 1)}
	}
	for _, e := range events {
		idx := (int(e.SellDate.Month()) - int(time.July) + 12) % 12
		m := stats[idx]
		m.Count++
		if e.Gain > 0 {
			m.Gains += e.Gain
		} else {
			m.Losses += -e.Gain
		}
		m.Net = m.Gains - m.Losses
	}
	return stats
}

// AssetStat is one asset's activity across a year's disposals.
type AssetStat struct {
	Asset          string
	Gains          float64
	Losses         float64
	Net            float64
	Trades         int
	AvgHoldingDays int
}

// ByAsset groups events per asset, ordered by net result descending and
// asset name ascending between equals.
func ByAsset(events []*Event) []*AssetStat {
	byAsset := make(map[string][]*Event)
	for _, e := range events {
		byAsset[e.Asset] = append(byAsset[e.Asset], e)
	}
	assets := maps.Keys(byAsset)
	slices.Sort(assets)

	stats := make([]*AssetStat, 0, len(assets))
	for _, asset := range assets {
		s := &AssetStat{Asset: asset}
		var days int
		for _, e := range byAsset[asset] {
			s.Trades++
			days += e.HoldingDays
			if e.Gain > 0 {
				s.Gains += e.Gain
			} else {
				s.Losses += -e.Gain
			}
		}
		s.Net = s.Gains - s.Losses
		s.AvgHoldingDays = int(math.Round(float64(days) / float64(s.Trades)))
		stats = append(stats, s)
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Net > stats[j].Net
	})
	return stats
}
