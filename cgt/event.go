// Package cgt computes Australian capital gains tax over closed crypto
// trades: event derivation, loss offsets and the long-term discount,
// progressive income tax with the crypto gain stacked on other income,
// wash sale detection, and the monthly and per-asset rollups the reports
// are built from. Everything here is a pure transformation of its
// inputs; I/O belongs to the callers.
package cgt

import (
	"math"
	"sort"
	"time"

	"github.com/brunosouza-justauto/crypto-portfolio/trade"
	log "github.com/sirupsen/logrus"
)

const (
	// longTermDays is the holding period a disposal must exceed
	// (strictly) to qualify for the CGT discount.
	longTermDays = 365
	cgtDiscount  = 0.5
)

// Event is one taxable disposal derived from a closed trade. Amounts are
// in the reporting currency.
type Event struct {
	Asset            string
	Exchange         string
	BuyDate          time.Time
	SellDate         time.Time
	HoldingDays      int
	CostBase         float64
	Proceeds         float64
	Gain             float64
	LongTerm         bool
	DiscountEligible bool
	DiscountedGain   float64
}

// NewEvent derives the CGT event for a closed trade. rate converts the
// trade's USD values to the reporting currency; anything non-positive
// means no conversion.
func NewEvent(t *trade.Trade, rate float64) *Event {
	if rate <= 0 {
		rate = 1.0
	}
	days := int(math.Ceil(t.SellDate.Sub(t.BuyDate).Hours() / 24))
	if days < 0 {
		days = 0
	}
	e := &Event{
		Asset:       t.Asset,
		Exchange:    t.Exchange,
		BuyDate:     t.BuyDate,
		SellDate:    t.SellDate,
		HoldingDays: days,
		CostBase:    math.Abs(t.CostValue()) * rate,
		Proceeds:    math.Abs(t.SellValue) * rate,
	}
	e.Gain = e.Proceeds - e.CostBase
	e.LongTerm = days > longTermDays
	e.DiscountEligible = e.LongTerm && e.Gain > 0
	e.DiscountedGain = e.Gain
	if e.DiscountEligible {
		e.DiscountedGain = e.Gain * cgtDiscount
	}
	return e
}

// EventsForYear derives an event for every closed trade disposed of
// within the financial year, sorted ascending by sell date. A label that
// does not resolve yields an empty list rather than an error.
func EventsForYear(trades []*trade.Trade, label string, rate float64) []*Event {
	ty, err := ParseYear(label)
	if err != nil {
		log.Warningf("cannot resolve financial year, deriving no events: %v", err)
		return nil
	}
	var events []*Event
	for _, t := range trades {
		if !t.Closed() || !ty.Contains(t.SellDate) {
			continue
		}
		events = append(events, NewEvent(t, rate))
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].SellDate.Before(events[j].SellDate)
	})
	return events
}
