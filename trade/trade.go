// Package trade defines the closed-trade record every other package
// consumes. A Trade is one buy/sell round trip on an exchange; a trade
// with no sell leg is still open and is ignored by the tax engine.
package trade

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"
)

const timeFmt = "2006-01-02 15:04:05"

// MarketType is the enum storing the kind of market a trade was made on
type MarketType string

const (
	UNKNOWN_MARKET MarketType = ""
	SPOT           MarketType = "SPOT"
	PERPETUAL      MarketType = "PERPETUAL"
	PREMARKET      MarketType = "PREMARKET"
	CHAIN_TOKEN    MarketType = "CHAIN_TOKEN"
)

// NewMarketType returns a new market type enum
func NewMarketType(s string) MarketType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SPOT":
		return SPOT
	case "PERPETUAL", "PERP", "FUTURES":
		return PERPETUAL
	case "PREMARKET", "PRE-MARKET":
		return PREMARKET
	case "CHAIN_TOKEN", "CHAIN":
		return CHAIN_TOKEN
	}
	return UNKNOWN_MARKET
}

// Trade stores one round trip. Values are totals in USD; the tax engine
// converts them to the reporting currency with an FX rate.
type Trade struct {
	Asset        string     `csv:"Asset"`
	Exchange     string     `csv:"Exchange"`
	Market       MarketType `csv:"Market"`
	BuyDate      time.Time  `csv:"BuyDate"`
	BuyQuantity  float64    `csv:"BuyQuantity"`
	BuyUnitPrice float64    `csv:"BuyUnitPrice"`
	BuyValue     float64    `csv:"BuyValue"`
	// SellDate is the zero time while the position is open.
	SellDate     time.Time `csv:"SellDate"`
	SellQuantity float64   `csv:"SellQuantity"`
	SellValue    float64   `csv:"SellValue"`
}

// Closed reports whether the trade has a completed sell leg.
func (t *Trade) Closed() bool {
	return !t.SellDate.IsZero() && t.SellQuantity > 0
}

// CostValue returns the total acquisition value, falling back to
// unit price times quantity when the total was not recorded.
func (t *Trade) CostValue() float64 {
	if t.BuyValue != 0 {
		return t.BuyValue
	}
	return t.BuyUnitPrice * t.BuyQuantity
}

func (t *Trade) String() string {
	var buf bytes.Buffer
	io.WriteString(&buf, fmt.Sprintf("[%s,%s,%s] BUY %f @ %f (total %f)",
		t.Asset, t.Exchange, t.Market, t.BuyQuantity, t.BuyUnitPrice, t.BuyValue))
	io.WriteString(&buf, fmt.Sprintf(" on %s", t.BuyDate.Format(timeFmt)))
	if t.Closed() {
		io.WriteString(&buf, fmt.Sprintf(" ; SELL %f (total %f) on %s",
			t.SellQuantity, t.SellValue, t.SellDate.Format(timeFmt)))
	} else {
		io.WriteString(&buf, " ; OPEN")
	}
	return buf.String()
}

// Header returns the header for a CSV of Trades
func (t *Trade) Header() []string {
	return []string{
		"Asset",
		"Exchange",
		"Market",
		"BuyDate",
		"BuyQuantity",
		"BuyUnitPrice",
		"BuyValue",
		"SellDate",
		"SellQuantity",
		"SellValue",
	}
}

// MarshalCSV converts a trade to a slice of string, which can be marshalled to CSV
func (t *Trade) MarshalCSV() []string {
	sellDate := ""
	if !t.SellDate.IsZero() {
		sellDate = t.SellDate.Format(timeFmt)
	}
	return []string{
		t.Asset,
		t.Exchange,
		string(t.Market),
		t.BuyDate.Format(timeFmt),
		fmt.Sprintf("%f", t.BuyQuantity),
		fmt.Sprintf("%f", t.BuyUnitPrice),
		fmt.Sprintf("%f", t.BuyValue),
		sellDate,
		fmt.Sprintf("%f", t.SellQuantity),
		fmt.Sprintf("%f", t.SellValue),
	}
}

// Validate checks a trade before it is accepted into the store. A sell
// date earlier than the buy date is allowed here (exchange clock skew
// happens); the tax engine clamps the holding period at zero.
func (t *Trade) Validate() error {
	if t.Asset == "" {
		return fmt.Errorf("trade has empty asset: %s", t)
	}
	if t.BuyDate.IsZero() {
		return fmt.Errorf("trade has no buy date: %s", t)
	}
	if t.BuyQuantity < 0 || t.SellQuantity < 0 {
		return fmt.Errorf("trade has negative quantity: %s", t)
	}
	return nil
}
