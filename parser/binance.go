package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brunosouza-justauto/crypto-portfolio/trade"
)

// quoteSuffixes are the quote currencies stripped off a pair symbol to
// recover the base asset (BTCUSDT -> BTC).
var quoteSuffixes = []string{"USDT", "USDC", "BUSD", "AUD", "USD"}

func assetFromSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, suffix := range quoteSuffixes {
		if base, found := strings.CutSuffix(symbol, suffix); found && base != "" {
			return base
		}
	}
	return symbol
}

type binanceParser struct {
	exchange string
}

// NewBinance parses the Binance futures position-history export, where
// one row is a full round trip on a perpetual contract.
func NewBinance(exchange string) *binanceParser {
	return &binanceParser{exchange: strings.ToUpper(exchange)}
}

func (p *binanceParser) ValidateHeader(contents []string) error {
	want := map[int]string{
		0: "Symbol",
		1: "Open Time",
		2: "Close Time",
		3: "Entry Price",
		4: "Avg Close Price",
		5: "Closed Vol",
		6: "Closing PNL",
	}
	return headerMatches(want, contents)
}

func (p *binanceParser) ToTrade(contents []string) ([]*trade.Trade, error) {
	t := &trade.Trade{
		Asset:    assetFromSymbol(contents[0]),
		Exchange: p.exchange,
		Market:   trade.PERPETUAL,
	}
	var err error
	t.BuyDate, err = time.Parse(timeFmt, contents[1])
	if err != nil {
		return nil, fmt.Errorf("cannot parse open time: %v", err)
	}
	t.SellDate, err = time.Parse(timeFmt, contents[2])
	if err != nil {
		return nil, fmt.Errorf("cannot parse close time: %v", err)
	}
	t.BuyUnitPrice, err = strconv.ParseFloat(contents[3], 64)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %v to entry price as float: %v", contents[3], err)
	}
	t.BuyQuantity, err = strconv.ParseFloat(contents[5], 64)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %v to closed volume as float: %v", contents[5], err)
	}
	pnl, err := strconv.ParseFloat(contents[6], 64)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %v to closing pnl as float: %v", contents[6], err)
	}
	// Closing PNL nets out fees; avg close price does not.
	t.BuyValue = t.BuyUnitPrice * t.BuyQuantity
	t.SellQuantity = t.BuyQuantity
	t.SellValue = t.BuyValue + pnl
	return []*trade.Trade{t}, nil
}
