package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brunosouza-justauto/crypto-portfolio/trade"
)

type koinlyParser struct {
	exchange string
}

// NewKoinly parses the Koinly capital-gains report, one disposal per
// row with cost basis and proceeds already totalled.
func NewKoinly(exchange string) *koinlyParser {
	return &koinlyParser{exchange: strings.ToUpper(exchange)}
}

func (p *koinlyParser) ValidateHeader(contents []string) error {
	want := map[int]string{
		0: "Date Acquired",
		1: "Date Sold",
		2: "Asset",
		3: "Amount",
		4: "Cost Basis",
		5: "Proceeds",
		6: "Gain",
	}
	return headerMatches(want, contents)
}

func (p *koinlyParser) ToTrade(contents []string) ([]*trade.Trade, error) {
	t := &trade.Trade{
		Asset:    strings.ToUpper(strings.TrimSpace(contents[2])),
		Exchange: p.exchange,
		Market:   trade.SPOT,
	}
	var err error
	t.BuyDate, err = time.Parse(timeFmt, contents[0])
	if err != nil {
		return nil, fmt.Errorf("cannot parse date acquired: %v", err)
	}
	t.SellDate, err = time.Parse(timeFmt, contents[1])
	if err != nil {
		return nil, fmt.Errorf("cannot parse date sold: %v", err)
	}
	t.BuyQuantity, err = strconv.ParseFloat(contents[3], 64)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %v to amount as float: %v", contents[3], err)
	}
	t.BuyValue, err = strconv.ParseFloat(contents[4], 64)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %v to cost basis as float: %v", contents[4], err)
	}
	t.SellValue, err = strconv.ParseFloat(contents[5], 64)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %v to proceeds as float: %v", contents[5], err)
	}
	if t.BuyQuantity > 0 {
		t.BuyUnitPrice = t.BuyValue / t.BuyQuantity
	}
	t.SellQuantity = t.BuyQuantity
	return []*trade.Trade{t}, nil
}
