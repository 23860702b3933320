package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brunosouza-justauto/crypto-portfolio/trade"
	log "github.com/sirupsen/logrus"
)

type defaultParser struct{}

func NewDefault() *defaultParser {
	return &defaultParser{}
}

func (p *defaultParser) ValidateHeader(contents []string) error {
	want := map[int]string{
		0: "Asset",
		1: "Exchange",
		2: "Market",
		3: "BuyDate",
		4: "BuyQuantity",
		5: "BuyUnitPrice",
		6: "BuyValue",
		7: "SellDate",
		8: "SellQuantity",
		9: "SellValue",
	}
	return headerMatches(want, contents)
}

func (p *defaultParser) ToTrade(contents []string) ([]*trade.Trade, error) {
	t := &trade.Trade{
		Asset:    strings.ToUpper(strings.TrimSpace(contents[0])),
		Exchange: strings.ToUpper(strings.TrimSpace(contents[1])),
		Market:   trade.NewMarketType(contents[2]),
	}
	var err error
	// fill up buy leg
	t.BuyDate, err = time.Parse(timeFmt, contents[3])
	if err != nil {
		log.Warningf("cannot parse buy date, skipping row: %v", err)
		return nil, nil
	}
	t.BuyQuantity, err = strconv.ParseFloat(contents[4], 64)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %v to buy quantity as float: %v", contents[4], err)
	}
	t.BuyUnitPrice, err = strconv.ParseFloat(contents[5], 64)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %v to buy unit price as float: %v", contents[5], err)
	}
	t.BuyValue, err = strconv.ParseFloat(contents[6], 64)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %v to buy value as float: %v", contents[6], err)
	}
	// fill up sell leg; a blank or unreadable sell date leaves the
	// position open
	if strings.TrimSpace(contents[7]) != "" {
		t.SellDate, err = time.Parse(timeFmt, contents[7])
		if err != nil {
			log.Warningf("cannot parse sell date, treating trade as open: %v", err)
			t.SellDate = time.Time{}
		}
	}
	if contents[8] != "" {
		t.SellQuantity, err = strconv.ParseFloat(contents[8], 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %v to sell quantity as float: %v", contents[8], err)
		}
	}
	if contents[9] != "" {
		t.SellValue, err = strconv.ParseFloat(contents[9], 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %v to sell value as float: %v", contents[9], err)
		}
	}
	return []*trade.Trade{t}, nil
}
