// Package parser converts exchange export files into trades. Each
// exchange ships its own CSV layout, so each gets its own parser.
package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/brunosouza-justauto/crypto-portfolio/trade"
)

const timeFmt = "2006-01-02 15:04:05"

// Parser is the interface to parse rows of one export format into
// trades. A parser may return no trades for a row it chooses to skip.
type Parser interface {
	ValidateHeader(contents []string) error
	ToTrade(contents []string) ([]*trade.Trade, error)
}

func headerMatches(want map[int]string, contents []string) error {
	for idx, name := range want {
		if idx >= len(contents) {
			return fmt.Errorf("not many fields in header, want %q at index %d, got %v", name, idx, contents)
		}
		if name != contents[idx] {
			return fmt.Errorf("mismatch field name in header, want %q at index %d, got %q", name, idx, contents[idx])
		}
	}
	return nil
}

// Parse parses a file into trades
func Parse(in io.Reader, parser Parser) ([]*trade.Trade, error) {
	f := csv.NewReader(in)
	f.TrimLeadingSpace = true
	header, err := f.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read header: %v", err)
	}
	if err := parser.ValidateHeader(header); err != nil {
		return nil, fmt.Errorf("cannot validate header: %v", err)
	}
	var res []*trade.Trade
	for {
		contents, err := f.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("cannot read row: %v", err)
		}
		tt, err := parser.ToTrade(contents)
		if err != nil {
			return nil, fmt.Errorf("cannot convert to a trade: %v", err)
		}
		for _, t := range tt {
			if err := t.Validate(); err != nil {
				return nil, fmt.Errorf("cannot validate trade: %v", err)
			}
			res = append(res, t)
		}
	}
	return res, nil
}
