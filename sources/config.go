package sources

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/brunosouza-justauto/crypto-portfolio/parser"
)

type sourceConfig struct {
	Parser    string   `json:"parser"`
	Exchange  string   `json:"exchange"`
	Directory string   `json:"directory"`
	Filenames []string `json:"filenames"`
}

type sourcesConfig struct {
	Sources []sourceConfig `json:"sources"`
}

// FromConfig reads a JSON config file and builds the sources it
// describes.
func FromConfig(path string) ([]*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read sources config: %v", err)
	}
	var cfg sourcesConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cannot unmarshal sources config: %v", err)
	}
	var res []*Source
	for _, c := range cfg.Sources {
		p, err := parserFromConfig(c)
		if err != nil {
			return nil, fmt.Errorf("cannot make a parser: %v", err)
		}
		res = append(res, New(p, c.Directory, c.Filenames))
	}
	return res, nil
}

func parserFromConfig(c sourceConfig) (parser.Parser, error) {
	switch strings.ToLower(c.Parser) {
	case "default":
		return parser.NewDefault(), nil
	case "binance":
		exchange := c.Exchange
		if exchange == "" {
			exchange = "binance"
		}
		return parser.NewBinance(exchange), nil
	case "koinly":
		if c.Exchange == "" {
			return nil, fmt.Errorf("koinly source needs an exchange name")
		}
		return parser.NewKoinly(c.Exchange), nil
	}
	return nil, fmt.Errorf("invalid parser type %q", c.Parser)
}
