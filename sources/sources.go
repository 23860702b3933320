// Package sources reads exchange export files, normalizes the trades
// they contain and hands them to the store.
package sources

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/brunosouza-justauto/crypto-portfolio/db"
	"github.com/brunosouza-justauto/crypto-portfolio/parser"
	"github.com/brunosouza-justauto/crypto-portfolio/trade"
	"golang.org/x/exp/maps"

	log "github.com/sirupsen/logrus"
)

type Source struct {
	parser        parser.Parser
	directoryName string
	filenames     []string
}

func New(p parser.Parser, directory string, fs []string) *Source {
	return &Source{parser: p, directoryName: directory, filenames: fs}
}

func (src *Source) files(rootDir string) ([]string, error) {
	res := make(map[string]bool)
	for _, f := range src.filenames {
		res[path.Join(rootDir, f)] = true
	}
	if src.directoryName == "" {
		return maps.Keys(res), nil
	}
	// walk the directory and get the names of files
	files, err := os.ReadDir(path.Join(rootDir, src.directoryName))
	if err != nil {
		return nil, fmt.Errorf("cannot read files in directory: %v", err)
	}
	for _, f := range files {
		name := path.Join(rootDir, src.directoryName, f.Name())
		if !strings.HasSuffix(f.Name(), ".csv") {
			log.Warningf("Directory has file not of CSV format, so skipping: %v", name)
			continue
		}
		res[name] = true
	}
	return maps.Keys(res), nil
}

func readTrades(sources []*Source, rootDir string) ([]*trade.Trade, error) {
	var all []*trade.Trade
	for _, src := range sources {
		files, err := src.files(rootDir)
		if err != nil {
			return nil, fmt.Errorf("cannot get files for source %v: %v", src, err)
		}
		// filenames are prefixed by rootdir
		for _, filename := range files {
			log.Infof("Reading file %s for parsing", filename)
			f, err := os.Open(filename)
			if err != nil {
				return nil, fmt.Errorf("unable to read input file: %v ", err)
			}
			defer f.Close()
			tt, err := parser.Parse(f, src.parser)
			if err != nil {
				return nil, fmt.Errorf("cannot parse trades: %v", err)
			}
			all = append(all, tt...)
		}
	}
	return dedupe(normalize(all)), nil
}

// normalize maps every asset through the registry so BTCUSDT,
// "bitcoin" and BTC land on one symbol.
func normalize(trades []*trade.Trade) []*trade.Trade {
	for _, t := range trades {
		t.Asset = db.CanonicalAsset(t.Asset)
	}
	return trades
}

// dedupe drops repeated trades, which show up whenever export date
// ranges overlap. The buy leg is the identity, so the closed version of
// a position beats an open copy no matter which file came first.
func dedupe(trades []*trade.Trade) []*trade.Trade {
	byKey := make(map[string]*trade.Trade)
	var order []string
	for _, t := range trades {
		key := fmt.Sprintf("%s|%s|%s|%f",
			t.Asset, t.Exchange, t.BuyDate.Format(time.RFC3339), t.BuyQuantity)
		existing, ok := byKey[key]
		if !ok {
			byKey[key] = t
			order = append(order, key)
			continue
		}
		if !existing.Closed() && t.Closed() {
			byKey[key] = t
			continue
		}
		log.Warningf("Duplicate trade dropped: %s", t)
	}
	res := make([]*trade.Trade, 0, len(order))
	for _, key := range order {
		res = append(res, byKey[key])
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].BuyDate.Before(res[j].BuyDate)
	})
	return res
}

// Trades reads every source under rootDir. The registry may learn new
// assets while normalizing, so the db is serialized on the way out.
func Trades(sources []*Source, rootDir string) ([]*trade.Trade, error) {
	defer db.SerializeDB(rootDir)
	trades, err := readTrades(sources, rootDir)
	if err != nil {
		return nil, fmt.Errorf("cannot read trades: %v", err)
	}
	return trades, err
}

// FlushTrades writes the merged canonical CSV to outputFile.
func FlushTrades(trades []*trade.Trade, outputFile string) error {
	merged, err := TradesToCSV(trades)
	if err != nil {
		return fmt.Errorf("cannot convert trades to csv: %v", err)
	}
	if err := os.MkdirAll(path.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("cannot create directories: %v", err)
	}
	if err := os.WriteFile(outputFile, []byte(merged), 0644); err != nil {
		return fmt.Errorf("cannot write csv file: %v", err)
	}
	return nil
}

// TradesToCSV dumps trades in the canonical format the default parser
// reads back.
func TradesToCSV(trades []*trade.Trade) (string, error) {
	sb := new(bytes.Buffer)
	w := csv.NewWriter(sb)
	if err := w.Write((&trade.Trade{}).Header()); err != nil {
		return "", fmt.Errorf("cannot write header: %v", err)
	}
	for _, t := range trades {
		if err := w.Write(t.MarshalCSV()); err != nil {
			return "", fmt.Errorf("cannot write trade: %v", err)
		}
	}
	w.Flush()
	return sb.String(), w.Error()
}
