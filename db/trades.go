package db

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"
	"time"

	"github.com/brunosouza-justauto/crypto-portfolio/trade"
	log "github.com/sirupsen/logrus"
)

const tradesJSONFilename = "outputs/trades_db.json"

// trades stores every known trade keyed by its identity. The key pins
// the buy leg, so closing an open position is an upsert of the same key.
var trades map[string]*trade.Trade

func tradeKey(t *trade.Trade) string {
	return fmt.Sprintf("%s|%s|%s|%f", t.Asset, t.Exchange, t.BuyDate.Format(time.RFC3339), t.BuyQuantity)
}

func initTrades(rootDir string) {
	trades = make(map[string]*trade.Trade)
	data, err := os.ReadFile(path.Join(rootDir, tradesJSONFilename))
	if err != nil {
		log.Errorf("Cannot read file for trades: %v", err)
		return
	}
	err = json.Unmarshal(data, &trades)
	if err != nil {
		log.Errorf("Cannot unmarshal to struct: %v", err)
		return
	}
}

func serializeTrades(rootDir string) error {
	data, err := json.Marshal(trades)
	if err != nil {
		return fmt.Errorf("cannot marshal json: %v", err)
	}
	err = os.WriteFile(path.Join(rootDir, tradesJSONFilename), data, 0666)
	if err != nil {
		return fmt.Errorf("cannot write json file to disk: %v", err)
	}
	return nil
}

// StoreTrade inserts a trade, rejecting one whose buy leg is already
// known.
func StoreTrade(t *trade.Trade) error {
	key := tradeKey(t)
	if _, ok := trades[key]; ok {
		return fmt.Errorf("trade already stored: %s", t)
	}
	trades[key] = t
	return nil
}

// UpsertTrade inserts or replaces a trade. It reports whether an
// existing entry was replaced, which is how an open position picks up
// its sell leg.
func UpsertTrade(t *trade.Trade) bool {
	key := tradeKey(t)
	_, replaced := trades[key]
	trades[key] = t
	return replaced
}

// AllTrades returns every stored trade ordered by buy date, with asset
// breaking ties.
func AllTrades() []*trade.Trade {
	res := make([]*trade.Trade, 0, len(trades))
	for _, t := range trades {
		res = append(res, t)
	}
	sort.SliceStable(res, func(i, j int) bool {
		if !res[i].BuyDate.Equal(res[j].BuyDate) {
			return res[i].BuyDate.Before(res[j].BuyDate)
		}
		return res[i].Asset < res[j].Asset
	})
	return res
}

// TradesForAsset returns the stored trades for one asset, ordered by
// buy date.
func TradesForAsset(asset string) []*trade.Trade {
	var res []*trade.Trade
	for _, t := range AllTrades() {
		if t.Asset == asset {
			res = append(res, t)
		}
	}
	return res
}
