package sources

import (
	"os"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/brunosouza-justauto/crypto-portfolio/config"
	"github.com/brunosouza-justauto/crypto-portfolio/db"
	"github.com/brunosouza-justauto/crypto-portfolio/parser"
	"github.com/brunosouza-justauto/crypto-portfolio/trade"
	"github.com/stretchr/testify/require"
)

const exportCSV = `Asset,Exchange,Market,BuyDate,BuyQuantity,BuyUnitPrice,BuyValue,SellDate,SellQuantity,SellValue
btcusdt,BINANCE,SPOT,2024-01-10 09:30:00,0.5,42000,21000,2024-03-01 10:00:00,0.5,25000
ETH,KRAKEN,SPOT,2024-02-01 00:00:00,2,2500,5000,,,
`

// The same BTC position again, closed: overlapping exports happen when
// date ranges overlap between downloads.
const laterExportCSV = `Asset,Exchange,Market,BuyDate,BuyQuantity,BuyUnitPrice,BuyValue,SellDate,SellQuantity,SellValue
BTC,BINANCE,SPOT,2024-01-10 09:30:00,0.5,42000,21000,2024-03-01 10:00:00,0.5,25000
ETH,KRAKEN,SPOT,2024-02-01 00:00:00,2,2500,5000,2024-04-01 00:00:00,2,5600
`

func setupRoot(t *testing.T, files map[string]string) string {
	t.Helper()
	rq := require.New(t)
	root := t.TempDir()
	rq.NoError(os.MkdirAll(path.Join(root, "outputs"), 0755))
	rq.NoError(os.MkdirAll(path.Join(root, "exports"), 0755))
	for name, content := range files {
		rq.NoError(os.WriteFile(path.Join(root, name), []byte(content), 0644))
	}
	db.InitDB(root)
	config.SetMode(config.SERVER_MODE)
	t.Cleanup(func() { config.SetMode(config.INTERACTIVE_MODE) })
	return root
}

func TestTradesMergesAndDedupes(t *testing.T) {
	rq := require.New(t)
	root := setupRoot(t, map[string]string{
		"exports/jan.csv":   exportCSV,
		"exports/apr.csv":   laterExportCSV,
		"exports/notes.txt": "not a csv",
	})

	srcs := []*Source{New(parser.NewDefault(), "exports", nil)}
	trades, err := Trades(srcs, root)
	rq.NoError(err)
	rq.Len(trades, 2)

	rq.Equal("BTC", trades[0].Asset, "pair symbol normalized through the registry")
	rq.True(trades[0].Closed())

	rq.Equal("ETH", trades[1].Asset)
	rq.True(trades[1].Closed(), "closed copy beats the open one regardless of file order")
	rq.InDelta(5600.0, trades[1].SellValue, 1e-9)
}

func TestTradesExplicitFilenames(t *testing.T) {
	rq := require.New(t)
	root := setupRoot(t, map[string]string{"only.csv": exportCSV})

	srcs := []*Source{New(parser.NewDefault(), "", []string{"only.csv"})}
	trades, err := Trades(srcs, root)
	rq.NoError(err)
	rq.Len(trades, 2)

	_, err = Trades([]*Source{New(parser.NewDefault(), "missing-dir", nil)}, root)
	rq.Error(err)
}

func TestFlushTradesRoundtrip(t *testing.T) {
	rq := require.New(t)
	root := setupRoot(t, map[string]string{"only.csv": exportCSV})

	srcs := []*Source{New(parser.NewDefault(), "", []string{"only.csv"})}
	trades, err := Trades(srcs, root)
	rq.NoError(err)

	out := path.Join(root, "outputs", "transactions", "merged.csv")
	rq.NoError(FlushTrades(trades, out))

	f, err := os.Open(out)
	rq.NoError(err)
	defer f.Close()
	again, err := parser.Parse(f, parser.NewDefault())
	rq.NoError(err)
	rq.Len(again, len(trades))
	for i := range again {
		rq.Equal(trades[i].Asset, again[i].Asset)
		rq.Equal(trades[i].Closed(), again[i].Closed())
		rq.InDelta(trades[i].BuyValue, again[i].BuyValue, 1e-6)
		rq.True(trades[i].BuyDate.Equal(again[i].BuyDate))
	}
}

func TestTradesToCSVEmpty(t *testing.T) {
	rq := require.New(t)
	out, err := TradesToCSV(nil)
	rq.NoError(err)
	rq.Equal(1, strings.Count(strings.TrimSpace(out), "\n")+1, "header only")
	rq.Contains(out, "Asset,Exchange,Market")
}

func TestFromConfig(t *testing.T) {
	rq := require.New(t)
	root := t.TempDir()
	cfgPath := path.Join(root, "sources.json")
	cfg := `{
  "sources": [
    {"parser": "default", "directory": "exports"},
    {"parser": "binance", "exchange": "binance-futures", "filenames": ["fut.csv"]},
    {"parser": "koinly", "exchange": "coinspot", "directory": "koinly"}
  ]
}`
	rq.NoError(os.WriteFile(cfgPath, []byte(cfg), 0644))

	srcs, err := FromConfig(cfgPath)
	rq.NoError(err)
	rq.Len(srcs, 3)
	rq.Equal("exports", srcs[0].directoryName)
	rq.Equal([]string{"fut.csv"}, srcs[1].filenames)

	_, err = FromConfig(path.Join(root, "nope.json"))
	rq.Error(err)

	bad := `{"sources": [{"parser": "etoro"}]}`
	rq.NoError(os.WriteFile(cfgPath, []byte(bad), 0644))
	_, err = FromConfig(cfgPath)
	rq.Error(err)
	rq.Contains(err.Error(), "invalid parser type")

	missingExchange := `{"sources": [{"parser": "koinly"}]}`
	rq.NoError(os.WriteFile(cfgPath, []byte(missingExchange), 0644))
	_, err = FromConfig(cfgPath)
	rq.Error(err)
}

func TestDedupeKeepsDistinctLots(t *testing.T) {
	rq := require.New(t)
	buy := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	lot := func(qty float64) *trade.Trade {
		return &trade.Trade{Asset: "BTC", Exchange: "BINANCE", BuyDate: buy, BuyQuantity: qty}
	}
	res := dedupe([]*trade.Trade{lot(0.5), lot(0.25), lot(0.5)})
	rq.Len(res, 2, "same instant, different quantity is a different lot")
}
