package export

import (
	"strings"
	"testing"
	"time"

	"github.com/brunosouza-justauto/crypto-portfolio/cgt"
	"github.com/stretchr/testify/require"
)

func TestWorkbook(t *testing.T) {
	rq := require.New(t)
	events := []*cgt.Event{
		{
			Asset: "BTC", Exchange: "BINANCE",
			BuyDate:  time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			SellDate: time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC),
			CostBase: 1000, Proceeds: 1400, Gain: 400, HoldingDays: 244,
			DiscountedGain: 400,
		},
	}
	summary := cgt.Summarize(events, 0)
	result := cgt.CalculateTax(40000, summary.TaxableCapitalGain, "2024-25")
	assets := cgt.ByAsset(events)

	a := Workbook(events, summary, result, assets, "2024-25")
	rq.Equal("cgt-report-2024-25.csv", a.Filename)

	out, err := a.Bytes()
	rq.NoError(err)
	body := string(out)

	rq.Contains(body, "=== Events ===")
	rq.Contains(body, "=== Summary ===")
	rq.Contains(body, "=== Per-Asset ===")
	rq.Contains(body, "BTC")
	rq.Contains(body, "400.00")
	rq.Contains(body, "Income Tax 2024-25")
	rq.Contains(body, "MEDICARE LEVY")

	// Sections come in report order, with the tax split inside Summary.
	rq.Less(strings.Index(body, "=== Events ==="), strings.Index(body, "=== Summary ==="))
	rq.Less(strings.Index(body, "=== Summary ==="), strings.Index(body, "Income Tax 2024-25"))
	rq.Less(strings.Index(body, "Income Tax 2024-25"), strings.Index(body, "=== Per-Asset ==="))
}
