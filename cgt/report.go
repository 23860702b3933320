package cgt

import (
	"fmt"
	"time"

	"github.com/brunosouza-justauto/crypto-portfolio/trade"
	"github.com/jedib0t/go-pretty/v6/table"
	log "github.com/sirupsen/logrus"
)

var tf = func(val interface{}) string {
	if f, ok := val.(float64); ok {
		return fmt.Sprintf("%.2f", f)
	}
	return fmt.Sprint(val)
}

func term(e *Event) string {
	if e.LongTerm {
		return "long"
	}
	return "short"
}

// EventsTable lists a year's disposals with footer totals.
func EventsTable(events []*Event, label string) table.Writer {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("CGT Events %s", label))
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{
		"Asset", "Exchange", "Buy Date", "Sell Date", "Days",
		"Cost Base", "Proceeds", "Gain", "Discounted Gain", "Term",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, Transformer: tf, TransformerFooter: tf},
		{Number: 7, Transformer: tf, TransformerFooter: tf},
		{Number: 8, Transformer: tf, TransformerFooter: tf},
		{Number: 9, Transformer: tf, TransformerFooter: tf},
	})
	var cost, proceeds, gain, discounted float64
	for _, e := range events {
		t.AppendRow(table.Row{
			e.Asset, e.Exchange,
			e.BuyDate.Format("2006-01-02"), e.SellDate.Format("2006-01-02"),
			e.HoldingDays, e.CostBase, e.Proceeds, e.Gain, e.DiscountedGain,
			term(e),
		})
		cost += e.CostBase
		proceeds += e.Proceeds
		gain += e.Gain
		discounted += e.DiscountedGain
	}
	t.AppendFooter(table.Row{"TOTAL", "", "", "", "", cost, proceeds, gain, discounted, ""})
	return t
}

// SummaryTable renders the year's aggregate CGT position.
func SummaryTable(s *TaxSummary, label string) table.Writer {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("CGT Summary %s", label))
	t.SetStyle(table.StyleLight)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Transformer: tf},
	})
	t.AppendRows([]table.Row{
		{"Total capital gains", s.TotalGains},
		{"Total capital losses", s.TotalLosses},
		{"Net capital gain", s.NetCapitalGain},
		{"Short term gains", s.ShortTermGains},
		{"Long term gains", s.LongTermGains},
		{"CGT discount applied", s.DiscountAmount},
		{"Taxable capital gain", s.TaxableCapitalGain},
		{"Loss carried forward", s.CarryForwardLoss},
		{"Short term disposals", s.ShortTermCount},
		{"Long term disposals", s.LongTermCount},
	})
	return t
}

// TaxTable renders the per-bracket split of both income streams with
// the levy and totals in the footer.
func TaxTable(r *TaxResult, label string) table.Writer {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Income Tax %s", label))
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{
		"Bracket", "Rate", "Other Income", "Crypto Gain", "Tax (Other)", "Tax (Crypto)",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Transformer: tf, TransformerFooter: tf},
		{Number: 4, Transformer: tf, TransformerFooter: tf},
		{Number: 5, Transformer: tf, TransformerFooter: tf},
		{Number: 6, Transformer: tf, TransformerFooter: tf},
	})
	var other, crypto float64
	for _, row := range r.Breakdown {
		t.AppendRow(table.Row{
			row.Range, fmt.Sprintf("%.1f%%", row.Rate*100),
			row.OtherAmount, row.CryptoAmount, row.OtherTax, row.CryptoTax,
		})
		other += row.OtherAmount
		crypto += row.CryptoAmount
	}
	t.AppendFooter(table.Row{"TOTAL", "", other, crypto, r.TaxOnOtherIncome, r.TaxOnCryptoGain})
	t.AppendFooter(table.Row{"MEDICARE LEVY", "", "", "", "", r.MedicareLevy})
	t.AppendFooter(table.Row{"TOTAL TAX", "", "", "", "", r.TotalTax})
	t.AppendFooter(table.Row{"EFFECTIVE CRYPTO RATE", fmt.Sprintf("%.1f%%", r.EffectiveCryptoRate*100), "", "", "", ""})
	return t
}

// MonthlyTable renders the July-to-June activity buckets.
func MonthlyTable(stats []*MonthlyStat, label string) table.Writer {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Monthly Breakdown %s", label))
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Month", "Gains", "Losses", "Net", "Disposals"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Transformer: tf, TransformerFooter: tf},
		{Number: 3, Transformer: tf, TransformerFooter: tf},
		{Number: 4, Transformer: tf, TransformerFooter: tf},
	})
	var gains, losses float64
	var count int
	for _, m := range stats {
		t.AppendRow(table.Row{m.Month.String(), m.Gains, m.Losses, m.Net, m.Count})
		gains += m.Gains
		losses += m.Losses
		count += m.Count
	}
	t.AppendFooter(table.Row{"TOTAL", gains, losses, gains - losses, count})
	return t
}

// AssetsTable renders per-asset results, best performer first.
func AssetsTable(stats []*AssetStat, label string) table.Writer {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Per-Asset Breakdown %s", label))
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Asset", "Gains", "Losses", "Net", "Disposals", "Avg Days Held"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Transformer: tf, TransformerFooter: tf},
		{Number: 3, Transformer: tf, TransformerFooter: tf},
		{Number: 4, Transformer: tf, TransformerFooter: tf},
	})
	var gains, losses float64
	var trades int
	for _, s := range stats {
		t.AppendRow(table.Row{s.Asset, s.Gains, s.Losses, s.Net, s.Trades, s.AvgHoldingDays})
		gains += s.Gains
		losses += s.Losses
		trades += s.Trades
	}
	t.AppendFooter(table.Row{"TOTAL", gains, losses, gains - losses, trades, ""})
	return t
}

// WashSalesTable lists loss disposals with a repurchase inside the
// window.
func WashSalesTable(warnings []*WashSaleWarning, label string) table.Writer {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Wash Sale Warnings %s", label))
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Asset", "Sold", "Loss", "Rebought", "Days Between"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Transformer: tf},
	})
	for _, w := range warnings {
		t.AppendRow(table.Row{
			w.Asset, w.SellDate.Format("2006-01-02"), w.LossAmount,
			w.RebuyDate.Format("2006-01-02"), w.DaysBetween,
		})
	}
	return t
}

// PositionsTable prints open positions marked to the prices priceFn
// returns. A price that cannot be fetched shows the position at zero
// value rather than dropping the row.
func PositionsTable(open []*trade.Trade, priceFn func(asset string) (float64, error)) table.Writer {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Open Positions @ %s", time.Now().Format("2006-01-02 15:04:05")))
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{
		"Asset", "Exchange", "Market", "Buy Date", "Quantity",
		"Avg Price", "Cost", "Price", "Value", "PnL", "PnL %",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Transformer: tf},
		{Number: 6, Transformer: tf},
		{Number: 7, Transformer: tf, TransformerFooter: tf},
		{Number: 8, Transformer: tf},
		{Number: 9, Transformer: tf, TransformerFooter: tf},
		{Number: 10, Transformer: tf, TransformerFooter: tf},
		{Number: 11, Transformer: tf, TransformerFooter: tf},
	})
	t.SortBy([]table.SortBy{
		{Number: 1},
	})
	var totalCost, totalValue float64
	for _, tr := range open {
		price, err := priceFn(tr.Asset)
		if err != nil {
			log.Errorf("cannot price %s, using 0: %v", tr.Asset, err)
			price = 0
		}
		cost := tr.CostValue()
		value := price * tr.BuyQuantity
		pnl := value - cost
		var pnlPct float64
		if cost != 0 {
			pnlPct = pnl / cost * 100
		}
		t.AppendRow(table.Row{
			tr.Asset, tr.Exchange, string(tr.Market), tr.BuyDate.Format("2006-01-02"),
			tr.BuyQuantity, tr.BuyUnitPrice, cost, price, value, pnl, pnlPct,
		})
		totalCost += cost
		totalValue += value
	}
	var totalPct float64
	if totalCost != 0 {
		totalPct = (totalValue - totalCost) / totalCost * 100
	}
	t.AppendFooter(table.Row{
		"TOTAL", "", "", "", "", "",
		totalCost, "", totalValue, totalValue - totalCost, totalPct,
	})
	return t
}
