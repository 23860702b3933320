package server

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/brunosouza-justauto/crypto-portfolio/cgt"
	"github.com/brunosouza-justauto/crypto-portfolio/db"
	"github.com/brunosouza-justauto/crypto-portfolio/export"
	"github.com/brunosouza-justauto/crypto-portfolio/rates"
	"github.com/brunosouza-justauto/crypto-portfolio/sources"
	"github.com/brunosouza-justauto/crypto-portfolio/trade"

	log "github.com/sirupsen/logrus"
)

const (
	timeFmt        = "2006-01-02 15:04:05"
	outputTrades   = "outputs/merged_trades.csv"
	reportFilename = "outputs/report.txt"
	healthzAsset   = "BTC"
)

type Authorization struct {
	username, password string
}

func NewAuthorization(u, p string) *Authorization {
	return &Authorization{
		username: u,
		password: p,
	}
}

type Config struct {
	RootDir string
	Sources []*sources.Source
	Auth    *Authorization
	Static  *StaticLoader
	Market  *rates.Service
	// FYLabel is the financial year tax queries default to. OtherIncome
	// and CarryForwardLoss seed its tax calculation, Rate converts USD
	// trade values to AUD.
	FYLabel          string
	OtherIncome      float64
	CarryForwardLoss float64
	Rate             float64
}

type Server struct {
	config *Config
	trades []*trade.Trade
}

func New(cfg *Config) (*Server, error) {
	defer db.SerializeDB(cfg.RootDir)
	if cfg.Auth == nil {
		cfg.Auth = &Authorization{}
	}
	trades, err := sources.Trades(cfg.Sources, cfg.RootDir)
	if err != nil {
		return nil, fmt.Errorf("cannot load trades: %v", err)
	}
	// Flush these trades to disk
	if err := sources.FlushTrades(trades, path.Join(cfg.RootDir, outputTrades)); err != nil {
		return nil, fmt.Errorf("cannot flush merged trades to disk: %v", err)
	}
	for _, t := range trades {
		db.UpsertTrade(t)
	}
	return &Server{
		config: cfg,
		trades: db.AllTrades(),
	}, nil
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	// Let's get a spot price for BTC and if that succeeds, we can return healthy
	price, err := s.config.Market.SpotPrice(healthzAsset)
	if err != nil {
		http.Error(w, fmt.Sprintf("cannot get spot price for %s: %v", healthzAsset, err), http.StatusInternalServerError)
		return
	}
	fmt.Fprintf(w, "Spot %s: Price=%f", healthzAsset, price)
}

func (s *Server) Run(port int) error {
	if s.config.RootDir != "" {
		if err := s.writeReport(path.Join(s.config.RootDir, reportFilename)); err != nil {
			return fmt.Errorf("cannot write report: %v", err)
		}
	}
	http.HandleFunc("/healthz", s.healthz)
	http.HandleFunc("/report", s.basicAuth(s.reportHandler))
	http.HandleFunc("/tax", s.basicAuth(s.taxHandler))
	http.HandleFunc("/csv/events", s.basicAuth(s.eventsCSVHandler))
	http.HandleFunc("/csv/monthly", s.basicAuth(s.monthlyCSVHandler))
	http.HandleFunc("/csv/assets", s.basicAuth(s.assetsCSVHandler))
	http.HandleFunc("/csv/trades", s.basicAuth(s.tradesCSVHandler))
	http.HandleFunc("/export", s.basicAuth(s.exportHandler))
	http.HandleFunc("/quit/quit/quit", s.basicAuth(s.quit))
	if port <= 0 {
		return nil
	}
	log.Infof("Starting HTTP server on :%d", port)
	return http.ListenAndServe(fmt.Sprintf(":%d", port), nil)
}

func (s *Server) quit(w http.ResponseWriter, r *http.Request) {
	os.Exit(-1)
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.Auth.username == "" || s.config.Auth.password == "" {
			next.ServeHTTP(w, r)
			return
		}
		username, password, ok := r.BasicAuth()
		if ok {
			usernameHash := sha256.Sum256([]byte(username))
			passwordHash := sha256.Sum256([]byte(password))
			expectedUsernameHash := sha256.Sum256([]byte(s.config.Auth.username))
			expectedPasswordHash := sha256.Sum256([]byte(s.config.Auth.password))

			usernameMatch := (subtle.ConstantTimeCompare(usernameHash[:], expectedUsernameHash[:]) == 1)
			passwordMatch := (subtle.ConstantTimeCompare(passwordHash[:], expectedPasswordHash[:]) == 1)

			if usernameMatch && passwordMatch {
				next.ServeHTTP(w, r)
				return
			}
		}
		w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
}

// labelFromQuery returns the financial year a request asks for, falling
// back to the configured one.
func (s *Server) labelFromQuery(r *http.Request) string {
	if label := r.URL.Query().Get("fy"); label != "" {
		return label
	}
	return s.config.FYLabel
}

// carryFor returns the configured carry-forward loss for the configured
// financial year and zero for any other.
func (s *Server) carryFor(label string) float64 {
	if label == s.config.FYLabel {
		return s.config.CarryForwardLoss
	}
	return 0
}

func (s *Server) eventsForYear(label string) []*cgt.Event {
	return cgt.EventsForYear(s.trades, label, s.config.Rate)
}

func (s *Server) taxHandler(w http.ResponseWriter, r *http.Request) {
	label := s.labelFromQuery(r)
	income := s.config.OtherIncome
	if v := r.URL.Query().Get("income"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			http.Error(w, fmt.Sprintf("cannot parse income: %v", err), http.StatusBadRequest)
			return
		}
		income = f
	}
	carry := s.carryFor(label)
	if v := r.URL.Query().Get("carry"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			http.Error(w, fmt.Sprintf("cannot parse carry: %v", err), http.StatusBadRequest)
			return
		}
		carry = f
	}
	events := s.eventsForYear(label)
	summary := cgt.Summarize(events, carry)
	result := cgt.CalculateTax(income, summary.TaxableCapitalGain, label)
	fmt.Fprintf(w, `
	<!DOCTYPE html>
	<html>
	<head>
		<title>Tax Estimate: %s</title>
	</head>
	<body>`, label)
	fmt.Fprint(w, cgt.SummaryTable(summary, label).RenderHTML())
	fmt.Fprint(w, "<br><br>")
	fmt.Fprint(w, cgt.TaxTable(result, label).RenderHTML())
	fmt.Fprint(w, `</body></html>`)
}

type yearSection struct {
	Label  string
	Tables []string
}

type reportData struct {
	Timestamp string
	Years     []*yearSection
}

// reportData renders the per-year tables once so the static template and
// the inline fallback share the same content.
func (s *Server) reportData() *reportData {
	d := &reportData{Timestamp: time.Now().Format(timeFmt)}
	for _, label := range cgt.Years(s.trades) {
		events := s.eventsForYear(label)
		summary := cgt.Summarize(events, s.carryFor(label))
		result := cgt.CalculateTax(s.config.OtherIncome, summary.TaxableCapitalGain, label)
		sec := &yearSection{Label: label}
		sec.Tables = append(sec.Tables,
			cgt.SummaryTable(summary, label).RenderHTML(),
			cgt.TaxTable(result, label).RenderHTML(),
			cgt.MonthlyTable(cgt.MonthlyBreakdown(events), label).RenderHTML(),
			cgt.AssetsTable(cgt.ByAsset(events), label).RenderHTML(),
		)
		if warnings := cgt.DetectWashSales(events, s.trades); len(warnings) > 0 {
			sec.Tables = append(sec.Tables, cgt.WashSalesTable(warnings, label).RenderHTML())
		}
		d.Years = append(d.Years, sec)
	}
	return d
}

func (s *Server) reportHandler(w http.ResponseWriter, r *http.Request) {
	d := s.reportData()
	if tmpl := s.config.Static.Report(); tmpl != nil {
		if err := tmpl.Execute(w, d); err != nil {
			log.Errorf("cannot execute template: %v", err)
			http.Error(w, "cannot generate report", http.StatusInternalServerError)
		}
		return
	}
	fmt.Fprintf(w, `
	<!DOCTYPE html>
	<html>
	<head>
		<title>CGT Calculation Report: %s</title>
	</head>
	<body>`, d.Timestamp)
	for _, y := range d.Years {
		fmt.Fprintf(w, "<h2>FY %s</h2>", y.Label)
		for _, tbl := range y.Tables {
			fmt.Fprint(w, tbl)
			fmt.Fprint(w, "<br><br>")
		}
	}
	fmt.Fprint(w, `</body></html>`)
}

func (s *Server) eventsCSVHandler(w http.ResponseWriter, r *http.Request) {
	label := s.labelFromQuery(r)
	fmt.Fprint(w, cgt.EventsTable(s.eventsForYear(label), label).RenderCSV())
}

func (s *Server) monthlyCSVHandler(w http.ResponseWriter, r *http.Request) {
	label := s.labelFromQuery(r)
	stats := cgt.MonthlyBreakdown(s.eventsForYear(label))
	fmt.Fprint(w, cgt.MonthlyTable(stats, label).RenderCSV())
}

func (s *Server) assetsCSVHandler(w http.ResponseWriter, r *http.Request) {
	label := s.labelFromQuery(r)
	stats := cgt.ByAsset(s.eventsForYear(label))
	fmt.Fprint(w, cgt.AssetsTable(stats, label).RenderCSV())
}

func (s *Server) tradesCSVHandler(w http.ResponseWriter, r *http.Request) {
	res, err := sources.TradesToCSV(s.trades)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	fmt.Fprint(w, res)
}

func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	label := s.labelFromQuery(r)
	events := s.eventsForYear(label)
	summary := cgt.Summarize(events, s.carryFor(label))
	result := cgt.CalculateTax(s.config.OtherIncome, summary.TaxableCapitalGain, label)
	artifact := export.Workbook(events, summary, result, cgt.ByAsset(events), label)
	data, err := artifact.Bytes()
	if err != nil {
		http.Error(w, fmt.Sprintf("cannot build export: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.Write(data)
}

func (s *Server) writeReport(filename string) error {
	if err := os.MkdirAll(path.Dir(filename), 0755); err != nil {
		return fmt.Errorf("cannot create directories: %v", err)
	}
	var open []*trade.Trade
	for _, t := range s.trades {
		if !t.Closed() {
			open = append(open, t)
		}
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("DATE: %s\n\n", time.Now().Format(timeFmt)))
	if len(open) > 0 && s.config.Market != nil {
		sb.WriteString("--------- OPEN POSITIONS --------\n\n")
		sb.WriteString(fmt.Sprintf("%s\n\n", cgt.PositionsTable(open, s.config.Market.SpotPrice).Render()))
	}
	sb.WriteString("--------- CGT Calculation Report --------\n\n")
	for _, label := range cgt.Years(s.trades) {
		events := s.eventsForYear(label)
		summary := cgt.Summarize(events, s.carryFor(label))
		result := cgt.CalculateTax(s.config.OtherIncome, summary.TaxableCapitalGain, label)
		sb.WriteString(fmt.Sprintf("%s\n\n", cgt.EventsTable(events, label).Render()))
		sb.WriteString(fmt.Sprintf("%s\n\n", cgt.SummaryTable(summary, label).Render()))
		sb.WriteString(fmt.Sprintf("%s\n\n", cgt.TaxTable(result, label).Render()))
		sb.WriteString(fmt.Sprintf("%s\n\n", cgt.MonthlyTable(cgt.MonthlyBreakdown(events), label).Render()))
		sb.WriteString(fmt.Sprintf("%s\n\n", cgt.AssetsTable(cgt.ByAsset(events), label).Render()))
		if warnings := cgt.DetectWashSales(events, s.trades); len(warnings) > 0 {
			sb.WriteString(fmt.Sprintf("%s\n\n", cgt.WashSalesTable(warnings, label).Render()))
		}
	}
	if err := os.WriteFile(filename, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("cannot output report: %v", err)
	}
	return nil
}
