package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/brunosouza-justauto/crypto-portfolio/config"
	"github.com/brunosouza-justauto/crypto-portfolio/db"
	"github.com/brunosouza-justauto/crypto-portfolio/parser"
	"github.com/brunosouza-justauto/crypto-portfolio/rates"
	"github.com/brunosouza-justauto/crypto-portfolio/sources"
	"github.com/brunosouza-justauto/crypto-portfolio/trade"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	price float64
	err   error
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) AUDRate(currency string) (float64, error) {
	return 1.5, f.err
}

func (f *fakeBackend) SpotPrice(asset string) (float64, error) {
	return f.price, f.err
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mkClosed(asset string, buy, sell time.Time, cost, proceeds float64) *trade.Trade {
	return &trade.Trade{
		Asset:        asset,
		Exchange:     "BINANCE",
		Market:       trade.SPOT,
		BuyDate:      buy,
		BuyQuantity:  1,
		BuyValue:     cost,
		SellDate:     sell,
		SellQuantity: 1,
		SellValue:    proceeds,
	}
}

// testServer builds a server directly, skipping New, so handler tests
// need no filesystem or db state.
func testServer() *Server {
	return &Server{
		config: &Config{
			Auth:        NewAuthorization("", ""),
			FYLabel:     "2024-25",
			OtherIncome: 40000,
			Rate:        1.0,
		},
		trades: []*trade.Trade{
			mkClosed("BTC", date(2024, time.August, 1), date(2024, time.October, 1), 1000, 1600),
			mkClosed("ETH", date(2023, time.January, 10), date(2024, time.September, 5), 2000, 1700),
		},
	}
}

func TestBasicAuth(t *testing.T) {
	rq := require.New(t)
	s := testServer()
	s.config.Auth = NewAuthorization("user", "secret")
	handler := s.basicAuth(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/report", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	rq.Equal(http.StatusUnauthorized, rec.Code)
	rq.Contains(rec.Header().Get("WWW-Authenticate"), "Basic realm")

	req = httptest.NewRequest(http.MethodGet, "/report", nil)
	req.SetBasicAuth("user", "wrong")
	rec = httptest.NewRecorder()
	handler(rec, req)
	rq.Equal(http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/report", nil)
	req.SetBasicAuth("user", "secret")
	rec = httptest.NewRecorder()
	handler(rec, req)
	rq.Equal(http.StatusOK, rec.Code)
	rq.Equal("ok", rec.Body.String())
}

func TestBasicAuthSkippedWithEmptyCredentials(t *testing.T) {
	rq := require.New(t)
	s := testServer()
	handler := s.basicAuth(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	})
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/report", nil))
	rq.Equal(http.StatusOK, rec.Code)
	rq.Equal("ok", rec.Body.String())
}

func TestHealthz(t *testing.T) {
	rq := require.New(t)
	s := testServer()
	s.config.Market = rates.NewService(&fakeBackend{price: 43000})
	rec := httptest.NewRecorder()
	s.healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	rq.Equal(http.StatusOK, rec.Code)
	rq.Contains(rec.Body.String(), "Spot BTC")
}

func TestHealthzFailure(t *testing.T) {
	rq := require.New(t)
	s := testServer()
	s.config.Market = rates.NewService(&fakeBackend{err: fmt.Errorf("down")})
	rec := httptest.NewRecorder()
	s.healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	rq.Equal(http.StatusInternalServerError, rec.Code)
}

func TestTaxHandler(t *testing.T) {
	rq := require.New(t)
	s := testServer()
	rec := httptest.NewRecorder()
	s.taxHandler(rec, httptest.NewRequest(http.MethodGet, "/tax", nil))
	rq.Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	rq.Contains(body, "Tax Estimate: 2024-25")
	rq.Contains(body, "CGT Summary 2024-25")
	rq.Contains(body, "Income Tax 2024-25")
	rq.Contains(body, "MEDICARE LEVY")
}

func TestTaxHandlerOverrides(t *testing.T) {
	rq := require.New(t)
	s := testServer()

	rec := httptest.NewRecorder()
	s.taxHandler(rec, httptest.NewRequest(http.MethodGet, "/tax?fy=2023-24&income=0", nil))
	rq.Equal(http.StatusOK, rec.Code)
	rq.Contains(rec.Body.String(), "Income Tax 2023-24")

	rec = httptest.NewRecorder()
	s.taxHandler(rec, httptest.NewRequest(http.MethodGet, "/tax?income=abc", nil))
	rq.Equal(http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	s.taxHandler(rec, httptest.NewRequest(http.MethodGet, "/tax?carry=xyz", nil))
	rq.Equal(http.StatusBadRequest, rec.Code)
}

func TestCSVHandlers(t *testing.T) {
	rq := require.New(t)
	s := testServer()

	rec := httptest.NewRecorder()
	s.eventsCSVHandler(rec, httptest.NewRequest(http.MethodGet, "/csv/events", nil))
	rq.Contains(rec.Body.String(), "Asset,Exchange,Buy Date")
	rq.Contains(rec.Body.String(), "BTC")
	rq.Contains(rec.Body.String(), "ETH")

	rec = httptest.NewRecorder()
	s.monthlyCSVHandler(rec, httptest.NewRequest(http.MethodGet, "/csv/monthly", nil))
	rq.Contains(rec.Body.String(), "July")
	rq.Contains(rec.Body.String(), "June")

	rec = httptest.NewRecorder()
	s.assetsCSVHandler(rec, httptest.NewRequest(http.MethodGet, "/csv/assets", nil))
	rq.Contains(rec.Body.String(), "BTC")

	rec = httptest.NewRecorder()
	s.tradesCSVHandler(rec, httptest.NewRequest(http.MethodGet, "/csv/trades", nil))
	rq.Contains(rec.Body.String(), "Asset,Exchange,Market")
	rq.Contains(rec.Body.String(), "BINANCE")
}

func TestExportHandler(t *testing.T) {
	rq := require.New(t)
	s := testServer()
	rec := httptest.NewRecorder()
	s.exportHandler(rec, httptest.NewRequest(http.MethodGet, "/export", nil))
	rq.Equal(http.StatusOK, rec.Code)
	rq.Equal(`attachment; filename="cgt-report-2024-25.csv"`, rec.Header().Get("Content-Disposition"))
	rq.Contains(rec.Body.String(), "=== Events ===")
	rq.Contains(rec.Body.String(), "=== Summary ===")
}

func TestReportHandlerInline(t *testing.T) {
	rq := require.New(t)
	s := testServer()
	rec := httptest.NewRecorder()
	s.reportHandler(rec, httptest.NewRequest(http.MethodGet, "/report", nil))
	rq.Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	rq.Contains(body, "CGT Calculation Report")
	rq.Contains(body, "FY 2024-25")
	rq.Contains(body, "CGT Summary 2024-25")
	rq.Contains(body, "Monthly Breakdown 2024-25")
}

func TestReportHandlerStaticTemplate(t *testing.T) {
	rq := require.New(t)
	staticDir := t.TempDir()
	content := `report @ {{.Timestamp}} years={{len .Years}}`
	rq.NoError(os.WriteFile(path.Join(staticDir, "report.html"), []byte(content), 0644))
	static, err := NewStaticLoader(staticDir)
	rq.NoError(err)

	s := testServer()
	s.config.Static = static
	rec := httptest.NewRecorder()
	s.reportHandler(rec, httptest.NewRequest(http.MethodGet, "/report", nil))
	rq.Equal(http.StatusOK, rec.Code)
	rq.Contains(rec.Body.String(), "years=1")
}

func TestStaticLoaderMissingDir(t *testing.T) {
	rq := require.New(t)
	_, err := NewStaticLoader("")
	rq.Error(err)
	_, err = NewStaticLoader(path.Join(t.TempDir(), "nope"))
	rq.Error(err)
}

func TestWriteReport(t *testing.T) {
	rq := require.New(t)
	s := testServer()
	s.config.Market = rates.NewService(&fakeBackend{price: 50000})
	s.trades = append(s.trades, &trade.Trade{
		Asset:       "SOL",
		Exchange:    "KRAKEN",
		Market:      trade.SPOT,
		BuyDate:     date(2025, time.January, 2),
		BuyQuantity: 10,
		BuyValue:    1500,
	})

	filename := path.Join(t.TempDir(), "outputs", "report.txt")
	rq.NoError(s.writeReport(filename))
	data, err := os.ReadFile(filename)
	rq.NoError(err)
	report := string(data)
	rq.Contains(report, "OPEN POSITIONS")
	rq.Contains(report, "CGT Calculation Report")
	rq.Contains(report, "CGT Events 2024-25")
	rq.Contains(report, "Income Tax 2024-25")
	rq.Contains(report, "SOL")
}

func TestNewLoadsAndFlushesTrades(t *testing.T) {
	rq := require.New(t)
	root := t.TempDir()
	rq.NoError(os.MkdirAll(path.Join(root, "outputs"), 0755))
	rq.NoError(os.MkdirAll(path.Join(root, "exports"), 0755))

	csv := strings.Join([]string{
		"Asset,Exchange,Market,BuyDate,BuyQuantity,BuyUnitPrice,BuyValue,SellDate,SellQuantity,SellValue",
		"BTC,BINANCE,SPOT,2024-08-01 00:00:00,1,30000,30000,2024-10-01 00:00:00,1,36000",
	}, "\n")
	rq.NoError(os.WriteFile(path.Join(root, "exports", "trades.csv"), []byte(csv), 0644))

	db.InitDB(root)
	prev := config.Mode()
	config.SetMode(config.SERVER_MODE)
	t.Cleanup(func() { config.SetMode(prev) })

	srcs := []*sources.Source{sources.New(parser.NewDefault(), "exports", nil)}
	s, err := New(&Config{RootDir: root, Sources: srcs, FYLabel: "2024-25", Rate: 1.0})
	rq.NoError(err)
	rq.Len(s.trades, 1)
	rq.Equal("BTC", s.trades[0].Asset)

	merged, err := os.ReadFile(path.Join(root, outputTrades))
	rq.NoError(err)
	rq.Contains(string(merged), "BTC")
}
