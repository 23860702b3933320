package main

import (
	"flag"
	"os"
	"path"
	"time"

	"github.com/brunosouza-justauto/crypto-portfolio/cgt"
	"github.com/brunosouza-justauto/crypto-portfolio/config"
	"github.com/brunosouza-justauto/crypto-portfolio/db"
	"github.com/brunosouza-justauto/crypto-portfolio/parser"
	"github.com/brunosouza-justauto/crypto-portfolio/rates"
	"github.com/brunosouza-justauto/crypto-portfolio/server"
	"github.com/brunosouza-justauto/crypto-portfolio/sources"
	"github.com/joho/godotenv"

	log "github.com/sirupsen/logrus"
)

var (
	rootDir            = flag.String("root_dir", "", "The root directory for outputs")
	staticDir          = flag.String("static_dir", "", "The root directory for static files")
	tradesFile         = flag.String("trades_file", "", "The file for merged trades in the canonical format")
	configFile         = flag.String("config_file", "", "The file for the sources config json")
	fy                 = flag.String("fy", "", "The financial year to estimate tax for, e.g. 2024-25 (default: current)")
	otherIncome        = flag.Float64("other_income", 0, "Taxable income outside crypto for the financial year")
	carryForwardLoss   = flag.Float64("carry_forward_loss", 0, "Capital loss carried in from earlier years")
	port               = flag.Int("port", 0, "The port to run the web server on")
	debug              = flag.Bool("debug", false, "Log at debug level, including HTTP requests to rate providers")
	username, password string
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Debugf("cannot load .env file: %v", err)
	}
	username = config.Env("AUTH_USERNAME", "")
	password = config.Env("AUTH_PASSWORD", "")
}

func main() {
	var err error
	flag.Parse()
	if *debug {
		log.SetLevel(log.DebugLevel)
	}
	// The server cannot answer stdin prompts for unknown assets.
	if *port > 0 {
		config.SetMode(config.SERVER_MODE)
	}
	// if rootDir is empty -> try to infer
	if *rootDir == "" {
		if *rootDir, err = os.Getwd(); err != nil {
			log.Fatalf("cannot get working directory")
		}
	}
	// make the output directory
	if err := os.MkdirAll(path.Join(*rootDir, "outputs"), 0755); err != nil {
		log.Fatalf("cannot create output directories: %v", err)
	}
	db.InitDB(*rootDir)
	market := rates.NewService(rates.NewFrankfurter(), rates.NewCoinGecko())

	var srcs []*sources.Source
	if *configFile != "" {
		parsed, err := sources.FromConfig(*configFile)
		if err != nil {
			log.Fatalf("cannot parse the sources config: %v", err)
		}
		srcs = append(srcs, parsed...)
	}
	if *tradesFile != "" {
		srcs = append(srcs, sources.New(parser.NewDefault(), "", []string{*tradesFile}))
	}

	label := *fy
	if label == "" {
		label = cgt.YearOf(time.Now().UTC()).Label
	}
	if _, err := cgt.ParseYear(label); err != nil {
		log.Fatalf("cannot parse financial year: %v", err)
	}

	rate := resolveRate(market)

	var static *server.StaticLoader
	if *staticDir != "" {
		if static, err = server.NewStaticLoader(*staticDir); err != nil {
			log.Fatalf("cannot create a static loader: %v", err)
		}
	}
	srv, err := server.New(&server.Config{
		RootDir:          *rootDir,
		Sources:          srcs,
		Auth:             server.NewAuthorization(username, password),
		Static:           static,
		Market:           market,
		FYLabel:          label,
		OtherIncome:      *otherIncome,
		CarryForwardLoss: *carryForwardLoss,
		Rate:             rate,
	})
	if err != nil {
		log.Fatalf("cannot create server: %v", err)
	}
	if err := srv.Run(*port); err != nil {
		log.Fatalf("cannot run server: %v", err)
	}
}

// resolveRate fetches today's USD to AUD rate, falling back to the last
// stored one when every provider is down.
func resolveRate(market *rates.Service) float64 {
	rate, err := market.AUDRate("USD")
	if err == nil {
		db.AddRate(time.Now().UTC(), "USD", rate)
		return rate
	}
	log.Errorf("cannot fetch USD rate, falling back to the last stored one: %v", err)
	if rate, ok := db.LastRate("USD"); ok {
		return rate
	}
	log.Warningf("no stored USD rate either, assuming 1.0")
	return 1.0
}
