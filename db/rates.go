package db

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"time"

	log "github.com/sirupsen/logrus"
)

const ratesJSONFilename = "outputs/rates_db.json"

// rates maps a UTC day to currency -> AUD conversion rates.
// For USD it stores X where 1 USD = X AUD.
var rates map[time.Time]map[string]float64

func initRates(rootDir string) {
	rates = make(map[time.Time]map[string]float64)
	data, err := os.ReadFile(path.Join(rootDir, ratesJSONFilename))
	if err != nil {
		log.Errorf("Cannot read file for rates: %v", err)
		return
	}
	err = json.Unmarshal(data, &rates)
	if err != nil {
		log.Errorf("Cannot unmarshal to struct: %v", err)
		return
	}
}

func serializeRates(rootDir string) error {
	data, err := json.Marshal(rates)
	if err != nil {
		return fmt.Errorf("cannot marshal json: %v", err)
	}
	err = os.WriteFile(path.Join(rootDir, ratesJSONFilename), data, 0666)
	if err != nil {
		return fmt.Errorf("cannot write json file to disk: %v", err)
	}
	return nil
}

// AddRate records a day's conversion rate to AUD. The first write for a
// day wins; later fetches never rewrite history.
func AddRate(ts time.Time, currency string, value float64) {
	date := ts.Truncate(24 * time.Hour)
	if _, ok := rates[date]; !ok {
		rates[date] = make(map[string]float64)
	}
	if _, ok := rates[date][currency]; ok {
		return
	}
	rates[date][currency] = value
}

// RateOn returns the stored conversion rate to AUD for the timestamp's
// day.
func RateOn(ts time.Time, currency string) (float64, bool) {
	date := ts.Truncate(24 * time.Hour)
	val, ok := rates[date][currency]
	return val, ok
}

// LastRate returns the most recent stored rate for a currency. Useful
// as a fallback when the live providers are unreachable.
func LastRate(currency string) (float64, bool) {
	var best time.Time
	var val float64
	var found bool
	for date, byCurrency := range rates {
		rate, ok := byCurrency[currency]
		if !ok {
			continue
		}
		if !found || date.After(best) {
			best, val, found = date, rate, true
		}
	}
	return val, found
}
