package db

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	log "github.com/sirupsen/logrus"
)

const assetsJSONFilename = "outputs/assets_db.json"

type AssetState string

const (
	Active   AssetState = "Active"
	Inactive AssetState = "Inactive"
)

// Asset stores metadata about a crypto asset
type Asset struct {
	Names   []string   `json:"names"`
	GeckoID string     `json:"gecko_id"`
	State   AssetState `json:"state"`
}

// assets stores a map from asset symbol to its metadata.
var assets map[string]*Asset

// quoteSuffixes are the quote currencies stripped from pair symbols
// when canonicalizing (BTCUSDT -> BTC).
var quoteSuffixes = []string{"USDT", "USDC", "BUSD", "AUD", "USD"}

// initAssets is called to get the db initialized. If no file exists, it
// seeds the registry with the majors.
func initAssets(rootDir string) {
	assets = make(map[string]*Asset)
	data, err := os.ReadFile(path.Join(rootDir, assetsJSONFilename))
	if err != nil {
		log.Errorf("Cannot read file for assets, seeding defaults: %v", err)
		seedAssets()
		return
	}
	err = json.Unmarshal(data, &assets)
	if err != nil {
		log.Errorf("Cannot unmarshal to struct: %v", err)
		return
	}
}

func seedAssets() {
	seed := map[string]*Asset{
		"BTC":  {Names: []string{"bitcoin"}, GeckoID: "bitcoin", State: Active},
		"ETH":  {Names: []string{"ethereum"}, GeckoID: "ethereum", State: Active},
		"SOL":  {Names: []string{"solana"}, GeckoID: "solana", State: Active},
		"XRP":  {Names: []string{"ripple", "xrp"}, GeckoID: "ripple", State: Active},
		"ADA":  {Names: []string{"cardano"}, GeckoID: "cardano", State: Active},
		"DOGE": {Names: []string{"dogecoin"}, GeckoID: "dogecoin", State: Active},
	}
	for symbol, meta := range seed {
		assets[symbol] = meta
	}
}

func serializeAssets(rootDir string) error {
	data, err := json.Marshal(assets)
	if err != nil {
		return fmt.Errorf("cannot marshal json: %v", err)
	}
	err = os.WriteFile(path.Join(rootDir, assetsJSONFilename), data, 0666)
	if err != nil {
		return fmt.Errorf("cannot write json file to disk: %v", err)
	}
	return nil
}

// RegisterAsset adds or enriches a registry entry.
func RegisterAsset(symbol, name, geckoID string) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	meta, ok := assets[symbol]
	if !ok {
		meta = &Asset{State: Active}
		assets[symbol] = meta
	}
	if geckoID != "" && meta.GeckoID == "" {
		meta.GeckoID = geckoID
	}
	if name == "" {
		return
	}
	name = strings.ToLower(strings.TrimSpace(name))
	for _, x := range meta.Names {
		if name == x {
			return
		}
	}
	meta.Names = append(meta.Names, name)
	sort.Sort(sort.StringSlice(meta.Names))
}

// GeckoID returns the CoinGecko id for an asset symbol.
func GeckoID(symbol string) (string, error) {
	meta, ok := assets[symbol]
	if !ok {
		return "", fmt.Errorf("asset %s not found", symbol)
	}
	if meta.GeckoID == "" {
		return "", fmt.Errorf("asset %s has no gecko id", symbol)
	}
	return meta.GeckoID, nil
}

// CanonicalAsset maps whatever an exchange export calls an asset to the
// registry symbol: exact match, then a pair-symbol suffix strip, then a
// fuzzy search over known names. An unknown asset is asked for on the
// terminal in interactive mode, otherwise it passes through unchanged.
func CanonicalAsset(s string) string {
	symbol := strings.ToUpper(strings.TrimSpace(s))
	if _, ok := assets[symbol]; ok {
		return symbol
	}
	for _, suffix := range quoteSuffixes {
		if base, found := strings.CutSuffix(symbol, suffix); found && base != "" {
			if _, ok := assets[base]; ok {
				return base
			}
		}
	}
	if match, err := guessAssetFromName(s); err == nil {
		return match
	}
	manual, err := getInput(fmt.Sprintf("Cannot resolve asset %q, please enter the symbol manually", s))
	if err != nil || manual == "" {
		log.Warningf("cannot resolve asset %q, keeping it as is: %v", s, err)
		return symbol
	}
	manual = strings.ToUpper(strings.TrimSpace(manual))
	RegisterAsset(manual, s, "")
	return manual
}

// guessAssetFromName tries to identify the symbol for a given name
func guessAssetFromName(name string) (string, error) {
	var data []string
	var inverseMap map[string]string = make(map[string]string)
	for symbol, meta := range assets {
		for _, n := range meta.Names {
			data = append(data, n)
			inverseMap[n] = symbol
		}
	}
	matches := fuzzy.RankFindFold(name, data)
	sort.Sort(matches)
	vals := []fuzzy.Rank(matches)
	if len(matches) == 0 {
		return "", fmt.Errorf("no name matches %q", name)
	}
	return inverseMap[vals[0].Target], nil
}
