package rates

import (
	"fmt"
	"strings"

	"github.com/brunosouza-justauto/crypto-portfolio/db"
	"github.com/go-resty/resty/v2"
)

const coingeckoURL = "https://api.coingecko.com"

// stablecoinIDs proxy a fiat currency through its dominant stablecoin,
// which is how a crypto-only API answers an FX question.
var stablecoinIDs = map[string]string{
	"USD": "usd-coin",
}

type coingeckoBackend struct {
	client *resty.Client
}

// NewCoinGecko serves spot prices for anything the asset registry has a
// gecko id for, and USD->AUD through the usd-coin quote.
func NewCoinGecko() *coingeckoBackend {
	return &coingeckoBackend{client: newClient(coingeckoURL)}
}

func (b *coingeckoBackend) Name() string { return "coingecko" }

// simplePrice calls /api/v3/simple/price, which returns
// {"<id>": {"<currency>": <price>}}.
func (b *coingeckoBackend) simplePrice(id, vsCurrency string) (float64, error) {
	var result map[string]map[string]float64
	res, err := b.client.R().
		SetResult(&result).
		SetQueryParam("ids", id).
		SetQueryParam("vs_currencies", vsCurrency).
		Get("/api/v3/simple/price")
	if err != nil {
		return 0.0, fmt.Errorf("cannot fetch from coingecko: %v", err)
	}
	if res.IsError() {
		return 0.0, fmt.Errorf("coingecko returned %s", res.Status())
	}
	price, ok := result[id][vsCurrency]
	if !ok {
		return 0.0, fmt.Errorf("no %s price for %s in response", vsCurrency, id)
	}
	return price, nil
}

func (b *coingeckoBackend) AUDRate(currency string) (float64, error) {
	id, ok := stablecoinIDs[strings.ToUpper(currency)]
	if !ok {
		return 0.0, fmt.Errorf("no stablecoin proxy for currency %s", currency)
	}
	return b.simplePrice(id, "aud")
}

func (b *coingeckoBackend) SpotPrice(asset string) (float64, error) {
	id, err := db.GeckoID(asset)
	if err != nil {
		return 0.0, fmt.Errorf("cannot resolve gecko id: %v", err)
	}
	return b.simplePrice(id, "usd")
}
