package rates

import (
	"fmt"

	"github.com/go-resty/resty/v2"
)

const frankfurterURL = "https://api.frankfurter.app"

// frankfurterResponse represents the /latest payload.
type frankfurterResponse struct {
	Amount float64            `json:"amount"`
	Base   string             `json:"base"`
	Date   string             `json:"date"`
	Rates  map[string]float64 `json:"rates"`
}

type frankfurterBackend struct {
	client *resty.Client
}

// NewFrankfurter serves fiat FX rates from the ECB-backed frankfurter
// API. It knows nothing about crypto assets.
func NewFrankfurter() *frankfurterBackend {
	return &frankfurterBackend{client: newClient(frankfurterURL)}
}

func (b *frankfurterBackend) Name() string { return "frankfurter" }

func (b *frankfurterBackend) AUDRate(currency string) (float64, error) {
	res, err := b.client.R().
		SetResult(frankfurterResponse{}).
		SetQueryParam("from", currency).
		SetQueryParam("to", "AUD").
		Get("/latest")
	if err != nil {
		return 0.0, fmt.Errorf("cannot fetch from frankfurter: %v", err)
	}
	if res.IsError() {
		return 0.0, fmt.Errorf("frankfurter returned %s", res.Status())
	}
	resp := res.Result().(*frankfurterResponse)
	rate, ok := resp.Rates["AUD"]
	if !ok {
		return 0.0, fmt.Errorf("no AUD rate in response for %s", currency)
	}
	return rate, nil
}

func (b *frankfurterBackend) SpotPrice(asset string) (float64, error) {
	return 0.0, fmt.Errorf("frankfurter does not quote crypto assets")
}
