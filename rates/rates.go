// Package rates serves AUD conversion rates and crypto spot prices
// from a list of HTTP backends, caching results so report reloads do
// not hammer the public APIs.
package rates

import (
	"fmt"
	"time"

	"github.com/ReneKroon/ttlcache"
	log "github.com/sirupsen/logrus"
)

var (
	rateTTL = time.Hour
	spotTTL = 10 * time.Minute
)

// Backend is one provider of FX rates and spot prices. A backend that
// cannot serve a request returns an error and the service moves on to
// the next one.
type Backend interface {
	Name() string
	AUDRate(currency string) (float64, error)
	SpotPrice(asset string) (float64, error)
}

type Service struct {
	rateCache *ttlcache.Cache
	spotCache *ttlcache.Cache
	backends  []Backend
}

// NewService wraps backends in fallback order.
func NewService(backends ...Backend) *Service {
	rateCache := ttlcache.NewCache()
	rateCache.SetTTL(rateTTL)
	rateCache.SkipTtlExtensionOnHit(true)
	spotCache := ttlcache.NewCache()
	spotCache.SetTTL(spotTTL)
	spotCache.SkipTtlExtensionOnHit(true)
	return &Service{
		rateCache: rateCache,
		spotCache: spotCache,
		backends:  backends,
	}
}

// AUDRate returns the conversion rate from currency to AUD, trying the
// backends in order.
func (s *Service) AUDRate(currency string) (float64, error) {
	if currency == "AUD" {
		return 1.0, nil
	}
	if val, ok := s.rateCache.Get(currency); ok {
		return val.(float64), nil
	}
	for _, b := range s.backends {
		rate, err := b.AUDRate(currency)
		if err != nil {
			log.Errorf("error in fetching %s rate from %s: %v", currency, b.Name(), err)
			continue
		}
		s.rateCache.Set(currency, rate)
		return rate, nil
	}
	return 0.0, fmt.Errorf("cannot get %s rate from any source", currency)
}

// SpotPrice returns an asset's current USD price, trying the backends
// in order.
func (s *Service) SpotPrice(asset string) (float64, error) {
	if val, ok := s.spotCache.Get(asset); ok {
		return val.(float64), nil
	}
	for _, b := range s.backends {
		price, err := b.SpotPrice(asset)
		if err != nil {
			log.Errorf("error in fetching %s price from %s: %v", asset, b.Name(), err)
			continue
		}
		s.spotCache.Set(asset, price)
		return price, nil
	}
	return 0.0, fmt.Errorf("cannot get %s price from any source", asset)
}
