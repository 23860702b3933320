// Package db is an in-memory database for the trade history, daily FX
// rates and the asset registry, persisted as JSON files under the
// outputs directory. It is the caller's responsibility to call the
// Serialize function to persist changes to disk.
package db

import (
	"fmt"
)

// InitDB is called by caller to initialize the database from rootDir.
func InitDB(rootDir string) {
	initTrades(rootDir)
	initRates(rootDir)
	initAssets(rootDir)
}

// SerializeDB is called by caller to persist changes to disk
func SerializeDB(rootDir string) error {
	if err := serializeTrades(rootDir); err != nil {
		return fmt.Errorf("cannot serialize trades: %v", err)
	}
	if err := serializeRates(rootDir); err != nil {
		return fmt.Errorf("cannot serialize rates: %v", err)
	}
	if err := serializeAssets(rootDir); err != nil {
		return fmt.Errorf("cannot serialize assets: %v", err)
	}
	return nil
}
