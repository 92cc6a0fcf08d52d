package oracle

import (
	"context"

	"lendcore/core"
)

type storeOracle struct {
	prices core.IPriceStore
}

// New oracle reading the latest recorded price of each oracle
func New(prices core.IPriceStore) core.IPriceOracle {
	return &storeOracle{prices: prices}
}

func (o *storeOracle) Read(ctx context.Context, oracleID string) (*core.OracleReading, error) {
	price, err := o.prices.Find(ctx, oracleID)
	if err != nil {
		return nil, err
	}

	return price.Reading(), nil
}
