package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OracleReading price and confidence observed for an asset
type OracleReading struct {
	OracleID   string          `json:"oracle_id"`
	Price      decimal.Decimal `json:"price"`
	Confidence decimal.Decimal `json:"confidence"`
	ObservedAt time.Time       `json:"observed_at"`
}

// PriceBias which side of the confidence interval to use
type PriceBias int

const (
	// BiasNone the reported price
	BiasNone PriceBias = iota
	// BiasLow price minus confidence, used for assets
	BiasLow
	// BiasHigh price plus confidence, used for liabilities
	BiasHigh
)

// PriceWithBias price adjusted by the confidence interval
func (r *OracleReading) PriceWithBias(bias PriceBias) decimal.Decimal {
	switch bias {
	case BiasLow:
		return decimal.Max(r.Price.Sub(r.Confidence), decimal.Zero)
	case BiasHigh:
		return r.Price.Add(r.Confidence)
	default:
		return r.Price
	}
}

// IPriceOracle price oracle collaborator
type IPriceOracle interface {
	Read(ctx context.Context, oracleID string) (*OracleReading, error)
}

// IPriceFeed upstream source of oracle readings, pulled into the price store
type IPriceFeed interface {
	Pull(ctx context.Context, oracleIDs []string) ([]*OracleReading, error)
}
