package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Price latest reading of an oracle as recorded by the host
type Price struct {
	ID         int64           `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	OracleID   string          `sql:"size:64;unique_index:idx_prices_oracle_id" json:"oracle_id,omitempty"`
	Price      decimal.Decimal `sql:"type:decimal(32,16)" json:"price,omitempty"`
	Confidence decimal.Decimal `sql:"type:decimal(32,16)" json:"confidence,omitempty"`
	ObservedAt time.Time       `json:"observed_at,omitempty"`
	Version    int64           `sql:"default:0" json:"version,omitempty"`
	CreatedAt  time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at,omitempty"`
	UpdatedAt  time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at,omitempty"`
}

// Reading price row as an oracle reading
func (p *Price) Reading() *OracleReading {
	return &OracleReading{
		OracleID:   p.OracleID,
		Price:      p.Price,
		Confidence: p.Confidence,
		ObservedAt: p.ObservedAt,
	}
}

// IPriceStore price store interface
type IPriceStore interface {
	Save(ctx context.Context, price *Price) error
	Find(ctx context.Context, oracleID string) (*Price, error)
	List(ctx context.Context) ([]*Price, error)
}
