package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RefreshStep one of the external refresh calls required before a wrapped mutation
type RefreshStep string

const (
	// RefreshReserve refreshes the external reserve state
	RefreshReserve RefreshStep = "refresh_reserve"
	// RefreshObligation refreshes the external obligation, after the reserve
	RefreshObligation RefreshStep = "refresh_obligation"
)

// RefreshReceipt proof that a refresh call succeeded
type RefreshReceipt struct {
	Step         RefreshStep `json:"step"`
	MarketID     string      `json:"market_id"`
	ReserveID    string      `json:"reserve_id"`
	ObligationID string      `json:"obligation_id,omitempty"`
	Slot         int64       `json:"slot"`
}

// ExternalPosition external market view of a wrapped position
type ExternalPosition struct {
	ObligationID string          `json:"obligation_id"`
	ReserveID    string          `json:"reserve_id"`
	Deposited    decimal.Decimal `json:"deposited"`
	MarketValue  decimal.Decimal `json:"market_value"`
	Slot         int64           `json:"slot"`
}

// IExternalMarket third-party lending market collaborator
type IExternalMarket interface {
	RefreshReserve(ctx context.Context, marketID, reserveID, oracleID string) (*RefreshReceipt, error)
	RefreshObligation(ctx context.Context, marketID, obligationID string, reserveIDs []string) (*RefreshReceipt, error)
	// Deposit and Withdraw reject the call unless both refreshes ran, in order, for the same slot
	Deposit(ctx context.Context, proof []*RefreshReceipt, obligationID string, amount decimal.Decimal) error
	Withdraw(ctx context.Context, proof []*RefreshReceipt, obligationID string, amount decimal.Decimal) error
	Position(ctx context.Context, marketID, obligationID, reserveID string) (*ExternalPosition, error)
}

// IExternalSession one unit of work against a wrapped position
type IExternalSession interface {
	RefreshReserve(ctx context.Context) error
	RefreshObligation(ctx context.Context) error
	Deposit(ctx context.Context, m *Mutation) (*Obligation, error)
	Withdraw(ctx context.Context, m *Mutation) (*Obligation, error)
}

// IExternalAdapter bridges an external lending market into wrapped balances
type IExternalAdapter interface {
	Begin(ctx context.Context, obligationID, bankID, externalObligationID string) (IExternalSession, error)
	RefreshExternalValuation(ctx context.Context, obligationID, bankID string, now time.Time) (*Obligation, error)
}
