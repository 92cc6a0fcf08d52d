package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RequirementType which set of weights the valuation uses
type RequirementType string

const (
	// RequirementInitial weights for opening risk (borrow, withdraw)
	RequirementInitial RequirementType = "initial"
	// RequirementMaintenance weights for keeping an existing position
	RequirementMaintenance RequirementType = "maintenance"
	// RequirementEquity unweighted values
	RequirementEquity RequirementType = "equity"
)

// BalanceValue valuation of one active balance
type BalanceValue struct {
	BankID  string          `json:"bank_id"`
	Kind    BalanceKind     `json:"kind"`
	Amount  decimal.Decimal `json:"amount"`
	Value   decimal.Decimal `json:"value"`
	Weight  decimal.Decimal `json:"weight"`
	Pending bool            `json:"pending,omitempty"`
}

// Health weighted valuation of an obligation
type Health struct {
	ObligationID string          `json:"obligation_id"`
	Version      int64           `json:"version"`
	Requirement  RequirementType `json:"requirement"`
	Collateral   decimal.Decimal `json:"collateral"`
	Liability    decimal.Decimal `json:"liability"`
	Balances     []*BalanceValue `json:"balances"`
}

// Healthy collateral covers liability
func (h *Health) Healthy() bool {
	return h.Collateral.GreaterThanOrEqual(h.Liability)
}

// IRiskEngine risk engine interface
type IRiskEngine interface {
	// Evaluate values the obligation as if m were applied, banks must contain every referenced bank
	Evaluate(ctx context.Context, obligation *Obligation, m *Mutation, banks map[string]*Bank, now time.Time) (*Health, error)
	Health(ctx context.Context, obligation *Obligation, banks map[string]*Bank, req RequirementType, now time.Time) (*Health, error)
}

// IHealthCache short lived health reports, shared between api instances
type IHealthCache interface {
	Save(ctx context.Context, health *Health, ttl time.Duration) error
	// Find nil when no report of this obligation version is cached
	Find(ctx context.Context, obligationID string, version int64, req RequirementType) (*Health, error)
}
