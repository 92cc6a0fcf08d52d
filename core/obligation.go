package core

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// BalanceKind discriminant of a balance slot
type BalanceKind string

const (
	// BalanceEmpty unused slot
	BalanceEmpty BalanceKind = ""
	// BalanceDeposit native deposit, amount in asset shares
	BalanceDeposit BalanceKind = "deposit"
	// BalanceLiability native liability, amount in liability shares
	BalanceLiability BalanceKind = "liability"
	// BalanceWrappedDeposit deposit held in an external market, valued by the adapter
	BalanceWrappedDeposit BalanceKind = "wrapped_deposit"
)

// IsDeposit deposit side
func (k BalanceKind) IsDeposit() bool {
	return k == BalanceDeposit || k == BalanceWrappedDeposit
}

// IsWrapped held in an external market
func (k BalanceKind) IsWrapped() bool {
	return k == BalanceWrappedDeposit
}

// Balance one obligation slot
type Balance struct {
	Active bool            `json:"active"`
	BankID string          `json:"bank_id,omitempty"`
	Kind   BalanceKind     `json:"kind,omitempty"`
	Shares decimal.Decimal `json:"shares"`

	// wrapped balances
	ExternalObligationID string          `json:"external_obligation_id,omitempty"`
	MarketValue          decimal.Decimal `json:"market_value"`
	Valued               bool            `json:"valued,omitempty"`

	UpdatedAt int64 `json:"updated_at,omitempty"`
}

// IsEmpty slot holds nothing
func (b *Balance) IsEmpty() bool {
	return !b.Active
}

// PendingValuation wrapped balance not refreshed since its last deposit
func (b *Balance) PendingValuation() bool {
	return b.Active && b.Kind.IsWrapped() && !b.Valued
}

// Reset back to an empty slot
func (b *Balance) Reset() {
	*b = Balance{}
}

// Balances fixed length slot array, persisted as json
type Balances []Balance

// Value implements driver.Valuer
func (s Balances) Value() (driver.Value, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}

	return string(data), nil
}

// Scan implements sql.Scanner
func (s *Balances) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		*s = nil
		return nil
	default:
		return errors.New("balances: unsupported scan source")
	}

	return json.Unmarshal(data, s)
}

// Obligation a user's balances across banks
type Obligation struct {
	ID           int64     `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	ObligationID string    `sql:"size:36;unique_index:idx_obligations_obligation_id" json:"obligation_id"`
	Owner        string    `sql:"size:64;index:idx_obligations_owner" json:"owner"`
	Balances     Balances  `sql:"type:text" json:"balances"`
	Version      int64     `sql:"default:0" json:"version"`
	CreatedAt    time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// NewObligation obligation with the given number of empty slots
func NewObligation(obligationID, owner string, slots int) *Obligation {
	return &Obligation{
		ObligationID: obligationID,
		Owner:        owner,
		Balances:     make(Balances, slots),
	}
}

// Clone deep copy of the obligation
func (o *Obligation) Clone() *Obligation {
	clone := *o
	clone.Balances = make(Balances, len(o.Balances))
	copy(clone.Balances, o.Balances)
	return &clone
}

// FindBalance active balance of the bank, nil if none
func (o *Obligation) FindBalance(bankID string) *Balance {
	for idx := range o.Balances {
		if b := &o.Balances[idx]; b.Active && b.BankID == bankID {
			return b
		}
	}

	return nil
}

// ActiveBalances pointers to all active slots in slot order
func (o *Obligation) ActiveBalances() []*Balance {
	var balances []*Balance
	for idx := range o.Balances {
		if b := &o.Balances[idx]; b.Active {
			balances = append(balances, b)
		}
	}

	return balances
}

// BankIDs banks referenced by active balances
func (o *Obligation) BankIDs() []string {
	var ids []string
	for _, b := range o.ActiveBalances() {
		ids = append(ids, b.BankID)
	}

	return ids
}

// IObligationStore obligation store interface
type IObligationStore interface {
	Create(ctx context.Context, obligation *Obligation) error
	Find(ctx context.Context, obligationID string) (*Obligation, error)
	ListByOwner(ctx context.Context, owner string) ([]*Obligation, error)
	// Update compare-and-swap on version, ErrConcurrentModification when stale
	Update(ctx context.Context, tx *db.DB, obligation *Obligation) error
}

// IObligationService obligation service interface
type IObligationService interface {
	Create(ctx context.Context, req *CreateObligationRequest) (*Obligation, error)
	Deposit(ctx context.Context, m *Mutation) (*Obligation, error)
	Withdraw(ctx context.Context, m *Mutation) (*Obligation, error)
	Borrow(ctx context.Context, m *Mutation) (*Obligation, error)
	Repay(ctx context.Context, m *Mutation) (*Obligation, error)
	CloseBalance(ctx context.Context, m *Mutation) (*Obligation, error)
}
