package core

import (
	"fmt"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/shopspring/decimal"
)

// MutationKind requested balance change
type MutationKind string

const (
	MutationDeposit         MutationKind = "deposit"
	MutationWithdraw        MutationKind = "withdraw"
	MutationBorrow          MutationKind = "borrow"
	MutationRepay           MutationKind = "repay"
	MutationCloseBalance    MutationKind = "close_balance"
	MutationWrappedDeposit  MutationKind = "wrapped_deposit"
	MutationWrappedWithdraw MutationKind = "wrapped_withdraw"
)

// ReducesRisk the mutation can only improve the obligation health
func (k MutationKind) ReducesRisk() bool {
	switch k {
	case MutationDeposit, MutationRepay, MutationCloseBalance, MutationWrappedDeposit:
		return true
	}

	return false
}

// AllowsAll the kind accepts the whole balance in place of an amount
func (k MutationKind) AllowsAll() bool {
	switch k {
	case MutationWithdraw, MutationRepay, MutationWrappedWithdraw:
		return true
	}

	return false
}

// Mutation typed request for one balance change, build it with the New* constructors
type Mutation struct {
	TraceID      string       `json:"trace_id" valid:"uuid,required"`
	Kind         MutationKind `json:"kind" valid:"in(deposit|withdraw|borrow|repay|close_balance|wrapped_deposit|wrapped_withdraw),required"`
	ObligationID string       `json:"obligation_id" valid:"uuid,required"`
	BankID       string       `json:"bank_id" valid:"uuid,required"`
	// asset units
	Amount decimal.Decimal `json:"amount" valid:"-"`
	// withdraw all or repay all, Amount is ignored
	All bool `json:"all,omitempty"`
	// wrapped mutations only
	ExternalObligationID string `json:"external_obligation_id,omitempty" valid:"-"`
	// host supplied clock, zero means now
	Time time.Time `json:"time" valid:"-"`
}

// Now request time, pinned to the wall clock on first use
func (m *Mutation) Now() time.Time {
	if m.Time.IsZero() {
		m.Time = time.Now()
	}

	return m.Time
}

func (m *Mutation) Validate() error {
	if _, err := govalidator.ValidateStruct(m); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	if m.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidArgument)
	}

	if m.All && !m.Kind.AllowsAll() {
		return fmt.Errorf("%w: %s does not take all", ErrInvalidArgument, m.Kind)
	}

	if m.Kind != MutationCloseBalance && !m.All && !m.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	}

	if m.Kind == MutationWrappedDeposit && m.ExternalObligationID == "" {
		return fmt.Errorf("%w: external obligation required", ErrInvalidArgument)
	}

	return nil
}

func newMutation(kind MutationKind, traceID, obligationID, bankID string, amount decimal.Decimal, all bool) (*Mutation, error) {
	m := &Mutation{
		TraceID:      traceID,
		Kind:         kind,
		ObligationID: obligationID,
		BankID:       bankID,
		Amount:       amount,
		All:          all,
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// NewDeposit deposit request
func NewDeposit(traceID, obligationID, bankID string, amount decimal.Decimal) (*Mutation, error) {
	return newMutation(MutationDeposit, traceID, obligationID, bankID, amount, false)
}

// NewWithdraw withdraw request, all withdraws the whole balance
func NewWithdraw(traceID, obligationID, bankID string, amount decimal.Decimal, all bool) (*Mutation, error) {
	return newMutation(MutationWithdraw, traceID, obligationID, bankID, amount, all)
}

// NewBorrow borrow request
func NewBorrow(traceID, obligationID, bankID string, amount decimal.Decimal) (*Mutation, error) {
	return newMutation(MutationBorrow, traceID, obligationID, bankID, amount, false)
}

// NewRepay repay request, all repays the whole liability
func NewRepay(traceID, obligationID, bankID string, amount decimal.Decimal, all bool) (*Mutation, error) {
	return newMutation(MutationRepay, traceID, obligationID, bankID, amount, all)
}

// NewCloseBalance close balance request
func NewCloseBalance(traceID, obligationID, bankID string) (*Mutation, error) {
	return newMutation(MutationCloseBalance, traceID, obligationID, bankID, decimal.Zero, false)
}

// NewWrappedDeposit deposit into an external position
func NewWrappedDeposit(traceID, obligationID, bankID, externalObligationID string, amount decimal.Decimal) (*Mutation, error) {
	m := &Mutation{
		TraceID:              traceID,
		Kind:                 MutationWrappedDeposit,
		ObligationID:         obligationID,
		BankID:               bankID,
		Amount:               amount,
		ExternalObligationID: externalObligationID,
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// NewWrappedWithdraw withdraw from an external position
func NewWrappedWithdraw(traceID, obligationID, bankID string, amount decimal.Decimal, all bool) (*Mutation, error) {
	return newMutation(MutationWrappedWithdraw, traceID, obligationID, bankID, amount, all)
}

// At sets the host clock
func (m *Mutation) At(t time.Time) *Mutation {
	m.Time = t
	return m
}

// CreateBankRequest create bank request
type CreateBankRequest struct {
	BankID   string     `json:"bank_id" valid:"uuid"`
	Symbol   string     `json:"symbol" valid:"required"`
	AssetID  string     `json:"asset_id" valid:"required"`
	Kind     BankKind   `json:"kind" valid:"in(native|staked|wrapped),required"`
	Decimals int32      `json:"decimals" valid:"-"`
	Config   BankConfig `json:"config" valid:"-"`

	StakePool string `json:"stake_pool,omitempty" valid:"-"`

	ExternalMarketID  string `json:"external_market_id,omitempty" valid:"-"`
	ExternalReserveID string `json:"external_reserve_id,omitempty" valid:"-"`
	ExternalOracleID  string `json:"external_oracle_id,omitempty" valid:"-"`

	Time time.Time `json:"time" valid:"-"`
}

// Validate check the request
func (r *CreateBankRequest) Validate() error {
	if _, err := govalidator.ValidateStruct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	switch r.Kind {
	case BankKindStaked:
		if r.StakePool == "" {
			return fmt.Errorf("%w: stake pool required", ErrInvalidArgument)
		}
	case BankKindWrapped:
		if r.ExternalMarketID == "" || r.ExternalReserveID == "" {
			return fmt.Errorf("%w: external market and reserve required", ErrInvalidArgument)
		}
	}

	return nil
}

// CreateObligationRequest create obligation request
type CreateObligationRequest struct {
	ObligationID string `json:"obligation_id" valid:"uuid"`
	Owner        string `json:"owner" valid:"required"`
}

// Validate check the request
func (r *CreateObligationRequest) Validate() error {
	if _, err := govalidator.ValidateStruct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	return nil
}
