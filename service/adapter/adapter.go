package adapter

import (
	"context"
	"fmt"
	"time"

	"lendcore/core"
	"lendcore/pkg/lending"
	"lendcore/pkg/number"
	obligationservice "lendcore/service/obligation"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/uuid"
	"github.com/shopspring/decimal"
)

type adapter struct {
	banks       core.IBankStore
	obligations core.IObligationStore
	batches     core.IBatchStore
	market      core.IExternalMarket
	risk        core.IRiskEngine

	valuationTolerance decimal.Decimal
}

// New adapter bridging market positions into wrapped balances
func New(
	banks core.IBankStore,
	obligations core.IObligationStore,
	batches core.IBatchStore,
	market core.IExternalMarket,
	risk core.IRiskEngine,
	cfg *core.Config,
) core.IExternalAdapter {
	_, _, valuationTolerance := cfg.Risk.Decimals()

	return &adapter{
		banks:              banks,
		obligations:        obligations,
		batches:            batches,
		market:             market,
		risk:               risk,
		valuationTolerance: valuationTolerance,
	}
}

func (a *adapter) loadWrappedBank(ctx context.Context, bankID string) (*core.Bank, error) {
	bank, err := a.banks.Find(ctx, bankID)
	if err != nil {
		return nil, err
	}

	if !bank.IsWrapped() {
		return nil, fmt.Errorf("%w: bank %s is not wrapped", core.ErrInvalidArgument, bankID)
	}

	return bank, nil
}

// Begin opens a session against the external obligation backing the wrapped balance
func (a *adapter) Begin(ctx context.Context, obligationID, bankID, externalObligationID string) (core.IExternalSession, error) {
	bank, err := a.loadWrappedBank(ctx, bankID)
	if err != nil {
		return nil, err
	}

	ob, err := a.obligations.Find(ctx, obligationID)
	if err != nil {
		return nil, err
	}

	if b := ob.FindBalance(bankID); b != nil {
		switch {
		case !b.Kind.IsWrapped():
			return nil, fmt.Errorf("%w: bank %s holds a %s balance", core.ErrIllegalBalanceState, bankID, b.Kind)
		case externalObligationID == "":
			externalObligationID = b.ExternalObligationID
		case b.ExternalObligationID != externalObligationID:
			return nil, fmt.Errorf("%w: balance is backed by external obligation %s", core.ErrIllegalBalanceState, b.ExternalObligationID)
		}
	}

	if externalObligationID == "" {
		return nil, fmt.Errorf("%w: external obligation required", core.ErrInvalidArgument)
	}

	return &session{
		adapter:              a,
		obligationID:         obligationID,
		bank:                 bank,
		externalObligationID: externalObligationID,
	}, nil
}

// RefreshExternalValuation refreshes the market, then stores its value of the position on the slot.
// This is the only way a wrapped balance starts counting as collateral.
func (a *adapter) RefreshExternalValuation(ctx context.Context, obligationID, bankID string, now time.Time) (*core.Obligation, error) {
	log := logger.FromContext(ctx).WithFields(map[string]interface{}{
		"obligation": obligationID,
		"bank":       bankID,
	})

	bank, err := a.loadWrappedBank(ctx, bankID)
	if err != nil {
		return nil, err
	}

	current, err := a.obligations.Find(ctx, obligationID)
	if err != nil {
		return nil, err
	}

	ob := current.Clone()
	b := ob.FindBalance(bankID)
	if b == nil || !b.Kind.IsWrapped() {
		return nil, fmt.Errorf("%w: no wrapped balance for bank %s", core.ErrIllegalBalanceState, bankID)
	}

	if _, err := a.market.RefreshReserve(ctx, bank.ExternalMarketID, bank.ExternalReserveID, bank.ExternalOracleID); err != nil {
		log.WithError(err).Errorln("market.RefreshReserve")
		return nil, err
	}

	if _, err := a.market.RefreshObligation(ctx, bank.ExternalMarketID, b.ExternalObligationID, []string{bank.ExternalReserveID}); err != nil {
		log.WithError(err).Errorln("market.RefreshObligation")
		return nil, err
	}

	position, err := a.market.Position(ctx, bank.ExternalMarketID, b.ExternalObligationID, bank.ExternalReserveID)
	if err != nil {
		log.WithError(err).Errorln("market.Position")
		return nil, err
	}

	lending.AccrueInterest(bank, now)
	expected := lending.AssetAmount(bank, b.Shares)
	if !number.ApproxEqual(position.Deposited, expected, a.valuationTolerance) {
		log.Errorf("external deposit %s, expected %s", position.Deposited, expected)
		return nil, fmt.Errorf("%w: external deposit %s, expected %s", core.ErrExternalStateMismatch, position.Deposited, expected)
	}

	b.MarketValue = position.MarketValue
	b.Valued = true
	b.UpdatedAt = now.Unix()

	event := core.NewEvent(uuid.New(), core.EventWrappedRefresh, ob.ObligationID, position.MarketValue, position, bankID)
	if err := a.batches.Commit(ctx, new(core.Batch).AddObligation(ob).AddEvent(event)); err != nil {
		log.WithError(err).Errorln("batches.Commit")
		return nil, err
	}

	return ob, nil
}

type session struct {
	adapter              *adapter
	obligationID         string
	bank                 *core.Bank
	externalObligationID string

	receipts []*core.RefreshReceipt
	done     bool
}

func (s *session) violation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", core.ErrExternalOrderingViolation, fmt.Sprintf(format, args...))
}

// RefreshReserve must be the first call of the session
func (s *session) RefreshReserve(ctx context.Context) error {
	if s.done || len(s.receipts) != 0 {
		return s.violation("refresh reserve must come first")
	}

	receipt, err := s.adapter.market.RefreshReserve(ctx, s.bank.ExternalMarketID, s.bank.ExternalReserveID, s.bank.ExternalOracleID)
	if err != nil {
		return err
	}

	s.receipts = append(s.receipts, receipt)
	return nil
}

// RefreshObligation must directly follow RefreshReserve
func (s *session) RefreshObligation(ctx context.Context) error {
	if s.done || len(s.receipts) != 1 || s.receipts[0].Step != core.RefreshReserve {
		return s.violation("refresh obligation must follow refresh reserve")
	}

	receipt, err := s.adapter.market.RefreshObligation(ctx, s.bank.ExternalMarketID, s.externalObligationID, []string{s.bank.ExternalReserveID})
	if err != nil {
		return err
	}

	s.receipts = append(s.receipts, receipt)
	return nil
}

func (s *session) checkRefreshed() error {
	if s.done {
		return s.violation("session already used")
	}

	if len(s.receipts) != 2 ||
		s.receipts[0].Step != core.RefreshReserve ||
		s.receipts[1].Step != core.RefreshObligation {
		return s.violation("refresh reserve and refresh obligation required")
	}

	if s.receipts[0].Slot != s.receipts[1].Slot {
		return s.violation("refreshes span slots %d and %d", s.receipts[0].Slot, s.receipts[1].Slot)
	}

	return nil
}

func (s *session) load(ctx context.Context, m *core.Mutation, kind core.MutationKind) (*core.Obligation, map[string]*core.Bank, error) {
	if m.Kind != kind || m.ObligationID != s.obligationID || m.BankID != s.bank.BankID {
		return nil, nil, fmt.Errorf("%w: request does not match the session", core.ErrInvalidArgument)
	}

	if err := m.Validate(); err != nil {
		return nil, nil, err
	}

	current, err := s.adapter.obligations.Find(ctx, s.obligationID)
	if err != nil {
		return nil, nil, err
	}

	banks, err := obligationservice.LoadBanks(ctx, s.adapter.banks, current, s.bank.BankID)
	if err != nil {
		return nil, nil, err
	}

	now := m.Now()
	for _, bank := range banks {
		lending.AccrueInterest(bank, now)
	}

	if err := lending.AssertOperational(banks[s.bank.BankID], kind); err != nil {
		return nil, nil, err
	}

	return current.Clone(), banks, nil
}

func (s *session) commit(ctx context.Context, ob *core.Obligation, banks map[string]*core.Bank, event *core.Event, hook func(ctx context.Context) error) error {
	batch := new(core.Batch).AddObligation(ob).AddEvent(event).AddHook(hook)
	for _, bank := range banks {
		batch.AddBank(bank)
	}

	s.done = true
	return s.adapter.batches.Commit(ctx, batch)
}

// Deposit records the deposit as pending valuation, the market call runs inside the commit
func (s *session) Deposit(ctx context.Context, m *core.Mutation) (*core.Obligation, error) {
	log := logger.FromContext(ctx).WithFields(map[string]interface{}{
		"trace":      m.TraceID,
		"obligation": s.obligationID,
		"bank":       s.bank.BankID,
	})

	if err := s.checkRefreshed(); err != nil {
		return nil, err
	}

	if m.ExternalObligationID != s.externalObligationID {
		return nil, fmt.Errorf("%w: request does not match the session", core.ErrInvalidArgument)
	}

	ob, banks, err := s.load(ctx, m, core.MutationWrappedDeposit)
	if err != nil {
		return nil, err
	}

	bank := banks[s.bank.BankID]
	if err := lending.CanUpsert(ob, bank.BankID, core.BalanceWrappedDeposit); err != nil {
		return nil, err
	}

	shares, err := lending.DepositWrapped(bank, m.Amount)
	if err != nil {
		return nil, err
	}

	b, err := lending.UpsertBalance(ob, bank.BankID, core.BalanceWrappedDeposit, shares, m.Now().Unix())
	if err != nil {
		return nil, err
	}

	b.ExternalObligationID = s.externalObligationID
	b.MarketValue = decimal.Zero
	b.Valued = false

	receipts := s.receipts
	event := core.NewEvent(m.TraceID, core.EventWrappedDeposit, ob.ObligationID, m.Amount, m, bank.BankID)
	if err := s.commit(ctx, ob, banks, event, func(ctx context.Context) error {
		return s.adapter.market.Deposit(ctx, receipts, s.externalObligationID, m.Amount)
	}); err != nil {
		log.WithError(err).Errorln("wrapped deposit")
		return nil, err
	}

	return ob, nil
}

// Withdraw burns wrapped shares after a risk check, the market call runs inside the commit
func (s *session) Withdraw(ctx context.Context, m *core.Mutation) (*core.Obligation, error) {
	log := logger.FromContext(ctx).WithFields(map[string]interface{}{
		"trace":      m.TraceID,
		"obligation": s.obligationID,
		"bank":       s.bank.BankID,
	})

	if err := s.checkRefreshed(); err != nil {
		return nil, err
	}

	ob, banks, err := s.load(ctx, m, core.MutationWrappedWithdraw)
	if err != nil {
		return nil, err
	}

	bank := banks[s.bank.BankID]
	b := ob.FindBalance(bank.BankID)
	if b == nil || !b.Kind.IsWrapped() {
		return nil, core.ErrInsufficientBalance
	}

	amount, shares := m.Amount, number.Ceil(m.Amount.Div(bank.AssetShareValue), number.Precision)
	if m.All || shares.GreaterThanOrEqual(b.Shares) {
		if !m.All && lending.AssetAmount(bank, shares.Sub(b.Shares)).GreaterThanOrEqual(bank.Dust()) {
			return nil, core.ErrInsufficientBalance
		}

		amount, shares = lending.AssetAmount(bank, b.Shares), b.Shares
	}

	// the remaining position keeps its share of the last valuation
	remaining := b.Shares.Sub(shares)
	if b.Shares.IsPositive() {
		b.MarketValue = number.Mul(b.MarketValue, number.Div(remaining, b.Shares))
	}

	lending.WithdrawWrapped(bank, shares)
	if _, err := lending.UpsertBalance(ob, bank.BankID, core.BalanceWrappedDeposit, shares.Neg(), m.Now().Unix()); err != nil {
		return nil, err
	}

	if _, err := s.adapter.risk.Evaluate(ctx, ob, m, banks, m.Now()); err != nil {
		return nil, err
	}

	receipts := s.receipts
	event := core.NewEvent(m.TraceID, core.EventWrappedWithdraw, ob.ObligationID, amount, m, bank.BankID)
	if err := s.commit(ctx, ob, banks, event, func(ctx context.Context) error {
		return s.adapter.market.Withdraw(ctx, receipts, s.externalObligationID, amount)
	}); err != nil {
		log.WithError(err).Errorln("wrapped withdraw")
		return nil, err
	}

	return ob, nil
}
