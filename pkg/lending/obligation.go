package lending

import (
	"fmt"

	"lendcore/core"
	"lendcore/pkg/number"

	"github.com/shopspring/decimal"
)

func freeSlot(ob *core.Obligation) *core.Balance {
	for idx := range ob.Balances {
		if b := &ob.Balances[idx]; !b.Active {
			return b
		}
	}

	return nil
}

// CanUpsert reports whether UpsertBalance would find or allocate a slot
func CanUpsert(ob *core.Obligation, bankID string, kind core.BalanceKind) error {
	if b := ob.FindBalance(bankID); b != nil {
		if b.Kind != kind {
			return fmt.Errorf("%w: bank %s holds a %s balance", core.ErrIllegalBalanceState, bankID, b.Kind)
		}

		return nil
	}

	if freeSlot(ob) == nil {
		return core.ErrNoFreeSlot
	}

	return nil
}

// UpsertBalance finds or allocates the slot of bankID and applies delta shares.
// The slot is released when its shares return to zero.
func UpsertBalance(ob *core.Obligation, bankID string, kind core.BalanceKind, delta decimal.Decimal, now int64) (*core.Balance, error) {
	if err := CanUpsert(ob, bankID, kind); err != nil {
		return nil, err
	}

	b := ob.FindBalance(bankID)
	if b == nil {
		if !delta.IsPositive() {
			return nil, core.ErrInsufficientBalance
		}

		b = freeSlot(ob)
		*b = core.Balance{
			Active: true,
			BankID: bankID,
			Kind:   kind,
		}
	}

	shares := b.Shares.Add(delta)
	if shares.IsNegative() {
		return nil, core.ErrInsufficientBalance
	}

	b.Shares = shares
	b.UpdatedAt = now

	if shares.IsZero() {
		b.Reset()
	}

	return b, nil
}

// BalanceAmount asset units held by an active balance
func BalanceAmount(bank *core.Bank, b *core.Balance) decimal.Decimal {
	switch b.Kind {
	case core.BalanceLiability:
		return LiabilityAmount(bank, b.Shares)
	default:
		return AssetAmount(bank, b.Shares)
	}
}

// ValueAt signed value of every active balance, deposits positive and liabilities negative.
// prices maps bank id to the price of its asset; wrapped balances use their refreshed
// market value and count zero while pending valuation.
func ValueAt(ob *core.Obligation, banks map[string]*core.Bank, prices map[string]decimal.Decimal) ([]*core.BalanceValue, error) {
	var values []*core.BalanceValue
	for _, b := range ob.ActiveBalances() {
		bank, ok := banks[b.BankID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", core.ErrBankNotFound, b.BankID)
		}

		v := &core.BalanceValue{
			BankID: b.BankID,
			Kind:   b.Kind,
			Amount: BalanceAmount(bank, b),
			Weight: number.One,
		}

		switch {
		case b.Kind.IsWrapped():
			v.Pending = !b.Valued
			if b.Valued {
				v.Value = b.MarketValue
			}
		default:
			price, ok := prices[b.BankID]
			if !ok {
				return nil, fmt.Errorf("%w: no price for bank %s", core.ErrOracleUnusable, b.BankID)
			}

			v.Value = number.Mul(v.Amount, price)
			if bank.IsStaked() {
				v.Value = number.Mul(v.Value, bank.AppreciationRate)
			}
		}

		if b.Kind == core.BalanceLiability {
			v.Value = v.Value.Neg()
		}

		values = append(values, v)
	}

	return values, nil
}

func checkIsolated(ob *core.Obligation, banks map[string]*core.Bank, bank *core.Bank) error {
	for _, b := range ob.ActiveBalances() {
		if b.Kind != core.BalanceLiability || b.BankID == bank.BankID {
			continue
		}

		other, ok := banks[b.BankID]
		if !ok {
			return fmt.Errorf("%w: %s", core.ErrBankNotFound, b.BankID)
		}

		if bank.RiskTier == core.RiskTierIsolated || other.RiskTier == core.RiskTierIsolated {
			return core.ErrIsolatedAccountIllegalState
		}
	}

	return nil
}

// ApplyMutation applies a native balance mutation to the obligation and its bank, returns the
// effective amount. Both are left in an undefined state on error, callers pass clones.
func ApplyMutation(ob *core.Obligation, banks map[string]*core.Bank, m *core.Mutation) (decimal.Decimal, error) {
	bank, ok := banks[m.BankID]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", core.ErrBankNotFound, m.BankID)
	}

	if err := AssertOperational(bank, m.Kind); err != nil {
		return decimal.Zero, err
	}

	now := m.Now().Unix()

	switch m.Kind {
	case core.MutationDeposit:
		if bank.IsWrapped() {
			return decimal.Zero, fmt.Errorf("%w: wrapped bank deposits go through the adapter", core.ErrInvalidArgument)
		}

		if err := CanUpsert(ob, bank.BankID, core.BalanceDeposit); err != nil {
			return decimal.Zero, err
		}

		shares, err := Deposit(bank, m.Amount)
		if err != nil {
			return decimal.Zero, err
		}

		_, err = UpsertBalance(ob, bank.BankID, core.BalanceDeposit, shares, now)
		return m.Amount, err

	case core.MutationWithdraw:
		b := ob.FindBalance(bank.BankID)
		if b == nil {
			return decimal.Zero, core.ErrInsufficientBalance
		}

		if b.Kind != core.BalanceDeposit {
			return decimal.Zero, fmt.Errorf("%w: bank %s holds a %s balance", core.ErrIllegalBalanceState, bank.BankID, b.Kind)
		}

		amount, shares := withdrawShares(bank, b, m)
		if shares.GreaterThan(b.Shares) {
			return decimal.Zero, core.ErrInsufficientBalance
		}

		if err := Withdraw(bank, amount, shares); err != nil {
			return decimal.Zero, err
		}

		_, err := UpsertBalance(ob, bank.BankID, core.BalanceDeposit, shares.Neg(), now)
		return amount, err

	case core.MutationBorrow:
		if bank.IsWrapped() || bank.IsStaked() {
			return decimal.Zero, fmt.Errorf("%w: bank %s can't be borrowed from", core.ErrInvalidArgument, bank.BankID)
		}

		if err := CanUpsert(ob, bank.BankID, core.BalanceLiability); err != nil {
			return decimal.Zero, err
		}

		if err := checkIsolated(ob, banks, bank); err != nil {
			return decimal.Zero, err
		}

		shares, err := Borrow(bank, m.Amount)
		if err != nil {
			return decimal.Zero, err
		}

		_, err = UpsertBalance(ob, bank.BankID, core.BalanceLiability, shares, now)
		return m.Amount, err

	case core.MutationRepay:
		b := ob.FindBalance(bank.BankID)
		if b == nil || b.Kind != core.BalanceLiability {
			return decimal.Zero, core.ErrNoLiabilityFound
		}

		amount, shares := repayShares(bank, b, m)
		if m.All && amount.LessThan(bank.Dust()) {
			return decimal.Zero, core.ErrNoLiabilityFound
		}

		Repay(bank, amount, shares)
		_, err := UpsertBalance(ob, bank.BankID, core.BalanceLiability, shares.Neg(), now)
		return amount, err

	case core.MutationCloseBalance:
		return decimal.Zero, CloseBalance(ob, bank)

	default:
		return decimal.Zero, fmt.Errorf("%w: mutation %s", core.ErrInvalidArgument, m.Kind)
	}
}

// withdrawShares rounds the burned shares up, a shortfall below one minor unit is forgiven
func withdrawShares(bank *core.Bank, b *core.Balance, m *core.Mutation) (decimal.Decimal, decimal.Decimal) {
	if m.All {
		return AssetAmount(bank, b.Shares), b.Shares
	}

	shares := number.Ceil(m.Amount.Div(bank.AssetShareValue), number.Precision)
	if shares.GreaterThan(b.Shares) && AssetAmount(bank, shares.Sub(b.Shares)).LessThan(bank.Dust()) {
		shares = b.Shares
	}

	return m.Amount, shares
}

// repayShares rounds the burned shares down, repaying more than the liability is capped
func repayShares(bank *core.Bank, b *core.Balance, m *core.Mutation) (decimal.Decimal, decimal.Decimal) {
	if m.All {
		return LiabilityAmount(bank, b.Shares), b.Shares
	}

	shares := number.Floor(m.Amount.Div(bank.LiabilityShareValue), number.Precision)
	if shares.GreaterThanOrEqual(b.Shares) {
		return LiabilityAmount(bank, b.Shares), b.Shares
	}

	return m.Amount, shares
}

// CloseBalance releases a balance holding less than one minor unit
func CloseBalance(ob *core.Obligation, bank *core.Bank) error {
	b := ob.FindBalance(bank.BankID)
	if b == nil {
		return fmt.Errorf("%w: no balance for bank %s", core.ErrIllegalBalanceState, bank.BankID)
	}

	if BalanceAmount(bank, b).GreaterThanOrEqual(bank.Dust()) {
		return fmt.Errorf("%w: balance is not empty", core.ErrIllegalBalanceState)
	}

	switch b.Kind {
	case core.BalanceLiability:
		bank.TotalLiabilityShares = decimal.Max(bank.TotalLiabilityShares.Sub(b.Shares), decimal.Zero)
	default:
		bank.TotalAssetShares = decimal.Max(bank.TotalAssetShares.Sub(b.Shares), decimal.Zero)
	}

	b.Reset()
	return nil
}
