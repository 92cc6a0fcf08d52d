package lending

import (
	"fmt"
	"time"

	"lendcore/core"
	"lendcore/pkg/number"

	"github.com/shopspring/decimal"
)

// InitBank fills share values and accrual time of a new bank
func InitBank(bank *core.Bank, now time.Time) {
	bank.AssetShareValue = number.One
	bank.LiabilityShareValue = number.One
	bank.AccruedAt = now.Unix()

	if bank.IsStaked() && !bank.AppreciationRate.IsPositive() {
		bank.AppreciationRate = number.One
	}

	if bank.OperationalState == "" {
		bank.OperationalState = core.StateOperational
	}

	if bank.RiskTier == "" {
		bank.RiskTier = core.RiskTierCollateral
	}
}

// ValidateBankConfig weights and interest curve must be in range
//
//	asset weight:     0 <= init <= maint <= 1
//	liability weight: 1 <= maint <= init
func ValidateBankConfig(cfg *core.BankConfig) error {
	if cfg.AssetWeightInit.IsNegative() || cfg.AssetWeightInit.GreaterThan(number.One) {
		return fmt.Errorf("%w: asset weight init out of [0, 1]", core.ErrInvalidBankConfig)
	}

	if cfg.AssetWeightMaint.LessThan(cfg.AssetWeightInit) || cfg.AssetWeightMaint.GreaterThan(number.One) {
		return fmt.Errorf("%w: asset weight maint out of [init, 1]", core.ErrInvalidBankConfig)
	}

	if cfg.LiabilityWeightMaint.LessThan(number.One) {
		return fmt.Errorf("%w: liability weight maint below 1", core.ErrInvalidBankConfig)
	}

	if cfg.LiabilityWeightInit.LessThan(cfg.LiabilityWeightMaint) {
		return fmt.Errorf("%w: liability weight init below maint", core.ErrInvalidBankConfig)
	}

	if cfg.DepositLimit.IsNegative() || cfg.BorrowLimit.IsNegative() {
		return fmt.Errorf("%w: negative limit", core.ErrInvalidBankConfig)
	}

	switch cfg.OperationalState {
	case core.StateOperational, core.StatePaused, core.StateReduceOnly:
	default:
		return fmt.Errorf("%w: unknown operational state %q", core.ErrInvalidBankConfig, cfg.OperationalState)
	}

	switch cfg.RiskTier {
	case core.RiskTierCollateral, core.RiskTierIsolated:
	default:
		return fmt.Errorf("%w: unknown risk tier %q", core.ErrInvalidBankConfig, cfg.RiskTier)
	}

	if cfg.OracleMaxAge < 0 {
		return fmt.Errorf("%w: negative oracle max age", core.ErrInvalidBankConfig)
	}

	return ValidateInterestRateConfig(&cfg.InterestRateConfig)
}

// GetWeights asset and liability weights for the requirement type
func GetWeights(bank *core.Bank, req core.RequirementType) (asset, liability decimal.Decimal) {
	switch req {
	case core.RequirementInitial:
		asset, liability = bank.AssetWeightInit, bank.LiabilityWeightInit
	case core.RequirementMaintenance:
		asset, liability = bank.AssetWeightMaint, bank.LiabilityWeightMaint
	default:
		return number.One, number.One
	}

	if bank.RiskTier == core.RiskTierIsolated {
		asset = decimal.Zero
	}

	return asset, liability
}

// AccrueInterest applies interest since the last accrual, returns false when now is not after it
func AccrueInterest(bank *core.Bank, now time.Time) bool {
	ts := now.Unix()
	delta := ts - bank.AccruedAt
	if delta <= 0 {
		return false
	}

	bank.AccruedAt = ts

	if !bank.AssetShareValue.IsPositive() {
		bank.AssetShareValue = number.One
	}

	if !bank.LiabilityShareValue.IsPositive() {
		bank.LiabilityShareValue = number.One
	}

	deposited, borrowed := bank.TotalDeposited(), bank.TotalBorrowed()
	if !deposited.IsPositive() || !borrowed.IsPositive() {
		return true
	}

	ur := UtilizationRate(deposited, borrowed)
	rates := CalcInterestRate(&bank.InterestRateConfig, ur)
	elapsed := number.Div(decimal.NewFromInt(delta), SecondsPerYear)

	bank.AssetShareValue = number.Mul(bank.AssetShareValue, number.One.Add(number.Mul(rates.LendingAPR, elapsed)))
	bank.LiabilityShareValue = number.Mul(bank.LiabilityShareValue, number.One.Add(number.Mul(rates.BorrowingAPR, elapsed)))
	bank.CollectedInsuranceFees = bank.CollectedInsuranceFees.Add(number.Mul(borrowed, number.Mul(rates.InsuranceFeeAPR, elapsed)))
	bank.CollectedProtocolFees = bank.CollectedProtocolFees.Add(number.Mul(borrowed, number.Mul(rates.ProtocolFeeAPR, elapsed)))

	return true
}

// AssertOperational bank accepts the mutation in its operational state
func AssertOperational(bank *core.Bank, kind core.MutationKind) error {
	switch bank.OperationalState {
	case core.StatePaused:
		return core.ErrBankPaused
	case core.StateReduceOnly:
		switch kind {
		case core.MutationDeposit, core.MutationBorrow, core.MutationWrappedDeposit:
			return core.ErrBankReduceOnly
		}
	}

	return nil
}

// Deposit adds amount to the vault, returns the minted asset shares
func Deposit(bank *core.Bank, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", core.ErrInvalidArgument)
	}

	shares := number.Div(amount, bank.AssetShareValue)
	total := bank.TotalAssetShares.Add(shares)

	if limit := bank.DepositLimit; limit.IsPositive() && total.Mul(bank.AssetShareValue).GreaterThanOrEqual(limit) {
		return decimal.Zero, core.ErrBankAssetCapacityExceeded
	}

	bank.TotalAssetShares = total
	bank.LiquidityVault = bank.LiquidityVault.Add(amount)
	return shares, nil
}

// Withdraw removes amount from the vault and burns shares
func Withdraw(bank *core.Bank, amount, shares decimal.Decimal) error {
	if bank.LiquidityVault.LessThan(amount) {
		return core.ErrInsufficientLiquidity
	}

	bank.TotalAssetShares = decimal.Max(bank.TotalAssetShares.Sub(shares), decimal.Zero)
	bank.LiquidityVault = bank.LiquidityVault.Sub(amount)
	return nil
}

// Borrow takes amount out of the vault, returns the minted liability shares
func Borrow(bank *core.Bank, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", core.ErrInvalidArgument)
	}

	if bank.LiquidityVault.LessThan(amount) {
		return decimal.Zero, core.ErrInsufficientLiquidity
	}

	shares := number.Ceil(amount.Div(bank.LiabilityShareValue), number.Precision)
	total := bank.TotalLiabilityShares.Add(shares)

	if limit := bank.BorrowLimit; limit.IsPositive() && total.Mul(bank.LiabilityShareValue).GreaterThanOrEqual(limit) {
		return decimal.Zero, core.ErrBankLiabilityCapacityExceeded
	}

	bank.TotalLiabilityShares = total
	bank.LiquidityVault = bank.LiquidityVault.Sub(amount)
	return shares, nil
}

// Repay returns amount to the vault and burns liability shares
func Repay(bank *core.Bank, amount, shares decimal.Decimal) {
	bank.TotalLiabilityShares = decimal.Max(bank.TotalLiabilityShares.Sub(shares), decimal.Zero)
	bank.LiquidityVault = bank.LiquidityVault.Add(amount)
}

// AssetAmount asset units represented by shares
func AssetAmount(bank *core.Bank, shares decimal.Decimal) decimal.Decimal {
	return number.Mul(shares, bank.AssetShareValue)
}

// LiabilityAmount liability units represented by shares
func LiabilityAmount(bank *core.Bank, shares decimal.Decimal) decimal.Decimal {
	return number.Ceil(shares.Mul(bank.LiabilityShareValue), number.Precision)
}

// DepositWrapped records a deposit held by an external market, the vault is untouched
func DepositWrapped(bank *core.Bank, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", core.ErrInvalidArgument)
	}

	shares := number.Div(amount, bank.AssetShareValue)
	total := bank.TotalAssetShares.Add(shares)

	if limit := bank.DepositLimit; limit.IsPositive() && total.Mul(bank.AssetShareValue).GreaterThanOrEqual(limit) {
		return decimal.Zero, core.ErrBankAssetCapacityExceeded
	}

	bank.TotalAssetShares = total
	return shares, nil
}

// WithdrawWrapped burns shares of an external deposit
func WithdrawWrapped(bank *core.Bank, shares decimal.Decimal) {
	bank.TotalAssetShares = decimal.Max(bank.TotalAssetShares.Sub(shares), decimal.Zero)
}
