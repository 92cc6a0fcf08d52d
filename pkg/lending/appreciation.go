package lending

import (
	"fmt"

	"lendcore/core"
	"lendcore/pkg/number"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// DeriveSolPool id of the reserve account that belongs to a stake pool
func DeriveSolPool(stakePool string) string {
	ns, err := uuid.FromString(stakePool)
	if err != nil {
		ns = uuid.NewV5(uuid.Nil, stakePool)
	}

	return uuid.NewV5(ns, "sol_pool").String()
}

// PoolExchangeRate underlying value of one pool token
func PoolExchangeRate(pool *core.StakePoolState) decimal.Decimal {
	return number.Div(pool.TotalLamports, pool.PoolTokenSupply)
}

// ValidatePoolIdentity pool must be the one the bank was created for
func ValidatePoolIdentity(bank *core.Bank, pool *core.StakePoolState) error {
	switch {
	case pool.PoolID != bank.StakePool:
		return fmt.Errorf("%w: stake pool %s", core.ErrPoolIdentityMismatch, pool.PoolID)
	case pool.Mint != bank.AssetID:
		return fmt.Errorf("%w: mint %s", core.ErrPoolIdentityMismatch, pool.Mint)
	case pool.SolPool != bank.SolPool, pool.SolPool != DeriveSolPool(pool.PoolID):
		return fmt.Errorf("%w: sol pool %s", core.ErrPoolIdentityMismatch, pool.SolPool)
	}

	return nil
}

// RefreshAppreciationRate recompute the cached rate of a staked bank from the pool state.
// The cached rate never decreases unless the pool reports a penalty.
func RefreshAppreciationRate(bank *core.Bank, pool *core.StakePoolState, tolerance decimal.Decimal) error {
	if !bank.IsStaked() {
		return fmt.Errorf("%w: bank %s is not staked", core.ErrInvalidArgument, bank.BankID)
	}

	if pool == nil {
		return core.ErrStaleOrInvalidPoolState
	}

	if err := ValidatePoolIdentity(bank, pool); err != nil {
		return err
	}

	if !pool.PoolTokenSupply.IsPositive() || pool.TotalLamports.IsNegative() {
		return fmt.Errorf("%w: empty pool", core.ErrStaleOrInvalidPoolState)
	}

	if pool.Epoch < bank.AppreciationEpoch {
		return fmt.Errorf("%w: epoch %d before %d", core.ErrStaleOrInvalidPoolState, pool.Epoch, bank.AppreciationEpoch)
	}

	rate := PoolExchangeRate(pool)
	if pool.ReportedRate.IsPositive() && !number.ApproxEqual(pool.ReportedRate, rate, tolerance) {
		return fmt.Errorf("%w: reported rate %s, computed %s", core.ErrStaleOrInvalidPoolState, pool.ReportedRate, rate)
	}

	current := bank.AppreciationRate
	if !pool.Penalized && current.IsPositive() && rate.LessThan(current.Sub(tolerance)) {
		return fmt.Errorf("%w: rate dropped from %s to %s", core.ErrStaleOrInvalidPoolState, current, rate)
	}

	if pool.Penalized || rate.GreaterThan(current) {
		bank.AppreciationRate = rate
	}

	bank.AppreciationEpoch = pool.Epoch
	return nil
}

// PropagateStakedSettings copies group wide staked settings onto a staked bank
func PropagateStakedSettings(bank *core.Bank, settings *core.StakedSettings) error {
	if !bank.IsStaked() {
		return fmt.Errorf("%w: bank %s is not staked", core.ErrInvalidArgument, bank.BankID)
	}

	cfg := bank.BankConfig
	cfg.AssetWeightInit = settings.AssetWeightInit
	cfg.AssetWeightMaint = settings.AssetWeightMaint
	cfg.DepositLimit = settings.DepositLimit
	cfg.OracleID = settings.OracleID
	cfg.OracleMaxAge = settings.OracleMaxAge
	cfg.RiskTier = settings.RiskTier

	if err := ValidateBankConfig(&cfg); err != nil {
		return err
	}

	bank.BankConfig = cfg
	return nil
}
