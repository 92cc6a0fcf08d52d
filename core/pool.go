package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// StakePoolState snapshot of an external staking pool, supplied by the caller of a rate refresh
type StakePoolState struct {
	PoolID  string `json:"pool_id"`
	Mint    string `json:"mint"`
	SolPool string `json:"sol_pool"`
	// underlying held by the pool
	TotalLamports decimal.Decimal `json:"total_lamports"`
	// derivative tokens outstanding
	PoolTokenSupply decimal.Decimal `json:"pool_token_supply"`
	// rate the pool reports for itself, zero when not reported
	ReportedRate decimal.Decimal `json:"reported_rate"`
	Epoch        int64           `json:"epoch"`
	// a slashing or penalty event lowered the pool value
	Penalized bool `json:"penalized"`
}

// StakedSettings group wide settings copied onto every staked bank
type StakedSettings struct {
	AssetWeightInit  decimal.Decimal `json:"asset_weight_init"`
	AssetWeightMaint decimal.Decimal `json:"asset_weight_maint"`
	DepositLimit     decimal.Decimal `json:"deposit_limit"`
	OracleID         string          `json:"oracle_id"`
	OracleMaxAge     int64           `json:"oracle_max_age"`
	RiskTier         RiskTier        `json:"risk_tier"`
}

// IStakedSettingsStore staked settings store interface
type IStakedSettingsStore interface {
	// Get nil when the settings were never saved
	Get(ctx context.Context) (*StakedSettings, error)
	Save(ctx context.Context, settings *StakedSettings) error
}
