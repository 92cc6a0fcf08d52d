package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// BankKind kind of the asset a bank holds
type BankKind string

const (
	// BankKindNative plain asset
	BankKindNative BankKind = "native"
	// BankKindStaked staked derivative token, valued through the appreciation rate
	BankKindStaked BankKind = "staked"
	// BankKindWrapped position held in an external lending market
	BankKindWrapped BankKind = "wrapped"
)

// OperationalState bank operational state
type OperationalState string

const (
	// StateOperational all actions allowed
	StateOperational OperationalState = "operational"
	// StatePaused no actions allowed
	StatePaused OperationalState = "paused"
	// StateReduceOnly only withdraw and repay allowed
	StateReduceOnly OperationalState = "reduce_only"
)

// RiskTier bank risk tier
type RiskTier string

const (
	// RiskTierCollateral regular bank
	RiskTierCollateral RiskTier = "collateral"
	// RiskTierIsolated deposits carry no collateral weight and the liability can't be mixed
	RiskTierIsolated RiskTier = "isolated"
)

// InterestRateConfig kinked interest curve and fee schedule, all rates are APR
type InterestRateConfig struct {
	OptimalUtilizationRate decimal.Decimal `sql:"type:decimal(32,16)" json:"optimal_utilization_rate"`
	PlateauInterestRate    decimal.Decimal `sql:"type:decimal(32,16)" json:"plateau_interest_rate"`
	MaxInterestRate        decimal.Decimal `sql:"type:decimal(32,16)" json:"max_interest_rate"`

	InsuranceFeeFixedAPR decimal.Decimal `sql:"type:decimal(32,16)" json:"insurance_fee_fixed_apr"`
	InsuranceIRFee       decimal.Decimal `sql:"type:decimal(32,16)" json:"insurance_ir_fee"`
	ProtocolFixedFeeAPR  decimal.Decimal `sql:"type:decimal(32,16)" json:"protocol_fixed_fee_apr"`
	ProtocolIRFee        decimal.Decimal `sql:"type:decimal(32,16)" json:"protocol_ir_fee"`
}

// BankConfig risk parameters assigned by the administrator
type BankConfig struct {
	AssetWeightInit      decimal.Decimal `sql:"type:decimal(32,16)" json:"asset_weight_init"`
	AssetWeightMaint     decimal.Decimal `sql:"type:decimal(32,16)" json:"asset_weight_maint"`
	LiabilityWeightInit  decimal.Decimal `sql:"type:decimal(32,16)" json:"liability_weight_init"`
	LiabilityWeightMaint decimal.Decimal `sql:"type:decimal(32,16)" json:"liability_weight_maint"`

	// zero means unlimited
	DepositLimit decimal.Decimal `sql:"type:decimal(64,16)" json:"deposit_limit"`
	BorrowLimit  decimal.Decimal `sql:"type:decimal(64,16)" json:"borrow_limit"`

	InterestRateConfig `gorm:"embedded" json:"interest_rate_config"`

	OperationalState OperationalState `sql:"size:16" json:"operational_state"`
	RiskTier         RiskTier         `sql:"size:16" json:"risk_tier"`
	OracleID         string           `sql:"size:64" json:"oracle_id"`
	// seconds, zero falls back to the risk default
	OracleMaxAge int64 `json:"oracle_max_age"`
}

// Bank per-asset pool
type Bank struct {
	ID      int64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	BankID  string   `sql:"size:36;unique_index:idx_banks_bank_id" json:"bank_id"`
	Symbol  string   `sql:"size:20" json:"symbol"`
	AssetID string   `sql:"size:64" json:"asset_id"`
	Kind    BankKind `sql:"size:12" json:"kind"`
	// fractional digits of the asset, one minor unit is the dust threshold
	Decimals int32 `json:"decimals"`

	LiquidityVault         decimal.Decimal `sql:"type:decimal(64,16)" json:"liquidity_vault"`
	AssetShareValue        decimal.Decimal `sql:"type:decimal(32,16)" json:"asset_share_value"`
	LiabilityShareValue    decimal.Decimal `sql:"type:decimal(32,16)" json:"liability_share_value"`
	TotalAssetShares       decimal.Decimal `sql:"type:decimal(64,16)" json:"total_asset_shares"`
	TotalLiabilityShares   decimal.Decimal `sql:"type:decimal(64,16)" json:"total_liability_shares"`
	CollectedInsuranceFees decimal.Decimal `sql:"type:decimal(64,16)" json:"collected_insurance_fees"`
	CollectedProtocolFees  decimal.Decimal `sql:"type:decimal(64,16)" json:"collected_protocol_fees"`
	// unix seconds of the last interest accrual
	AccruedAt int64 `json:"accrued_at"`

	BankConfig `gorm:"embedded" json:"config"`

	// staked banks
	StakePool         string          `sql:"size:64" json:"stake_pool,omitempty"`
	SolPool           string          `sql:"size:64" json:"sol_pool,omitempty"`
	AppreciationRate  decimal.Decimal `sql:"type:decimal(32,16)" json:"appreciation_rate"`
	AppreciationEpoch int64           `json:"appreciation_epoch"`

	// wrapped banks
	ExternalMarketID  string `sql:"size:64" json:"external_market_id,omitempty"`
	ExternalReserveID string `sql:"size:64" json:"external_reserve_id,omitempty"`
	ExternalOracleID  string `sql:"size:64" json:"external_oracle_id,omitempty"`

	Version   int64     `sql:"default:0" json:"version"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Clone copy of the bank, decimals are immutable so a shallow copy is enough
func (b *Bank) Clone() *Bank {
	clone := *b
	return &clone
}

// IsStaked staked collateral bank
func (b *Bank) IsStaked() bool {
	return b.Kind == BankKindStaked
}

// IsWrapped external position bank
func (b *Bank) IsWrapped() bool {
	return b.Kind == BankKindWrapped
}

// TotalDeposited total deposits in asset units
func (b *Bank) TotalDeposited() decimal.Decimal {
	return b.TotalAssetShares.Mul(b.AssetShareValue)
}

// TotalBorrowed total liabilities in asset units
func (b *Bank) TotalBorrowed() decimal.Decimal {
	return b.TotalLiabilityShares.Mul(b.LiabilityShareValue)
}

// AccruedTime accrual timestamp as time
func (b *Bank) AccruedTime() time.Time {
	return time.Unix(b.AccruedAt, 0)
}

// Dust one minor unit of the asset, amounts below it count as empty
func (b *Bank) Dust() decimal.Decimal {
	return decimal.New(1, -b.Decimals)
}

// IBankStore bank store interface
type IBankStore interface {
	Create(ctx context.Context, bank *Bank) error
	Find(ctx context.Context, bankID string) (*Bank, error)
	List(ctx context.Context) ([]*Bank, error)
	ListByKind(ctx context.Context, kind BankKind) ([]*Bank, error)
	// Update compare-and-swap on version, ErrConcurrentModification when stale
	Update(ctx context.Context, tx *db.DB, bank *Bank) error
}

// IBankService bank service interface
type IBankService interface {
	Create(ctx context.Context, req *CreateBankRequest) (*Bank, error)
	Configure(ctx context.Context, bankID string, cfg BankConfig, now time.Time) (*Bank, error)
	AccrueInterest(ctx context.Context, bankID string, now time.Time) (*Bank, error)
	RefreshAppreciationRate(ctx context.Context, bankID string, pool *StakePoolState) (*Bank, error)
	PropagateStakedSettings(ctx context.Context, bankID string) (*Bank, error)
	SaveStakedSettings(ctx context.Context, settings *StakedSettings) error
}
