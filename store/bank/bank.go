package bank

import (
	"context"
	"fmt"

	"lendcore/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type bankStore struct {
	db *db.DB
}

// New new bank store
func New(db *db.DB) core.IBankStore {
	return &bankStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Bank{})
		if err := tx.AutoMigrate(core.Bank{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *bankStore) Create(ctx context.Context, bank *core.Bank) error {
	return s.db.Update().Where("bank_id = ?", bank.BankID).FirstOrCreate(bank).Error
}

func (s *bankStore) Find(ctx context.Context, bankID string) (*core.Bank, error) {
	var bank core.Bank
	if err := s.db.View().Where("bank_id = ?", bankID).First(&bank).Error; err != nil {
		if store.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: %s", core.ErrBankNotFound, bankID)
		}

		return nil, err
	}

	return &bank, nil
}

func (s *bankStore) List(ctx context.Context) ([]*core.Bank, error) {
	var banks []*core.Bank
	if err := s.db.View().Order("id").Find(&banks).Error; err != nil {
		return nil, err
	}

	return banks, nil
}

func (s *bankStore) ListByKind(ctx context.Context, kind core.BankKind) ([]*core.Bank, error) {
	var banks []*core.Bank
	if err := s.db.View().Where("kind = ?", kind).Order("id").Find(&banks).Error; err != nil {
		return nil, err
	}

	return banks, nil
}

func toUpdateParams(bank *core.Bank) map[string]interface{} {
	return map[string]interface{}{
		"liquidity_vault":          bank.LiquidityVault,
		"asset_share_value":        bank.AssetShareValue,
		"liability_share_value":    bank.LiabilityShareValue,
		"total_asset_shares":       bank.TotalAssetShares,
		"total_liability_shares":   bank.TotalLiabilityShares,
		"collected_insurance_fees": bank.CollectedInsuranceFees,
		"collected_protocol_fees":  bank.CollectedProtocolFees,
		"accrued_at":               bank.AccruedAt,
		"asset_weight_init":        bank.AssetWeightInit,
		"asset_weight_maint":       bank.AssetWeightMaint,
		"liability_weight_init":    bank.LiabilityWeightInit,
		"liability_weight_maint":   bank.LiabilityWeightMaint,
		"deposit_limit":            bank.DepositLimit,
		"borrow_limit":             bank.BorrowLimit,
		"optimal_utilization_rate": bank.OptimalUtilizationRate,
		"plateau_interest_rate":    bank.PlateauInterestRate,
		"max_interest_rate":        bank.MaxInterestRate,
		"insurance_fee_fixed_apr":  bank.InsuranceFeeFixedAPR,
		"insurance_ir_fee":         bank.InsuranceIRFee,
		"protocol_fixed_fee_apr":   bank.ProtocolFixedFeeAPR,
		"protocol_ir_fee":          bank.ProtocolIRFee,
		"operational_state":        bank.OperationalState,
		"risk_tier":                bank.RiskTier,
		"oracle_id":                bank.OracleID,
		"oracle_max_age":           bank.OracleMaxAge,
		"appreciation_rate":        bank.AppreciationRate,
		"appreciation_epoch":       bank.AppreciationEpoch,
	}
}

func (s *bankStore) Update(ctx context.Context, tx *db.DB, bank *core.Bank) error {
	updates := toUpdateParams(bank)
	updates["version"] = bank.Version + 1

	r := tx.Update().Model(core.Bank{}).Where("bank_id = ? AND version = ?", bank.BankID, bank.Version).Updates(updates)
	if r.Error != nil {
		return fmt.Errorf("update bank %s: %w", bank.BankID, r.Error)
	}

	if r.RowsAffected == 0 {
		return fmt.Errorf("%w: bank %s version %d", core.ErrConcurrentModification, bank.BankID, bank.Version)
	}

	bank.Version++
	return nil
}
