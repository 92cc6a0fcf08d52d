package bank

import (
	"context"
	"fmt"
	"time"

	"lendcore/core"
	"lendcore/pkg/id"
	"lendcore/pkg/lending"
	"lendcore/pkg/metrics"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/uuid"
	"github.com/shopspring/decimal"
)

type service struct {
	banks    core.IBankStore
	settings core.IStakedSettingsStore
	batches  core.IBatchStore

	appreciationTolerance decimal.Decimal
}

// New new bank service
func New(
	banks core.IBankStore,
	settings core.IStakedSettingsStore,
	batches core.IBatchStore,
	cfg *core.Config,
) core.IBankService {
	_, appreciationTolerance, _ := cfg.Risk.Decimals()

	return &service{
		banks:                 banks,
		settings:              settings,
		batches:               batches,
		appreciationTolerance: appreciationTolerance,
	}
}

func (s *service) Create(ctx context.Context, req *core.CreateBankRequest) (*core.Bank, error) {
	log := logger.FromContext(ctx).WithField("symbol", req.Symbol)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.BankID == "" {
		req.BankID = uuid.New()
	}

	if _, err := s.banks.Find(ctx, req.BankID); err == nil {
		return nil, fmt.Errorf("%w: bank %s exists", core.ErrInvalidArgument, req.BankID)
	}

	bank := &core.Bank{
		BankID:            req.BankID,
		Symbol:            req.Symbol,
		AssetID:           req.AssetID,
		Kind:              req.Kind,
		Decimals:          req.Decimals,
		BankConfig:        req.Config,
		ExternalMarketID:  req.ExternalMarketID,
		ExternalReserveID: req.ExternalReserveID,
		ExternalOracleID:  req.ExternalOracleID,
	}

	if bank.IsStaked() {
		bank.StakePool = req.StakePool
		bank.SolPool = lending.DeriveSolPool(req.StakePool)
	}

	now := req.Time
	if now.IsZero() {
		now = time.Now()
	}

	lending.InitBank(bank, now)
	if err := lending.ValidateBankConfig(&bank.BankConfig); err != nil {
		return nil, err
	}

	event := core.NewEvent(uuid.New(), core.EventBankCreate, "", decimal.Zero, bank.BankConfig, bank.BankID)
	if err := s.batches.Commit(ctx, new(core.Batch).AddBank(bank).AddEvent(event)); err != nil {
		log.WithError(err).Errorln("batches.Commit")
		return nil, err
	}

	log.Infof("bank %s (%s) created", bank.BankID, bank.Kind)
	return bank, nil
}

// Configure accrues to now under the old config first, then swaps the config in
func (s *service) Configure(ctx context.Context, bankID string, cfg core.BankConfig, now time.Time) (*core.Bank, error) {
	log := logger.FromContext(ctx).WithField("bank", bankID)

	if err := lending.ValidateBankConfig(&cfg); err != nil {
		return nil, err
	}

	current, err := s.banks.Find(ctx, bankID)
	if err != nil {
		return nil, err
	}

	bank := current.Clone()
	lending.AccrueInterest(bank, now)
	bank.BankConfig = cfg

	event := core.NewEvent(uuid.New(), core.EventBankConfigure, "", decimal.Zero, cfg, bank.BankID)
	if err := s.batches.Commit(ctx, new(core.Batch).AddBank(bank).AddEvent(event)); err != nil {
		log.WithError(err).Errorln("batches.Commit")
		return nil, err
	}

	return bank, nil
}

// AccrueInterest permissionless, a no-op when the bank is already accrued to now
func (s *service) AccrueInterest(ctx context.Context, bankID string, now time.Time) (*core.Bank, error) {
	log := logger.FromContext(ctx).WithField("bank", bankID)

	current, err := s.banks.Find(ctx, bankID)
	if err != nil {
		return nil, err
	}

	bank := current.Clone()
	if !lending.AccrueInterest(bank, now) {
		return current, nil
	}

	traceID := id.UUIDFromString(fmt.Sprintf("accrue:%s:%d", bank.BankID, bank.AccruedAt))
	event := core.NewEvent(traceID, core.EventAccrueInterest, "", decimal.Zero, map[string]interface{}{
		"accrued_at":            bank.AccruedAt,
		"asset_share_value":     bank.AssetShareValue,
		"liability_share_value": bank.LiabilityShareValue,
	}, bank.BankID)

	if err := s.batches.Commit(ctx, new(core.Batch).AddBank(bank).AddEvent(event)); err != nil {
		log.WithError(err).Errorln("batches.Commit")
		return nil, err
	}

	ur, _ := lending.UtilizationRate(bank.TotalDeposited(), bank.TotalBorrowed()).Float64()
	metrics.Lending().ObserveAccrual(bank.Symbol)
	metrics.Lending().SetUtilization(bank.Symbol, ur)
	return bank, nil
}

// RefreshAppreciationRate permissionless
func (s *service) RefreshAppreciationRate(ctx context.Context, bankID string, pool *core.StakePoolState) (*core.Bank, error) {
	log := logger.FromContext(ctx).WithField("bank", bankID)

	current, err := s.banks.Find(ctx, bankID)
	if err != nil {
		return nil, err
	}

	bank := current.Clone()
	if err := lending.RefreshAppreciationRate(bank, pool, s.appreciationTolerance); err != nil {
		log.WithError(err).Infoln("refresh appreciation rate rejected")
		return nil, err
	}

	event := core.NewEvent(uuid.New(), core.EventAppreciationRefresh, "", decimal.Zero, pool, bank.BankID)
	if err := s.batches.Commit(ctx, new(core.Batch).AddBank(bank).AddEvent(event)); err != nil {
		log.WithError(err).Errorln("batches.Commit")
		return nil, err
	}

	rate, _ := bank.AppreciationRate.Float64()
	metrics.Lending().SetAppreciationRate(bank.Symbol, rate)
	return bank, nil
}

// PropagateStakedSettings permissionless
func (s *service) PropagateStakedSettings(ctx context.Context, bankID string) (*core.Bank, error) {
	log := logger.FromContext(ctx).WithField("bank", bankID)

	settings, err := s.settings.Get(ctx)
	if err != nil {
		log.WithError(err).Errorln("settings.Get")
		return nil, err
	}

	if settings == nil {
		return nil, fmt.Errorf("%w: staked settings not configured", core.ErrInvalidArgument)
	}

	current, err := s.banks.Find(ctx, bankID)
	if err != nil {
		return nil, err
	}

	bank := current.Clone()
	if err := lending.PropagateStakedSettings(bank, settings); err != nil {
		return nil, err
	}

	event := core.NewEvent(uuid.New(), core.EventStakedSettings, "", decimal.Zero, settings, bank.BankID)
	if err := s.batches.Commit(ctx, new(core.Batch).AddBank(bank).AddEvent(event)); err != nil {
		log.WithError(err).Errorln("batches.Commit")
		return nil, err
	}

	return bank, nil
}

func (s *service) SaveStakedSettings(ctx context.Context, settings *core.StakedSettings) error {
	// validated against the weights every staked bank must satisfy
	cfg := core.BankConfig{
		AssetWeightInit:      settings.AssetWeightInit,
		AssetWeightMaint:     settings.AssetWeightMaint,
		LiabilityWeightInit:  decimal.NewFromInt(1),
		LiabilityWeightMaint: decimal.NewFromInt(1),
		InterestRateConfig:   lending.DefaultInterestRateConfig(),
		DepositLimit:         settings.DepositLimit,
		OperationalState:     core.StateOperational,
		RiskTier:             settings.RiskTier,
		OracleMaxAge:         settings.OracleMaxAge,
	}

	if err := lending.ValidateBankConfig(&cfg); err != nil {
		return err
	}

	return s.settings.Save(ctx, settings)
}
