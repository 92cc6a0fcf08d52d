package bank

import (
	"context"
	"errors"
	"testing"
	"time"

	"lendcore/core"
	"lendcore/pkg/lending"
	"lendcore/pkg/number"
	"lendcore/service/servicetest"
	"lendcore/store/storetest"

	"github.com/fox-one/pkg/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func bankConfig() core.BankConfig {
	return core.BankConfig{
		AssetWeightInit:      number.Decimal("0.9"),
		AssetWeightMaint:     number.Decimal("0.95"),
		LiabilityWeightInit:  number.Decimal("1.1"),
		LiabilityWeightMaint: number.Decimal("1.05"),
		InterestRateConfig:   lending.DefaultInterestRateConfig(),
		OperationalState:     core.StateOperational,
		RiskTier:             core.RiskTierCollateral,
		OracleID:             "sol",
	}
}

func stakedRequest() *core.CreateBankRequest {
	return &core.CreateBankRequest{
		Symbol:    "LST",
		AssetID:   uuid.New(),
		Kind:      core.BankKindStaked,
		Decimals:  9,
		Config:    bankConfig(),
		StakePool: uuid.New(),
		Time:      t0,
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	mem := storetest.New()
	s := New(mem.Banks(), mem.Settings(), mem.Batch(), servicetest.Config())

	req := stakedRequest()
	bank, err := s.Create(ctx, req)
	require.NoError(t, err)
	assert.NotEmpty(t, bank.BankID)
	assert.Equal(t, lending.DeriveSolPool(req.StakePool), bank.SolPool)
	assert.Equal(t, "1", bank.AppreciationRate.String())
	assert.Equal(t, t0.Unix(), bank.AccruedAt)

	stored, err := mem.Banks().Find(ctx, bank.BankID)
	require.NoError(t, err)
	assert.Equal(t, bank.SolPool, stored.SolPool)

	events, err := mem.Events().List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, core.EventBankCreate, events[0].Type)

	t.Run("duplicate", func(t *testing.T) {
		_, err := s.Create(ctx, req)
		assert.True(t, errors.Is(err, core.ErrInvalidArgument))
	})

	t.Run("staked without pool", func(t *testing.T) {
		req := stakedRequest()
		req.StakePool = ""
		_, err := s.Create(ctx, req)
		assert.True(t, errors.Is(err, core.ErrInvalidArgument))
	})

	t.Run("invalid weights", func(t *testing.T) {
		req := stakedRequest()
		req.Config.LiabilityWeightInit = number.Decimal("0.5")
		_, err := s.Create(ctx, req)
		assert.True(t, errors.Is(err, core.ErrInvalidBankConfig))
	})
}

func TestAccrueInterest(t *testing.T) {
	ctx := context.Background()
	mem := storetest.New()
	s := New(mem.Banks(), mem.Settings(), mem.Batch(), servicetest.Config())

	req := stakedRequest()
	req.Kind, req.StakePool = core.BankKindNative, ""
	bank, err := s.Create(ctx, req)
	require.NoError(t, err)

	// no-op at the accrual timestamp
	same, err := s.AccrueInterest(ctx, bank.BankID, t0)
	require.NoError(t, err)
	assert.Equal(t, bank.Version, same.Version)

	later := t0.Add(time.Hour)
	accrued, err := s.AccrueInterest(ctx, bank.BankID, later)
	require.NoError(t, err)
	assert.Equal(t, later.Unix(), accrued.AccruedAt)
	assert.Equal(t, bank.Version+1, accrued.Version)

	again, err := s.AccrueInterest(ctx, bank.BankID, later)
	require.NoError(t, err)
	assert.Equal(t, accrued.Version, again.Version)

	events, err := mem.Events().List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	_, err = s.AccrueInterest(ctx, uuid.New(), later)
	assert.True(t, errors.Is(err, core.ErrBankNotFound))
}

func TestRefreshAppreciationRate(t *testing.T) {
	ctx := context.Background()
	mem := storetest.New()
	s := New(mem.Banks(), mem.Settings(), mem.Batch(), servicetest.Config())

	bank, err := s.Create(ctx, stakedRequest())
	require.NoError(t, err)

	pool := &core.StakePoolState{
		PoolID:          bank.StakePool,
		Mint:            bank.AssetID,
		SolPool:         bank.SolPool,
		TotalLamports:   number.Decimal("31"),
		PoolTokenSupply: number.Decimal("30"),
		Epoch:           3,
	}

	refreshed, err := s.RefreshAppreciationRate(ctx, bank.BankID, pool)
	require.NoError(t, err)
	assert.True(t, number.ApproxEqual(refreshed.AppreciationRate, number.Decimal("1.0333"), number.Decimal("0.01")))

	forged := *pool
	forged.PoolID = uuid.New()
	forged.SolPool = lending.DeriveSolPool(forged.PoolID)
	forged.TotalLamports = number.Decimal("300")
	_, err = s.RefreshAppreciationRate(ctx, bank.BankID, &forged)
	assert.True(t, errors.Is(err, core.ErrPoolIdentityMismatch))

	stored, err := mem.Banks().Find(ctx, bank.BankID)
	require.NoError(t, err)
	assert.Equal(t, refreshed.AppreciationRate.String(), stored.AppreciationRate.String())
}

func TestStakedSettings(t *testing.T) {
	ctx := context.Background()
	mem := storetest.New()
	s := New(mem.Banks(), mem.Settings(), mem.Batch(), servicetest.Config())

	bank, err := s.Create(ctx, stakedRequest())
	require.NoError(t, err)

	_, err = s.PropagateStakedSettings(ctx, bank.BankID)
	assert.True(t, errors.Is(err, core.ErrInvalidArgument))

	settings := &core.StakedSettings{
		AssetWeightInit:  number.Decimal("0.5"),
		AssetWeightMaint: number.Decimal("0.6"),
		DepositLimit:     number.Decimal("1000000"),
		OracleID:         "sol-twap",
		OracleMaxAge:     30,
		RiskTier:         core.RiskTierCollateral,
	}

	invalid := *settings
	invalid.AssetWeightMaint = number.Decimal("0.4")
	assert.True(t, errors.Is(s.SaveStakedSettings(ctx, &invalid), core.ErrInvalidBankConfig))

	require.NoError(t, s.SaveStakedSettings(ctx, settings))

	propagated, err := s.PropagateStakedSettings(ctx, bank.BankID)
	require.NoError(t, err)
	assert.Equal(t, "0.5", propagated.AssetWeightInit.String())
	assert.Equal(t, "sol-twap", propagated.OracleID)
	// liability weights stay bank specific
	assert.Equal(t, "1.1", propagated.LiabilityWeightInit.String())
}

func TestConfigure(t *testing.T) {
	ctx := context.Background()
	mem := storetest.New()
	s := New(mem.Banks(), mem.Settings(), mem.Batch(), servicetest.Config())

	bank, err := s.Create(ctx, stakedRequest())
	require.NoError(t, err)

	cfg := bank.BankConfig
	cfg.OperationalState = core.StateReduceOnly
	configured, err := s.Configure(ctx, bank.BankID, cfg, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, core.StateReduceOnly, configured.OperationalState)
	assert.Equal(t, t0.Add(time.Hour).Unix(), configured.AccruedAt)

	// the host clock drives accrual, later accruals still move forward
	accrued, err := s.AccrueInterest(ctx, bank.BankID, t0.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, t0.Add(2*time.Hour).Unix(), accrued.AccruedAt)

	cfg.OperationalState = "frozen"
	_, err = s.Configure(ctx, bank.BankID, cfg, t0.Add(3*time.Hour))
	assert.True(t, errors.Is(err, core.ErrInvalidBankConfig))
}
