package keeper

import (
	"context"
	"sync"
	"testing"
	"time"

	"lendcore/core"
	"lendcore/pkg/lending"
	"lendcore/pkg/number"
	bankservice "lendcore/service/bank"
	"lendcore/service/servicetest"
	"lendcore/store/storetest"

	"github.com/fox-one/pkg/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkpoints struct {
	mu     sync.Mutex
	values map[string]interface{}
}

func (c *checkpoints) Save(ctx context.Context, key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[key] = value
	return nil
}

func TestKeeper(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	cfg := servicetest.Config()
	cfg.Keeper.Schedule = "@every 1h"
	cfg.Keeper.Concurrency = 2

	mem := storetest.New()
	bankz := bankservice.New(mem.Banks(), mem.Settings(), mem.Batch(), cfg)
	cp := &checkpoints{values: map[string]interface{}{}}

	k, err := New(cfg, mem.Banks(), mem.Settings(), bankz, cp)
	require.NoError(t, err)

	create := func(kind core.BankKind) *core.Bank {
		req := &core.CreateBankRequest{
			Symbol:   string(kind),
			AssetID:  uuid.New(),
			Kind:     kind,
			Decimals: 9,
			Time:     t0,
			Config: core.BankConfig{
				AssetWeightInit:      number.Decimal("0.8"),
				AssetWeightMaint:     number.Decimal("0.9"),
				LiabilityWeightInit:  number.Decimal("1.2"),
				LiabilityWeightMaint: number.Decimal("1.1"),
				InterestRateConfig:   lending.DefaultInterestRateConfig(),
				OracleID:             "sol",
			},
		}
		if kind == core.BankKindStaked {
			req.StakePool = uuid.New()
		}

		bank, err := bankz.Create(ctx, req)
		require.NoError(t, err)
		return bank
	}

	native := create(core.BankKindNative)
	staked := create(core.BankKindStaked)

	require.NoError(t, bankz.SaveStakedSettings(ctx, &core.StakedSettings{
		AssetWeightInit:  number.Decimal("0.6"),
		AssetWeightMaint: number.Decimal("0.7"),
		OracleID:         "sol-stake",
		RiskTier:         core.RiskTierCollateral,
	}))

	now := t0.Add(time.Hour)
	require.NoError(t, k.onWork(ctx, now))

	for _, id := range []string{native.BankID, staked.BankID} {
		bank, err := mem.Banks().Find(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, now.Unix(), bank.AccruedAt)
	}

	bank, err := mem.Banks().Find(ctx, staked.BankID)
	require.NoError(t, err)
	assert.Equal(t, "0.6", bank.AssetWeightInit.String())
	assert.Equal(t, "sol-stake", bank.OracleID)

	bank, err = mem.Banks().Find(ctx, native.BankID)
	require.NoError(t, err)
	assert.Equal(t, "sol", bank.OracleID)

	assert.Equal(t, now, cp.values[checkpointKey])

	events, err := mem.Events().List(ctx, 0, 100)
	require.NoError(t, err)
	assert.Len(t, events, 5)

	// nothing left to do at the same instant
	require.NoError(t, k.onWork(ctx, now))
	events, err = mem.Events().List(ctx, 0, 100)
	require.NoError(t, err)
	assert.Len(t, events, 5)
}
