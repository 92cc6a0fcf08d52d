package risk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"lendcore/core"
	"lendcore/pkg/lending"
	"lendcore/pkg/number"
	"lendcore/service/servicetest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type memoryHealthCache struct {
	mu      sync.Mutex
	reports map[string]*core.Health
}

func key(obligationID string, version int64, req core.RequirementType) string {
	return fmt.Sprintf("%s:%d:%s", obligationID, version, req)
}

func (c *memoryHealthCache) Save(ctx context.Context, h *core.Health, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reports[key(h.ObligationID, h.Version, h.Requirement)] = h
	return nil
}

func (c *memoryHealthCache) Find(ctx context.Context, obligationID string, version int64, req core.RequirementType) (*core.Health, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.reports[key(obligationID, version, req)], nil
}

func fixture() (*core.Obligation, map[string]*core.Bank) {
	bank := &core.Bank{
		BankID:   "sol",
		Kind:     core.BankKindNative,
		Decimals: 9,
		BankConfig: core.BankConfig{
			AssetWeightInit:      number.Decimal("0.8"),
			AssetWeightMaint:     number.Decimal("0.9"),
			LiabilityWeightInit:  number.Decimal("1.2"),
			LiabilityWeightMaint: number.Decimal("1.1"),
			InterestRateConfig:   lending.DefaultInterestRateConfig(),
			OperationalState:     core.StateOperational,
			RiskTier:             core.RiskTierCollateral,
			OracleID:             "sol",
		},
	}
	lending.InitBank(bank, t0)
	bank.TotalAssetShares = number.Decimal("10")
	bank.LiquidityVault = number.Decimal("10")

	ob := core.NewObligation("ob-1", "alice", 4)
	_, err := lending.UpsertBalance(ob, bank.BankID, core.BalanceDeposit, number.Decimal("10"), t0.Unix())
	if err != nil {
		panic(err)
	}

	return ob, map[string]*core.Bank{bank.BankID: bank}
}

func TestHealth(t *testing.T) {
	ctx := context.Background()
	oracle := servicetest.NewOracle()
	engine := New(oracle, servicetest.Config())
	ob, banks := fixture()

	_, err := engine.Health(ctx, ob, banks, core.RequirementInitial, t0)
	assert.True(t, errors.Is(err, core.ErrOracleUnusable))

	oracle.Set(&core.OracleReading{OracleID: "sol", Price: number.Decimal("10"), Confidence: number.Decimal("0.1"), ObservedAt: t0})

	health, err := engine.Health(ctx, ob, banks, core.RequirementInitial, t0)
	require.NoError(t, err)
	// 10 * (10 - 0.1) * 0.8
	assert.Equal(t, "79.2", health.Collateral.String())

	equity, err := engine.Health(ctx, ob, banks, core.RequirementEquity, t0)
	require.NoError(t, err)
	assert.Equal(t, "100", equity.Collateral.String())

	_, err = engine.Health(ctx, ob, banks, core.RequirementInitial, t0.Add(time.Hour))
	assert.True(t, errors.Is(err, core.ErrOracleUnusable))
}

func TestHealthCache(t *testing.T) {
	ctx := context.Background()
	oracle := servicetest.NewOracle()
	oracle.Set(&core.OracleReading{OracleID: "sol", Price: number.Decimal("10"), Confidence: decimal.Zero, ObservedAt: t0})

	cache := &memoryHealthCache{reports: map[string]*core.Health{}}
	engine := WithCache(New(oracle, servicetest.Config()), cache, time.Minute)
	ob, banks := fixture()

	first, err := engine.Health(ctx, ob, banks, core.RequirementInitial, t0)
	require.NoError(t, err)
	assert.Equal(t, "80", first.Collateral.String())

	// served from cache while the obligation version is unchanged
	oracle.Set(&core.OracleReading{OracleID: "sol", Price: number.Decimal("20"), Confidence: decimal.Zero, ObservedAt: t0})
	cached, err := engine.Health(ctx, ob, banks, core.RequirementInitial, t0)
	require.NoError(t, err)
	assert.Equal(t, "80", cached.Collateral.String())

	ob.Version++
	fresh, err := engine.Health(ctx, ob, banks, core.RequirementInitial, t0)
	require.NoError(t, err)
	assert.Equal(t, "160", fresh.Collateral.String())
}

func TestEvaluateIsNeverCached(t *testing.T) {
	ctx := context.Background()
	oracle := servicetest.NewOracle()
	oracle.Set(&core.OracleReading{OracleID: "sol", Price: number.Decimal("10"), Confidence: decimal.Zero, ObservedAt: t0})

	cache := &memoryHealthCache{reports: map[string]*core.Health{}}
	engine := WithCache(New(oracle, servicetest.Config()), cache, time.Minute)
	ob, banks := fixture()

	health, err := engine.Health(ctx, ob, banks, core.RequirementInitial, t0)
	require.NoError(t, err)
	assert.Equal(t, "80", health.Collateral.String())
	assert.Len(t, cache.reports, 1)

	oracle.Set(&core.OracleReading{OracleID: "sol", Price: number.Decimal("1"), Confidence: decimal.Zero, ObservedAt: t0})

	m := &core.Mutation{Kind: core.MutationBorrow}
	health, err = engine.Evaluate(ctx, ob, m, banks, t0)
	require.NoError(t, err)
	assert.Equal(t, "8", health.Collateral.String())
	assert.Len(t, cache.reports, 1)
}
