package pricesync

import (
	"context"
	"testing"
	"time"

	"lendcore/core"
	"lendcore/pkg/number"
	"lendcore/service/servicetest"
	"lendcore/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feed struct {
	pulled   []string
	readings []*core.OracleReading
}

func (f *feed) Pull(ctx context.Context, oracleIDs []string) ([]*core.OracleReading, error) {
	f.pulled = oracleIDs
	return f.readings, nil
}

func TestSyncer(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mem := storetest.New()
	for _, bank := range []*core.Bank{
		{BankID: "b1", Kind: core.BankKindNative, BankConfig: core.BankConfig{OracleID: "usdc"}},
		{BankID: "b2", Kind: core.BankKindStaked, BankConfig: core.BankConfig{OracleID: "sol"}},
		{BankID: "b3", Kind: core.BankKindNative, BankConfig: core.BankConfig{OracleID: "sol"}},
		{BankID: "b4", Kind: core.BankKindWrapped, BankConfig: core.BankConfig{OracleID: "kusd"}},
	} {
		require.NoError(t, mem.Banks().Create(ctx, bank))
	}

	f := &feed{readings: []*core.OracleReading{
		{OracleID: "sol", Price: number.Decimal("100"), Confidence: number.Decimal("0.2"), ObservedAt: at},
		{OracleID: "usdc", Price: number.Decimal("0"), ObservedAt: at},
	}}

	cfg := servicetest.Config()
	cfg.Oracle.Schedule = "@every 10s"
	s, err := New(cfg, mem.Banks(), mem.Prices(), f)
	require.NoError(t, err)

	require.NoError(t, s.onWork(ctx))
	assert.Equal(t, []string{"sol", "usdc"}, f.pulled)

	price, err := mem.Prices().Find(ctx, "sol")
	require.NoError(t, err)
	assert.Equal(t, "100", price.Price.String())

	_, err = mem.Prices().Find(ctx, "usdc")
	assert.ErrorIs(t, err, core.ErrOracleUnusable)
}
