package lending

import (
	"errors"
	"testing"
	"time"

	"lendcore/core"
	"lendcore/pkg/number"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBankConfig(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, ValidateBankConfig(&cfg))

	cases := map[string]func(c *core.BankConfig){
		"asset weight above one": func(c *core.BankConfig) { c.AssetWeightInit = number.Decimal("1.1") },
		"maint below init": func(c *core.BankConfig) {
			c.AssetWeightInit = number.Decimal("0.8")
			c.AssetWeightMaint = number.Decimal("0.7")
		},
		"liability weight below one": func(c *core.BankConfig) { c.LiabilityWeightMaint = number.Decimal("0.9") },
		"liability init below maint": func(c *core.BankConfig) {
			c.LiabilityWeightMaint = number.Decimal("1.2")
			c.LiabilityWeightInit = number.Decimal("1.1")
		},
		"negative limit":   func(c *core.BankConfig) { c.DepositLimit = number.Decimal("-1") },
		"unknown state":    func(c *core.BankConfig) { c.OperationalState = "frozen" },
		"unknown tier":     func(c *core.BankConfig) { c.RiskTier = "junior" },
		"negative max age": func(c *core.BankConfig) { c.OracleMaxAge = -1 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := testConfig()
			mutate(&c)
			assert.True(t, errors.Is(ValidateBankConfig(&c), core.ErrInvalidBankConfig))
		})
	}
}

func TestGetWeights(t *testing.T) {
	bank := newBank(core.BankKindNative, "sol")
	bank.AssetWeightInit = number.Decimal("0.8")
	bank.AssetWeightMaint = number.Decimal("0.9")
	bank.LiabilityWeightInit = number.Decimal("1.2")
	bank.LiabilityWeightMaint = number.Decimal("1.1")

	asset, liability := GetWeights(bank, core.RequirementInitial)
	assert.Equal(t, "0.8", asset.String())
	assert.Equal(t, "1.2", liability.String())

	asset, liability = GetWeights(bank, core.RequirementMaintenance)
	assert.Equal(t, "0.9", asset.String())
	assert.Equal(t, "1.1", liability.String())

	asset, liability = GetWeights(bank, core.RequirementEquity)
	assert.Equal(t, "1", asset.String())
	assert.Equal(t, "1", liability.String())

	bank.RiskTier = core.RiskTierIsolated
	asset, _ = GetWeights(bank, core.RequirementInitial)
	assert.True(t, asset.IsZero())
}

func TestAccrueInterest(t *testing.T) {
	bank := newBank(core.BankKindNative, "sol")

	_, err := Deposit(bank, number.Decimal("100"))
	require.NoError(t, err)
	_, err = Borrow(bank, number.Decimal("50"))
	require.NoError(t, err)

	t.Run("no-op when now is not after the last accrual", func(t *testing.T) {
		before := *bank
		assert.False(t, AccrueInterest(bank, t0))
		assert.False(t, AccrueInterest(bank, t0.Add(-time.Hour)))
		assert.Equal(t, before, *bank)
	})

	t.Run("one year at the optimal rate", func(t *testing.T) {
		b := bank.Clone()
		assert.True(t, AccrueInterest(b, t0.Add(365*24*time.Hour)))

		assert.Equal(t, "1.25", b.AssetShareValue.String())
		assert.Equal(t, "1.595", b.LiabilityShareValue.String())
		assert.Equal(t, "1.75", b.CollectedInsuranceFees.String())
		assert.Equal(t, "3", b.CollectedProtocolFees.String())
		assert.Equal(t, t0.Add(365*24*time.Hour).Unix(), b.AccruedAt)
	})

	t.Run("idempotent at a fixed timestamp", func(t *testing.T) {
		now := t0.Add(7 * 24 * time.Hour)

		once := bank.Clone()
		AccrueInterest(once, now)

		twice := bank.Clone()
		AccrueInterest(twice, now)
		AccrueInterest(twice, now)

		assert.Equal(t, once.TotalDeposited().String(), twice.TotalDeposited().String())
		assert.Equal(t, once.TotalBorrowed().String(), twice.TotalBorrowed().String())
	})

	t.Run("never decreases total value", func(t *testing.T) {
		b := bank.Clone()
		deposited, borrowed := b.TotalDeposited(), b.TotalBorrowed()
		for i := 1; i <= 24; i++ {
			AccrueInterest(b, t0.Add(time.Duration(i)*time.Hour))
			assert.True(t, b.TotalDeposited().GreaterThanOrEqual(deposited))
			assert.True(t, b.TotalBorrowed().GreaterThanOrEqual(borrowed))
			deposited, borrowed = b.TotalDeposited(), b.TotalBorrowed()
		}
	})

	t.Run("empty bank only advances the timestamp", func(t *testing.T) {
		b := newBank(core.BankKindNative, "sol")
		assert.True(t, AccrueInterest(b, t0.Add(time.Hour)))
		assert.Equal(t, "1", b.AssetShareValue.String())
		assert.Equal(t, t0.Add(time.Hour).Unix(), b.AccruedAt)
	})
}

func TestDepositLimit(t *testing.T) {
	bank := newBank(core.BankKindNative, "usdc")
	bank.DepositLimit = number.Decimal("1000")

	_, err := Deposit(bank, number.Decimal("2345"))
	assert.True(t, errors.Is(err, core.ErrBankAssetCapacityExceeded))

	_, err = Deposit(bank, number.Decimal("1000"))
	assert.True(t, errors.Is(err, core.ErrBankAssetCapacityExceeded))
	assert.True(t, bank.TotalAssetShares.IsZero())

	shares, err := Deposit(bank, number.Decimal("999.999999"))
	require.NoError(t, err)
	assert.Equal(t, "999.999999", shares.String())
	assert.Equal(t, "999.999999", bank.LiquidityVault.String())
}

func TestBorrow(t *testing.T) {
	bank := newBank(core.BankKindNative, "sol")
	_, err := Deposit(bank, number.Decimal("10"))
	require.NoError(t, err)

	_, err = Borrow(bank, number.Decimal("11"))
	assert.True(t, errors.Is(err, core.ErrInsufficientLiquidity))

	bank.BorrowLimit = number.Decimal("5")
	_, err = Borrow(bank, number.Decimal("5"))
	assert.True(t, errors.Is(err, core.ErrBankLiabilityCapacityExceeded))

	shares, err := Borrow(bank, number.Decimal("4"))
	require.NoError(t, err)
	assert.Equal(t, "4", shares.String())
	assert.Equal(t, "6", bank.LiquidityVault.String())

	Repay(bank, number.Decimal("4"), shares)
	assert.True(t, bank.TotalLiabilityShares.IsZero())
	assert.Equal(t, "10", bank.LiquidityVault.String())
}

func TestNonPositiveAmounts(t *testing.T) {
	bank := newBank(core.BankKindNative, "sol")
	_, err := Deposit(bank, number.Decimal("10"))
	require.NoError(t, err)

	for _, amount := range []string{"0", "-1"} {
		_, err := Deposit(bank, number.Decimal(amount))
		assert.True(t, errors.Is(err, core.ErrInvalidArgument), amount)

		_, err = Borrow(bank, number.Decimal(amount))
		assert.True(t, errors.Is(err, core.ErrInvalidArgument), amount)

		_, err = DepositWrapped(bank, number.Decimal(amount))
		assert.True(t, errors.Is(err, core.ErrInvalidArgument), amount)
	}

	assert.Equal(t, "10", bank.LiquidityVault.String())
	assert.Equal(t, "10", bank.TotalAssetShares.String())
	assert.True(t, bank.TotalLiabilityShares.IsZero())
}

func TestAssertOperational(t *testing.T) {
	bank := newBank(core.BankKindNative, "sol")
	assert.NoError(t, AssertOperational(bank, core.MutationBorrow))

	bank.OperationalState = core.StateReduceOnly
	assert.Equal(t, core.ErrBankReduceOnly, AssertOperational(bank, core.MutationDeposit))
	assert.Equal(t, core.ErrBankReduceOnly, AssertOperational(bank, core.MutationBorrow))
	assert.NoError(t, AssertOperational(bank, core.MutationRepay))
	assert.NoError(t, AssertOperational(bank, core.MutationWithdraw))

	bank.OperationalState = core.StatePaused
	assert.Equal(t, core.ErrBankPaused, AssertOperational(bank, core.MutationRepay))
}
