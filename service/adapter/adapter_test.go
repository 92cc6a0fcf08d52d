package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"lendcore/core"
	"lendcore/pkg/lending"
	"lendcore/pkg/number"
	bankservice "lendcore/service/bank"
	obligationservice "lendcore/service/obligation"
	"lendcore/service/risk"
	"lendcore/service/servicetest"
	"lendcore/store/storetest"

	"github.com/fox-one/pkg/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

const external = "ext-obligation-1"

type suite struct {
	ctx         context.Context
	mem         *storetest.Memory
	oracle      *servicetest.Oracle
	market      *servicetest.Market
	risk        core.IRiskEngine
	banks       core.IBankService
	obligations core.IObligationService
	adapter     core.IExternalAdapter

	wrapped *core.Bank
	usdc    *core.Bank
}

func newSuite(t *testing.T) *suite {
	cfg := servicetest.Config()
	mem := storetest.New()
	oracle := servicetest.NewOracle()
	market := servicetest.NewMarket(number.Decimal("2"))
	engine := risk.New(oracle, cfg)

	s := &suite{
		ctx:         context.Background(),
		mem:         mem,
		oracle:      oracle,
		market:      market,
		risk:        engine,
		banks:       bankservice.New(mem.Banks(), mem.Settings(), mem.Batch(), cfg),
		obligations: obligationservice.New(mem.Banks(), mem.Obligations(), mem.Batch(), engine, cfg),
		adapter:     New(mem.Banks(), mem.Obligations(), mem.Batch(), market, engine, cfg),
	}

	s.wrapped = s.bank(t, &core.CreateBankRequest{
		Symbol:            "kUSD",
		Kind:              core.BankKindWrapped,
		ExternalMarketID:  "market",
		ExternalReserveID: "reserve",
		ExternalOracleID:  "reserve-oracle",
	})
	s.usdc = s.bank(t, &core.CreateBankRequest{
		Symbol: "USDC",
		Kind:   core.BankKindNative,
	})

	oracle.Set(&core.OracleReading{
		OracleID:   "usdc",
		Price:      number.One,
		Confidence: number.Decimal("0"),
		ObservedAt: t0,
	})

	lender := s.obligation(t, "lender")
	m, err := core.NewDeposit(uuid.New(), lender.ObligationID, s.usdc.BankID, number.Decimal("100"))
	require.NoError(t, err)
	_, err = s.obligations.Deposit(s.ctx, m.At(t0))
	require.NoError(t, err)

	return s
}

func (s *suite) bank(t *testing.T, req *core.CreateBankRequest) *core.Bank {
	req.AssetID = uuid.New()
	req.Decimals = 6
	req.Time = t0
	req.Config = core.BankConfig{
		AssetWeightInit:      number.One,
		AssetWeightMaint:     number.One,
		LiabilityWeightInit:  number.One,
		LiabilityWeightMaint: number.One,
		InterestRateConfig:   lending.DefaultInterestRateConfig(),
		OperationalState:     core.StateOperational,
		RiskTier:             core.RiskTierCollateral,
		OracleID:             "usdc",
	}

	bank, err := s.banks.Create(s.ctx, req)
	require.NoError(t, err)
	return bank
}

func (s *suite) obligation(t *testing.T, owner string) *core.Obligation {
	ob, err := s.obligations.Create(s.ctx, &core.CreateObligationRequest{Owner: owner})
	require.NoError(t, err)
	return ob
}

func (s *suite) find(t *testing.T, ob *core.Obligation) *core.Obligation {
	ob, err := s.mem.Obligations().Find(s.ctx, ob.ObligationID)
	require.NoError(t, err)
	return ob
}

func (s *suite) refreshed(t *testing.T, ob *core.Obligation) core.IExternalSession {
	sess, err := s.adapter.Begin(s.ctx, ob.ObligationID, s.wrapped.BankID, external)
	require.NoError(t, err)
	require.NoError(t, sess.RefreshReserve(s.ctx))
	require.NoError(t, sess.RefreshObligation(s.ctx))
	return sess
}

func (s *suite) wrappedDeposit(t *testing.T, ob *core.Obligation, amount string) *core.Mutation {
	m, err := core.NewWrappedDeposit(uuid.New(), ob.ObligationID, s.wrapped.BankID, external, number.Decimal(amount))
	require.NoError(t, err)
	return m.At(t0)
}

func (s *suite) health(t *testing.T, ob *core.Obligation) *core.Health {
	banks, err := obligationservice.LoadBanks(s.ctx, s.mem.Banks(), ob)
	require.NoError(t, err)

	health, err := s.risk.Health(s.ctx, ob, banks, core.RequirementInitial, t0)
	require.NoError(t, err)
	return health
}

func (s *suite) borrow(ob *core.Obligation, amount string) (*core.Obligation, error) {
	m, err := core.NewBorrow(uuid.New(), ob.ObligationID, s.usdc.BankID, number.Decimal(amount))
	if err != nil {
		return nil, err
	}

	return s.obligations.Borrow(s.ctx, m.At(t0))
}

func TestWrappedDepositPendingUntilValued(t *testing.T) {
	s := newSuite(t)
	alice := s.obligation(t, "alice")

	sess := s.refreshed(t, alice)
	_, err := sess.Deposit(s.ctx, s.wrappedDeposit(t, alice, "10"))
	require.NoError(t, err)

	assert.Equal(t, "10", s.market.Deposited(external).String())
	assert.Equal(t, []string{
		string(core.RefreshReserve),
		string(core.RefreshObligation),
		"deposit",
	}, s.market.Calls())

	stored := s.find(t, alice)
	b := stored.FindBalance(s.wrapped.BankID)
	require.NotNil(t, b)
	assert.Equal(t, core.BalanceWrappedDeposit, b.Kind)
	assert.Equal(t, external, b.ExternalObligationID)
	assert.False(t, b.Valued)
	assert.True(t, s.health(t, stored).Collateral.IsZero())

	_, err = s.borrow(alice, "1")
	assert.True(t, errors.Is(err, core.ErrRiskEngineRejection))

	valued, err := s.adapter.RefreshExternalValuation(s.ctx, alice.ObligationID, s.wrapped.BankID, t0)
	require.NoError(t, err)
	b = valued.FindBalance(s.wrapped.BankID)
	assert.True(t, b.Valued)
	assert.Equal(t, "20", b.MarketValue.String())
	assert.Equal(t, "20", s.health(t, s.find(t, alice)).Collateral.String())

	_, err = s.borrow(alice, "10")
	require.NoError(t, err)
}

func TestWrappedWithdrawRiskChecked(t *testing.T) {
	s := newSuite(t)
	alice := s.obligation(t, "alice")

	_, err := s.refreshed(t, alice).Deposit(s.ctx, s.wrappedDeposit(t, alice, "10"))
	require.NoError(t, err)
	_, err = s.adapter.RefreshExternalValuation(s.ctx, alice.ObligationID, s.wrapped.BankID, t0)
	require.NoError(t, err)
	_, err = s.borrow(alice, "10")
	require.NoError(t, err)

	all, err := core.NewWrappedWithdraw(uuid.New(), alice.ObligationID, s.wrapped.BankID, number.Decimal("0"), true)
	require.NoError(t, err)
	_, err = s.refreshed(t, alice).Withdraw(s.ctx, all.At(t0))
	assert.True(t, errors.Is(err, core.ErrRiskEngineRejection))
	assert.Equal(t, "10", s.market.Deposited(external).String())

	// half the position still covers the loan at the last valuation
	half, err := core.NewWrappedWithdraw(uuid.New(), alice.ObligationID, s.wrapped.BankID, number.Decimal("5"), false)
	require.NoError(t, err)
	ob, err := s.refreshed(t, alice).Withdraw(s.ctx, half.At(t0))
	require.NoError(t, err)
	assert.Equal(t, "5", s.market.Deposited(external).String())
	assert.Equal(t, "10", ob.FindBalance(s.wrapped.BankID).MarketValue.String())
}

func TestOrderingViolations(t *testing.T) {
	s := newSuite(t)
	alice := s.obligation(t, "alice")

	t.Run("no refresh", func(t *testing.T) {
		sess, err := s.adapter.Begin(s.ctx, alice.ObligationID, s.wrapped.BankID, external)
		require.NoError(t, err)

		_, err = sess.Deposit(s.ctx, s.wrappedDeposit(t, alice, "1"))
		assert.True(t, errors.Is(err, core.ErrExternalOrderingViolation))
	})

	t.Run("obligation before reserve", func(t *testing.T) {
		sess, err := s.adapter.Begin(s.ctx, alice.ObligationID, s.wrapped.BankID, external)
		require.NoError(t, err)

		assert.True(t, errors.Is(sess.RefreshObligation(s.ctx), core.ErrExternalOrderingViolation))
		require.NoError(t, sess.RefreshReserve(s.ctx))
		assert.True(t, errors.Is(sess.RefreshReserve(s.ctx), core.ErrExternalOrderingViolation))
	})

	t.Run("refreshes span slots", func(t *testing.T) {
		sess, err := s.adapter.Begin(s.ctx, alice.ObligationID, s.wrapped.BankID, external)
		require.NoError(t, err)

		require.NoError(t, sess.RefreshReserve(s.ctx))
		s.market.Advance()
		require.NoError(t, sess.RefreshObligation(s.ctx))

		_, err = sess.Deposit(s.ctx, s.wrappedDeposit(t, alice, "1"))
		assert.True(t, errors.Is(err, core.ErrExternalOrderingViolation))
	})

	t.Run("stale at execution", func(t *testing.T) {
		sess := s.refreshed(t, alice)
		s.market.Advance()

		_, err := sess.Deposit(s.ctx, s.wrappedDeposit(t, alice, "1"))
		assert.True(t, errors.Is(err, core.ErrExternalOrderingViolation))
		assert.Nil(t, s.find(t, alice).FindBalance(s.wrapped.BankID))
	})

	t.Run("session reused", func(t *testing.T) {
		sess := s.refreshed(t, alice)
		_, err := sess.Deposit(s.ctx, s.wrappedDeposit(t, alice, "1"))
		require.NoError(t, err)

		_, err = sess.Deposit(s.ctx, s.wrappedDeposit(t, alice, "1"))
		assert.True(t, errors.Is(err, core.ErrExternalOrderingViolation))
		assert.Equal(t, "1", s.market.Deposited(external).String())
	})
}

func TestMarketFailureRollsBack(t *testing.T) {
	s := newSuite(t)
	alice := s.obligation(t, "alice")

	s.market.FailNext = errors.New("market unavailable")
	_, err := s.refreshed(t, alice).Deposit(s.ctx, s.wrappedDeposit(t, alice, "10"))
	require.Error(t, err)

	assert.Nil(t, s.find(t, alice).FindBalance(s.wrapped.BankID))
	bank, err := s.mem.Banks().Find(s.ctx, s.wrapped.BankID)
	require.NoError(t, err)
	assert.True(t, bank.TotalAssetShares.IsZero())
	assert.True(t, s.market.Deposited(external).IsZero())
}

func TestExternalStateMismatch(t *testing.T) {
	s := newSuite(t)
	alice := s.obligation(t, "alice")

	_, err := s.refreshed(t, alice).Deposit(s.ctx, s.wrappedDeposit(t, alice, "10"))
	require.NoError(t, err)

	s.market.SetDeposited(external, number.Decimal("9"))
	_, err = s.adapter.RefreshExternalValuation(s.ctx, alice.ObligationID, s.wrapped.BankID, t0)
	assert.True(t, errors.Is(err, core.ErrExternalStateMismatch))
	assert.False(t, s.find(t, alice).FindBalance(s.wrapped.BankID).Valued)
}

func TestBegin(t *testing.T) {
	s := newSuite(t)
	alice := s.obligation(t, "alice")

	_, err := s.adapter.Begin(s.ctx, alice.ObligationID, s.usdc.BankID, external)
	assert.True(t, errors.Is(err, core.ErrInvalidArgument))

	_, err = s.adapter.Begin(s.ctx, alice.ObligationID, s.wrapped.BankID, "")
	assert.True(t, errors.Is(err, core.ErrInvalidArgument))

	_, err = s.refreshed(t, alice).Deposit(s.ctx, s.wrappedDeposit(t, alice, "10"))
	require.NoError(t, err)

	_, err = s.adapter.Begin(s.ctx, alice.ObligationID, s.wrapped.BankID, "ext-obligation-2")
	assert.True(t, errors.Is(err, core.ErrIllegalBalanceState))

	// the slot remembers its external obligation
	_, err = s.adapter.Begin(s.ctx, alice.ObligationID, s.wrapped.BankID, "")
	assert.NoError(t, err)
}
