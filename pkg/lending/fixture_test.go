package lending

import (
	"time"

	"lendcore/core"
	"lendcore/pkg/number"

	"github.com/fox-one/pkg/uuid"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testConfig() core.BankConfig {
	return core.BankConfig{
		AssetWeightInit:      number.One,
		AssetWeightMaint:     number.One,
		LiabilityWeightInit:  number.One,
		LiabilityWeightMaint: number.One,
		InterestRateConfig:   DefaultInterestRateConfig(),
		OperationalState:     core.StateOperational,
		RiskTier:             core.RiskTierCollateral,
		OracleID:             "sol",
	}
}

func newBank(kind core.BankKind, oracleID string) *core.Bank {
	bank := &core.Bank{
		BankID:     uuid.New(),
		Symbol:     "SOL",
		AssetID:    uuid.New(),
		Kind:       kind,
		Decimals:   9,
		BankConfig: testConfig(),
	}
	bank.OracleID = oracleID

	if kind == core.BankKindStaked {
		bank.StakePool = uuid.New()
		bank.SolPool = DeriveSolPool(bank.StakePool)
	}

	InitBank(bank, t0)
	return bank
}

func poolOf(bank *core.Bank, lamports, supply string, epoch int64) *core.StakePoolState {
	return &core.StakePoolState{
		PoolID:          bank.StakePool,
		Mint:            bank.AssetID,
		SolPool:         bank.SolPool,
		TotalLamports:   number.Decimal(lamports),
		PoolTokenSupply: number.Decimal(supply),
		Epoch:           epoch,
	}
}

func reading(oracleID, price, confidence string, at time.Time) *core.OracleReading {
	return &core.OracleReading{
		OracleID:   oracleID,
		Price:      number.Decimal(price),
		Confidence: number.Decimal(confidence),
		ObservedAt: at,
	}
}

func banksOf(banks ...*core.Bank) map[string]*core.Bank {
	m := make(map[string]*core.Bank, len(banks))
	for _, b := range banks {
		m[b.BankID] = b
	}

	return m
}

func mutation(kind core.MutationKind, ob *core.Obligation, bank *core.Bank, amount string) *core.Mutation {
	return &core.Mutation{
		TraceID:      uuid.New(),
		Kind:         kind,
		ObligationID: ob.ObligationID,
		BankID:       bank.BankID,
		Amount:       number.Decimal(amount),
		Time:         t0,
	}
}
