package lending

import (
	"fmt"
	"time"

	"lendcore/core"
	"lendcore/pkg/number"

	"github.com/shopspring/decimal"
)

// RiskParams valuation parameters shared by all banks
type RiskParams struct {
	MaxConfidenceRatio  decimal.Decimal
	DefaultOracleMaxAge int64
}

// CheckReading fails closed on readings that can't back a valuation
func CheckReading(r *core.OracleReading, maxAge int64, params RiskParams, now time.Time) error {
	if r == nil {
		return fmt.Errorf("%w: no reading", core.ErrOracleUnusable)
	}

	if !r.Price.IsPositive() {
		return fmt.Errorf("%w: %s price %s", core.ErrOracleUnusable, r.OracleID, r.Price)
	}

	if r.Confidence.IsNegative() {
		return fmt.Errorf("%w: %s negative confidence", core.ErrOracleUnusable, r.OracleID)
	}

	if params.MaxConfidenceRatio.IsPositive() && r.Confidence.GreaterThan(r.Price.Mul(params.MaxConfidenceRatio)) {
		return fmt.Errorf("%w: %s confidence %s too wide", core.ErrOracleUnusable, r.OracleID, r.Confidence)
	}

	if maxAge <= 0 {
		maxAge = params.DefaultOracleMaxAge
	}

	if maxAge > 0 && now.Sub(r.ObservedAt) > time.Duration(maxAge)*time.Second {
		return fmt.Errorf("%w: %s observed at %s", core.ErrOracleUnusable, r.OracleID, r.ObservedAt.Format(time.RFC3339))
	}

	return nil
}

// Prices checked, biased prices per bank for every active native balance.
// readings maps oracle id to the latest reading.
func Prices(ob *core.Obligation, banks map[string]*core.Bank, readings map[string]*core.OracleReading, req core.RequirementType, params RiskParams, now time.Time) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal)
	for _, b := range ob.ActiveBalances() {
		if b.Kind.IsWrapped() {
			continue
		}

		bank, ok := banks[b.BankID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", core.ErrBankNotFound, b.BankID)
		}

		r := readings[bank.OracleID]
		if err := CheckReading(r, bank.OracleMaxAge, params, now); err != nil {
			return nil, err
		}

		bias := core.BiasNone
		if req != core.RequirementEquity {
			bias = core.BiasLow
			if b.Kind == core.BalanceLiability {
				bias = core.BiasHigh
			}
		}

		prices[b.BankID] = r.PriceWithBias(bias)
	}

	return prices, nil
}

// Valuate weighted collateral and liability of the obligation
func Valuate(ob *core.Obligation, banks map[string]*core.Bank, readings map[string]*core.OracleReading, req core.RequirementType, params RiskParams, now time.Time) (*core.Health, error) {
	prices, err := Prices(ob, banks, readings, req, params, now)
	if err != nil {
		return nil, err
	}

	values, err := ValueAt(ob, banks, prices)
	if err != nil {
		return nil, err
	}

	health := &core.Health{
		ObligationID: ob.ObligationID,
		Version:      ob.Version,
		Requirement:  req,
		Collateral:   decimal.Zero,
		Liability:    decimal.Zero,
		Balances:     values,
	}

	for _, v := range values {
		assetWeight, liabilityWeight := GetWeights(banks[v.BankID], req)
		if v.Kind.IsDeposit() {
			v.Weight = assetWeight
			health.Collateral = health.Collateral.Add(number.Mul(v.Value, assetWeight))
		} else {
			v.Weight = liabilityWeight
			health.Liability = health.Liability.Add(number.Mul(v.Value.Neg(), liabilityWeight))
		}
	}

	return health, nil
}
