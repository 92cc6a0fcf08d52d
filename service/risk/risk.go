package risk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lendcore/core"
	"lendcore/pkg/lending"
	"lendcore/pkg/metrics"

	"github.com/fox-one/pkg/logger"
)

type engine struct {
	oracle core.IPriceOracle
	params lending.RiskParams
}

// New risk engine valuing balances with readings from oracle
func New(oracle core.IPriceOracle, cfg *core.Config) core.IRiskEngine {
	maxConfidenceRatio, _, _ := cfg.Risk.Decimals()

	return &engine{
		oracle: oracle,
		params: lending.RiskParams{
			MaxConfidenceRatio:  maxConfidenceRatio,
			DefaultOracleMaxAge: cfg.Risk.DefaultOracleMaxAge,
		},
	}
}

// Evaluate checks the obligation after m was applied to it. Every referenced bank is
// accrued to now first, so the decision never runs on stale share values.
func (e *engine) Evaluate(ctx context.Context, obligation *core.Obligation, m *core.Mutation, banks map[string]*core.Bank, now time.Time) (*core.Health, error) {
	log := logger.FromContext(ctx).WithFields(map[string]interface{}{
		"obligation": obligation.ObligationID,
		"mutation":   m.Kind,
	})

	for _, id := range obligation.BankIDs() {
		if bank, ok := banks[id]; ok {
			lending.AccrueInterest(bank, now)
		}
	}

	health, err := e.Health(ctx, obligation, banks, core.RequirementInitial, now)
	if err != nil {
		log.WithError(err).Infoln("risk: valuation failed")
		metrics.Lending().ObserveRiskDecision(string(m.Kind), "unusable")
		return nil, err
	}

	if !health.Healthy() {
		log.Infof("risk: rejected, collateral %s < liability %s", health.Collateral, health.Liability)
		metrics.Lending().ObserveRiskDecision(string(m.Kind), "reject")
		return health, core.ErrRiskEngineRejection
	}

	metrics.Lending().ObserveRiskDecision(string(m.Kind), "accept")
	return health, nil
}

func (e *engine) Health(ctx context.Context, obligation *core.Obligation, banks map[string]*core.Bank, req core.RequirementType, now time.Time) (*core.Health, error) {
	readings := make(map[string]*core.OracleReading)
	for _, b := range obligation.ActiveBalances() {
		if b.Kind.IsWrapped() {
			continue
		}

		bank, ok := banks[b.BankID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", core.ErrBankNotFound, b.BankID)
		}

		if _, ok := readings[bank.OracleID]; ok {
			continue
		}

		r, err := e.oracle.Read(ctx, bank.OracleID)
		if err != nil {
			metrics.Lending().ObserveOracleUnusable(bank.OracleID)
			if errors.Is(err, core.ErrOracleUnusable) {
				return nil, err
			}

			return nil, fmt.Errorf("%w: %s: %v", core.ErrOracleUnusable, bank.OracleID, err)
		}

		readings[bank.OracleID] = r
	}

	health, err := lending.Valuate(obligation, banks, readings, req, e.params, now)
	if errors.Is(err, core.ErrOracleUnusable) {
		metrics.Lending().ObserveOracleUnusable("")
	}

	return health, err
}
