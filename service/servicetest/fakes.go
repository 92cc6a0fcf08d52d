// Package servicetest fakes of the external collaborators, for service tests
package servicetest

import (
	"context"
	"fmt"
	"sync"

	"lendcore/core"

	"github.com/shopspring/decimal"
)

// Config test config with the default tolerances
func Config() *core.Config {
	return &core.Config{
		App: core.App{
			Location:    "UTC",
			MaxBalances: 4,
		},
		Risk: core.Risk{
			MaxConfidenceRatio:    0.05,
			AppreciationTolerance: 0.01,
			ValuationTolerance:    0.0001,
			DefaultOracleMaxAge:   60,
		},
	}
}

// Oracle readings by oracle id, a missing reading fails the read
type Oracle struct {
	mu       sync.Mutex
	readings map[string]*core.OracleReading
}

// NewOracle empty oracle
func NewOracle() *Oracle {
	return &Oracle{readings: map[string]*core.OracleReading{}}
}

// Set publish a reading
func (o *Oracle) Set(r *core.OracleReading) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.readings[r.OracleID] = r
}

func (o *Oracle) Read(ctx context.Context, oracleID string) (*core.OracleReading, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	r, ok := o.readings[oracleID]
	if !ok {
		return nil, fmt.Errorf("oracle %s: no reading", oracleID)
	}

	cp := *r
	return &cp, nil
}

// Market external lending market that enforces the refresh ordering of its mutations
type Market struct {
	// Price of one deposited unit
	Price decimal.Decimal
	// FailNext fails the next deposit or withdraw
	FailNext error

	mu        sync.Mutex
	slot      int64
	positions map[string]decimal.Decimal
	calls     []string
}

// NewMarket market valuing deposits at price
func NewMarket(price decimal.Decimal) *Market {
	return &Market{
		Price:     price,
		positions: map[string]decimal.Decimal{},
	}
}

// Advance moves the market to the next slot, older refreshes become stale
func (m *Market) Advance() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.slot++
}

// SetDeposited overwrite the deposited amount of an external obligation
func (m *Market) SetDeposited(obligationID string, amount decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.positions[obligationID] = amount
}

// Deposited amount held for an external obligation
func (m *Market) Deposited(obligationID string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.positions[obligationID]
}

// Calls market calls in order
func (m *Market) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.calls...)
}

func (m *Market) RefreshReserve(ctx context.Context, marketID, reserveID, oracleID string) (*core.RefreshReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, string(core.RefreshReserve))
	return &core.RefreshReceipt{
		Step:      core.RefreshReserve,
		MarketID:  marketID,
		ReserveID: reserveID,
		Slot:      m.slot,
	}, nil
}

func (m *Market) RefreshObligation(ctx context.Context, marketID, obligationID string, reserveIDs []string) (*core.RefreshReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, string(core.RefreshObligation))
	return &core.RefreshReceipt{
		Step:         core.RefreshObligation,
		MarketID:     marketID,
		ObligationID: obligationID,
		Slot:         m.slot,
	}, nil
}

func (m *Market) checkProof(proof []*core.RefreshReceipt, obligationID string) error {
	if len(proof) != 2 ||
		proof[0].Step != core.RefreshReserve ||
		proof[1].Step != core.RefreshObligation ||
		proof[1].ObligationID != obligationID {
		return core.ErrExternalOrderingViolation
	}

	for _, r := range proof {
		if r.Slot != m.slot {
			return core.ErrExternalOrderingViolation
		}
	}

	if err := m.FailNext; err != nil {
		m.FailNext = nil
		return err
	}

	return nil
}

func (m *Market) Deposit(ctx context.Context, proof []*core.RefreshReceipt, obligationID string, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, "deposit")
	if err := m.checkProof(proof, obligationID); err != nil {
		return err
	}

	m.positions[obligationID] = m.positions[obligationID].Add(amount)
	return nil
}

func (m *Market) Withdraw(ctx context.Context, proof []*core.RefreshReceipt, obligationID string, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, "withdraw")
	if err := m.checkProof(proof, obligationID); err != nil {
		return err
	}

	m.positions[obligationID] = m.positions[obligationID].Sub(amount)
	return nil
}

func (m *Market) Position(ctx context.Context, marketID, obligationID, reserveID string) (*core.ExternalPosition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deposited := m.positions[obligationID]
	return &core.ExternalPosition{
		ObligationID: obligationID,
		ReserveID:    reserveID,
		Deposited:    deposited,
		MarketValue:  deposited.Mul(m.Price),
		Slot:         m.slot,
	}, nil
}
