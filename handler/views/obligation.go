package views

import (
	"lendcore/core"
	"lendcore/pkg/lending"

	"github.com/shopspring/decimal"
)

// Balance active slot of an obligation
type Balance struct {
	Slot        int              `json:"slot"`
	BankID      string           `json:"bank_id"`
	Symbol      string           `json:"symbol"`
	Kind        core.BalanceKind `json:"kind"`
	Shares      decimal.Decimal  `json:"shares"`
	Amount      decimal.Decimal  `json:"amount"`
	MarketValue decimal.Decimal  `json:"market_value,omitempty"`
	Pending     bool             `json:"pending,omitempty"`
}

// Obligation obligation view
type Obligation struct {
	ObligationID string     `json:"obligation_id"`
	Owner        string     `json:"owner"`
	Version      int64      `json:"version"`
	Balances     []*Balance `json:"balances"`
}

// ObligationView active balances with asset amounts, banks must hold every referenced bank
func ObligationView(ob *core.Obligation, banks map[string]*core.Bank) *Obligation {
	view := &Obligation{
		ObligationID: ob.ObligationID,
		Owner:        ob.Owner,
		Version:      ob.Version,
		Balances:     []*Balance{},
	}

	for idx := range ob.Balances {
		b := &ob.Balances[idx]
		bank, ok := banks[b.BankID]
		if !b.Active || !ok {
			continue
		}

		v := &Balance{
			Slot:    idx,
			BankID:  b.BankID,
			Symbol:  bank.Symbol,
			Kind:    b.Kind,
			Shares:  b.Shares,
			Amount:  lending.BalanceAmount(bank, b),
			Pending: b.PendingValuation(),
		}

		if b.Kind.IsWrapped() {
			v.MarketValue = b.MarketValue
		}

		view.Balances = append(view.Balances, v)
	}

	return view
}
