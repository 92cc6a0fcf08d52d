package views

import (
	"lendcore/core"
	"lendcore/pkg/lending"

	"github.com/shopspring/decimal"
)

// Bank bank view
type Bank struct {
	*core.Bank
	TotalDeposited  decimal.Decimal `json:"total_deposited"`
	TotalBorrowed   decimal.Decimal `json:"total_borrowed"`
	UtilizationRate decimal.Decimal `json:"utilization_rate"`
	LendingAPR      decimal.Decimal `json:"lending_apr"`
	BorrowingAPR    decimal.Decimal `json:"borrowing_apr"`
}

// BankView bank with its current rates
func BankView(bank *core.Bank) *Bank {
	deposited, borrowed := bank.TotalDeposited(), bank.TotalBorrowed()
	ur := lending.UtilizationRate(deposited, borrowed)
	rates := lending.CalcInterestRate(&bank.InterestRateConfig, ur)

	return &Bank{
		Bank:            bank,
		TotalDeposited:  deposited,
		TotalBorrowed:   borrowed,
		UtilizationRate: ur,
		LendingAPR:      rates.LendingAPR,
		BorrowingAPR:    rates.BorrowingAPR,
	}
}
