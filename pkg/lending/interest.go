package lending

import (
	"fmt"

	"lendcore/core"
	"lendcore/pkg/number"

	"github.com/shopspring/decimal"
)

var (
	// SecondsPerYear accrual year
	SecondsPerYear = decimal.NewFromInt(31_536_000)
)

// InterestRates APRs derived from the utilization rate
type InterestRates struct {
	LendingAPR      decimal.Decimal `json:"lending_apr"`
	BorrowingAPR    decimal.Decimal `json:"borrowing_apr"`
	InsuranceFeeAPR decimal.Decimal `json:"insurance_fee_apr"`
	ProtocolFeeAPR  decimal.Decimal `json:"protocol_fee_apr"`
}

// UtilizationRate utilization_rate = borrowed / deposited
func UtilizationRate(deposited, borrowed decimal.Decimal) decimal.Decimal {
	if !deposited.IsPositive() {
		return decimal.Zero
	}

	return number.Div(borrowed, deposited)
}

// BaseRate kinked curve
//
//	ur <= optimal: ur / optimal * plateau
//	ur >  optimal: plateau + (ur - optimal) / (1 - optimal) * (max - plateau)
func BaseRate(cfg *core.InterestRateConfig, ur decimal.Decimal) decimal.Decimal {
	optimal := cfg.OptimalUtilizationRate
	if ur.LessThanOrEqual(optimal) {
		return number.Mul(number.Div(ur, optimal), cfg.PlateauInterestRate)
	}

	excess := number.Div(ur.Sub(optimal), number.One.Sub(optimal))
	return number.Mul(excess, cfg.MaxInterestRate.Sub(cfg.PlateauInterestRate)).Add(cfg.PlateauInterestRate)
}

// CalcInterestRate lending, borrowing and fee APRs at ur
func CalcInterestRate(cfg *core.InterestRateConfig, ur decimal.Decimal) InterestRates {
	base := BaseRate(cfg, ur)
	irFees := cfg.InsuranceIRFee.Add(cfg.ProtocolIRFee)
	fixedFees := cfg.InsuranceFeeFixedAPR.Add(cfg.ProtocolFixedFeeAPR)

	return InterestRates{
		LendingAPR:      number.Mul(base, ur),
		BorrowingAPR:    number.Mul(base, number.One.Add(irFees)).Add(fixedFees),
		InsuranceFeeAPR: number.Mul(base, cfg.InsuranceIRFee).Add(cfg.InsuranceFeeFixedAPR),
		ProtocolFeeAPR:  number.Mul(base, cfg.ProtocolIRFee).Add(cfg.ProtocolFixedFeeAPR),
	}
}

// ValidateInterestRateConfig rates must be non negative, optimal in (0, 1], max >= plateau
func ValidateInterestRateConfig(cfg *core.InterestRateConfig) error {
	if !cfg.OptimalUtilizationRate.IsPositive() || cfg.OptimalUtilizationRate.GreaterThan(number.One) {
		return fmt.Errorf("%w: optimal utilization rate out of (0, 1]", core.ErrInvalidBankConfig)
	}

	for _, r := range []decimal.Decimal{
		cfg.PlateauInterestRate,
		cfg.MaxInterestRate,
		cfg.InsuranceFeeFixedAPR,
		cfg.InsuranceIRFee,
		cfg.ProtocolFixedFeeAPR,
		cfg.ProtocolIRFee,
	} {
		if r.IsNegative() {
			return fmt.Errorf("%w: negative rate", core.ErrInvalidBankConfig)
		}
	}

	if cfg.MaxInterestRate.LessThan(cfg.PlateauInterestRate) {
		return fmt.Errorf("%w: max rate below plateau", core.ErrInvalidBankConfig)
	}

	return nil
}

// DefaultInterestRateConfig curve used when a bank is created without one
func DefaultInterestRateConfig() core.InterestRateConfig {
	return core.InterestRateConfig{
		OptimalUtilizationRate: number.Decimal("0.5"),
		PlateauInterestRate:    number.Decimal("0.5"),
		MaxInterestRate:        number.Decimal("4"),
		InsuranceFeeFixedAPR:   number.Decimal("0.01"),
		InsuranceIRFee:         number.Decimal("0.05"),
		ProtocolFixedFeeAPR:    number.Decimal("0.01"),
		ProtocolIRFee:          number.Decimal("0.1"),
	}
}
