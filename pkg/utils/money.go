package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds a monetary amount to 2 decimal places using round-half-up.
// Every amount the engine stores or compares goes through this so that long
// entry streams never accumulate float drift.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// CalculateEMI computes the equated monthly installment for a loan.
// Formula: EMI = P * r * (1+r)^n / ((1+r)^n - 1), where r is the monthly rate
// (annualRatePercent / 12 / 100) and n the number of installments.
// A zero rate degenerates to an even split of the principal.
func CalculateEMI(principal decimal.Decimal, annualRatePercent decimal.Decimal, installments int) decimal.Decimal {
	if installments <= 0 || principal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	monthlyRate := annualRatePercent.InexactFloat64() / 12.0 / 100.0
	if monthlyRate == 0 {
		return principal.Div(decimal.NewFromInt(int64(installments))).Round(2)
	}

	// The power term is computed in float64, then the result is snapped back
	// to decimal for currency rounding.
	factor := math.Pow(1+monthlyRate, float64(installments))
	emi := principal.InexactFloat64() * monthlyRate * factor / (factor - 1)

	return decimal.NewFromFloat(emi).Round(2)
}

// TotalPayable is the installment schedule total: installment amount times the
// number of installments. Loan approval bakes this full amount, interest
// included, into the remaining balance.
func TotalPayable(installmentAmount decimal.Decimal, installments int) decimal.Decimal {
	return installmentAmount.Mul(decimal.NewFromInt(int64(installments))).Round(2)
}

// PercentOf returns pct% of amount, rounded to currency precision.
func PercentOf(amount decimal.Decimal, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(decimal.NewFromInt(100)).Round(2)
}
