package loan

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Repayment holds the flat-rate figures written on assignment.
type Repayment struct {
	Rate            decimal.Decimal
	TotalInterest   decimal.Decimal
	TotalAmount     decimal.Decimal
	PerInstallment  decimal.Decimal
	InstallmentsDue int
}

// ComputeRepayment applies the flat-rate formula. rate is a percentage;
// every figure is rounded to cents.
func ComputeRepayment(amount, rate decimal.Decimal, installments int) Repayment {
	if installments <= 0 {
		installments = 1
	}
	interest := amount.Mul(rate).Div(hundred).Round(2)
	total := amount.Add(interest).Round(2)
	per := total.Div(decimal.NewFromInt(int64(installments))).Round(2)
	return Repayment{
		Rate:            rate,
		TotalInterest:   interest,
		TotalAmount:     total,
		PerInstallment:  per,
		InstallmentsDue: installments,
	}
}
