package calculator

import "hindsight/internal/domain"

// ComputeReturns projects a buy-and-hold position bought at initialPrice.
func ComputeReturns(initialAmount, initialPrice, currentPrice float64) (domain.Returns, error) {
	// !(x > 0) also rejects NaN.
	if !(initialAmount > 0) {
		return domain.Returns{}, &domain.InvalidInputError{Field: "amount", Value: initialAmount}
	}
	if !(initialPrice > 0) {
		return domain.Returns{}, &domain.InvalidInputError{Field: "initial price", Value: initialPrice}
	}

	currentValue := (currentPrice / initialPrice) * initialAmount
	profit := currentValue - initialAmount
	profitPercentage := ((currentValue / initialAmount) - 1) * 100

	return domain.Returns{
		CurrentValue:     currentValue,
		Profit:           profit,
		ProfitPercentage: profitPercentage,
	}, nil
}

// InvestmentValue is the value of amount bought at initialPrice when the
// price is price. Callers must have validated initialPrice.
func InvestmentValue(amount, initialPrice, price float64) float64 {
	return (price / initialPrice) * amount
}
