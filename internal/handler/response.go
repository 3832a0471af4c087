package handler

import (
	"errors"
	"net/http"
	"strings"

	"hindsight/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// badRequest answers 400 with the standard failure envelope.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
}

// statusFor maps pipeline errors to HTTP statuses. Anything not listed is
// reported inside a 200 envelope.
func statusFor(err error) int {
	var missing *domain.MissingParameterError
	switch {
	case errors.As(err, &missing), domain.IsInvalidInput(err):
		return http.StatusBadRequest
	default:
		return http.StatusOK
	}
}

func requiredQuery(c *gin.Context, name string) (string, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return "", &domain.MissingParameterError{Name: name}
	}
	return v, nil
}

func parseAmount(raw string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, &domain.InvalidInputError{Field: "amount"}
	}
	v := d.InexactFloat64()
	if !d.IsPositive() {
		return 0, &domain.InvalidInputError{Field: "amount", Value: v}
	}
	return v, nil
}

// calculationRequest reads coinId, amount and period from the query string.
func calculationRequest(c *gin.Context) (domain.CalculationRequest, error) {
	symbol, err := requiredQuery(c, "coinId")
	if err != nil {
		return domain.CalculationRequest{}, err
	}
	rawAmount, err := requiredQuery(c, "amount")
	if err != nil {
		return domain.CalculationRequest{}, err
	}
	amount, err := parseAmount(rawAmount)
	if err != nil {
		return domain.CalculationRequest{}, err
	}
	return domain.CalculationRequest{
		Symbol: symbol,
		Amount: amount,
		Period: c.Query("period"),
	}, nil
}
