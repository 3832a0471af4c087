package domain

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is returned when a series has fewer than two points.
var ErrInsufficientData = errors.New("not enough price data for the selected period")

// UpstreamError covers network failures, non-200 answers and empty payloads
// from the market data source.
type UpstreamError struct {
	Op     string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// InvalidInputError is returned for non-positive amounts or prices.
type InvalidInputError struct {
	Field string
	Value float64
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %v must be greater than zero", e.Field, e.Value)
}

// MissingParameterError is returned when a required request parameter is absent.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return "missing required parameter: " + e.Name
}

func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

func IsInvalidInput(err error) bool {
	var ie *InvalidInputError
	return errors.As(err, &ie)
}

// ErrNoUpstreamData is wrapped in an UpstreamError when the exchange answers
// successfully but returns nothing for the requested range.
var ErrNoUpstreamData = errors.New("no data returned for the requested range")
