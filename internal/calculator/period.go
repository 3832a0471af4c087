package calculator

import (
	"strings"
	"time"

	"hindsight/internal/domain"
)

const (
	PeriodMax     = "max"
	DefaultPeriod = "1y"
)

// MaxPeriodStart is where the "Maximum" window begins.
var MaxPeriodStart = time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC)

// Periods lists the selectable lookback windows in display order.
var Periods = []domain.Period{
	{Value: "1m", Label: "1 month", Days: 30},
	{Value: "3m", Label: "3 months", Days: 90},
	{Value: "6m", Label: "6 months", Days: 180},
	{Value: "1y", Label: "1 year", Days: 365},
	{Value: "2y", Label: "2 years", Days: 730},
	{Value: "5y", Label: "5 years", Days: 1825},
	{Value: PeriodMax, Label: "Maximum"},
}

// LookupPeriod finds a period by value.
func LookupPeriod(value string) (domain.Period, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, p := range Periods {
		if p.Value == v {
			return p, true
		}
	}
	return domain.Period{}, false
}

// PeriodRange resolves a period value into a time range ending at now and a
// display label. Unknown values fall back to one year labelled "Custom".
func PeriodRange(value string, now time.Time) (start, end time.Time, label string) {
	end = now.UTC()
	p, ok := LookupPeriod(value)
	if !ok {
		return end.Add(-365 * day), end, "Custom"
	}
	if p.Value == PeriodMax {
		return MaxPeriodStart, end, p.Label
	}
	return end.Add(-time.Duration(p.Days) * day), end, p.Label
}

// PeriodValues returns the accepted period values, useful for help text.
func PeriodValues() []string {
	out := make([]string, 0, len(Periods))
	for _, p := range Periods {
		out = append(out, p.Value)
	}
	return out
}
