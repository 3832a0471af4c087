package calculator

import (
	"time"

	"hindsight/internal/domain"
)

const (
	day  = 24 * time.Hour
	year = 365 * day

	// MaxCandlesPerRequest is the upstream's per-call candle ceiling.
	MaxCandlesPerRequest = 1000
)

// SelectInterval picks the coarsest granularity that keeps the candle count
// for [start, end] under the upstream per-request ceiling.
func SelectInterval(start, end time.Time) domain.Granularity {
	span := end.Sub(start)
	switch {
	case span > 5*year:
		return domain.GranularityMonthly
	case span > 2*year:
		return domain.GranularityWeekly
	default:
		return domain.GranularityDaily
	}
}
