package fallback

import (
	"math"
	"math/rand/v2"
	"time"

	"hindsight/internal/calculator"
	"hindsight/internal/domain"
)

const (
	maxSimulatedPoints = 100
	startDiscount      = 0.8

	// Placeholder trend multipliers for years missing from the history table.
	laterYearMultiplier   = 1.2
	earlierYearMultiplier = 0.8

	simulatedVolumeFactor    = 1000
	simulatedMarketCapFactor = 1_000_000

	// historyFallbackSymbol supplies the history of symbols without one.
	historyFallbackSymbol = "BTC"
)

// Generator produces synthetic prices from a ReferenceTable. Every method
// succeeds; missing data degrades to an estimate.
type Generator struct {
	table *ReferenceTable
	rand  func() float64
}

// NewGenerator builds a generator. rnd must return values in [0, 1); nil
// uses math/rand/v2.
func NewGenerator(table *ReferenceTable, rnd func() float64) *Generator {
	if table == nil {
		table = DefaultReferenceTable()
	}
	if rnd == nil {
		rnd = rand.Float64
	}
	return &Generator{table: table, rand: rnd}
}

// Table exposes the reference table the generator reads from.
func (g *Generator) Table() *ReferenceTable { return g.table }

// JitterFactor returns a multiplier drawn uniformly from [0.9, 1.1).
func (g *Generator) JitterFactor() float64 {
	return 0.9 + g.rand()*0.2
}

// CurrentPrice returns the reference price for symbol, or DefaultPrice.
func (g *Generator) CurrentPrice(symbol string) float64 {
	if p, ok := g.table.CurrentPrice(symbol); ok {
		return p
	}
	return DefaultPrice
}

// GenerateSeries synthesizes a noisy walk from 80% of the reference price up
// to the reference price across [start, end].
func (g *Generator) GenerateSeries(symbol string, start, end time.Time) domain.PriceSeries {
	base := domain.BaseSymbol(symbol)
	basePrice := g.CurrentPrice(base)
	startPrice := basePrice * startDiscount

	n := pointCount(start, end)
	startMs := start.UnixMilli()
	spanMs := end.UnixMilli() - startMs

	points := make([]domain.PricePoint, 0, n)
	for i := 0; i < n; i++ {
		ts := startMs
		progress := 0.0
		if n > 1 {
			ts = startMs + spanMs*int64(i)/int64(n-1)
			progress = float64(i) / float64(n-1)
		}
		rf := g.JitterFactor()
		price := startPrice + (basePrice-startPrice)*progress*rf
		points = append(points, domain.PricePoint{
			Timestamp: ts,
			Price:     price,
			Volume:    price * simulatedVolumeFactor * rf,
			MarketCap: price * simulatedMarketCapFactor * rf,
		})
	}

	return domain.PriceSeries{
		Symbol:      base,
		Granularity: calculator.SelectInterval(start, end),
		Points:      points,
	}
}

// pointCount is min(100, whole days in range), at least one.
func pointCount(start, end time.Time) int {
	span := end.Sub(start)
	if span <= 0 {
		return 1
	}
	days := int(math.Ceil(span.Hours() / 24))
	if days > maxSimulatedPoints {
		return maxSimulatedPoints
	}
	if days < 1 {
		return 1
	}
	return days
}

// GenerateFallbackPoint looks up the tabulated monthly price for date.
func (g *Generator) GenerateFallbackPoint(symbol string, date time.Time) domain.PricePoint {
	return domain.PricePoint{
		Timestamp: date.UnixMilli(),
		Price:     g.historicalPrice(symbol, date.Year(), int(date.Month())),
	}
}

func (g *Generator) historicalPrice(symbol string, year, month int) float64 {
	years, ok := g.table.History(symbol)
	if !ok {
		years, ok = g.table.History(historyFallbackSymbol)
	}
	if !ok {
		return g.CurrentPrice(symbol)
	}

	if months, ok := years[year]; ok {
		return monthPrice(months, month)
	}

	recent := latestYear(years)
	multiplier := earlierYearMultiplier
	if year > recent {
		multiplier = laterYearMultiplier
	}
	return monthPrice(years[recent], month) * multiplier
}

// GenerateMonthlySeries returns one tabulated point per calendar month from
// start to end inclusive, keeping start's day of month where possible.
func (g *Generator) GenerateMonthlySeries(symbol string, start, end time.Time) domain.PriceSeries {
	base := domain.BaseSymbol(symbol)
	var points []domain.PricePoint
	for i := 0; ; i++ {
		d := addMonthsClamped(start, i)
		if d.After(end) {
			break
		}
		points = append(points, g.GenerateFallbackPoint(base, d))
	}
	return domain.PriceSeries{
		Symbol:      base,
		Granularity: domain.GranularityMonthly,
		Points:      points,
	}
}

// PopularCoins returns the hardcoded listing used when the exchange is down.
func (g *Generator) PopularCoins() []domain.Coin {
	return g.table.Popular()
}

func addMonthsClamped(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return first.AddDate(0, 0, day-1)
}
