package domain

import (
	"strings"
	"time"
)

// QuoteCurrency is the quote asset every trading pair is priced in.
const QuoteCurrency = "USDT"

// Granularity is the time resolution of the points in a series.
type Granularity string

const (
	GranularityDaily   Granularity = "1d"
	GranularityWeekly  Granularity = "1w"
	GranularityMonthly Granularity = "1M"
)

// Step returns the nominal distance between two points of this granularity.
func (g Granularity) Step() time.Duration {
	switch g {
	case GranularityWeekly:
		return 7 * 24 * time.Hour
	case GranularityMonthly:
		return 31 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// PricePoint is one observation of an asset's USD price.
// Volume and MarketCap are zero when unknown.
type PricePoint struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume,omitempty"`
	MarketCap float64 `json:"market_cap,omitempty"`
}

// Time returns the point's timestamp as UTC time.
func (p PricePoint) Time() time.Time {
	return time.UnixMilli(p.Timestamp).UTC()
}

// PriceSeries is an ordered run of points with strictly increasing timestamps.
type PriceSeries struct {
	Symbol      string       `json:"symbol"`
	Granularity Granularity  `json:"interval"`
	Points      []PricePoint `json:"points"`
}

func (s PriceSeries) Len() int { return len(s.Points) }

func (s PriceSeries) First() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[0], true
}

func (s PriceSeries) Last() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// SeriesSource tells whether a series came from the exchange or was synthesized.
type SeriesSource string

const (
	SourceLive      SeriesSource = "live"
	SourceSimulated SeriesSource = "simulated"
)

// DegradeReason explains why a simulated series was served.
type DegradeReason string

const (
	ReasonNone     DegradeReason = ""
	ReasonForced   DegradeReason = "forced"
	ReasonUpstream DegradeReason = "upstream"
)

// SeriesResult is either a live series or a simulated one with the reason it
// was substituted.
type SeriesResult struct {
	Series PriceSeries
	Source SeriesSource
	Reason DegradeReason
	Err    error
}

func LiveSeries(series PriceSeries) SeriesResult {
	return SeriesResult{Series: series, Source: SourceLive}
}

func SimulatedSeries(series PriceSeries, reason DegradeReason, err error) SeriesResult {
	return SeriesResult{Series: series, Source: SourceSimulated, Reason: reason, Err: err}
}

func (r SeriesResult) Simulated() bool { return r.Source == SourceSimulated }

// Degraded reports whether the result stands in for a failed upstream call.
// Forced simulation is not a degradation.
func (r SeriesResult) Degraded() bool { return r.Reason == ReasonUpstream }

// Coin is one row of the popular-coins listing.
type Coin struct {
	ID                       string  `json:"id" yaml:"id"`
	Symbol                   string  `json:"symbol" yaml:"symbol"`
	Name                     string  `json:"name" yaml:"name"`
	CurrentPrice             float64 `json:"current_price" yaml:"current_price"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h" yaml:"price_change_percentage_24h"`
	MarketCap                float64 `json:"market_cap" yaml:"market_cap"`
	Volume24h                float64 `json:"volume_24h" yaml:"volume_24h"`
	Image                    string  `json:"image" yaml:"image"`
}

// BaseSymbol strips whitespace, uppercases and removes the quote suffix.
func BaseSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == QuoteCurrency {
		return s
	}
	return strings.TrimSuffix(s, QuoteCurrency)
}

// TradingPair returns the exchange pair for symbol, e.g. BTC -> BTCUSDT.
func TradingPair(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if strings.HasSuffix(s, QuoteCurrency) {
		return s
	}
	return s + QuoteCurrency
}

// CoinImageURL returns the icon URL used for a base symbol.
func CoinImageURL(base string) string {
	return "https://raw.githubusercontent.com/spothq/cryptocurrency-icons/master/128/color/" + strings.ToLower(base) + ".png"
}

// Ticker24h is one row of the exchange's rolling 24 hour statistics.
type Ticker24h struct {
	Symbol             string
	LastPrice          float64
	PriceChangePercent float64
	Volume             float64
	QuoteVolume        float64
}

// Quote is the current USD price of one asset. Err carries the upstream
// failure when Simulated is true because the exchange could not be reached.
type Quote struct {
	Symbol    string        `json:"symbol"`
	PriceUSD  float64       `json:"price_usd"`
	Simulated bool          `json:"simulated"`
	Reason    DegradeReason `json:"reason,omitempty"`
	UpdatedAt int64         `json:"updated_at"`
	Err       error         `json:"-"`
}

// PopularList is the popular-coins listing with its provenance.
type PopularList struct {
	Coins     []Coin
	Simulated bool
	Reason    DegradeReason
	Err       error
}
