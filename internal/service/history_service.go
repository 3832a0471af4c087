package service

import (
	"context"
	"fmt"
	"time"

	"hindsight/internal/calculator"
	"hindsight/internal/domain"
	"hindsight/internal/fallback"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTickerTimeout = 3 * time.Second
	staleAfter           = 24 * time.Hour
)

// MarketDataProvider is the exchange surface the services read from.
type MarketDataProvider interface {
	FetchKlines(ctx context.Context, pair string, interval domain.Granularity, start, end time.Time, limit int) ([]domain.PricePoint, error)
	FetchTickerPrice(ctx context.Context, pair string) (float64, error)
	FetchTicker24h(ctx context.Context) ([]domain.Ticker24h, error)
}

type HistoryOptions struct {
	// ForceSimulated skips the exchange entirely.
	ForceSimulated bool
	TickerTimeout  time.Duration
}

// HistoryService fetches price series from the exchange and substitutes
// generated ones when it cannot.
type HistoryService struct {
	tracer         trace.Tracer
	provider       MarketDataProvider
	generator      *fallback.Generator
	forceSimulated bool
	tickerTimeout  time.Duration
	now            func() time.Time
}

func NewHistoryService(tracer trace.Tracer, provider MarketDataProvider, generator *fallback.Generator, opts HistoryOptions) *HistoryService {
	if opts.TickerTimeout <= 0 {
		opts.TickerTimeout = defaultTickerTimeout
	}
	return &HistoryService{
		tracer:         tracer,
		provider:       provider,
		generator:      generator,
		forceSimulated: opts.ForceSimulated,
		tickerTimeout:  opts.TickerTimeout,
		now:            time.Now,
	}
}

func (s *HistoryService) ForceSimulated() bool { return s.forceSimulated }

// Generator returns the fallback generator backing this service.
func (s *HistoryService) Generator() *fallback.Generator { return s.generator }

// FetchSeries reads candles for [start, end] at the granularity picked by
// the span and patches in a current ticker point when the last candle is
// more than a day old. Every failure is an *domain.UpstreamError.
func (s *HistoryService) FetchSeries(ctx context.Context, symbol string, start, end time.Time) (domain.PriceSeries, error) {
	ctx, span := s.tracer.Start(ctx, "history-service.fetch-series")
	defer span.End()

	pair := domain.TradingPair(symbol)
	interval := calculator.SelectInterval(start, end)
	span.SetAttributes(attribute.String("pair", pair), attribute.String("interval", string(interval)))

	log.Debug("fetching price history", "pair", pair, "interval", interval, "days", int(end.Sub(start).Hours()/24))

	points, err := s.provider.FetchKlines(ctx, pair, interval, start, end, calculator.MaxCandlesPerRequest)
	if err != nil {
		return domain.PriceSeries{}, err
	}
	if len(points) == 0 {
		return domain.PriceSeries{}, &domain.UpstreamError{Op: "klines", Err: fmt.Errorf("%s: %w", pair, domain.ErrNoUpstreamData)}
	}

	points = s.patchStale(ctx, pair, points)

	return domain.PriceSeries{
		Symbol:      domain.BaseSymbol(symbol),
		Granularity: interval,
		Points:      points,
	}, nil
}

// patchStale appends a live ticker point when the newest candle is older
// than a day. Volume and market cap are carried over from the last candle
// with independent jitter.
func (s *HistoryService) patchStale(ctx context.Context, pair string, points []domain.PricePoint) []domain.PricePoint {
	now := s.now()
	last := points[len(points)-1]
	age := now.Sub(last.Time())
	if age <= staleAfter {
		return points
	}

	tctx, cancel := context.WithTimeout(ctx, s.tickerTimeout)
	defer cancel()

	price, err := s.provider.FetchTickerPrice(tctx, pair)
	if err != nil {
		log.Debug("could not add current price point", "pair", pair, "err", err)
		return points
	}

	log.Debug("adding current price point", "pair", pair, "age_days", fmt.Sprintf("%.1f", age.Hours()/24))
	return append(points, domain.PricePoint{
		Timestamp: now.UnixMilli(),
		Price:     price,
		Volume:    last.Volume * s.generator.JitterFactor(),
		MarketCap: last.MarketCap * s.generator.JitterFactor(),
	})
}

// Series returns a live series, or a generated one tagged with the reason
// it was substituted. It never fails.
func (s *HistoryService) Series(ctx context.Context, symbol string, start, end time.Time) domain.SeriesResult {
	ctx, span := s.tracer.Start(ctx, "history-service.series")
	defer span.End()

	if s.forceSimulated {
		span.SetAttributes(attribute.String("source", string(domain.SourceSimulated)))
		return domain.SimulatedSeries(s.generator.GenerateSeries(symbol, start, end), domain.ReasonForced, nil)
	}

	series, err := s.FetchSeries(ctx, symbol, start, end)
	if err != nil {
		log.Warn("price history unavailable, serving simulated series", "symbol", symbol, "err", err)
		span.RecordError(err)
		span.SetAttributes(attribute.String("source", string(domain.SourceSimulated)))
		return domain.SimulatedSeries(s.generator.GenerateSeries(symbol, start, end), domain.ReasonUpstream, err)
	}

	span.SetAttributes(attribute.String("source", string(domain.SourceLive)))
	return domain.LiveSeries(series)
}

// MonthlyClose returns the close of the first monthly candle at or after
// date. It does not fall back; callers decide how to degrade.
func (s *HistoryService) MonthlyClose(ctx context.Context, symbol string, date time.Time) (domain.PricePoint, error) {
	ctx, span := s.tracer.Start(ctx, "history-service.monthly-close")
	defer span.End()

	pair := domain.TradingPair(symbol)
	points, err := s.provider.FetchKlines(ctx, pair, domain.GranularityMonthly, date, s.now(), 0)
	if err != nil {
		return domain.PricePoint{}, err
	}
	if len(points) == 0 {
		return domain.PricePoint{}, &domain.UpstreamError{Op: "klines", Err: fmt.Errorf("%s: %w", pair, domain.ErrNoUpstreamData)}
	}
	return points[0], nil
}
