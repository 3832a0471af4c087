package service

import (
	"context"
	"time"

	"hindsight/internal/domain"
	"hindsight/internal/fallback"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const priceKeyPrefix = "price:"

type PriceOptions struct {
	ForceSimulated bool
	CacheTTL       time.Duration
}

// PriceService serves current prices from Redis, then the exchange, then
// the reference table.
type PriceService struct {
	tracer         trace.Tracer
	provider       MarketDataProvider
	generator      *fallback.Generator
	cache          snapshotCache
	forceSimulated bool
	now            func() time.Time
}

func NewPriceService(
	tracer trace.Tracer,
	provider MarketDataProvider,
	generator *fallback.Generator,
	redisClient RedisClient,
	opts PriceOptions,
) *PriceService {
	return &PriceService{
		tracer:         tracer,
		provider:       provider,
		generator:      generator,
		cache:          newSnapshotCache(redisClient, opts.CacheTTL),
		forceSimulated: opts.ForceSimulated,
		now:            time.Now,
	}
}

// GetCurrentPrice always returns a usable quote. When the exchange fails
// the quote is simulated and carries the error.
func (s *PriceService) GetCurrentPrice(ctx context.Context, symbol string) domain.Quote {
	ctx, span := s.tracer.Start(ctx, "price-service.get-current-price")
	defer span.End()

	base := domain.BaseSymbol(symbol)
	span.SetAttributes(attribute.String("symbol", base))

	if s.forceSimulated {
		return s.simulatedQuote(base, domain.ReasonForced, nil)
	}

	var cached domain.Quote
	hit, err := s.cache.get(ctx, priceKeyPrefix+base, &cached)
	if err != nil {
		log.Printf("redis cache read error: %v", err)
	}
	if hit {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return cached
	}

	quote, err := s.fetchQuote(ctx, base)
	if err != nil {
		log.Warn("current price unavailable, serving reference price", "symbol", base, "err", err)
		span.RecordError(err)
		return s.simulatedQuote(base, domain.ReasonUpstream, err)
	}
	return quote
}

// RefreshPrices re-reads the given symbols from the exchange into the cache.
func (s *PriceService) RefreshPrices(ctx context.Context, symbols []string) error {
	ctx, span := s.tracer.Start(ctx, "price-service.refresh-prices")
	defer span.End()

	if s.forceSimulated || !s.cache.enabled() {
		return nil
	}

	refreshed := 0
	var firstErr error
	for _, symbol := range symbols {
		if _, err := s.fetchQuote(ctx, domain.BaseSymbol(symbol)); err != nil {
			log.Debug("price refresh failed", "symbol", symbol, "err", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		refreshed++
	}
	log.Printf("Refreshed prices for %d assets", refreshed)
	return firstErr
}

func (s *PriceService) fetchQuote(ctx context.Context, base string) (domain.Quote, error) {
	price, err := s.provider.FetchTickerPrice(ctx, domain.TradingPair(base))
	if err != nil {
		return domain.Quote{}, err
	}
	quote := domain.Quote{
		Symbol:    base,
		PriceUSD:  price,
		UpdatedAt: s.now().Unix(),
	}
	if err := s.cache.set(ctx, priceKeyPrefix+base, quote); err != nil {
		log.Printf("redis cache write error for %s: %v", base, err)
	}
	return quote, nil
}

func (s *PriceService) simulatedQuote(base string, reason domain.DegradeReason, err error) domain.Quote {
	return domain.Quote{
		Symbol:    base,
		PriceUSD:  s.generator.CurrentPrice(base),
		Simulated: true,
		Reason:    reason,
		UpdatedAt: s.now().Unix(),
		Err:       err,
	}
}
