package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"hindsight/internal/domain"
	"hindsight/internal/fallback"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	popularCacheKey = "popular:top"
	PopularLimit    = 50
)

type MarketOptions struct {
	ForceSimulated bool
	CacheTTL       time.Duration
}

// MarketService builds the popular-coins listing from 24h tickers.
type MarketService struct {
	tracer         trace.Tracer
	provider       MarketDataProvider
	generator      *fallback.Generator
	cache          snapshotCache
	forceSimulated bool
}

func NewMarketService(
	tracer trace.Tracer,
	provider MarketDataProvider,
	generator *fallback.Generator,
	redisClient RedisClient,
	opts MarketOptions,
) *MarketService {
	return &MarketService{
		tracer:         tracer,
		provider:       provider,
		generator:      generator,
		cache:          newSnapshotCache(redisClient, opts.CacheTTL),
		forceSimulated: opts.ForceSimulated,
	}
}

// Popular returns the top USDT pairs by quote volume, or the hardcoded list
// when the exchange is unavailable.
func (s *MarketService) Popular(ctx context.Context) domain.PopularList {
	ctx, span := s.tracer.Start(ctx, "market-service.popular")
	defer span.End()

	if s.forceSimulated {
		return domain.PopularList{Coins: s.generator.PopularCoins(), Simulated: true, Reason: domain.ReasonForced}
	}

	var cached []domain.Coin
	hit, err := s.cache.get(ctx, popularCacheKey, &cached)
	if err != nil {
		log.Printf("redis cache read error: %v", err)
	}
	if hit && len(cached) > 0 {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return domain.PopularList{Coins: cached}
	}

	coins, err := s.fetchPopular(ctx)
	if err != nil {
		log.Warn("popular coins unavailable, serving hardcoded list", "err", err)
		span.RecordError(err)
		return domain.PopularList{
			Coins:     s.generator.PopularCoins(),
			Simulated: true,
			Reason:    domain.ReasonUpstream,
			Err:       err,
		}
	}
	return domain.PopularList{Coins: coins}
}

// RefreshPopular re-reads the listing into the cache.
func (s *MarketService) RefreshPopular(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "market-service.refresh-popular")
	defer span.End()

	if s.forceSimulated || !s.cache.enabled() {
		return nil
	}
	coins, err := s.fetchPopular(ctx)
	if err != nil {
		return err
	}
	log.Printf("Refreshed popular list (%d coins)", len(coins))
	return nil
}

func (s *MarketService) fetchPopular(ctx context.Context) ([]domain.Coin, error) {
	tickers, err := s.provider.FetchTicker24h(ctx)
	if err != nil {
		return nil, err
	}
	coins := RankPopular(tickers, PopularLimit)
	if err := s.cache.set(ctx, popularCacheKey, coins); err != nil {
		log.Printf("redis cache write error for popular list: %v", err)
	}
	return coins, nil
}

// RankPopular keeps USDT pairs that are not leveraged tokens, orders them by
// quote volume descending and maps the first limit into coins. Quote volume
// stands in for market cap.
func RankPopular(tickers []domain.Ticker24h, limit int) []domain.Coin {
	pairs := make([]domain.Ticker24h, 0, len(tickers))
	for _, t := range tickers {
		sym := strings.ToUpper(t.Symbol)
		if !strings.HasSuffix(sym, domain.QuoteCurrency) || sym == domain.QuoteCurrency {
			continue
		}
		if isLeveragedToken(strings.TrimSuffix(sym, domain.QuoteCurrency)) {
			continue
		}
		pairs = append(pairs, t)
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].QuoteVolume > pairs[j].QuoteVolume
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}

	coins := make([]domain.Coin, 0, len(pairs))
	for _, p := range pairs {
		base := domain.BaseSymbol(p.Symbol)
		lower := strings.ToLower(base)
		coins = append(coins, domain.Coin{
			ID:                       lower,
			Symbol:                   lower,
			Name:                     base,
			CurrentPrice:             p.LastPrice,
			PriceChangePercentage24h: p.PriceChangePercent,
			MarketCap:                p.QuoteVolume,
			Volume24h:                p.Volume,
			Image:                    domain.CoinImageURL(base),
		})
	}
	return coins
}

// isLeveragedToken matches BTCUP, BTCDOWN, BULL and BEAR style tokens. The
// UP and DOWN suffixes need a three letter underlying so JUP stays listed.
func isLeveragedToken(base string) bool {
	for _, suffix := range []string{"UP", "DOWN"} {
		if strings.HasSuffix(base, suffix) && len(base) >= len(suffix)+3 {
			return true
		}
	}
	return strings.Contains(base, "BULL") || strings.Contains(base, "BEAR")
}
