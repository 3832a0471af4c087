// Package app wires the provider, services and stores shared by the HTTP
// server, the SSH TUI and the CLI.
package app

import (
	"fmt"
	"time"

	"hindsight/internal/chart"
	"hindsight/internal/config"
	"hindsight/internal/fallback"
	"hindsight/internal/provider"
	"hindsight/internal/repository"
	"hindsight/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

type Services struct {
	Generator  *fallback.Generator
	Provider   *provider.BinanceProvider
	History    *service.HistoryService
	Prices     *service.PriceService
	Market     *service.MarketService
	Investment *service.InvestmentService
	Charts     *chart.Renderer

	// Calculations is nil without a database.
	Calculations *repository.CalculationRepository
}

// NewServices builds the service graph. redisClient and pool may be nil to
// run without the cache or the calculation log.
func NewServices(tracer trace.Tracer, cfg *config.Config, redisClient *redis.Client, pool *pgxpool.Pool) (*Services, error) {
	table, err := fallback.LoadReferenceTable(cfg.ReferencePricesPath)
	if err != nil {
		return nil, fmt.Errorf("load reference table: %w", err)
	}
	gen := fallback.NewGenerator(table, nil)

	binance := provider.NewBinanceProvider(tracer, provider.BinanceConfig{
		BaseURL:    cfg.BinanceBaseURL,
		Timeout:    seconds(cfg.UpstreamTimeoutSecs),
		RatePerMin: cfg.UpstreamRatePerMin,
	})

	var cacheClient service.RedisClient
	if redisClient != nil {
		cacheClient = redisClient
	}
	cacheTTL := seconds(cfg.PriceCacheTTLSecs)

	s := &Services{
		Generator: gen,
		Provider:  binance,
		History: service.NewHistoryService(tracer, binance, gen, service.HistoryOptions{
			ForceSimulated: cfg.ForceSimulated,
			TickerTimeout:  seconds(cfg.TickerTimeoutSecs),
		}),
		Prices: service.NewPriceService(tracer, binance, gen, cacheClient, service.PriceOptions{
			ForceSimulated: cfg.ForceSimulated,
			CacheTTL:       cacheTTL,
		}),
		Market: service.NewMarketService(tracer, binance, gen, cacheClient, service.MarketOptions{
			ForceSimulated: cfg.ForceSimulated,
			CacheTTL:       cacheTTL,
		}),
		Charts: chart.NewRenderer(0, 0),
	}

	var recorder service.CalculationRecorder
	if pool != nil {
		s.Calculations = repository.NewCalculationRepository(pool, tracer)
		recorder = s.Calculations
	}
	s.Investment = service.NewInvestmentService(tracer, s.History, recorder)
	return s, nil
}

// WarmSymbols lists the symbols the cache warmer keeps fresh.
func (s *Services) WarmSymbols() []string {
	return s.Generator.Table().Symbols()
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
