package job

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const defaultWarmInterval = 2 * time.Minute

type PriceRefresher interface {
	RefreshPrices(ctx context.Context, symbols []string) error
}

type PopularRefresher interface {
	RefreshPopular(ctx context.Context) error
}

// CacheWarmer keeps the Redis price and popular-list snapshots fresh so
// request paths rarely wait on the exchange.
type CacheWarmer struct {
	tracer   trace.Tracer
	prices   PriceRefresher
	market   PopularRefresher
	symbols  []string
	interval time.Duration
}

func NewCacheWarmer(tracer trace.Tracer, prices PriceRefresher, market PopularRefresher, symbols []string, intervalSecs int) *CacheWarmer {
	interval := time.Duration(intervalSecs) * time.Second
	if interval <= 0 {
		interval = defaultWarmInterval
	}
	return &CacheWarmer{
		tracer:   tracer,
		prices:   prices,
		market:   market,
		symbols:  append([]string(nil), symbols...),
		interval: interval,
	}
}

// Start warms immediately and then every interval. Blocks until ctx is cancelled.
func (w *CacheWarmer) Start(ctx context.Context) {
	log.Info("Cache warmer starting", "symbols", len(w.symbols), "interval", w.interval)
	w.pollLoop(ctx, "cache-warm", w.interval, w.warm)
	log.Info("Cache warmer stopped")
}

// warm refreshes both snapshots concurrently and returns the first failure.
// The refreshes are independent, so one failing never cancels the other.
func (w *CacheWarmer) warm(ctx context.Context) error {
	ctx, span := w.tracer.Start(ctx, "cache-warmer.warm")
	defer span.End()
	span.SetAttributes(attribute.Int("symbols", len(w.symbols)))

	var g errgroup.Group
	if w.prices != nil && len(w.symbols) > 0 {
		g.Go(func() error { return w.prices.RefreshPrices(ctx, w.symbols) })
	}
	if w.market != nil {
		g.Go(func() error { return w.market.RefreshPopular(ctx) })
	}
	err := g.Wait()
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (w *CacheWarmer) pollLoop(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		log.Warn("poller initial run error", "poller", name, "err", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				log.Warn("poller run error", "poller", name, "err", err)
			}
		}
	}
}
