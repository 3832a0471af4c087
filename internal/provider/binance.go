package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hindsight/internal/domain"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	binanceBaseURL = "https://api.binance.com/api/v3"

	defaultBinanceTimeout  = 10 * time.Second
	defaultBinanceRatePerM = 1200
	binanceBurst           = 10

	// klineFields is the minimum row width needed to read the quote volume.
	klineFields = 8
)

// BinanceConfig tunes the client. Zero values use the defaults.
type BinanceConfig struct {
	BaseURL    string
	Timeout    time.Duration
	RatePerMin int
}

// BinanceProvider reads klines and tickers from the Binance public REST API.
type BinanceProvider struct {
	client  *resty.Client
	baseURL string
	tracer  trace.Tracer
	limiter *rate.Limiter
}

func NewBinanceProvider(tracer trace.Tracer, cfg BinanceConfig) *BinanceProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = binanceBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultBinanceTimeout
	}
	if cfg.RatePerMin <= 0 {
		cfg.RatePerMin = defaultBinanceRatePerM
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &BinanceProvider{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		tracer:  tracer,
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RatePerMin)/60), binanceBurst),
	}
}

// FetchKlines returns the closes of pair between start and end as points.
// Rows with a non-positive close or a timestamp that does not advance are
// skipped.
func (p *BinanceProvider) FetchKlines(ctx context.Context, pair string, interval domain.Granularity, start, end time.Time, limit int) ([]domain.PricePoint, error) {
	ctx, span := p.tracer.Start(ctx, "binance.fetch-klines")
	defer span.End()
	span.SetAttributes(
		attribute.String("pair", pair),
		attribute.String("interval", string(interval)),
	)

	params := map[string]string{
		"symbol":    pair,
		"interval":  string(interval),
		"startTime": strconv.FormatInt(start.UnixMilli(), 10),
		"endTime":   strconv.FormatInt(end.UnixMilli(), 10),
	}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}

	body, err := p.doRequest(ctx, "klines", "/klines", params)
	if err != nil {
		return nil, err
	}

	var raw [][]json.Number
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &domain.UpstreamError{Op: "klines", Err: fmt.Errorf("parse klines for %s: %w", pair, err)}
	}

	points, dropped := parseKlines(raw)
	if dropped > 0 {
		log.Debug("dropped malformed candles", "pair", pair, "dropped", dropped)
	}
	if len(points) == 0 {
		return nil, &domain.UpstreamError{Op: "klines", Err: fmt.Errorf("%s: %w", pair, domain.ErrNoUpstreamData)}
	}
	span.SetAttributes(attribute.Int("points", len(points)))
	return points, nil
}

// FetchTickerPrice returns the last traded price of pair.
func (p *BinanceProvider) FetchTickerPrice(ctx context.Context, pair string) (float64, error) {
	ctx, span := p.tracer.Start(ctx, "binance.fetch-ticker-price")
	defer span.End()
	span.SetAttributes(attribute.String("pair", pair))

	body, err := p.doRequest(ctx, "ticker/price", "/ticker/price", map[string]string{"symbol": pair})
	if err != nil {
		return 0, err
	}

	var raw struct {
		Symbol string          `json:"symbol"`
		Price  decimal.Decimal `json:"price"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return 0, &domain.UpstreamError{Op: "ticker/price", Err: fmt.Errorf("parse ticker for %s: %w", pair, err)}
	}
	if !raw.Price.IsPositive() {
		return 0, &domain.UpstreamError{Op: "ticker/price", Err: fmt.Errorf("%s: %w", pair, domain.ErrNoUpstreamData)}
	}
	return raw.Price.InexactFloat64(), nil
}

// FetchTicker24h returns the rolling statistics for every listed pair.
func (p *BinanceProvider) FetchTicker24h(ctx context.Context) ([]domain.Ticker24h, error) {
	ctx, span := p.tracer.Start(ctx, "binance.fetch-ticker-24h")
	defer span.End()

	body, err := p.doRequest(ctx, "ticker/24hr", "/ticker/24hr", nil)
	if err != nil {
		return nil, err
	}

	var raw []struct {
		Symbol             string          `json:"symbol"`
		LastPrice          decimal.Decimal `json:"lastPrice"`
		PriceChangePercent decimal.Decimal `json:"priceChangePercent"`
		Volume             decimal.Decimal `json:"volume"`
		QuoteVolume        decimal.Decimal `json:"quoteVolume"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &domain.UpstreamError{Op: "ticker/24hr", Err: fmt.Errorf("parse 24h tickers: %w", err)}
	}
	if len(raw) == 0 {
		return nil, &domain.UpstreamError{Op: "ticker/24hr", Err: domain.ErrNoUpstreamData}
	}

	out := make([]domain.Ticker24h, 0, len(raw))
	for _, r := range raw {
		out = append(out, domain.Ticker24h{
			Symbol:             r.Symbol,
			LastPrice:          r.LastPrice.InexactFloat64(),
			PriceChangePercent: r.PriceChangePercent.InexactFloat64(),
			Volume:             r.Volume.InexactFloat64(),
			QuoteVolume:        r.QuoteVolume.InexactFloat64(),
		})
	}
	span.SetAttributes(attribute.Int("tickers", len(out)))
	return out, nil
}

func (p *BinanceProvider) doRequest(ctx context.Context, op, path string, params map[string]string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &domain.UpstreamError{Op: op, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(p.baseURL + path)
	if err != nil {
		return nil, &domain.UpstreamError{Op: op, Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &domain.UpstreamError{
			Op:     op,
			Status: resp.StatusCode(),
			Err:    fmt.Errorf("binance API error: %s", strings.TrimSpace(resp.String())),
		}
	}
	return resp.Body(), nil
}

// parseKlines converts kline rows into points. Index 0 is the open time,
// 4 the close, 5 the base volume and 7 the quote volume.
func parseKlines(rows [][]json.Number) ([]domain.PricePoint, int) {
	points := make([]domain.PricePoint, 0, len(rows))
	dropped := 0
	var lastTS int64
	for _, row := range rows {
		if len(row) < klineFields {
			dropped++
			continue
		}
		ts, err := row[0].Int64()
		if err != nil {
			dropped++
			continue
		}
		closePrice, err := decimal.NewFromString(row[4].String())
		if err != nil || !closePrice.IsPositive() {
			dropped++
			continue
		}
		if len(points) > 0 && ts <= lastTS {
			dropped++
			continue
		}
		points = append(points, domain.PricePoint{
			Timestamp: ts,
			Price:     closePrice.InexactFloat64(),
			Volume:    numberOrZero(row[5]),
			MarketCap: numberOrZero(row[7]),
		})
		lastTS = ts
	}
	return points, dropped
}

func numberOrZero(n json.Number) float64 {
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}
