package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"hindsight/internal/domain"
	"hindsight/internal/fallback"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace/noop"
)

var testTracer = noop.NewTracerProvider().Tracer("test")

func testGenerator() *fallback.Generator {
	return fallback.NewGenerator(nil, func() float64 { return 0.5 })
}

type mockProvider struct {
	mu sync.Mutex

	klines    []domain.PricePoint
	klinesErr error
	price     float64
	priceErr  error
	tickers   []domain.Ticker24h
	tickerErr error

	klineCalls   int
	priceCalls   int
	tickerCalls  int
	lastPair     string
	lastInterval domain.Granularity
	lastLimit    int
	priceCtxErr  error
	hadDeadline  bool
}

func (m *mockProvider) FetchKlines(ctx context.Context, pair string, interval domain.Granularity, start, end time.Time, limit int) ([]domain.PricePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.klineCalls++
	m.lastPair = pair
	m.lastInterval = interval
	m.lastLimit = limit
	if m.klinesErr != nil {
		return nil, m.klinesErr
	}
	return append([]domain.PricePoint(nil), m.klines...), nil
}

func (m *mockProvider) FetchTickerPrice(ctx context.Context, pair string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.priceCalls++
	m.lastPair = pair
	_, m.hadDeadline = ctx.Deadline()
	if m.priceErr != nil {
		return 0, m.priceErr
	}
	return m.price, nil
}

func (m *mockProvider) FetchTicker24h(ctx context.Context) ([]domain.Ticker24h, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickerCalls++
	if m.tickerErr != nil {
		return nil, m.tickerErr
	}
	return m.tickers, nil
}

type fakeRedis struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	setErr error
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	case string:
		f.data[key] = []byte(v)
	default:
		bytes, _ := json.Marshal(v)
		f.data[key] = bytes
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

type mockRecorder struct {
	records []domain.CalculationRecord
	err     error
}

func (m *mockRecorder) InsertCalculation(ctx context.Context, rec domain.CalculationRecord) error {
	m.records = append(m.records, rec)
	return m.err
}

type stubSeries struct {
	result domain.SeriesResult

	calls      int
	lastSymbol string
	lastStart  time.Time
	lastEnd    time.Time
}

func (s *stubSeries) Series(ctx context.Context, symbol string, start, end time.Time) domain.SeriesResult {
	s.calls++
	s.lastSymbol = symbol
	s.lastStart = start
	s.lastEnd = end
	return s.result
}

func dailyPoints(start time.Time, prices ...float64) []domain.PricePoint {
	points := make([]domain.PricePoint, 0, len(prices))
	for i, p := range prices {
		points = append(points, domain.PricePoint{
			Timestamp: start.Add(time.Duration(i) * 24 * time.Hour).UnixMilli(),
			Price:     p,
			Volume:    10,
			MarketCap: 1000,
		})
	}
	return points
}
