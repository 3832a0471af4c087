package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hindsight/internal/domain"
	"hindsight/internal/fallback"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	testTracer = noop.NewTracerProvider().Tracer("handler-test")
	fixedNow   = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
)

type stubHistory struct {
	result     domain.SeriesResult
	monthly    domain.PricePoint
	monthlyErr error
	forced     bool
	gen        *fallback.Generator

	gotSymbol string
	gotStart  time.Time
	gotEnd    time.Time
}

func (s *stubHistory) Series(ctx context.Context, symbol string, start, end time.Time) domain.SeriesResult {
	s.gotSymbol, s.gotStart, s.gotEnd = symbol, start, end
	return s.result
}

func (s *stubHistory) MonthlyClose(ctx context.Context, symbol string, date time.Time) (domain.PricePoint, error) {
	return s.monthly, s.monthlyErr
}

func (s *stubHistory) ForceSimulated() bool { return s.forced }

func (s *stubHistory) Generator() *fallback.Generator { return s.gen }

type stubPrices struct {
	quote domain.Quote
}

func (s stubPrices) GetCurrentPrice(ctx context.Context, symbol string) domain.Quote { return s.quote }

type stubMarket struct {
	list domain.PopularList
}

func (s stubMarket) Popular(ctx context.Context) domain.PopularList { return s.list }

type stubInvestment struct {
	result domain.InvestmentResult
	err    error
	got    domain.CalculationRequest
}

func (s *stubInvestment) Calculate(ctx context.Context, req domain.CalculationRequest) (domain.InvestmentResult, error) {
	s.got = req
	return s.result, s.err
}

type stubCharts struct {
	png []byte
	err error
}

func (s stubCharts) RenderInvestment(res domain.InvestmentResult) ([]byte, error) { return s.png, s.err }

type stubLister struct {
	records   []domain.CalculationRecord
	err       error
	gotSymbol string
	gotLimit  int
}

func (s *stubLister) Recent(ctx context.Context, symbol string, limit int) ([]domain.CalculationRecord, error) {
	s.gotSymbol, s.gotLimit = symbol, limit
	return s.records, s.err
}

type testDeps struct {
	history    *stubHistory
	prices     stubPrices
	market     stubMarket
	investment *stubInvestment
	charts     stubCharts
}

func newTestDeps() *testDeps {
	return &testDeps{
		history:    &stubHistory{gen: fallback.NewGenerator(nil, func() float64 { return 0.5 })},
		investment: &stubInvestment{},
	}
}

func (d *testDeps) router() (*gin.Engine, *Handler) {
	gin.SetMode(gin.TestMode)
	h := New(testTracer, d.history, d.prices, d.market, d.investment, d.charts)
	h.now = func() time.Time { return fixedNow }
	r := gin.New()
	h.RegisterRoutes(r)
	return r, h
}

func doGet(t *testing.T, r http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v (body %s)", err, w.Body.String())
	}
	return body
}

func dailySeries(start time.Time, n int, price float64) domain.PriceSeries {
	points := make([]domain.PricePoint, n)
	for i := range points {
		points[i] = domain.PricePoint{
			Timestamp: start.AddDate(0, 0, i).UnixMilli(),
			Price:     price + float64(i),
			Volume:    10,
			MarketCap: 1000,
		}
	}
	return domain.PriceSeries{Symbol: "BTC", Granularity: domain.GranularityDaily, Points: points}
}
