package handler

import (
	"context"
	"time"

	"hindsight/internal/domain"
	"hindsight/internal/fallback"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// SeriesProvider is the history pipeline behind /price-history and /historical.
type SeriesProvider interface {
	Series(ctx context.Context, symbol string, start, end time.Time) domain.SeriesResult
	MonthlyClose(ctx context.Context, symbol string, date time.Time) (domain.PricePoint, error)
	ForceSimulated() bool
	Generator() *fallback.Generator
}

type PriceQuoter interface {
	GetCurrentPrice(ctx context.Context, symbol string) domain.Quote
}

type PopularLister interface {
	Popular(ctx context.Context) domain.PopularList
}

type InvestmentCalculator interface {
	Calculate(ctx context.Context, req domain.CalculationRequest) (domain.InvestmentResult, error)
}

type ChartRenderer interface {
	RenderInvestment(res domain.InvestmentResult) ([]byte, error)
}

// CalculationLister reads back recorded calculations. Optional; without it
// /calculations answers 503.
type CalculationLister interface {
	Recent(ctx context.Context, symbol string, limit int) ([]domain.CalculationRecord, error)
}

type Handler struct {
	tracer       trace.Tracer
	history      SeriesProvider
	prices       PriceQuoter
	market       PopularLister
	investment   InvestmentCalculator
	charts       ChartRenderer
	calculations CalculationLister
	now          func() time.Time
}

func New(
	tracer trace.Tracer,
	history SeriesProvider,
	prices PriceQuoter,
	market PopularLister,
	investment InvestmentCalculator,
	charts ChartRenderer,
) *Handler {
	return &Handler{
		tracer:     tracer,
		history:    history,
		prices:     prices,
		market:     market,
		investment: investment,
		charts:     charts,
		now:        time.Now,
	}
}

func (h *Handler) SetCalculationLister(lister CalculationLister) {
	h.calculations = lister
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/price", h.GetPrice)
	r.GET("/price-history", h.GetPriceHistory)
	r.GET("/historical", h.GetHistorical)
	r.GET("/popular", h.GetPopular)
	r.GET("/calculate", h.Calculate)
	r.GET("/chart", h.Chart)
	r.GET("/calculations", h.RecentCalculations)
}
