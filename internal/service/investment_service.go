package service

import (
	"context"
	"math"
	"strings"
	"time"

	"hindsight/internal/calculator"
	"hindsight/internal/domain"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SeriesSource yields a price series for a range and never fails.
type SeriesSource interface {
	Series(ctx context.Context, symbol string, start, end time.Time) domain.SeriesResult
}

// CalculationRecorder stores the anonymous run log.
type CalculationRecorder interface {
	InsertCalculation(ctx context.Context, rec domain.CalculationRecord) error
}

type InvestmentService struct {
	tracer   trace.Tracer
	series   SeriesSource
	recorder CalculationRecorder
	now      func() time.Time
}

// NewInvestmentService builds the calculator pipeline. recorder may be nil.
func NewInvestmentService(tracer trace.Tracer, series SeriesSource, recorder CalculationRecorder) *InvestmentService {
	return &InvestmentService{
		tracer:   tracer,
		series:   series,
		recorder: recorder,
		now:      time.Now,
	}
}

// Calculate projects a buy-and-hold position over the requested period.
func (s *InvestmentService) Calculate(ctx context.Context, req domain.CalculationRequest) (domain.InvestmentResult, error) {
	ctx, span := s.tracer.Start(ctx, "investment-service.calculate")
	defer span.End()

	symbol := domain.BaseSymbol(req.Symbol)
	if symbol == "" {
		return domain.InvestmentResult{}, &domain.MissingParameterError{Name: "coinId"}
	}
	if !(req.Amount > 0) || math.IsInf(req.Amount, 0) {
		return domain.InvestmentResult{}, &domain.InvalidInputError{Field: "amount", Value: req.Amount}
	}
	period := strings.ToLower(strings.TrimSpace(req.Period))
	if period == "" {
		period = calculator.DefaultPeriod
	}
	span.SetAttributes(attribute.String("symbol", symbol), attribute.String("period", period))

	start, end, label := calculator.PeriodRange(period, s.now())
	res := s.series.Series(ctx, symbol, start, end)
	series := res.Series

	if series.Len() < 2 {
		span.RecordError(domain.ErrInsufficientData)
		return domain.InvestmentResult{}, domain.ErrInsufficientData
	}
	first, _ := series.First()
	last, _ := series.Last()

	returns, err := calculator.ComputeReturns(req.Amount, first.Price, last.Price)
	if err != nil {
		return domain.InvestmentResult{}, err
	}

	chart := make([]domain.ChartPoint, 0, series.Len())
	for _, p := range series.Points {
		chart = append(chart, domain.ChartPoint{
			Timestamp:  p.Timestamp,
			Date:       p.Time().Format(domain.DisplayDateLayout),
			Price:      p.Price,
			Investment: calculator.InvestmentValue(req.Amount, first.Price, p.Price),
		})
	}

	result := domain.InvestmentResult{
		Symbol:           symbol,
		InitialAmount:    req.Amount,
		CurrentValue:     returns.CurrentValue,
		Profit:           returns.Profit,
		ProfitPercentage: returns.ProfitPercentage,
		InitialPrice:     first.Price,
		FinalPrice:       last.Price,
		StartDate:        first.Time().Format(domain.DisplayDateLayout),
		EndDate:          last.Time().Format(domain.DisplayDateLayout),
		ChartData:        calculator.Sample(chart, calculator.DefaultMaxChartPoints),
		PeriodLabel:      label,
		Interval:         series.Granularity,
		DataPoints:       series.Len(),
		IsSimulated:      res.Simulated(),
		Reason:           res.Reason,
		Warning:          dataWarning(res, start, symbol),
	}
	span.SetAttributes(attribute.Bool("simulated", result.IsSimulated), attribute.Int("points", result.DataPoints))

	s.record(ctx, period, result)
	return result, nil
}

// dataWarning flags live series whose first point is later than the
// requested start by more than one interval.
func dataWarning(res domain.SeriesResult, requested time.Time, symbol string) *domain.DataWarning {
	if res.Simulated() {
		return nil
	}
	first, ok := res.Series.First()
	if !ok {
		return nil
	}
	if first.Time().Sub(requested) <= res.Series.Granularity.Step() {
		return nil
	}
	return &domain.DataWarning{
		RequestedDate: requested.UTC().Format(domain.DisplayDateLayout),
		EarliestDate:  first.Time().Format(domain.DisplayDateLayout),
		CoinName:      symbol,
	}
}

func (s *InvestmentService) record(ctx context.Context, period string, r domain.InvestmentResult) {
	if s.recorder == nil {
		return
	}
	rec := domain.CalculationRecord{
		ID:           uuid.NewString(),
		Symbol:       r.Symbol,
		Period:       period,
		Amount:       r.InitialAmount,
		InitialPrice: r.InitialPrice,
		FinalPrice:   r.FinalPrice,
		CurrentValue: r.CurrentValue,
		Simulated:    r.IsSimulated,
		Reason:       string(r.Reason),
		DataPoints:   r.DataPoints,
		Warned:       r.Warning != nil,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.recorder.InsertCalculation(ctx, rec); err != nil {
		log.Warn("failed to record calculation", "symbol", r.Symbol, "err", err)
	}
}
