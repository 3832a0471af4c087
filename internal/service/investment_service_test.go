package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"hindsight/internal/calculator"
	"hindsight/internal/domain"
)

var calcNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func newTestInvestment(src SeriesSource, rec CalculationRecorder) *InvestmentService {
	svc := NewInvestmentService(testTracer, src, rec)
	svc.now = func() time.Time { return calcNow }
	return svc
}

func liveSeries(start time.Time, prices ...float64) domain.SeriesResult {
	return domain.LiveSeries(domain.PriceSeries{
		Symbol:      "BTC",
		Granularity: domain.GranularityDaily,
		Points:      dailyPoints(start, prices...),
	})
}

func TestCalculateDoubling(t *testing.T) {
	t.Parallel()

	start := calcNow.AddDate(0, 0, -30)
	src := &stubSeries{result: liveSeries(start, 50, 75, 100)}
	rec := &mockRecorder{}
	svc := newTestInvestment(src, rec)

	got, err := svc.Calculate(context.Background(), domain.CalculationRequest{Symbol: "btc", Amount: 100, Period: "1m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CurrentValue != 200 || got.Profit != 100 || got.ProfitPercentage != 100 {
		t.Fatalf("unexpected returns: %+v", got)
	}
	if got.InitialPrice != 50 || got.FinalPrice != 100 || got.PeriodLabel != "1 month" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.IsSimulated || got.Warning != nil {
		t.Fatalf("expected live result without warning: %+v", got)
	}
	if len(got.ChartData) != 3 || got.ChartData[1].Investment != 150 {
		t.Fatalf("unexpected chart: %+v", got.ChartData)
	}
	if got.StartDate != start.Format(domain.DisplayDateLayout) {
		t.Fatalf("unexpected start date %s", got.StartDate)
	}
	if src.lastSymbol != "BTC" || !src.lastStart.Equal(start) || !src.lastEnd.Equal(calcNow) {
		t.Fatalf("unexpected range: %s %v %v", src.lastSymbol, src.lastStart, src.lastEnd)
	}
	if len(rec.records) != 1 || rec.records[0].Symbol != "BTC" || rec.records[0].Period != "1m" || rec.records[0].ID == "" {
		t.Fatalf("unexpected record: %+v", rec.records)
	}
}

func TestCalculateLoss(t *testing.T) {
	t.Parallel()

	src := &stubSeries{result: liveSeries(calcNow.AddDate(-1, 0, 0), 100, 50)}
	got, err := newTestInvestment(src, nil).Calculate(context.Background(), domain.CalculationRequest{Symbol: "ETH", Amount: 100, Period: "1y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CurrentValue != 50 || got.Profit != -50 || got.ProfitPercentage != -50 {
		t.Fatalf("unexpected returns: %+v", got)
	}
}

func TestCalculateInvalidAmount(t *testing.T) {
	t.Parallel()

	src := &stubSeries{}
	svc := newTestInvestment(src, nil)
	for _, amount := range []float64{0, -10} {
		_, err := svc.Calculate(context.Background(), domain.CalculationRequest{Symbol: "BTC", Amount: amount})
		if !domain.IsInvalidInput(err) {
			t.Fatalf("amount %v: expected invalid input, got %v", amount, err)
		}
	}
	if src.calls != 0 {
		t.Fatal("invalid input must not fetch a series")
	}
}

func TestCalculateMissingSymbol(t *testing.T) {
	t.Parallel()

	_, err := newTestInvestment(&stubSeries{}, nil).Calculate(context.Background(), domain.CalculationRequest{Amount: 10})
	var missing *domain.MissingParameterError
	if !errors.As(err, &missing) {
		t.Fatalf("expected missing parameter error, got %v", err)
	}
}

func TestCalculateInsufficientData(t *testing.T) {
	t.Parallel()

	src := &stubSeries{result: liveSeries(calcNow, 10)}
	rec := &mockRecorder{}
	_, err := newTestInvestment(src, rec).Calculate(context.Background(), domain.CalculationRequest{Symbol: "BTC", Amount: 10, Period: "1m"})
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Fatalf("expected insufficient data, got %v", err)
	}
	if len(rec.records) != 0 {
		t.Fatal("failed runs must not be recorded")
	}
}

func TestCalculateDataWarning(t *testing.T) {
	t.Parallel()

	// 5y requested, data only starts 2 years ago.
	src := &stubSeries{result: liveSeries(calcNow.AddDate(-2, 0, 0), 10, 20, 30)}
	got, err := newTestInvestment(src, nil).Calculate(context.Background(), domain.CalculationRequest{Symbol: "SOL", Amount: 10, Period: "5y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Warning == nil {
		t.Fatal("expected data warning")
	}
	if got.Warning.CoinName != "SOL" || got.Warning.EarliestDate != calcNow.AddDate(-2, 0, 0).Format(domain.DisplayDateLayout) {
		t.Fatalf("unexpected warning: %+v", got.Warning)
	}
}

func TestCalculateSimulatedHasNoWarning(t *testing.T) {
	t.Parallel()

	series := testGenerator().GenerateSeries("BTC", calcNow.AddDate(-1, 0, 0), calcNow)
	series.Points = series.Points[10:]
	src := &stubSeries{result: domain.SimulatedSeries(series, domain.ReasonUpstream, errors.New("down"))}

	got, err := newTestInvestment(src, nil).Calculate(context.Background(), domain.CalculationRequest{Symbol: "BTC", Amount: 1000, Period: "1y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsSimulated || got.Reason != domain.ReasonUpstream || got.Warning != nil {
		t.Fatalf("unexpected simulated result: %+v", got)
	}
}

func TestCalculateSamplesLongSeries(t *testing.T) {
	t.Parallel()

	prices := make([]float64, 730)
	for i := range prices {
		prices[i] = float64(100 + i)
	}
	src := &stubSeries{result: liveSeries(calcNow.AddDate(0, 0, -729), prices...)}
	got, err := newTestInvestment(src, nil).Calculate(context.Background(), domain.CalculationRequest{Symbol: "BTC", Amount: 100, Period: "2y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.ChartData) > calculator.DefaultMaxChartPoints {
		t.Fatalf("chart not sampled: %d points", len(got.ChartData))
	}
	if got.DataPoints != 730 {
		t.Fatalf("expected 730 data points, got %d", got.DataPoints)
	}
	lastChart := got.ChartData[len(got.ChartData)-1]
	if lastChart.Price != 829 || lastChart.Investment != got.CurrentValue {
		t.Fatalf("last chart point must match final value: %+v vs %v", lastChart, got.CurrentValue)
	}
}

func TestCalculateDefaultsPeriodAndRecorderErrorsAreIgnored(t *testing.T) {
	t.Parallel()

	src := &stubSeries{result: liveSeries(calcNow.AddDate(-1, 0, 0), 10, 20)}
	rec := &mockRecorder{err: errors.New("db down")}
	got, err := newTestInvestment(src, rec).Calculate(context.Background(), domain.CalculationRequest{Symbol: "BTC", Amount: 10})
	if err != nil {
		t.Fatalf("recorder failure must not fail the calculation: %v", err)
	}
	if got.PeriodLabel != "1 year" {
		t.Fatalf("expected default 1y period, got %s", got.PeriodLabel)
	}
}
