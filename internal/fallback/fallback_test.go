package fallback

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"hindsight/internal/domain"
)

func fixedRand(v float64) func() float64 {
	return func() float64 { return v }
}

func TestGenerateSeriesStartsAtDiscountedReference(t *testing.T) {
	g := NewGenerator(nil, fixedRand(0.37))
	end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -30)

	series := g.GenerateSeries("BTCUSDT", start, end)
	if series.Len() != 30 {
		t.Fatalf("expected 30 points, got %d", series.Len())
	}
	if series.Symbol != "BTC" {
		t.Fatalf("expected base symbol BTC, got %s", series.Symbol)
	}
	if series.Points[0].Price != 0.8*42000 {
		t.Fatalf("first price %v, want %v", series.Points[0].Price, 0.8*42000)
	}
	last, _ := series.Last()
	if series.Points[0].Timestamp != start.UnixMilli() || last.Timestamp != end.UnixMilli() {
		t.Fatal("series should span start to end inclusive")
	}
	for i := 1; i < series.Len(); i++ {
		if series.Points[i].Timestamp <= series.Points[i-1].Timestamp {
			t.Fatalf("timestamps not increasing at %d", i)
		}
	}
}

func TestGenerateSeriesCapsPointsAndBoundsPrices(t *testing.T) {
	g := NewGenerator(nil, fixedRand(0.999))
	end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(-3, 0, 0)

	series := g.GenerateSeries("eth", start, end)
	if series.Len() != maxSimulatedPoints {
		t.Fatalf("expected %d points, got %d", maxSimulatedPoints, series.Len())
	}
	if series.Granularity != domain.GranularityWeekly {
		t.Fatalf("expected weekly granularity for three years, got %s", series.Granularity)
	}
	for _, p := range series.Points {
		if p.Price < 0.8*2400 || p.Price > 2400*1.1 {
			t.Fatalf("price %v outside expected band", p.Price)
		}
		if p.Volume <= 0 || p.MarketCap <= 0 {
			t.Fatalf("volume and market cap must be positive: %+v", p)
		}
	}
}

func TestGenerateSeriesUnknownSymbolUsesDefaultPrice(t *testing.T) {
	g := NewGenerator(nil, fixedRand(0.5))
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	series := g.GenerateSeries("NOPE", now, now)
	if series.Len() != 1 {
		t.Fatalf("empty range should give one point, got %d", series.Len())
	}
	if series.Points[0].Price != DefaultPrice*0.8 {
		t.Fatalf("unexpected price %v", series.Points[0].Price)
	}
}

func TestGenerateFallbackPointLookups(t *testing.T) {
	g := NewGenerator(nil, nil)

	tests := []struct {
		name   string
		symbol string
		date   time.Time
		want   float64
	}{
		{"tabulated month", "ETH", time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC), 1900},
		{"pair symbol", "BTCUSDT", time.Date(2021, 11, 2, 0, 0, 0, 0, time.UTC), 58000},
		{"unknown symbol uses btc history", "PEPE", time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC), 20000},
		{"later year scaled up", "BTC", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 28000 * 1.2},
		{"earlier year scaled down", "ETH", time.Date(2017, 12, 1, 0, 0, 0, 0, time.UTC), 2400 * 0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.GenerateFallbackPoint(tt.symbol, tt.date)
			if got.Price != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got.Price)
			}
			if got.Timestamp != tt.date.UnixMilli() {
				t.Fatalf("timestamp mismatch: %d", got.Timestamp)
			}
		})
	}
}

func TestGenerateFallbackPointMissingMonthUsesFirstRecorded(t *testing.T) {
	table, err := ParseReferenceTable([]byte(`
current: {ABC: 10}
history:
  ABC:
    2022: {3: 5, 9: 7}
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	g := NewGenerator(table, nil)
	got := g.GenerateFallbackPoint("ABC", time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC))
	if got.Price != 5 {
		t.Fatalf("expected first recorded month price 5, got %v", got.Price)
	}
}

func TestGenerateMonthlySeries(t *testing.T) {
	g := NewGenerator(nil, nil)
	start := time.Date(2022, 1, 31, 0, 0, 0, 0, time.UTC)
	end := time.Date(2022, 6, 15, 0, 0, 0, 0, time.UTC)

	series := g.GenerateMonthlySeries("BTC", start, end)
	if series.Len() != 5 {
		t.Fatalf("expected 5 monthly points, got %d", series.Len())
	}
	if got := series.Points[1].Time().Day(); got != 28 {
		t.Fatalf("february point should clamp to the 28th, got %d", got)
	}
	if series.Points[4].Price != 30000 {
		t.Fatalf("unexpected may price %v", series.Points[4].Price)
	}
	if series.Granularity != domain.GranularityMonthly {
		t.Fatalf("unexpected granularity %s", series.Granularity)
	}
}

func TestPopularCoinsHaveImages(t *testing.T) {
	g := NewGenerator(nil, nil)
	coins := g.PopularCoins()
	if len(coins) != 10 {
		t.Fatalf("expected 10 popular coins, got %d", len(coins))
	}
	for _, c := range coins {
		if c.Image == "" {
			t.Fatalf("coin %s missing image", c.Symbol)
		}
	}
	coins[0].Name = "mutated"
	if g.PopularCoins()[0].Name == "mutated" {
		t.Fatal("popular list must be copied")
	}
}

func TestLoadReferenceTableFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.yaml")
	if err := os.WriteFile(path, []byte("current: {btc: 50000}\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	table, err := LoadReferenceTable(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p, ok := table.CurrentPrice("BTC"); !ok || p != 50000 {
		t.Fatalf("unexpected price %v %v", p, ok)
	}

	if _, err := LoadReferenceTable(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseReferenceTableRejectsBadValues(t *testing.T) {
	bad := []string{
		"current: {BTC: -1}",
		"history: {BTC: {2020: {13: 5}}}",
		"history: {BTC: {2020: {1: 0}}}",
		"current: [",
	}
	for _, doc := range bad {
		if _, err := ParseReferenceTable([]byte(doc)); err == nil {
			t.Fatalf("expected error for %q", doc)
		}
	}
}

func TestJitterFactorRange(t *testing.T) {
	if got := NewGenerator(nil, fixedRand(0)).JitterFactor(); got != 0.9 {
		t.Fatalf("low jitter %v", got)
	}
	if got := NewGenerator(nil, fixedRand(0.5)).JitterFactor(); got != 1.0 {
		t.Fatalf("mid jitter %v", got)
	}
}
