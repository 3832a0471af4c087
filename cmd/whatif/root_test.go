package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"hindsight/internal/app"
	"hindsight/internal/config"
	"hindsight/internal/domain"

	"go.opentelemetry.io/otel/trace/noop"
)

func offlineServices(t *testing.T) buildServicesFunc {
	t.Helper()
	return func(cfg *config.Config) (*app.Services, error) {
		if !cfg.ForceSimulated {
			t.Fatal("tests must run offline")
		}
		return app.NewServices(noop.NewTracerProvider().Tracer("test"), cfg, nil, nil)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("REDIS_URL", "")
	t.Setenv("DATABASE_URL", "")
	cmd := newRootCmd(offlineServices(t))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--offline"))
	err := cmd.Execute()
	return out.String(), err
}

func TestCalcText(t *testing.T) {
	out, err := run(t, "calc", "BTC", "1000", "--period", "6m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"BTC over 6 months", "Invested:  $1,000.00", "Prices are simulated."} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCalcJSON(t *testing.T) {
	out, err := run(t, "calc", "eth", "250", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res domain.InvestmentResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if res.Symbol != "ETH" || !res.IsSimulated || res.PeriodLabel != "1 year" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestCalcValidation(t *testing.T) {
	if _, err := run(t, "calc", "BTC", "0"); !domain.IsInvalidInput(err) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if _, err := run(t, "calc", "BTC", "10", "--period", "7w"); err == nil || !strings.Contains(err.Error(), "unknown period") {
		t.Fatalf("expected unknown period error, got %v", err)
	}
	if _, err := run(t, "calc", "BTC"); err == nil {
		t.Fatal("expected argument count error")
	}
}

func TestPrice(t *testing.T) {
	out, err := run(t, "price", "BTC", "doge")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "BTC      $42,000.00  (simulated)") || !strings.Contains(out, "DOGE     $0.08") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestPopular(t *testing.T) {
	out, err := run(t, "popular", "-n", "3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 || !strings.Contains(lines[0], "BTC") || lines[3] != "(offline list)" {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
