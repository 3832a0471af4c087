// Package chart renders investment curves as PNG images for the /chart
// endpoint and the Telegram bot.
package chart

import (
	"errors"
	"fmt"
	"strings"

	"hindsight/internal/domain"

	"github.com/vicanso/go-charts/v2"
)

const (
	defaultWidth  = 900
	defaultHeight = 500
)

var ErrNoChartData = errors.New("chart needs at least two points")

type Renderer struct {
	width  int
	height int
}

// NewRenderer returns a renderer with the given canvas size; non-positive
// values use 900x500.
func NewRenderer(width, height int) *Renderer {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	return &Renderer{width: width, height: height}
}

// RenderInvestment draws the investment value over the result's chart data.
func (r *Renderer) RenderInvestment(res domain.InvestmentResult) ([]byte, error) {
	if len(res.ChartData) < 2 {
		return nil, ErrNoChartData
	}

	labels := make([]string, 0, len(res.ChartData))
	values := make([]float64, 0, len(res.ChartData))
	minVal, maxVal := res.ChartData[0].Investment, res.ChartData[0].Investment
	for _, p := range res.ChartData {
		labels = append(labels, p.Time().Format("Jan '06"))
		values = append(values, p.Investment)
		if p.Investment < minVal {
			minVal = p.Investment
		}
		if p.Investment > maxVal {
			maxVal = p.Investment
		}
	}

	padding := (maxVal - minVal) * 0.05
	if padding == 0 {
		padding = maxVal * 0.05
	}
	yMin := minVal - padding
	yMax := maxVal + padding

	title := fmt.Sprintf("%s • $%s → $%s", strings.ToUpper(res.Symbol), money(res.InitialAmount), money(res.CurrentValue))
	subtitle := fmt.Sprintf("%s • %+.2f%%", res.PeriodLabel, res.ProfitPercentage)
	if res.IsSimulated {
		subtitle += " • simulated"
	}

	p, err := charts.LineRender(
		[][]float64{values},
		charts.TitleTextOptionFunc(title, subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			SplitNumber: splitNumber(len(labels)),
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(r.width),
		charts.HeightOptionFunc(r.height),
		charts.PNGTypeOption(),
	)
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf, nil
}

func splitNumber(n int) int {
	if n > 30 {
		return 6
	}
	if s := n / 3; s >= 3 {
		return s
	}
	return 3
}

func money(v float64) string {
	return domain.FormatUSD(v)
}
