package tui

import (
	"fmt"
	"strings"

	"hindsight/internal/calculator"
	"hindsight/internal/domain"

	"github.com/charmbracelet/lipgloss"
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

func (m *AppModel) View() string {
	var b strings.Builder

	title := "hindsight"
	if m.username != "" {
		title += " · " + m.username
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(m.row(fieldSymbol, "Coin", m.symbol.View()))
	b.WriteString(m.row(fieldAmount, "Amount $", m.amount.View()))
	b.WriteString(m.row(fieldPeriod, "Period", m.periodView()))
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " fetching prices…\n")
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	case m.result != nil:
		b.WriteString(resultBorder.Render(m.resultView(*m.result)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: next field · ←/→: period · enter: calculate · esc: quit"))
	return b.String()
}

func (m *AppModel) row(f field, label, value string) string {
	l := labelStyle.Render(label)
	if m.focus == f {
		l = focusStyle.Render(labelStyle.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, l, " ", value) + "\n"
}

func (m *AppModel) periodView() string {
	parts := make([]string, 0, len(calculator.Periods))
	for i, p := range calculator.Periods {
		if i == m.period {
			parts = append(parts, activeStyle.Render(p.Value))
			continue
		}
		parts = append(parts, periodStyle.Render(p.Value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *AppModel) resultView(r domain.InvestmentResult) string {
	change := gainStyle
	if r.Profit < 0 {
		change = lossStyle
	}

	lines := []string{
		fmt.Sprintf("%s · %s (%s → %s)", r.Symbol, r.PeriodLabel, r.StartDate, r.EndDate),
		fmt.Sprintf("$%s → %s", domain.FormatUSD(r.InitialAmount), change.Render("$"+domain.FormatUSD(r.CurrentValue))),
		change.Render(fmt.Sprintf("%+.2f%%  (%s$%s)", r.ProfitPercentage, sign(r.Profit), domain.FormatUSD(abs(r.Profit)))),
		fmt.Sprintf("Price $%s → $%s · %d points at %s", domain.FormatUSD(r.InitialPrice), domain.FormatUSD(r.FinalPrice), r.DataPoints, r.Interval),
	}
	if spark := sparkline(r.ChartData, m.sparkWidth()); spark != "" {
		lines = append(lines, "", spark)
	}
	if r.Warning != nil {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("%s data starts %s, not %s", r.Warning.CoinName, r.Warning.EarliestDate, r.Warning.RequestedDate)))
	}
	if r.IsSimulated {
		lines = append(lines, warnStyle.Render("Using offline data: prices are simulated"))
	}
	return strings.Join(lines, "\n")
}

func (m *AppModel) sparkWidth() int {
	if m.width <= 0 {
		return 60
	}
	if w := m.width - 8; w > 10 {
		return w
	}
	return 10
}

// sparkline draws the investment values, resampled to at most width runes.
func sparkline(points []domain.ChartPoint, width int) string {
	if len(points) < 2 || width <= 0 {
		return ""
	}
	points = calculator.Sample(points, width)

	lo, hi := points[0].Investment, points[0].Investment
	for _, p := range points {
		lo = min(lo, p.Investment)
		hi = max(hi, p.Investment)
	}
	out := make([]rune, 0, len(points))
	for _, p := range points {
		idx := 0
		if hi > lo {
			idx = int((p.Investment - lo) / (hi - lo) * float64(len(sparkRunes)-1))
		}
		out = append(out, sparkRunes[idx])
	}
	return string(out)
}

func sign(v float64) string {
	if v < 0 {
		return "-"
	}
	return "+"
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
