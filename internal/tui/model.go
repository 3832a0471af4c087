// Package tui is the operator terminal UI served over SSH. It runs the same
// investment pipeline as the HTTP API.
package tui

import (
	"context"
	"strings"
	"time"

	"hindsight/internal/calculator"
	"hindsight/internal/domain"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

const calculateTimeout = 30 * time.Second

type InvestmentCalculator interface {
	Calculate(ctx context.Context, req domain.CalculationRequest) (domain.InvestmentResult, error)
}

type field int

const (
	fieldSymbol field = iota
	fieldAmount
	fieldPeriod
	fieldCount
)

// resultMsg carries a finished calculation tagged with its request token.
type resultMsg struct {
	token  uint64
	result domain.InvestmentResult
	err    error
}

type AppModel struct {
	calc     InvestmentCalculator
	username string

	symbol  textinput.Model
	amount  textinput.Model
	period  int
	focus   field
	spinner spinner.Model

	tracker calculator.RequestTracker
	loading bool
	result  *domain.InvestmentResult
	err     error

	width  int
	height int
}

func NewAppModel(calc InvestmentCalculator, username string) *AppModel {
	symbol := textinput.New()
	symbol.Placeholder = "BTC"
	symbol.CharLimit = 12
	symbol.Focus()

	amount := textinput.New()
	amount.Placeholder = "1000"
	amount.CharLimit = 16

	period := 0
	for i, p := range calculator.Periods {
		if p.Value == calculator.DefaultPeriod {
			period = i
		}
	}

	return &AppModel{
		calc:     calc,
		username: username,
		symbol:   symbol,
		amount:   amount,
		period:   period,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m *AppModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *AppModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case resultMsg:
		if !m.tracker.IsCurrent(msg.token) {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.result = nil
			return m, nil
		}
		res := msg.result
		m.result = &res
		m.err = nil
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down":
			m.setFocus((m.focus + 1) % fieldCount)
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return m, nil
		case "enter":
			cmd := m.startCalculation()
			if cmd == nil {
				return m, nil
			}
			return m, tea.Batch(m.spinner.Tick, cmd)
		}
		if m.focus == fieldPeriod {
			switch msg.String() {
			case "left", "h":
				m.period = (m.period + len(calculator.Periods) - 1) % len(calculator.Periods)
				m.inputChanged()
			case "right", "l":
				m.period = (m.period + 1) % len(calculator.Periods)
				m.inputChanged()
			}
			return m, nil
		}
	}

	return m, m.updateInputs(msg)
}

func (m *AppModel) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	before := m.symbol.Value() + "|" + m.amount.Value()
	switch m.focus {
	case fieldSymbol:
		m.symbol, cmd = m.symbol.Update(msg)
	case fieldAmount:
		m.amount, cmd = m.amount.Update(msg)
	}
	if m.symbol.Value()+"|"+m.amount.Value() != before {
		m.inputChanged()
	}
	return cmd
}

// inputChanged discards any in-flight result computed for the old inputs.
func (m *AppModel) inputChanged() {
	if m.loading {
		m.tracker.Invalidate()
		m.loading = false
	}
}

func (m *AppModel) setFocus(f field) {
	m.focus = f
	m.symbol.Blur()
	m.amount.Blur()
	switch f {
	case fieldSymbol:
		m.symbol.Focus()
	case fieldAmount:
		m.amount.Focus()
	}
}

// startCalculation validates the form and returns the command that runs the
// pipeline, or nil when the form is incomplete.
func (m *AppModel) startCalculation() tea.Cmd {
	symbol := strings.TrimSpace(m.symbol.Value())
	if symbol == "" {
		symbol = m.symbol.Placeholder
	}
	rawAmount := strings.TrimSpace(m.amount.Value())
	if rawAmount == "" {
		rawAmount = m.amount.Placeholder
	}
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil || !amount.IsPositive() {
		m.err = &domain.InvalidInputError{Field: "amount", Value: amount.InexactFloat64()}
		m.result = nil
		return nil
	}

	req := domain.CalculationRequest{
		Symbol: symbol,
		Amount: amount.InexactFloat64(),
		Period: calculator.Periods[m.period].Value,
	}
	token := m.tracker.Next()
	m.loading = true
	m.err = nil

	calc := m.calc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), calculateTimeout)
		defer cancel()
		res, err := calc.Calculate(ctx, req)
		return resultMsg{token: token, result: res, err: err}
	}
}
