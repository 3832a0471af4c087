package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hindsight/internal/calculator"
	"hindsight/internal/domain"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v3"
)

const replyTimeout = 20 * time.Second

type PriceQuoter interface {
	GetCurrentPrice(ctx context.Context, symbol string) domain.Quote
}

type InvestmentCalculator interface {
	Calculate(ctx context.Context, req domain.CalculationRequest) (domain.InvestmentResult, error)
}

type ChartRenderer interface {
	RenderInvestment(res domain.InvestmentResult) ([]byte, error)
}

// registrar is the part of *tele.Bot the command table needs.
type registrar interface {
	Handle(endpoint interface{}, h tele.HandlerFunc, m ...tele.MiddlewareFunc)
}

// Bot answers /price and /whatif from the same services as the HTTP API.
type Bot struct {
	prices     PriceQuoter
	investment InvestmentCalculator
	charts     ChartRenderer
}

func New(prices PriceQuoter, investment InvestmentCalculator, charts ChartRenderer) *Bot {
	return &Bot{prices: prices, investment: investment, charts: charts}
}

// StartTelegramBot connects with token and starts long polling in the
// background. An empty token disables the bot.
func StartTelegramBot(token string, b *Bot) error {
	if token == "" {
		log.Info("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	tb, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return fmt.Errorf("create telegram bot: %w", err)
	}
	b.Register(tb)

	log.Info("Telegram bot started")
	go tb.Start()
	return nil
}

func (b *Bot) Register(r registrar) {
	r.Handle("/start", func(c tele.Context) error {
		return c.Send(helpText())
	})
	r.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})
	r.Handle("/periods", func(c tele.Context) error {
		return c.Send(periodsText())
	})
	r.Handle("/price", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
		defer cancel()
		return c.Send(b.PriceReply(ctx, c.Args()))
	})
	r.Handle("/whatif", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
		defer cancel()
		text, png := b.WhatIfReply(ctx, c.Args())
		if png == nil {
			return c.Send(text)
		}
		return c.Send(&tele.Photo{File: tele.FromReader(bytes.NewReader(png)), Caption: text})
	})
}

// PriceReply formats the answer to "/price SYM".
func (b *Bot) PriceReply(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return "Usage: /price BTC"
	}
	quote := b.prices.GetCurrentPrice(ctx, args[0])
	msg := fmt.Sprintf("%s\nPrice: $%s", quote.Symbol, domain.FormatUSD(quote.PriceUSD))
	if quote.Simulated {
		msg += "\n(offline reference price)"
	}
	return msg
}

// WhatIfReply runs "/whatif SYM AMOUNT [PERIOD]". The chart is nil when
// there is nothing to draw.
func (b *Bot) WhatIfReply(ctx context.Context, args []string) (string, []byte) {
	if len(args) < 2 {
		return "Usage: /whatif BTC 1000 [" + strings.Join(calculator.PeriodValues(), "|") + "]", nil
	}
	amount, err := decimal.NewFromString(args[1])
	if err != nil || !amount.IsPositive() {
		return fmt.Sprintf("Amount must be a positive number, got %q", args[1]), nil
	}
	req := domain.CalculationRequest{Symbol: args[0], Amount: amount.InexactFloat64()}
	if len(args) > 2 {
		req.Period = args[2]
	}

	res, err := b.investment.Calculate(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientData) {
			return fmt.Sprintf("Not enough price data for %s in that period", strings.ToUpper(args[0])), nil
		}
		return fmt.Sprintf("Could not calculate: %v", err), nil
	}

	caption := summary(res)
	if b.charts == nil {
		return caption, nil
	}
	png, err := b.charts.RenderInvestment(res)
	if err != nil {
		log.Warn("chart render failed", "symbol", res.Symbol, "err", err)
		return caption, nil
	}
	return caption, png
}

func summary(res domain.InvestmentResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s over %s\n", res.Symbol, res.PeriodLabel)
	fmt.Fprintf(&sb, "$%s → $%s (%+.2f%%)\n", domain.FormatUSD(res.InitialAmount), domain.FormatUSD(res.CurrentValue), res.ProfitPercentage)
	fmt.Fprintf(&sb, "Bought at $%s on %s, now $%s", domain.FormatUSD(res.InitialPrice), res.StartDate, domain.FormatUSD(res.FinalPrice))
	if res.Warning != nil {
		fmt.Fprintf(&sb, "\nNote: %s data starts %s", res.Warning.CoinName, res.Warning.EarliestDate)
	}
	if res.IsSimulated {
		sb.WriteString("\n(simulated prices)")
	}
	return sb.String()
}

func helpText() string {
	return "Commands:\n/price SYM\n/whatif SYM AMOUNT [PERIOD]\n/periods"
}

func periodsText() string {
	lines := make([]string, 0, len(calculator.Periods))
	for _, p := range calculator.Periods {
		lines = append(lines, fmt.Sprintf("%s  %s", p.Value, p.Label))
	}
	return strings.Join(lines, "\n")
}
