package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"hindsight/internal/app"
	"hindsight/internal/calculator"
	"hindsight/internal/config"
	"hindsight/internal/domain"
	"hindsight/pkg/logging"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
)

const commandTimeout = 30 * time.Second

type buildServicesFunc func(cfg *config.Config) (*app.Services, error)

func defaultServices(cfg *config.Config) (*app.Services, error) {
	return app.NewServices(otel.Tracer("whatif"), cfg, nil, nil)
}

type rootOptions struct {
	offline  bool
	asJSON   bool
	logLevel string
}

func newRootCmd(build buildServicesFunc) *cobra.Command {
	opts := &rootOptions{}
	var svc *app.Services

	root := &cobra.Command{
		Use:           "whatif",
		Short:         "What would a past crypto investment be worth today",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if opts.logLevel != "" {
				cfg.LogLevel = opts.logLevel
			}
			if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
				return err
			}
			if opts.offline {
				cfg.ForceSimulated = true
			}
			s, err := build(cfg)
			if err != nil {
				return err
			}
			svc = s
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&opts.offline, "offline", false, "skip the exchange and use simulated prices")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of text")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	services := func() *app.Services { return svc }
	root.AddCommand(
		newCalcCmd(opts, services),
		newPriceCmd(opts, services),
		newPopularCmd(opts, services),
	)
	return root
}

func newCalcCmd(opts *rootOptions, services func() *app.Services) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "calc SYMBOL AMOUNT",
		Short: "Project an investment made at the start of a period",
		Example: "  whatif calc BTC 1000 --period 5y\n" +
			"  whatif calc ETH 250.50 --offline",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[1])
			if err != nil || !amount.IsPositive() {
				return &domain.InvalidInputError{Field: "amount", Value: amount.InexactFloat64()}
			}
			if _, ok := calculator.LookupPeriod(period); !ok {
				return fmt.Errorf("unknown period %q, expected one of %s", period, strings.Join(calculator.PeriodValues(), ", "))
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			res, err := services().Investment.Calculate(ctx, domain.CalculationRequest{
				Symbol: args[0],
				Amount: amount.InexactFloat64(),
				Period: period,
			})
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			writeResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&period, "period", "p", calculator.DefaultPeriod, "lookback: "+strings.Join(calculator.PeriodValues(), ", "))
	return cmd
}

func newPriceCmd(opts *rootOptions, services func() *app.Services) *cobra.Command {
	return &cobra.Command{
		Use:   "price SYMBOL...",
		Short: "Show current prices",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			quotes := make([]domain.Quote, 0, len(args))
			for _, sym := range args {
				quotes = append(quotes, services().Prices.GetCurrentPrice(ctx, sym))
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), quotes)
			}
			out := cmd.OutOrStdout()
			for _, q := range quotes {
				flag := ""
				if q.Simulated {
					flag = "  (simulated)"
				}
				fmt.Fprintf(out, "%-8s $%s%s\n", q.Symbol, domain.FormatUSD(q.PriceUSD), flag)
			}
			return nil
		},
	}
}

func newPopularCmd(opts *rootOptions, services func() *app.Services) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "popular",
		Short: "List the most traded USDT pairs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			list := services().Market.Popular(ctx)
			coins := list.Coins
			if limit > 0 && len(coins) > limit {
				coins = coins[:limit]
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), coins)
			}
			out := cmd.OutOrStdout()
			for i, c := range coins {
				fmt.Fprintf(out, "%2d. %-8s $%-14s %+6.2f%%\n", i+1, strings.ToUpper(c.Symbol), domain.FormatUSD(c.CurrentPrice), c.PriceChangePercentage24h)
			}
			if list.Simulated {
				fmt.Fprintln(out, "(offline list)")
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of coins to show")
	return cmd
}

func writeResult(w io.Writer, r domain.InvestmentResult) {
	fmt.Fprintf(w, "%s over %s (%s → %s)\n", r.Symbol, r.PeriodLabel, r.StartDate, r.EndDate)
	fmt.Fprintf(w, "Invested:  $%s at $%s\n", domain.FormatUSD(r.InitialAmount), domain.FormatUSD(r.InitialPrice))
	fmt.Fprintf(w, "Now worth: $%s at $%s\n", domain.FormatUSD(r.CurrentValue), domain.FormatUSD(r.FinalPrice))
	fmt.Fprintf(w, "Return:    %+.2f%%\n", r.ProfitPercentage)
	if r.Warning != nil {
		fmt.Fprintf(w, "Note: %s data only starts %s\n", r.Warning.CoinName, r.Warning.EarliestDate)
	}
	if r.IsSimulated {
		fmt.Fprintln(w, "Prices are simulated.")
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
