package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/OpenLLT/ig-client/internal/config"
	"github.com/OpenLLT/ig-client/internal/domain/streamdata"
	"github.com/OpenLLT/ig-client/internal/session"
	"github.com/OpenLLT/ig-client/internal/streaming"
)

var (
	epics      []string
	withPrices bool
	withTrades bool
	chartScale string
)

var rootCmd = &cobra.Command{
	Use:   "stream-watch",
	Short: "Watch live IG market data, trade events and account balances",
	Long: `This tool logs in to the IG gateway, opens the streaming sessions for the
configured account and prints every update it receives. Market data and
account feeds ride the main connection; detailed price ladders get their own.`,
	RunE: runStreamWatch,
}

func init() {
	rootCmd.Flags().StringSliceVarP(&epics, "epic", "e", nil, "Instrument epic to watch (repeatable)")
	rootCmd.Flags().BoolVar(&withPrices, "prices", false, "Also subscribe to the detailed price ladder")
	rootCmd.Flags().BoolVar(&withTrades, "trades", true, "Subscribe to trade events and account balances")
	rootCmd.Flags().StringVar(&chartScale, "charts", "", "Also subscribe to chart data at this scale (TICK, SECOND, 1MINUTE, 5MINUTE, HOUR)")
}

func runStreamWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg.App.LogLevel)

	if len(epics) == 0 {
		epics = cfg.App.Epics
	}
	if !cmd.Flags().Changed("trades") {
		withTrades = cfg.Streaming.TradeEvents
	}
	if len(epics) == 0 && !withTrades {
		return fmt.Errorf("nothing to watch, pass --epic or set IG_EPICS")
	}

	gateway := session.NewClient(cfg.IG, logger)
	if err := gateway.Login(ctx, cfg.IG.Identifier, cfg.IG.Password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	info, err := gateway.StreamInfo()
	if err != nil {
		return err
	}

	client := streaming.NewStreamClient(
		streaming.NewLightstreamerDialer(logger),
		streaming.ConnParams{
			Endpoint:  info.Endpoint,
			AccountID: info.AccountID,
			Password:  info.Password,
		},
		cfg.Streaming.PriceAdapter,
		logger,
	)

	if len(epics) > 0 {
		markets, err := client.SubscribeMarkets(epics)
		if err != nil {
			return fmt.Errorf("market subscription failed: %w", err)
		}
		go func() {
			for u := range markets {
				logger.Info("Market update",
					"item", u.Item,
					"bid", floatAttr(u.Fields.Bid),
					"offer", floatAttr(u.Fields.Offer),
					"state", stateAttr(u.Fields.MarketState),
					"snapshot", u.Snapshot)
			}
		}()

		if withPrices {
			prices, err := client.SubscribePrices(epics)
			if err != nil {
				return fmt.Errorf("price subscription failed: %w", err)
			}
			go func() {
				for u := range prices {
					logger.Info("Price ladder update",
						"item", u.Item,
						"bid1", floatAttr(u.Fields.BidPrices[0]),
						"ask1", floatAttr(u.Fields.AskPrices[0]),
						"snapshot", u.Snapshot)
				}
			}()
		}

		if chartScale != "" {
			charts, err := client.SubscribeCharts(epics, streamdata.ChartScale(chartScale))
			if err != nil {
				return fmt.Errorf("chart subscription failed: %w", err)
			}
			go func() {
				for u := range charts {
					logger.Info("Chart update",
						"item", u.Item,
						"scale", string(u.Scale),
						"bid_open", floatAttr(u.Fields.BidOpen),
						"bid_close", floatAttr(u.Fields.BidClose),
						"cons_end", floatAttr(u.Fields.ConsolidationEnd))
				}
			}()
		}
	}

	if withTrades {
		trades, err := client.SubscribeTrades()
		if err != nil {
			return fmt.Errorf("trade subscription failed: %w", err)
		}
		go func() {
			for u := range trades {
				logger.Info("Trade event",
					"item", u.Item,
					"confirms", strAttr(u.Fields.Confirms),
					"opu", strAttr(u.Fields.OpenPositionUpdate),
					"wou", strAttr(u.Fields.WorkingOrderUpdate))
			}
		}()

		balances, err := client.SubscribeAccount()
		if err != nil {
			return fmt.Errorf("account subscription failed: %w", err)
		}
		go func() {
			for u := range balances {
				logger.Info("Account update",
					"item", u.Item,
					"pnl", floatAttr(u.Fields.PNL),
					"funds", floatAttr(u.Fields.Funds),
					"margin", floatAttr(u.Fields.Margin))
			}
		}()
	}

	logger.Info("Streaming starting", "epics", epics, "account_id", info.AccountID)
	if err := client.Connect(ctx); err != nil {
		logger.Error("Streaming ended with error", "error", err)
		return err
	}
	logger.Info("Streaming ended")
	return nil
}

func newLogger(level string) *slog.Logger {
	logLevel := slog.LevelInfo
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

func floatAttr(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func strAttr(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func stateAttr(v *streamdata.MarketState) any {
	if v == nil {
		return nil
	}
	return string(*v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
