package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/OpenLLT/ig-client/internal/config"
	"github.com/OpenLLT/ig-client/internal/session"
	"github.com/OpenLLT/ig-client/internal/streaming"
)

var startEpics []string

var rootCmd = &cobra.Command{
	Use:   "dynamic-watch",
	Short: "Watch live market data over a mutable set of instruments",
	Long: `This tool streams basic market data and lets the set of watched
instruments change at runtime. Commands on stdin:

  add <epic>      add an instrument and reconnect
  remove <epic>   drop an instrument and reconnect
  list            print the current set
  quit            stop the stream and exit`,
	RunE: runDynamicWatch,
}

func init() {
	rootCmd.Flags().StringSliceVarP(&startEpics, "epic", "e", nil, "Instrument epic to start with (repeatable)")
}

func runDynamicWatch(cmd *cobra.Command, args []string) error {
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

	gateway := session.NewClient(cfg.IG, logger)
	if err := gateway.Login(ctx, cfg.IG.Identifier, cfg.IG.Password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	info, err := gateway.StreamInfo()
	if err != nil {
		return err
	}

	params := streaming.ConnParams{
		Endpoint:  info.Endpoint,
		AccountID: info.AccountID,
		Password:  info.Password,
	}
	factory := func() *streaming.StreamClient {
		return streaming.NewStreamClient(
			streaming.NewLightstreamerDialer(logger),
			params,
			cfg.Streaming.PriceAdapter,
			logger,
		)
	}

	dynamic := streaming.NewDynamicMarketStream(factory, logger)
	updates, err := dynamic.Receiver()
	if err != nil {
		return err
	}

	if len(startEpics) == 0 {
		startEpics = cfg.App.Epics
	}
	for _, epic := range startEpics {
		dynamic.Add(epic)
	}

	if err := dynamic.Start(ctx); err != nil {
		return err
	}
	defer dynamic.Stop()

	go func() {
		for u := range updates {
			logger.Info("Market update",
				"item", u.Item,
				"bid", floatAttr(u.Fields.Bid),
				"offer", floatAttr(u.Fields.Offer),
				"snapshot", u.Snapshot)
		}
	}()

	logger.Info("Dynamic stream started", "epics", dynamic.Epics())
	return commandLoop(ctx, cancel, dynamic, logger)
}

// commandLoop reads membership commands from stdin until quit or shutdown.
func commandLoop(ctx context.Context, cancel context.CancelFunc, dynamic *streaming.DynamicMarketStream, logger *slog.Logger) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			switch fields[0] {
			case "add":
				if len(fields) != 2 {
					fmt.Println("usage: add <epic>")
					continue
				}
				dynamic.Add(fields[1])
				fmt.Printf("watching %v\n", dynamic.Epics())
			case "remove":
				if len(fields) != 2 {
					fmt.Println("usage: remove <epic>")
					continue
				}
				dynamic.Remove(fields[1])
				fmt.Printf("watching %v\n", dynamic.Epics())
			case "list":
				fmt.Printf("watching %v\n", dynamic.Epics())
			case "quit", "exit":
				cancel()
				return nil
			default:
				fmt.Println("commands: add <epic>, remove <epic>, list, quit")
			}
		}
	}
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

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
