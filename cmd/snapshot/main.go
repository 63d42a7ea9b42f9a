// Command snapshot runs one consensus report and prints it as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"OrderFlow/internal/di"
	"OrderFlow/internal/domain/models"
	"OrderFlow/internal/usecase"
	"OrderFlow/pkg/config"
)

// exit code 2 means too few venues answered
const exitQuorum = 2

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	symbol := flag.String("symbol", "BTC-USDT", "canonical pair")
	interval := flag.String("interval", "15m", "bar interval")
	lookback := flag.Int("lookback", usecase.DefaultLookback, "bars to fetch")
	period := flag.String("period", "", "window such as 1d or 7d; overrides -lookback")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		fatal("config load failed: %v", err)
	}
	// stdout carries the report
	cfg.Log.Output = "stderr"
	cfg.Scheduler.Enabled = false
	cfg.Kafka.Consumer.Enabled = false

	svc, cleanup, err := di.InitializeService(cfg)
	if err != nil {
		fatal("init failed: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := svc.Snapshot(ctx, usecase.SnapshotParams{
		Symbol:   *symbol,
		Interval: *interval,
		Lookback: *lookback,
		Period:   *period,
		Fresh:    true,
	})
	if err != nil {
		var qe *models.QuorumError
		if !errors.As(err, &qe) {
			cleanup()
			fatal("snapshot failed: %v", err)
		}
		_ = write(models.NewFailureReport(*symbol, *interval, err))
		cleanup()
		os.Exit(exitQuorum)
	}
	if err := write(rep); err != nil {
		fatal("encode report: %v", err)
	}
}

func write(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
