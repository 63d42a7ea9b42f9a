package main

import (
	"flag"
	"fmt"
	"os"

	"OrderFlow/internal/di"
	"OrderFlow/pkg/config"
	"OrderFlow/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "app initialization failed: %v\n", err)
		os.Exit(1)
	}

	log := app.Logger()
	ids := make([]string, 0, len(cfg.Venues))
	for _, v := range cfg.EnabledVenues() {
		ids = append(ids, v.ID)
	}
	log.Info("orderflow starting",
		logger.String("env", cfg.Environment),
		logger.Strings("venues", ids),
		logger.Int("min_venues", cfg.Engine.MinVenues),
		logger.String("cache", cfg.Cache.Backend),
		logger.Bool("kafka", cfg.Kafka.Enabled),
	)

	// blocks until signal
	runErr := app.Run()
	cleanup()
	if runErr != nil {
		log.Error("app error", logger.Error(runErr))
		os.Exit(1)
	}
}
