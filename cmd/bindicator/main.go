// Package main starts the bindicator binary.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/ibs-source/bindicator/internal/binday"
	"github.com/ibs-source/bindicator/internal/collection"
	"github.com/ibs-source/bindicator/internal/config"
	"github.com/ibs-source/bindicator/internal/council"
	"github.com/ibs-source/bindicator/internal/lock"
	"github.com/ibs-source/bindicator/internal/log"
	"github.com/ibs-source/bindicator/internal/mqtt"
)

func run() int {
	logger := log.New()
	logger.Info("Starting bindicator")

	cfg := loadAndLogConfig(logger)

	runner, locker := initializeServices(cfg, logger)
	if locker != nil {
		defer closeLocker(locker, logger)
	}

	if cfg.Schedule.Once {
		return runOnce(runner, logger)
	}
	return runScheduler(runner, cfg, logger)
}

func loadAndLogConfig(logger *log.Logger) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}

	logger.Info("Configuration loaded successfully")
	logger.Info("Source: %s, UPRN: %d", cfg.Source.APIURL, cfg.Source.UPRN)
	logger.Info("MQTT: %s, Topic prefix: %s, TLS: %t", cfg.MQTT.Address(), cfg.MQTT.TopicPrefix, cfg.MQTT.TLSEnabled)
	logger.Info("Schedule: %q (%s), Dry run: %t", cfg.Schedule.Cron, cfg.Schedule.Timezone, cfg.Schedule.DryRun)
	if cfg.Lock.Enabled() {
		logger.Info("Run lock: %s key %s", cfg.Lock.RedisAddress, cfg.Lock.Key)
	}
	return cfg
}

func initializeServices(cfg *config.Config, logger *log.Logger) (*binday.Runner, *lock.Locker) {
	publisher, err := mqtt.NewClient(cfg.MQTT, logger)
	if err != nil {
		logger.Fatal("Failed to create MQTT publisher: %v", err)
	}

	var opts []binday.Option
	var locker *lock.Locker
	if cfg.Lock.Enabled() {
		locker, err = lock.NewLocker(cfg.Lock, logger)
		if err != nil {
			logger.Fatal("Failed to create run lock: %v", err)
		}
		logger.Info("Connected to Redis for run lock")
		opts = append(opts, binday.WithLocker(locker))
	}

	runner, err := binday.New(
		council.NewFetcher(cfg.Source, logger),
		collection.NewExtractor(),
		publisher,
		&cfg.Schedule,
		logger,
		opts...,
	)
	if err != nil {
		logger.Fatal("Failed to create runner: %v", err)
	}
	return runner, locker
}

func closeLocker(locker *lock.Locker, logger *log.Logger) {
	if err := locker.Close(); err != nil {
		logger.Error("Error closing Redis client: %v", err)
	}
}

func runOnce(runner *binday.Runner, logger *log.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := runner.Run(ctx)
	if err != nil {
		logger.Error("Run failed: %v", err)
		return 1
	}
	logger.Info("Run finished: %s", result.Outcome)
	return 0
}

func runScheduler(runner *binday.Runner, cfg *config.Config, logger *log.Logger) int {
	scheduler, err := binday.NewScheduler(runner, &cfg.Schedule, logger)
	if err != nil {
		logger.Error("Failed to create scheduler: %v", err)
		return 1
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	scheduler.Start()
	if cfg.Schedule.RunOnStart {
		logger.Info("Running once at startup")
		scheduler.Trigger()
	}

	sig := <-sigChan
	logger.Info("Received signal %v, initiating graceful shutdown", sig)
	return handleGracefulShutdown(scheduler, cfg, logger)
}

func handleGracefulShutdown(scheduler *binday.Scheduler, cfg *config.Config, logger *log.Logger) int {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Schedule.ShutdownTimeout)
	defer shutdownCancel()

	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Error("Shutdown timeout exceeded, run cancelled")
		return 1
	}

	logger.Info("Graceful shutdown completed")
	logger.Info("Bindicator stopped")
	return 0
}

func main() {
	// Keep main minimal to ensure defers in run() execute correctly.
	os.Exit(run())
}
