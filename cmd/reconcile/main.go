package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auravindex/internal/lending/bootstrap"
	"auravindex/internal/lending/service"
	"auravindex/pkg/config"
	"auravindex/pkg/logger"

	"github.com/robfig/cron/v3"
)

const (
	JobName    = "lending-reconcile"
	runTimeout = 5 * time.Minute
)

func main() {
	cfg := config.Load(JobName)
	if err := run(cfg); err != nil {
		cfg.Log.Fatal("Reconciliation failed", "error", err)
	}
}

func run(cfg *config.Config) error {
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	lending, err := bootstrap.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := lending.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	if cfg.ReconcileSchedule == "" {
		return runOnce(context.Background(), cfg, lending.Service)
	}

	cronLog := cronLogger{log: cfg.Log}
	scheduler := cron.New(cron.WithLogger(cronLog), cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)))
	if _, err := scheduler.AddFunc(cfg.ReconcileSchedule, func() {
		if err := runOnce(context.Background(), cfg, lending.Service); err != nil {
			cfg.Log.Error("Scheduled reconciliation failed", "error", err)
		}
	}); err != nil {
		return err
	}

	scheduler.Start()
	cfg.Log.Info("Reconcile scheduler started", "schedule", cfg.ReconcileSchedule)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdown
	cfg.Log.Info("Shutdown signal received", "signal", sig)

	<-scheduler.Stop().Done()
	cfg.Log.Info("Reconcile scheduler stopped")
	return nil
}

func runOnce(ctx context.Context, cfg *config.Config, svc service.BookingService) error {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	report, err := svc.Reconcile(ctx)
	if err != nil {
		return err
	}
	cfg.Log.Info("Reconciliation report",
		"checked", report.Checked,
		"repaired", len(report.Repaired),
		"skipped", report.Skipped,
	)
	return nil
}

// cronLogger adapts the service logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, append(keysAndValues, "component", "cron")...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "component", "cron", "error", err)...)
}
