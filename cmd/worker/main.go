package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/payslip-dispatcher/internal/bootstrap"
	"github.com/kirillkom/payslip-dispatcher/internal/config"
	"github.com/kirillkom/payslip-dispatcher/internal/observability/logging"
	"github.com/kirillkom/payslip-dispatcher/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		log.Printf("worker metrics listening on :%s", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("worker metrics server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	dispatchTimeout := time.Duration(cfg.DispatchTimeout) * time.Second

	log.Printf("worker subscribed to %s", cfg.NATSSubject)
	err = app.Queue.SubscribeBatchQueued(ctx, func(handlerCtx context.Context, batchID string) error {
		dispatchCtx, cancel := context.WithTimeout(handlerCtx, dispatchTimeout)
		defer cancel()

		if batch, err := app.Repo.GetByID(dispatchCtx, batchID); err == nil {
			workerMetrics.ObserveQueueLag("worker", time.Since(batch.CreatedAt))
		}

		workerMetrics.StartBatch()
		start := time.Now()
		dispatchErr := app.DispatchUC.DispatchByID(dispatchCtx, batchID)
		workerMetrics.FinishBatch("worker", time.Since(start), dispatchErr)

		if dispatchErr == nil {
			if report, err := app.Repo.GetReport(dispatchCtx, batchID); err == nil && report != nil {
				workerMetrics.RecordDeliveries("worker", *report)
			}
		}
		return dispatchErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
