package bootstrap

import (
	"context"
	"fmt"

	"github.com/kirillkom/payslip-dispatcher/internal/config"
	"github.com/kirillkom/payslip-dispatcher/internal/core/domain"
	"github.com/kirillkom/payslip-dispatcher/internal/core/ports"
	"github.com/kirillkom/payslip-dispatcher/internal/core/usecase"
	"github.com/kirillkom/payslip-dispatcher/internal/infrastructure/mail"
	"github.com/kirillkom/payslip-dispatcher/internal/infrastructure/payslip"
	"github.com/kirillkom/payslip-dispatcher/internal/infrastructure/pdf"
	"github.com/kirillkom/payslip-dispatcher/internal/infrastructure/queue/nats"
	"github.com/kirillkom/payslip-dispatcher/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/payslip-dispatcher/internal/infrastructure/resilience"
	"github.com/kirillkom/payslip-dispatcher/internal/infrastructure/roster"
	"github.com/kirillkom/payslip-dispatcher/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue ports.MessageQueue
	Repo  ports.BatchRepository

	IngestUC   ports.BatchIngestor
	DispatchUC ports.BatchDispatcher

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewBatchRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	fields := payslip.NewExtractor()
	splitter := pdf.NewSplitter(storage, fields)
	rosterLoader := roster.NewLoader(storage)
	sender := mail.NewSMTPSender(cfg.SendsPerMinute)

	credential := domain.SMTPCredential{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	}

	ingestUC := usecase.NewIngestBatchUseCase(repo, storage, queue)
	dispatchUC := usecase.NewDispatchBatchUseCase(repo, storage, splitter, rosterLoader, fields, sender, credential)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		IngestUC:   ingestUC,
		DispatchUC: dispatchUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
