package ports

import (
	"context"
	"io"

	"github.com/kirillkom/payslip-dispatcher/internal/core/domain"
)

// BatchRepository persists and reads batch state.
type BatchRepository interface {
	Create(ctx context.Context, batch *domain.Batch) error
	GetByID(ctx context.Context, id string) (*domain.Batch, error)
	UpdateStatus(ctx context.Context, id string, status domain.BatchStatus, errMessage string) error
	SaveReport(ctx context.Context, id string, report domain.DispatchReport) error
	GetReport(ctx context.Context, id string) (*domain.DispatchReport, error)
}

// ObjectStorage stores source inputs and assembled per-employee documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes queued batch IDs.
type MessageQueue interface {
	PublishBatchQueued(ctx context.Context, batchID string) error
	SubscribeBatchQueued(ctx context.Context, handler func(context.Context, string) error) error
}

// DocumentSplitter pages through a consolidated payslip PDF and assembles one
// document per extracted identifier, in first-occurrence page order.
type DocumentSplitter interface {
	Split(ctx context.Context, batch *domain.Batch) ([]domain.EmployeeDocument, error)
}

// RosterLoader reads the tabular contact roster for a batch.
type RosterLoader interface {
	Load(ctx context.Context, key string) (*domain.Roster, error)
}

// FieldExtractor pulls the identifier and salary fields out of rendered
// payslip text.
type FieldExtractor interface {
	Identifier(pageText string) (string, bool)
	NetSalary(documentText string) (int, bool)
}

// MailSender performs one delivery attempt over an authenticated session.
type MailSender interface {
	Send(ctx context.Context, credential domain.SMTPCredential, mail domain.OutgoingMail) error
}
