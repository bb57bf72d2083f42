package ports

import (
	"context"
	"io"

	"github.com/kirillkom/payslip-dispatcher/internal/core/domain"
)

// BatchIngestor is the inbound contract for batch upload orchestration.
type BatchIngestor interface {
	Upload(ctx context.Context, payslipName string, payslip io.Reader, rosterName string, roster io.Reader, senderEmail string) (*domain.Batch, error)
}

// BatchDispatcher is the inbound contract for asynchronous batch processing.
type BatchDispatcher interface {
	DispatchByID(ctx context.Context, batchID string) error
}

// BatchReader is the inbound read model for batch state and the latest
// dispatch report.
type BatchReader interface {
	GetByID(ctx context.Context, id string) (*domain.Batch, error)
	GetReport(ctx context.Context, id string) (*domain.DispatchReport, error)
}
