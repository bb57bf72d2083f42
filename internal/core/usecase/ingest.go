package usecase

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/payslip-dispatcher/internal/core/domain"
	"github.com/kirillkom/payslip-dispatcher/internal/core/ports"
)

type IngestBatchUseCase struct {
	repo    ports.BatchRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestBatchUseCase(
	repo ports.BatchRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestBatchUseCase {
	return &IngestBatchUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

// Upload stages the consolidated payslip PDF and the roster, records the
// batch, and queues it for dispatch.
func (uc *IngestBatchUseCase) Upload(
	ctx context.Context,
	payslipName string, payslip io.Reader,
	rosterName string, roster io.Reader,
	senderEmail string,
) (*domain.Batch, error) {
	if _, err := mail.ParseAddress(senderEmail); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate sender address", err)
	}

	id := uuid.NewString()
	payslipKey := fmt.Sprintf("batches/%s/%s", id, sanitizeFilename(payslipName))
	rosterKey := fmt.Sprintf("batches/%s/%s", id, sanitizeFilename(rosterName))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, payslipKey, payslip); err != nil {
		return nil, fmt.Errorf("save payslip to object storage: %w", err)
	}
	if err := uc.storage.Save(ctx, rosterKey, roster); err != nil {
		return nil, fmt.Errorf("save roster to object storage: %w", err)
	}

	batch := &domain.Batch{
		ID:          id,
		PayslipKey:  payslipKey,
		RosterKey:   rosterKey,
		SenderEmail: senderEmail,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("create batch record: %w", err)
	}

	if err := uc.queue.PublishBatchQueued(ctx, batch.ID); err != nil {
		return nil, fmt.Errorf("publish batch queued event: %w", err)
	}

	return batch, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "upload.bin"
	}
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "upload.bin"
	}
	return base
}
