package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kirillkom/payslip-dispatcher/internal/core/domain"
	"github.com/kirillkom/payslip-dispatcher/internal/core/ports"
)

type DispatchBatchUseCase struct {
	repo       ports.BatchRepository
	storage    ports.ObjectStorage
	splitter   ports.DocumentSplitter
	roster     ports.RosterLoader
	fields     ports.FieldExtractor
	sender     ports.MailSender
	credential domain.SMTPCredential
}

func NewDispatchBatchUseCase(
	repo ports.BatchRepository,
	storage ports.ObjectStorage,
	splitter ports.DocumentSplitter,
	roster ports.RosterLoader,
	fields ports.FieldExtractor,
	sender ports.MailSender,
	credential domain.SMTPCredential,
) *DispatchBatchUseCase {
	return &DispatchBatchUseCase{
		repo:       repo,
		storage:    storage,
		splitter:   splitter,
		roster:     roster,
		fields:     fields,
		sender:     sender,
		credential: credential,
	}
}

// DispatchByID runs the full extraction-match-deliver pipeline for one batch.
// Failures reading the source PDF or the roster abort the run before any
// delivery is attempted; everything after that is isolated per recipient and
// recorded as a DeliveryOutcome.
func (uc *DispatchBatchUseCase) DispatchByID(ctx context.Context, batchID string) error {
	if err := uc.markStatus(ctx, batchID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	report, err := uc.runPipeline(ctx, batchID)
	if err != nil {
		if failErr := uc.markFailed(ctx, batchID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.SaveReport(ctx, batchID, report); err != nil {
		if failErr := uc.markFailed(ctx, batchID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return fmt.Errorf("save dispatch report: %w", err)
	}

	if err := uc.markStatus(ctx, batchID, domain.StatusCompleted, ""); err != nil {
		return fmt.Errorf("set status=completed: %w", err)
	}

	return nil
}

func (uc *DispatchBatchUseCase) runPipeline(ctx context.Context, batchID string) (domain.DispatchReport, error) {
	batch, err := uc.repo.GetByID(ctx, batchID)
	if err != nil {
		return domain.DispatchReport{}, fmt.Errorf("fetch batch by id: %w", err)
	}

	documents, err := uc.splitter.Split(ctx, batch)
	if err != nil {
		return domain.DispatchReport{}, domain.WrapError(domain.ErrInputUnreadable, "split source document", err)
	}

	roster, err := uc.roster.Load(ctx, batch.RosterKey)
	if err != nil {
		return domain.DispatchReport{}, domain.WrapError(domain.ErrInputUnreadable, "load roster", err)
	}

	outcomes := make([]domain.DeliveryOutcome, 0, len(documents))
	for _, document := range documents {
		outcome := uc.deliver(ctx, batch, roster, document)
		slog.Info("delivery_outcome",
			"batch_id", batch.ID,
			"identifier", outcome.Identifier,
			"status", string(outcome.Status),
			"diagnostic", outcome.Diagnostic,
		)
		outcomes = append(outcomes, outcome)
	}

	return domain.BuildReport(outcomes), nil
}

// deliver performs match, salary extraction, composition, and one send attempt
// for a single employee document. Each step downgrades its failure to the
// outcome status for that identifier; the batch never aborts here.
func (uc *DispatchBatchUseCase) deliver(
	ctx context.Context,
	batch *domain.Batch,
	roster *domain.Roster,
	document domain.EmployeeDocument,
) domain.DeliveryOutcome {
	outcome := domain.DeliveryOutcome{Identifier: document.Identifier}

	record, found := roster.Lookup(document.Identifier)
	if !found {
		outcome.Status = domain.OutcomeNoMatchingRecord
		outcome.Diagnostic = fmt.Sprintf("no roster record for employee %s", document.Identifier)
		return outcome
	}

	if strings.TrimSpace(record.Email) == "" {
		outcome.Status = domain.OutcomeMissingEmail
		outcome.Diagnostic = fmt.Sprintf("roster record for employee %s has no email address", document.Identifier)
		return outcome
	}

	salary, found := uc.fields.NetSalary(document.Text)
	if !found {
		outcome.Status = domain.OutcomeSalaryNotFound
		outcome.Diagnostic = "net amount payable not found in document text"
		return outcome
	}

	attachment, err := uc.readAttachment(ctx, document.StorageKey)
	if err != nil {
		outcome.Status = domain.OutcomeSendFailed
		outcome.Diagnostic = err.Error()
		return outcome
	}

	mail := composePayslipMail(batch.SenderEmail, record, salary, document, attachment)
	if err := uc.sender.Send(ctx, uc.credential, mail); err != nil {
		outcome.Status = domain.OutcomeSendFailed
		outcome.Diagnostic = err.Error()
		return outcome
	}

	outcome.Status = domain.OutcomeSent
	return outcome
}

func (uc *DispatchBatchUseCase) readAttachment(ctx context.Context, key string) ([]byte, error) {
	reader, err := uc.storage.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open employee document: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read employee document: %w", err)
	}
	return data, nil
}

func (uc *DispatchBatchUseCase) markStatus(ctx context.Context, batchID string, status domain.BatchStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, batchID, status, errMessage)
}

func (uc *DispatchBatchUseCase) markFailed(ctx context.Context, batchID string, dispatchErr error) error {
	if dispatchErr == nil {
		return nil
	}
	return uc.markStatus(ctx, batchID, domain.StatusFailed, dispatchErr.Error())
}
