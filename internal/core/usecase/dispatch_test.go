package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/kirillkom/payslip-dispatcher/internal/core/domain"
)

type statusCall struct {
	status domain.BatchStatus
	errMsg string
}

type batchRepoFake struct {
	batch       *domain.Batch
	getErr      error
	statusErr   error
	saveErr     error
	statusCalls []statusCall
	savedReport *domain.DispatchReport
}

func (f *batchRepoFake) Create(context.Context, *domain.Batch) error { return nil }

func (f *batchRepoFake) GetByID(context.Context, string) (*domain.Batch, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	copyBatch := *f.batch
	return &copyBatch, nil
}

func (f *batchRepoFake) UpdateStatus(_ context.Context, _ string, status domain.BatchStatus, errMessage string) error {
	f.statusCalls = append(f.statusCalls, statusCall{status: status, errMsg: errMessage})
	return f.statusErr
}

func (f *batchRepoFake) SaveReport(_ context.Context, _ string, report domain.DispatchReport) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedReport = &report
	return nil
}

func (f *batchRepoFake) GetReport(context.Context, string) (*domain.DispatchReport, error) {
	return f.savedReport, nil
}

type storageFake struct {
	objects map[string][]byte
	openErr error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[key] = raw
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	raw, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object not found: " + key)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

type splitterFake struct {
	documents []domain.EmployeeDocument
	err       error
}

func (f *splitterFake) Split(context.Context, *domain.Batch) ([]domain.EmployeeDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.documents, nil
}

type rosterLoaderFake struct {
	roster *domain.Roster
	err    error
}

func (f *rosterLoaderFake) Load(context.Context, string) (*domain.Roster, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.roster, nil
}

type fieldsFake struct {
	salaries map[string]int
}

func (f *fieldsFake) Identifier(string) (string, bool) { return "", false }

func (f *fieldsFake) NetSalary(documentText string) (int, bool) {
	salary, ok := f.salaries[documentText]
	return salary, ok
}

type senderFake struct {
	sent       []domain.OutgoingMail
	failFor    map[string]error
	credential domain.SMTPCredential
}

func (f *senderFake) Send(_ context.Context, credential domain.SMTPCredential, mail domain.OutgoingMail) error {
	f.credential = credential
	if err, ok := f.failFor[mail.To]; ok {
		return err
	}
	f.sent = append(f.sent, mail)
	return nil
}

func newDispatchFixture(
	repo *batchRepoFake,
	storage *storageFake,
	splitter *splitterFake,
	loader *rosterLoaderFake,
	fields *fieldsFake,
	sender *senderFake,
) *DispatchBatchUseCase {
	return NewDispatchBatchUseCase(
		repo, storage, splitter, loader, fields, sender,
		domain.SMTPCredential{Host: "smtp.example.com", Port: 587, Username: "hr@acme.pk", Password: "secret"},
	)
}

func TestDispatchMixedOutcomes(t *testing.T) {
	repo := &batchRepoFake{batch: &domain.Batch{
		ID:          "batch-1",
		SenderEmail: "hr@acme.pk",
		RosterKey:   "batches/batch-1/roster.csv",
	}}
	storage := &storageFake{objects: map[string][]byte{
		"batches/batch-1/employees/7.pdf":  []byte("pdf-7"),
		"batches/batch-1/employees/13.pdf": []byte("pdf-13"),
	}}
	splitter := &splitterFake{documents: []domain.EmployeeDocument{
		{Identifier: "7", Pages: []int{1, 3}, Text: "doc-7", StorageKey: "batches/batch-1/employees/7.pdf"},
		{Identifier: "9", Pages: []int{2}, Text: "doc-9", StorageKey: "batches/batch-1/employees/9.pdf"},
		{Identifier: "12", Pages: []int{4}, Text: "doc-12", StorageKey: "batches/batch-1/employees/12.pdf"},
		{Identifier: "13", Pages: []int{5}, Text: "doc-13", StorageKey: "batches/batch-1/employees/13.pdf"},
	}}
	loader := &rosterLoaderFake{roster: domain.NewRoster([]domain.RosterRecord{
		{EmployeeID: 7, Name: "Ali Raza", Email: "a@x.com"},
		{EmployeeID: 12, Name: "No Mail", Email: "  "},
		{EmployeeID: 13, Name: "No Salary", Email: "c@x.com"},
	})}
	fields := &fieldsFake{salaries: map[string]int{"doc-7": 45000}}
	sender := &senderFake{}

	uc := newDispatchFixture(repo, storage, splitter, loader, fields, sender)
	if err := uc.DispatchByID(context.Background(), "batch-1"); err != nil {
		t.Fatalf("DispatchByID() error = %v", err)
	}

	if repo.savedReport == nil {
		t.Fatal("expected dispatch report to be saved")
	}
	gotStatuses := make([]domain.OutcomeStatus, 0, len(repo.savedReport.Outcomes))
	for _, outcome := range repo.savedReport.Outcomes {
		gotStatuses = append(gotStatuses, outcome.Status)
	}
	wantStatuses := []domain.OutcomeStatus{
		domain.OutcomeSent,
		domain.OutcomeNoMatchingRecord,
		domain.OutcomeMissingEmail,
		domain.OutcomeSalaryNotFound,
	}
	if !reflect.DeepEqual(gotStatuses, wantStatuses) {
		t.Fatalf("outcome statuses = %v, want %v", gotStatuses, wantStatuses)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected exactly one send attempt, got %d", len(sender.sent))
	}
	mail := sender.sent[0]
	if mail.To != "a@x.com" || mail.From != "hr@acme.pk" {
		t.Fatalf("unexpected addresses: from=%q to=%q", mail.From, mail.To)
	}
	if mail.Subject != "Monthly Salary Payslip" {
		t.Fatalf("unexpected subject %q", mail.Subject)
	}
	if mail.AttachmentName != "7.pdf" {
		t.Fatalf("unexpected attachment name %q", mail.AttachmentName)
	}
	if !bytes.Equal(mail.Attachment, []byte("pdf-7")) {
		t.Fatalf("unexpected attachment bytes %q", mail.Attachment)
	}

	if repo.savedReport.Sent != 1 || repo.savedReport.Failed != 3 || repo.savedReport.Total != 4 {
		t.Fatalf("unexpected report counts: %+v", repo.savedReport)
	}

	wantCalls := []statusCall{
		{status: domain.StatusProcessing},
		{status: domain.StatusCompleted},
	}
	if !reflect.DeepEqual(repo.statusCalls, wantCalls) {
		t.Fatalf("status calls = %+v, want %+v", repo.statusCalls, wantCalls)
	}
}

func TestDispatchComposesInteroperableBody(t *testing.T) {
	repo := &batchRepoFake{batch: &domain.Batch{ID: "batch-1", SenderEmail: "hr@acme.pk"}}
	storage := &storageFake{objects: map[string][]byte{"k7": []byte("pdf")}}
	splitter := &splitterFake{documents: []domain.EmployeeDocument{
		{Identifier: "7", Text: "doc-7", StorageKey: "k7"},
	}}
	loader := &rosterLoaderFake{roster: domain.NewRoster([]domain.RosterRecord{
		{EmployeeID: 7, Name: "Ali Raza", Email: "a@x.com"},
	})}
	fields := &fieldsFake{salaries: map[string]int{"doc-7": 1234567}}
	sender := &senderFake{}

	uc := newDispatchFixture(repo, storage, splitter, loader, fields, sender)
	if err := uc.DispatchByID(context.Background(), "batch-1"); err != nil {
		t.Fatalf("DispatchByID() error = %v", err)
	}

	wantBody := "Dear Ali Raza,\n\n" +
		"Please find attached your monthly salary payslip. Your net salary for this month is PKR: 1234567.\n\n" +
		"If you have any question or concerns regarding your salary or deductions, please don't hesitate to reach out our HR department.\n\n" +
		"Thank you for your hard work and dedication\n\n" +
		"Best regards,\nPTIS\nHR Department"
	if len(sender.sent) != 1 {
		t.Fatalf("expected one sent mail, got %d", len(sender.sent))
	}
	if sender.sent[0].Body != wantBody {
		t.Fatalf("body mismatch:\ngot:  %q\nwant: %q", sender.sent[0].Body, wantBody)
	}
}

func TestDispatchSendFailureIsIsolatedPerRecipient(t *testing.T) {
	repo := &batchRepoFake{batch: &domain.Batch{ID: "batch-1", SenderEmail: "hr@acme.pk"}}
	storage := &storageFake{objects: map[string][]byte{
		"k7": []byte("pdf-7"),
		"k9": []byte("pdf-9"),
	}}
	splitter := &splitterFake{documents: []domain.EmployeeDocument{
		{Identifier: "7", Text: "doc-7", StorageKey: "k7"},
		{Identifier: "9", Text: "doc-9", StorageKey: "k9"},
	}}
	loader := &rosterLoaderFake{roster: domain.NewRoster([]domain.RosterRecord{
		{EmployeeID: 7, Name: "Ali Raza", Email: "a@x.com"},
		{EmployeeID: 9, Name: "Sana Tariq", Email: "s@x.com"},
	})}
	fields := &fieldsFake{salaries: map[string]int{"doc-7": 100, "doc-9": 200}}
	sender := &senderFake{failFor: map[string]error{"a@x.com": errors.New("550 mailbox unavailable")}}

	uc := newDispatchFixture(repo, storage, splitter, loader, fields, sender)
	if err := uc.DispatchByID(context.Background(), "batch-1"); err != nil {
		t.Fatalf("DispatchByID() error = %v", err)
	}

	outcomes := repo.savedReport.Outcomes
	if outcomes[0].Status != domain.OutcomeSendFailed {
		t.Fatalf("expected send_failed for employee 7, got %s", outcomes[0].Status)
	}
	if outcomes[0].Diagnostic == "" {
		t.Fatal("expected transport diagnostic to be recorded")
	}
	if outcomes[1].Status != domain.OutcomeSent {
		t.Fatalf("expected employee 9 to still be delivered, got %s", outcomes[1].Status)
	}
}

func TestDispatchSplitFailureIsBatchFatal(t *testing.T) {
	repo := &batchRepoFake{batch: &domain.Batch{ID: "batch-1"}}
	splitter := &splitterFake{err: errors.New("malformed xref table")}
	sender := &senderFake{}

	uc := newDispatchFixture(repo, &storageFake{}, splitter, &rosterLoaderFake{}, &fieldsFake{}, sender)
	err := uc.DispatchByID(context.Background(), "batch-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsKind(err, domain.ErrInputUnreadable) {
		t.Fatalf("expected ErrInputUnreadable, got %v", err)
	}
	if repo.savedReport != nil {
		t.Fatal("no report may be saved for a failed batch")
	}
	if len(sender.sent) != 0 {
		t.Fatal("no delivery may be attempted when the source is unreadable")
	}
	last := repo.statusCalls[len(repo.statusCalls)-1]
	if last.status != domain.StatusFailed || last.errMsg == "" {
		t.Fatalf("expected terminal failed status with message, got %+v", last)
	}
}

func TestDispatchRosterFailureIsBatchFatal(t *testing.T) {
	repo := &batchRepoFake{batch: &domain.Batch{ID: "batch-1"}}
	splitter := &splitterFake{documents: []domain.EmployeeDocument{{Identifier: "7", Text: "doc-7"}}}
	loader := &rosterLoaderFake{err: errors.New("header row must contain employee_id")}
	sender := &senderFake{}

	uc := newDispatchFixture(repo, &storageFake{}, splitter, loader, &fieldsFake{}, sender)
	err := uc.DispatchByID(context.Background(), "batch-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsKind(err, domain.ErrInputUnreadable) {
		t.Fatalf("expected ErrInputUnreadable, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatal("no delivery may be attempted when the roster is unreadable")
	}
}

func TestDispatchOutcomesAreReproducible(t *testing.T) {
	build := func() (*batchRepoFake, *DispatchBatchUseCase) {
		repo := &batchRepoFake{batch: &domain.Batch{ID: "batch-1", SenderEmail: "hr@acme.pk"}}
		storage := &storageFake{objects: map[string][]byte{"k7": []byte("pdf-7")}}
		splitter := &splitterFake{documents: []domain.EmployeeDocument{
			{Identifier: "7", Text: "doc-7", StorageKey: "k7"},
			{Identifier: "9", Text: "doc-9"},
		}}
		loader := &rosterLoaderFake{roster: domain.NewRoster([]domain.RosterRecord{
			{EmployeeID: 7, Name: "Ali Raza", Email: "a@x.com"},
		})}
		fields := &fieldsFake{salaries: map[string]int{"doc-7": 45000}}
		return repo, newDispatchFixture(repo, storage, splitter, loader, fields, &senderFake{})
	}

	firstRepo, firstUC := build()
	if err := firstUC.DispatchByID(context.Background(), "batch-1"); err != nil {
		t.Fatalf("first run error = %v", err)
	}
	secondRepo, secondUC := build()
	if err := secondUC.DispatchByID(context.Background(), "batch-1"); err != nil {
		t.Fatalf("second run error = %v", err)
	}

	if !reflect.DeepEqual(firstRepo.savedReport, secondRepo.savedReport) {
		t.Fatalf("reports differ between identical runs:\nfirst:  %+v\nsecond: %+v",
			firstRepo.savedReport, secondRepo.savedReport)
	}
}
