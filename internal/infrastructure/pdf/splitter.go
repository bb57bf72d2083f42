package pdf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/kirillkom/payslip-dispatcher/internal/core/domain"
	"github.com/kirillkom/payslip-dispatcher/internal/core/ports"
)

// Splitter walks the consolidated payslip PDF page by page, attributes each
// page to the employee identifier found in its text, and assembles one PDF per
// identifier in object storage. Splitting is a single sequential pass, so page
// order within each assembled document matches the source.
type Splitter struct {
	storage ports.ObjectStorage
	fields  ports.FieldExtractor
}

func NewSplitter(storage ports.ObjectStorage, fields ports.FieldExtractor) *Splitter {
	return &Splitter{storage: storage, fields: fields}
}

func (s *Splitter) Split(ctx context.Context, batch *domain.Batch) ([]domain.EmployeeDocument, error) {
	tempDir, err := os.MkdirTemp("", "payslip-split-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	sourcePath := filepath.Join(tempDir, "source.pdf")
	if err := s.stageSource(ctx, batch.PayslipKey, sourcePath); err != nil {
		return nil, err
	}

	documents, err := s.groupPages(batch, sourcePath)
	if err != nil {
		return nil, err
	}

	if err := s.assembleDocuments(ctx, batch, sourcePath, tempDir, documents); err != nil {
		return nil, err
	}

	result := make([]domain.EmployeeDocument, len(documents))
	for i, document := range documents {
		result[i] = *document
	}
	return result, nil
}

// groupPages reads per-page text and buckets page numbers by identifier,
// preserving first-occurrence order across documents and source order within
// each document. Pages without an identifier are dropped with an info log.
func (s *Splitter) groupPages(batch *domain.Batch, sourcePath string) ([]*domain.EmployeeDocument, error) {
	file, reader, err := pdf.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("open source pdf: %w", err)
	}
	defer file.Close()

	var ordered []*domain.EmployeeDocument
	index := make(map[string]*domain.EmployeeDocument)

	pageCount := reader.NumPage()
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			slog.Info("page skipped: text extraction failed",
				"batch_id", batch.ID, "page", pageNum, "error", err)
			continue
		}

		identifier, found := s.fields.Identifier(text)
		if !found {
			slog.Info("page skipped: no identifier in page text",
				"batch_id", batch.ID, "page", pageNum)
			continue
		}

		document, seen := index[identifier]
		if !seen {
			document = &domain.EmployeeDocument{Identifier: identifier}
			index[identifier] = document
			ordered = append(ordered, document)
		}
		document.Pages = append(document.Pages, pageNum)
		document.Text += text + "\n"
	}

	return ordered, nil
}

// assembleDocuments collects each identifier's pages from the source into a
// standalone PDF and persists it under the batch's storage prefix. Identifier
// uniqueness within the run makes the <identifier>.pdf names collision-free.
func (s *Splitter) assembleDocuments(
	ctx context.Context,
	batch *domain.Batch,
	sourcePath, tempDir string,
	documents []*domain.EmployeeDocument,
) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	for _, document := range documents {
		selected := make([]string, len(document.Pages))
		for i, pageNum := range document.Pages {
			selected[i] = strconv.Itoa(pageNum)
		}

		outPath := filepath.Join(tempDir, document.AttachmentName())
		if err := api.CollectFile(sourcePath, outPath, selected, conf); err != nil {
			return fmt.Errorf("assemble document for employee %s: %w", document.Identifier, err)
		}

		key := fmt.Sprintf("batches/%s/employees/%s", batch.ID, document.AttachmentName())
		if err := s.persist(ctx, key, outPath); err != nil {
			return fmt.Errorf("persist document for employee %s: %w", document.Identifier, err)
		}
		document.StorageKey = key
	}
	return nil
}

func (s *Splitter) stageSource(ctx context.Context, key, destPath string) error {
	reader, err := s.storage.Open(ctx, key)
	if err != nil {
		return fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, reader); err != nil {
		return fmt.Errorf("stage source document: %w", err)
	}
	return nil
}

func (s *Splitter) persist(ctx context.Context, key, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open assembled pdf: %w", err)
	}
	defer file.Close()

	if err := s.storage.Save(ctx, key, file); err != nil {
		return fmt.Errorf("save assembled pdf: %w", err)
	}
	return nil
}
