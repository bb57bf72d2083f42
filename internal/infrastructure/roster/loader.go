// Package roster reads employee contact rosters from tabular files. CSV is
// the primary format; XLSX workbooks are accepted as well, using the first
// sheet. Both expect a header row with employee_id, Name, and email columns
// (header matching is case-insensitive).
package roster

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kirillkom/payslip-dispatcher/internal/core/domain"
	"github.com/kirillkom/payslip-dispatcher/internal/core/ports"
)

const (
	columnEmployeeID = "employee_id"
	columnName       = "name"
	columnEmail      = "email"
)

type Loader struct {
	storage ports.ObjectStorage
}

func NewLoader(storage ports.ObjectStorage) *Loader {
	return &Loader{storage: storage}
}

func (l *Loader) Load(ctx context.Context, key string) (*domain.Roster, error) {
	reader, err := l.storage.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer reader.Close()

	var records []domain.RosterRecord
	switch strings.ToLower(filepath.Ext(key)) {
	case ".xlsx", ".xlsm":
		records, err = parseXLSX(reader)
	default:
		records, err = parseCSV(reader)
	}
	if err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", filepath.Base(key), err)
	}

	return domain.NewRoster(records), nil
}

// columnIndexes maps the required roster columns to their positions in the
// header row.
func columnIndexes(header []string) (id, name, email int, err error) {
	id, name, email = -1, -1, -1
	for i, cell := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))) {
		case columnEmployeeID:
			id = i
		case columnName:
			name = i
		case columnEmail:
			email = i
		}
	}
	if id < 0 || name < 0 || email < 0 {
		return 0, 0, 0, fmt.Errorf("header row must contain %s, %s and %s columns",
			columnEmployeeID, columnName, columnEmail)
	}
	return id, name, email, nil
}

func cellAt(row []string, index int) string {
	if index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}
