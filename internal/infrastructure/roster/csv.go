package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/kirillkom/payslip-dispatcher/internal/core/domain"
)

func parseCSV(r io.Reader) ([]domain.RosterRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file: no header row found")
		}
		return nil, fmt.Errorf("read header row: %w", err)
	}

	idCol, nameCol, emailCol, err := columnIndexes(header)
	if err != nil {
		return nil, err
	}

	var records []domain.RosterRecord
	rowNum := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		record, err := buildRecord(row, idCol, nameCol, emailCol)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
		records = append(records, record)
	}

	return records, nil
}

func buildRecord(row []string, idCol, nameCol, emailCol int) (domain.RosterRecord, error) {
	rawID := cellAt(row, idCol)
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return domain.RosterRecord{}, fmt.Errorf("employee_id %q is not an integer", rawID)
	}
	return domain.RosterRecord{
		EmployeeID: id,
		Name:       cellAt(row, nameCol),
		Email:      cellAt(row, emailCol),
	}, nil
}
