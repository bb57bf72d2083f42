package roster

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/payslip-dispatcher/internal/core/domain"
)

func parseXLSX(r io.Reader) ([]domain.RosterRecord, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, errors.New("empty sheet: no header row found")
	}

	idCol, nameCol, emailCol, err := columnIndexes(rows[0])
	if err != nil {
		return nil, err
	}

	var records []domain.RosterRecord
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		record, err := buildRecord(row, idCol, nameCol, emailCol)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, record)
	}

	return records, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
