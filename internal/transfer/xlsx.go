package transfer

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ledger/internal/core"
)

// SheetName is the worksheet ExportXLSX writes to.
const SheetName = "Records"

// ExportXLSX writes the same columns as ExportCSV into a single worksheet.
// Amounts are stored as numbers.
func ExportXLSX(ctx context.Context, src RecordSource, w io.Writer, start, end core.Date) (int, error) {
	records, err := src.Range(ctx, start, end)
	if err != nil {
		return 0, fmt.Errorf("load records: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return 0, fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	for i, rec := range records {
		row, err := fields(rec)
		if err != nil {
			return 0, fmt.Errorf("record %s: %w", rec.ID, err)
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		values[1] = rec.Amount

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return 0, fmt.Errorf("write record %s: %w", rec.ID, err)
		}
	}

	f.SetColWidth(SheetName, "A", "A", 38)
	f.SetColWidth(SheetName, "G", "G", 30)

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("write xlsx: %w", err)
	}
	return len(records), nil
}
