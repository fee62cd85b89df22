package google

import (
	"fmt"
	"strings"

	ports "ledger/internal/sheets"

	gsheet "google.golang.org/api/sheets/v4"
)

// firstColumn flattens a column read, keeping blank cells so indexes stay
// aligned with sheet rows.
func firstColumn(values [][]any) []string {
	out := make([]string, len(values))
	for i, row := range values {
		if len(row) > 0 {
			out[i] = strings.TrimSpace(fmt.Sprint(row[0]))
		}
	}
	return out
}

// findRow returns the 1-based sheet row holding id, or 0. The header row
// never matches.
func findRow(ids []string, id string) int {
	for i, v := range ids {
		if i == 0 && v == ports.Header[0] {
			continue
		}
		if v == id {
			return i + 1
		}
	}
	return 0
}

func sheetIDByTitle(sheets []*gsheet.Sheet, title string) (int64, error) {
	for _, s := range sheets {
		if s != nil && s.Properties != nil && s.Properties.Title == title {
			return s.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found", title)
}

// deleteRowRequest removes the 1-based row.
func deleteRowRequest(sheetID int64, row int) *gsheet.Request {
	return &gsheet.Request{
		DeleteDimension: &gsheet.DeleteDimensionRequest{
			Range: &gsheet.DimensionRange{
				SheetId:    sheetID,
				Dimension:  "ROWS",
				StartIndex: int64(row - 1),
				EndIndex:   int64(row),
			},
		},
	}
}

// lastColumn is the letter of the final Header column.
func lastColumn() string {
	return string(rune('A' + len(ports.Header) - 1))
}

func toInterfaces(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
