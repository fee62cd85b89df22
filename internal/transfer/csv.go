package transfer

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"ledger/internal/core"
)

const bom = "\ufeff"

// ExportCSV writes the records dated within [start, end] as UTF-8 CSV.
// Zero bounds leave that side open.
func ExportCSV(ctx context.Context, src RecordSource, w io.Writer, start, end core.Date) (int, error) {
	records, err := src.Range(ctx, start, end)
	if err != nil {
		return 0, fmt.Errorf("load records: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		row, err := fields(rec)
		if err != nil {
			return 0, fmt.Errorf("record %s: %w", rec.ID, err)
		}
		if err := cw.Write(row); err != nil {
			return 0, fmt.Errorf("write record %s: %w", rec.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}
	return len(records), nil
}

// ImportCSV reads records written by ExportCSV and returns how many were
// inserted. Rows whose record_id is already stored are skipped. Nothing is
// written when any row fails to parse; the error names the line.
func ImportCSV(ctx context.Context, dst RecordSink, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return 0, err
	}

	var recs []core.Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)

		rec, err := parseRow(cols, row)
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", line, err)
		}
		recs = append(recs, rec)
	}

	if len(recs) == 0 {
		return 0, nil
	}
	return dst.Import(ctx, recs)
}

type columns map[string]int

func columnIndex(header []string) (columns, error) {
	cols := columns{}
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, bom)
		}
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"record_id", "amount", "type"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}
	return cols, nil
}

func (c columns) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseRow(cols columns, row []string) (core.Record, error) {
	var rec core.Record

	rec.ID = cols.get(row, "record_id")
	if rec.ID == "" {
		rec.ID = core.NewID()
	}

	amount := cols.get(row, "amount")
	a, err := core.ParseAmount(amount)
	if err != nil {
		return rec, fmt.Errorf("amount %q: %w", amount, err)
	}
	rec.Amount = a

	t, err := core.ParseRecordType(cols.get(row, "type"))
	if err != nil {
		return rec, err
	}
	rec.Type = t

	if s := cols.get(row, "date"); s != "" {
		d, err := core.ParseDate(s)
		if err != nil {
			return rec, fmt.Errorf("date %q: %w", s, err)
		}
		rec.Date = d
	}

	rec.CategoryID = core.Optional(cols.get(row, "category_id"))
	rec.Note = core.Optional(cols.get(row, "note"))

	if rec.Tags, err = parseList(cols.get(row, "tags")); err != nil {
		return rec, fmt.Errorf("tags: %w", err)
	}
	if rec.Attachments, err = parseList(cols.get(row, "attachments")); err != nil {
		return rec, fmt.Errorf("attachments: %w", err)
	}
	return rec, nil
}

func parseList(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}
