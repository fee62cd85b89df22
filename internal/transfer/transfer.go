// Package transfer moves records in and out of the store as CSV and XLSX.
//
// The CSV layout is fixed: record_id, amount, type, date, category_id, tags,
// note, attachments. Tags and attachments carry their JSON array text.
// Accounts are not part of the file, so an import never sets account_id.
package transfer

import (
	"context"
	"encoding/json"
	"strconv"

	"ledger/internal/core"
)

// Columns is the header row shared by every export.
var Columns = []string{"record_id", "amount", "type", "date", "category_id", "tags", "note", "attachments"}

// RecordSource yields the records to export.
type RecordSource interface {
	Range(ctx context.Context, start, end core.Date) ([]core.Record, error)
}

// RecordSink stores imported records, skipping ids it already has.
type RecordSink interface {
	Import(ctx context.Context, recs []core.Record) (int, error)
}

// fields renders rec in Columns order.
func fields(rec core.Record) ([]string, error) {
	tags, err := listText(rec.Tags)
	if err != nil {
		return nil, err
	}
	attachments, err := listText(rec.Attachments)
	if err != nil {
		return nil, err
	}
	return []string{
		rec.ID,
		strconv.FormatFloat(rec.Amount, 'f', -1, 64),
		rec.Type.String(),
		rec.Date.String(),
		core.Value(rec.CategoryID),
		tags,
		core.Value(rec.Note),
		attachments,
	}, nil
}

func listText(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
