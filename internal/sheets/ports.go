package sheets

import (
	"context"

	"ledger/internal/core"
)

// Ports for outbound adapters.
type (
	// RecordMirror keeps an external copy of the records table, one row
	// per record keyed by record id.
	RecordMirror interface {
		// Upsert writes rec, replacing the row with the same id if present.
		Upsert(ctx context.Context, rec core.Record) error
		// Remove deletes the row for id. Missing rows are not an error.
		Remove(ctx context.Context, id string) error
	}
)

// Header is the column layout shared by every mirror.
var Header = []string{"record_id", "date", "type", "amount", "category_id", "account_id", "tags", "note", "attachments"}
