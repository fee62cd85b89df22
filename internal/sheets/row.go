package sheets

import (
	"strings"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

// Row renders rec in Header order. Lists are joined with "; ".
func Row(rec core.Record) []string {
	return []string{
		rec.ID,
		rec.Date.String(),
		rec.Type.String(),
		decimal.NewFromFloat(rec.Amount).StringFixed(2),
		core.Value(rec.CategoryID),
		core.Value(rec.AccountID),
		strings.Join(rec.Tags, "; "),
		core.Value(rec.Note),
		strings.Join(rec.Attachments, "; "),
	}
}
