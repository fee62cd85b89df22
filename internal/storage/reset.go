package storage

import (
	"context"
	"fmt"

	"ledger/internal/log"
)

var resetTables = []string{"records", "categories", "accounts", "budgets", "notifications"}

// Reset deletes every row of every table in one transaction. The schema
// stays in place.
func (s *Store) Reset(ctx context.Context) error {
	err := s.WithTx(ctx, func(q Querier) error {
		for _, table := range resetTables {
			if _, err := q.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.WarnContext(ctx, "All data deleted", log.FieldOperation, log.OpDelete)
	return nil
}
