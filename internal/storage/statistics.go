package storage

import (
	"context"
	"fmt"

	"ledger/internal/core"
)

// Statistics runs the aggregate queries. Every call is a single grouped sum
// over the stored rows.
type Statistics struct {
	store *Store
}

func NewStatistics(s *Store) *Statistics {
	return &Statistics{store: s}
}

// Summary totals income and expense dated within [start, end]. An empty
// accountID covers all accounts.
func (st *Statistics) Summary(ctx context.Context, start, end core.Date, accountID string) (core.Summary, error) {
	w := where{}
	w.dateRange(start, end)
	if accountID != "" {
		w.add("account_id = ?", accountID)
	}
	return st.summary(ctx, w)
}

// AccountSummary totals every record of one account regardless of date.
func (st *Statistics) AccountSummary(ctx context.Context, accountID string) (core.Summary, error) {
	w := where{}
	w.add("account_id = ?", accountID)
	return st.summary(ctx, w)
}

func (st *Statistics) summary(ctx context.Context, w where) (core.Summary, error) {
	rows, err := st.store.Query(ctx, `SELECT type, COALESCE(SUM(amount), 0) FROM records`+w.sql()+` GROUP BY type`, w.args...)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summarize records: %w", err)
	}
	defer rows.Close()

	var income, expense float64
	for rows.Next() {
		var (
			typ   string
			total float64
		)
		if err := rows.Scan(&typ, &total); err != nil {
			return core.Summary{}, fmt.Errorf("scan summary: %w", err)
		}
		switch core.RecordType(typ) {
		case core.Income:
			income = total
		case core.Expense:
			expense = total
		}
	}
	if err := rows.Err(); err != nil {
		return core.Summary{}, err
	}
	return core.NewSummary(income, expense), nil
}

// ByCategory totals amounts per category within [start, end]. Records
// without a category land under core.UncategorizedKey.
func (st *Statistics) ByCategory(ctx context.Context, start, end core.Date, accountID string) (core.CategoryTotals, error) {
	w := where{}
	w.dateRange(start, end)
	if accountID != "" {
		w.add("account_id = ?", accountID)
	}

	query := `SELECT COALESCE(NULLIF(category_id, ''), ?) AS bucket, SUM(amount) FROM records` + w.sql() + ` GROUP BY bucket`
	rows, err := st.store.Query(ctx, query, append([]any{core.UncategorizedKey}, w.args...)...)
	if err != nil {
		return nil, fmt.Errorf("group records by category: %w", err)
	}
	defer rows.Close()

	totals := core.CategoryTotals{}
	for rows.Next() {
		var (
			key   string
			total float64
		)
		if err := rows.Scan(&key, &total); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals[key] = total
	}
	return totals, rows.Err()
}

// CategorySpend sums expenses within [start, end] for one category, or for
// all categories when categoryID is empty.
func (st *Statistics) CategorySpend(ctx context.Context, categoryID string, start, end core.Date) (float64, error) {
	w := where{}
	w.add("type = ?", string(core.Expense))
	if categoryID != "" {
		w.add("category_id = ?", categoryID)
	}
	w.dateRange(start, end)

	var total float64
	err := st.store.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM records`+w.sql(), w.args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum category spend: %w", err)
	}
	return total, nil
}
