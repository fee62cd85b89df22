package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledger/internal/core"
)

type BudgetRepository struct {
	store *Store
}

func NewBudgetRepository(s *Store) *BudgetRepository {
	return &BudgetRepository{store: s}
}

// Set inserts b or replaces the budget with the same id.
func (r *BudgetRepository) Set(ctx context.Context, b *core.Budget) error {
	_, err := r.store.Execute(ctx, `INSERT OR REPLACE INTO budgets (budget_id, category_id, limit_value, period) VALUES (?, ?, ?, ?)`,
		b.ID, b.CategoryID, b.Limit, b.Period)
	if err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	return nil
}

func (r *BudgetRepository) List(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.store.Query(ctx, `SELECT budget_id, category_id, limit_value, period FROM budgets ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			b          core.Budget
			categoryID sql.NullString
		)
		if err := rows.Scan(&b.ID, &categoryID, &b.Limit, &b.Period); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.CategoryID = nullable(categoryID)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BudgetRepository) Get(ctx context.Context, id string) (*core.Budget, error) {
	var (
		b          core.Budget
		categoryID sql.NullString
	)
	err := r.store.QueryRow(ctx, `SELECT budget_id, category_id, limit_value, period FROM budgets WHERE budget_id = ?`, id).
		Scan(&b.ID, &categoryID, &b.Limit, &b.Period)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load budget: %w", err)
	}
	b.CategoryID = nullable(categoryID)
	return &b, nil
}

func (r *BudgetRepository) Delete(ctx context.Context, id string) (bool, error) {
	n, err := r.store.Execute(ctx, `DELETE FROM budgets WHERE budget_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete budget: %w", err)
	}
	return n > 0, nil
}
