package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledger/internal/core"
)

type AccountRepository struct {
	store *Store
}

func NewAccountRepository(s *Store) *AccountRepository {
	return &AccountRepository{store: s}
}

// Add inserts a. An empty currency defaults to CNY, on a as well.
// The balance is stored as given and never recomputed.
func (r *AccountRepository) Add(ctx context.Context, a *core.Account) error {
	if a.Currency == "" {
		a.Currency = core.DefaultCurrency
	}
	_, err := r.store.Execute(ctx, `INSERT INTO accounts (account_id, name, type, balance, currency) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Type, a.Balance, a.Currency)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *AccountRepository) List(ctx context.Context) ([]core.Account, error) {
	rows, err := r.store.Query(ctx, `SELECT account_id, name, type, balance, currency FROM accounts ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *AccountRepository) Get(ctx context.Context, id string) (*core.Account, error) {
	row := r.store.QueryRow(ctx, `SELECT account_id, name, type, balance, currency FROM accounts WHERE account_id = ?`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	return a, err
}

// Delete removes an account. Records still referencing it make the call
// refuse (false) unless force is set, in which case they are deleted too.
func (r *AccountRepository) Delete(ctx context.Context, id string, force bool) (bool, error) {
	var deleted bool
	err := r.store.WithTx(ctx, func(q Querier) error {
		refs, err := countRefs(ctx, q, "account_id", id)
		if err != nil {
			return err
		}
		if refs > 0 {
			if !force {
				return nil
			}
			if _, err := q.ExecContext(ctx, `DELETE FROM records WHERE account_id = ?`, id); err != nil {
				return fmt.Errorf("delete account records: %w", err)
			}
		}

		n, err := execute(ctx, q, `DELETE FROM accounts WHERE account_id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		if n == 0 {
			// unknown account: undo any cascade
			return errNoRow
		}
		deleted = true
		return nil
	})
	if errors.Is(err, errNoRow) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return deleted, nil
}

var errNoRow = errors.New("no row matched")

func scanAccount(s scanner) (*core.Account, error) {
	var (
		a        core.Account
		typ      sql.NullString
		balance  sql.NullFloat64
		currency sql.NullString
	)
	if err := s.Scan(&a.ID, &a.Name, &typ, &balance, &currency); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	a.Type = nullable(typ)
	a.Balance = balance.Float64
	a.Currency = currency.String
	if a.Currency == "" {
		a.Currency = core.DefaultCurrency
	}
	return &a, nil
}
