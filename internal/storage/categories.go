package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledger/internal/core"
)

type CategoryRepository struct {
	store *Store
}

func NewCategoryRepository(s *Store) *CategoryRepository {
	return &CategoryRepository{store: s}
}

// Add inserts c. Names are not unique.
func (r *CategoryRepository) Add(ctx context.Context, c *core.Category) error {
	_, err := r.store.Execute(ctx, `INSERT INTO categories (category_id, name, icon, color) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.Icon, c.Color)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]core.Category, error) {
	rows, err := r.store.Query(ctx, `SELECT category_id, name, icon, color FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *CategoryRepository) Get(ctx context.Context, id string) (*core.Category, error) {
	row := r.store.QueryRow(ctx, `SELECT category_id, name, icon, color FROM categories WHERE category_id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", id, core.ErrNotFound)
	}
	return c, err
}

// EnsureDefault returns the reserved "Other" category, creating it on first use.
func (r *CategoryRepository) EnsureDefault(ctx context.Context) (*core.Category, error) {
	row := r.store.QueryRow(ctx, `SELECT category_id, name, icon, color FROM categories
		WHERE name = ? ORDER BY rowid LIMIT 1`, core.OtherCategoryName)
	c, err := scanCategory(row)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	c = core.NewCategory(core.OtherCategoryName)
	if err := r.Add(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a category. It refuses (false) for the reserved "Other"
// category, for unknown ids, and for categories still referenced by records
// unless force is set, in which case those references are cleared first.
// A forced delete of an unknown id still clears the dangling references.
func (r *CategoryRepository) Delete(ctx context.Context, id string, force bool) (bool, error) {
	var deleted bool
	err := r.store.WithTx(ctx, func(q Querier) error {
		var name string
		err := q.QueryRowContext(ctx, `SELECT name FROM categories WHERE category_id = ?`, id).Scan(&name)
		known := !errors.Is(err, sql.ErrNoRows)
		if known && err != nil {
			return fmt.Errorf("load category: %w", err)
		}
		if known && name == core.OtherCategoryName {
			return nil
		}

		refs, err := countRefs(ctx, q, "category_id", id)
		if err != nil {
			return err
		}
		if refs > 0 {
			if !force {
				return nil
			}
			if _, err := q.ExecContext(ctx, `UPDATE records SET category_id = NULL WHERE category_id = ?`, id); err != nil {
				return fmt.Errorf("detach records: %w", err)
			}
		}
		if !known {
			return nil
		}

		n, err := execute(ctx, q, `DELETE FROM categories WHERE category_id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func scanCategory(s scanner) (*core.Category, error) {
	var (
		c           core.Category
		icon, color sql.NullString
	)
	if err := s.Scan(&c.ID, &c.Name, &icon, &color); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}
	c.Icon = nullable(icon)
	c.Color = nullable(color)
	return &c, nil
}
