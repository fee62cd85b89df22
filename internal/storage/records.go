package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ledger/internal/core"
	"ledger/internal/log"
)

const recordColumns = `record_id, amount, type, date, category_id, account_id, tags, note, attachments`

// RecordRepository stores income and expense records.
type RecordRepository struct {
	store *Store
}

func NewRecordRepository(s *Store) *RecordRepository {
	return &RecordRepository{store: s}
}

// Add inserts r. A zero date is replaced with today, on r as well.
func (r *RecordRepository) Add(ctx context.Context, rec *core.Record) error {
	return r.add(ctx, r.store.conn(), rec)
}

func (r *RecordRepository) add(ctx context.Context, q Querier, rec *core.Record) error {
	if rec.Date.IsZero() {
		rec.Date = r.store.Today()
	}
	tags, attachments, err := encodeLists(rec)
	if err != nil {
		return err
	}

	_, err = q.ExecContext(ctx, `INSERT INTO records (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Amount, string(rec.Type), rec.Date.String(),
		rec.CategoryID, rec.AccountID, tags, rec.Note, attachments)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	r.store.logger.DebugContext(ctx, "Record saved",
		log.NewFields().WithOperation(log.OpCreate).
			WithRecord(rec.ID, rec.Type.String(), rec.Amount, rec.Date.String()).ToSlice()...)
	return nil
}

// Update replaces every column of the record with rec's id, account
// included. It reports false when no such record exists.
func (r *RecordRepository) Update(ctx context.Context, rec *core.Record) (bool, error) {
	if rec.Date.IsZero() {
		rec.Date = r.store.Today()
	}
	tags, attachments, err := encodeLists(rec)
	if err != nil {
		return false, err
	}

	n, err := r.store.Execute(ctx, `UPDATE records
		SET amount = ?, type = ?, date = ?, category_id = ?, account_id = ?, tags = ?, note = ?, attachments = ?
		WHERE record_id = ?`,
		rec.Amount, string(rec.Type), rec.Date.String(), rec.CategoryID, rec.AccountID,
		tags, rec.Note, attachments, rec.ID)
	if err != nil {
		return false, fmt.Errorf("update record: %w", err)
	}
	return n > 0, nil
}

func (r *RecordRepository) Delete(ctx context.Context, id string) (bool, error) {
	n, err := r.store.Execute(ctx, `DELETE FROM records WHERE record_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	return n > 0, nil
}

// Get loads one record. A missing or empty stored date reads back as today.
func (r *RecordRepository) Get(ctx context.Context, id string) (*core.Record, error) {
	row := r.store.QueryRow(ctx, `SELECT `+recordColumns+` FROM records WHERE record_id = ?`, id)
	rec, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *RecordRepository) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.store.QueryRow(ctx, `SELECT 1 FROM records WHERE record_id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check record: %w", err)
	}
	return true, nil
}

// List pages through all records, newest first. A non-positive limit means no limit.
func (r *RecordRepository) List(ctx context.Context, limit, offset int) ([]core.Record, error) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	return r.query(ctx, `SELECT `+recordColumns+` FROM records
		ORDER BY date DESC, rowid ASC LIMIT ? OFFSET ?`, limit, offset)
}

// Filter returns the records of one account, optionally narrowed by category
// and by a closed or half-open date range.
func (r *RecordRepository) Filter(ctx context.Context, f core.RecordFilter) ([]core.Record, error) {
	if f.AccountID == "" {
		return nil, core.ErrAccountRequired
	}
	w := where{}
	w.add("account_id = ?", f.AccountID)
	if f.CategoryID != "" {
		w.add("category_id = ?", f.CategoryID)
	}
	w.dateRange(f.Start, f.End)

	return r.query(ctx, `SELECT `+recordColumns+` FROM records`+w.sql()+` ORDER BY date DESC, rowid ASC`, w.args...)
}

// Search matches text against notes and tags, with optional category and
// date range narrowing.
func (r *RecordRepository) Search(ctx context.Context, s core.SearchQuery) ([]core.Record, error) {
	w := where{}
	if text := strings.TrimSpace(s.Text); text != "" {
		pattern := "%" + escapeLike(text) + "%"
		w.add(`(note LIKE ? ESCAPE '\' OR tags LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if s.CategoryID != "" {
		w.add("category_id = ?", s.CategoryID)
	}
	w.dateRange(s.Start, s.End)

	return r.query(ctx, `SELECT `+recordColumns+` FROM records`+w.sql()+` ORDER BY date DESC, rowid ASC`, w.args...)
}

// Range returns every record dated within [start, end], oldest first.
// Zero bounds leave that side open.
func (r *RecordRepository) Range(ctx context.Context, start, end core.Date) ([]core.Record, error) {
	w := where{}
	w.dateRange(start, end)
	return r.query(ctx, `SELECT `+recordColumns+` FROM records`+w.sql()+` ORDER BY date ASC, rowid ASC`, w.args...)
}

// Import inserts recs in one transaction, skipping any whose id is already
// stored, and returns how many were inserted.
func (r *RecordRepository) Import(ctx context.Context, recs []core.Record) (int, error) {
	added := 0
	err := r.store.WithTx(ctx, func(q Querier) error {
		for i := range recs {
			var one int
			err := q.QueryRowContext(ctx, `SELECT 1 FROM records WHERE record_id = ?`, recs[i].ID).Scan(&one)
			if err == nil {
				continue
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("check record: %w", err)
			}
			if err := r.add(ctx, q, &recs[i]); err != nil {
				return err
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func (r *RecordRepository) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	return countRefs(ctx, r.store.conn(), "category_id", categoryID)
}

func (r *RecordRepository) CountByAccount(ctx context.Context, accountID string) (int, error) {
	return countRefs(ctx, r.store.conn(), "account_id", accountID)
}

func countRefs(ctx context.Context, q Querier, column, id string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE `+column+` = ?`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records by %s: %w", column, err)
	}
	return n, nil
}

func (r *RecordRepository) query(ctx context.Context, query string, args ...any) ([]core.Record, error) {
	rows, err := r.store.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *RecordRepository) scan(s scanner) (*core.Record, error) {
	var (
		rec                         core.Record
		typ                         string
		date, tags, attachments     sql.NullString
		categoryID, accountID, note sql.NullString
	)
	if err := s.Scan(&rec.ID, &rec.Amount, &typ, &date, &categoryID, &accountID, &tags, &note, &attachments); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan record: %w", err)
	}

	rec.Type = core.RecordType(typ)
	rec.CategoryID = nullable(categoryID)
	rec.AccountID = nullable(accountID)
	rec.Note = nullable(note)

	if !date.Valid || strings.TrimSpace(date.String) == "" {
		rec.Date = r.store.Today()
	} else {
		d, err := core.ParseDate(date.String)
		if err != nil {
			return nil, fmt.Errorf("record %s date %q: %w", rec.ID, date.String, err)
		}
		rec.Date = d
	}

	var err error
	if rec.Tags, err = decodeList(tags); err != nil {
		return nil, fmt.Errorf("record %s tags: %w", rec.ID, err)
	}
	if rec.Attachments, err = decodeList(attachments); err != nil {
		return nil, fmt.Errorf("record %s attachments: %w", rec.ID, err)
	}
	return &rec, nil
}

func encodeLists(rec *core.Record) (string, string, error) {
	tags, err := encodeList(rec.Tags)
	if err != nil {
		return "", "", fmt.Errorf("encode tags: %w", err)
	}
	attachments, err := encodeList(rec.Attachments)
	if err != nil {
		return "", "", fmt.Errorf("encode attachments: %w", err)
	}
	return tags, attachments, nil
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeList(s sql.NullString) ([]string, error) {
	if !s.Valid || strings.TrimSpace(s.String) == "" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(s.String), &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// where accumulates AND-ed predicates and their arguments.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, args ...any) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

// dateRange adds inclusive bounds; a zero Date leaves that side open.
func (w *where) dateRange(start, end core.Date) {
	if !start.IsZero() {
		w.add("date >= ?", start.String())
	}
	if !end.IsZero() {
		w.add("date <= ?", end.String())
	}
}

func (w *where) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}
