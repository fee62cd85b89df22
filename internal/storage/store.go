// Package storage is the persistence and aggregation layer: one SQLite
// connection, the schema, the entity repositories and the statistics queries.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ledger/internal/core"
	"ledger/internal/log"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const sqliteMagic = "SQLite format 3\x00"

var (
	ErrMemoryBackup  = errors.New("backup and restore need a file-backed database")
	ErrInvalidBackup = errors.New("not a ledger database file")
	ErrRestoreActive = errors.New("restore source is the active database")
)

// Querier is the statement surface shared by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store owns the single connection to the database file.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	now    func() time.Time
	logger *log.Logger
}

type Option func(*Store)

// WithClock overrides the clock used to default record dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l.WithComponent(log.ComponentStorage) }
}

// Open creates the parent directory if needed, opens path with a single
// connection and migrates the schema.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:   path,
		now:    time.Now,
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := s.open(context.Background())
	if err != nil {
		return nil, err
	}
	s.db = db

	s.logger.Info("Database opened", log.FieldPath, path)
	return s, nil
}

func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	return openDatabase(ctx, s.path, s.logger)
}

// openDatabase opens path with a single connection and migrates it.
func openDatabase(ctx context.Context, path string, logger *log.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := RunMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (s *Store) conn() *sql.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Today is the calendar day used to default missing record dates.
func (s *Store) Today() core.Date {
	return core.DateOf(s.now())
}

func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.conn().QueryContext(ctx, query, args...)
}

func (s *Store) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.conn().QueryRowContext(ctx, query, args...)
}

// Execute runs a statement and returns the number of affected rows.
func (s *Store) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	return execute(ctx, s.conn(), query, args...)
}

func execute(ctx context.Context, q Querier, query string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// WithTx runs fn inside a transaction, committing when fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := s.conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Backup copies the database file byte for byte to dest.
func (s *Store) Backup(ctx context.Context, dest string) error {
	if s.path == MemoryPath {
		return ErrMemoryBackup
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Flush any WAL content into the main file before copying it.
	if _, err := s.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return fmt.Errorf("checkpoint database: %w", err)
	}
	if err := copyFile(s.path, dest); err != nil {
		return fmt.Errorf("backup database: %w", err)
	}

	s.logger.InfoContext(ctx, "Database backed up", log.FieldOperation, log.OpBackup, log.FieldPath, dest)
	return nil
}

// Restore replaces the active database file with a copy of src, then reopens
// the connection and re-applies migrations.
//
// src is copied and opened next to the active file first; the active file is
// only swapped out once the copy proves to be a usable database. On any
// failure the previous file is put back and the store stays open.
func (s *Store) Restore(ctx context.Context, src string) error {
	if s.path == MemoryPath {
		return ErrMemoryBackup
	}
	if err := s.checkRestoreSource(src); err != nil {
		return err
	}

	staged, err := s.stage(ctx, src)
	if err != nil {
		return err
	}
	defer os.Remove(staged)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	if err := s.swapIn(ctx, staged); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Database restored", log.FieldOperation, log.OpRestore, log.FieldPath, src)
	return nil
}

// checkRestoreSource rejects anything but a regular SQLite file other than
// the active database.
func (s *Store) checkRestoreSource(src string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("restore source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("restore source %s: %w", src, ErrInvalidBackup)
	}
	if active, err := os.Stat(s.path); err == nil && os.SameFile(info, active) {
		return fmt.Errorf("restore source %s: %w", src, ErrRestoreActive)
	}

	ok, err := hasSQLiteHeader(src)
	if err != nil {
		return fmt.Errorf("restore source: %w", err)
	}
	if !ok {
		return fmt.Errorf("restore source %s: %w", src, ErrInvalidBackup)
	}
	return nil
}

// stage copies src into a temp file beside the active database and checks
// that it opens and migrates.
func (s *Store) stage(ctx context.Context, src string) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".restore-*")
	if err != nil {
		return "", fmt.Errorf("create restore file: %w", err)
	}
	staged := tmp.Name()
	tmp.Close()

	if err := copyFile(src, staged); err != nil {
		os.Remove(staged)
		return "", fmt.Errorf("copy restore source: %w", err)
	}

	db, err := openDatabase(ctx, staged, s.logger)
	if err != nil {
		os.Remove(staged)
		return "", fmt.Errorf("restore source %s: %w: %v", src, ErrInvalidBackup, err)
	}
	if err := db.Close(); err != nil {
		os.Remove(staged)
		return "", fmt.Errorf("close restore file: %w", err)
	}
	return staged, nil
}

// swapIn moves staged over the active file and reopens it. The caller holds
// s.mu with s.db closed; s.db is always reopened before returning.
func (s *Store) swapIn(ctx context.Context, staged string) error {
	previous := s.path + ".pre-restore"
	if err := os.Rename(s.path, previous); err != nil {
		return s.reopen(ctx, fmt.Errorf("set aside database: %w", err))
	}

	if err := os.Rename(staged, s.path); err != nil {
		return s.rollback(ctx, previous, fmt.Errorf("restore database: %w", err))
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(s.path + suffix)
	}

	db, err := s.open(ctx)
	if err != nil {
		return s.rollback(ctx, previous, err)
	}
	s.db = db
	_ = os.Remove(previous)
	return nil
}

// rollback puts the set-aside file back and reopens it, returning cause.
func (s *Store) rollback(ctx context.Context, previous string, cause error) error {
	_ = os.Remove(s.path)
	if err := os.Rename(previous, s.path); err != nil {
		return errors.Join(cause, fmt.Errorf("put back database: %w", err))
	}
	return s.reopen(ctx, cause)
}

func (s *Store) reopen(ctx context.Context, cause error) error {
	db, err := s.open(ctx)
	if err != nil {
		return errors.Join(cause, fmt.Errorf("reopen database: %w", err))
	}
	s.db = db
	return cause
}

// hasSQLiteHeader reports whether path starts with the SQLite file magic.
func hasSQLiteHeader(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	header := make([]byte, len(sqliteMagic))
	if _, err := io.ReadFull(f, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, err
	}
	return string(header) == sqliteMagic, nil
}

// Close releases the connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func copyFile(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
