package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"ledger/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations brings db to the latest embedded schema version and then
// applies the legacy records.account_id column migration.
//
// The migrate instance runs on db itself: the store holds a single
// connection, and in-memory databases are private to it.
func RunMigrations(ctx context.Context, db *sql.DB, logger *log.Logger) error {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	// m.Close would close db as well, so only the source is released.
	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		_ = d.Close()
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer d.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return addAccountColumn(ctx, db, logger)
}

// addAccountColumn adds records.account_id to files created before accounts
// existed. A failing ALTER is logged and tolerated.
func addAccountColumn(ctx context.Context, db *sql.DB, logger *log.Logger) error {
	ok, err := hasColumn(ctx, db, "records", "account_id")
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	if _, err := db.ExecContext(ctx, `ALTER TABLE records ADD COLUMN account_id TEXT`); err != nil {
		logger.WarnContext(ctx, "Legacy account_id migration failed",
			log.FieldOperation, log.OpMigrate,
			log.FieldError, err)
		return nil
	}
	logger.InfoContext(ctx, "Added account_id column to records", log.FieldOperation, log.OpMigrate)
	return nil
}

func hasColumn(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return false, fmt.Errorf("inspect table %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, fmt.Errorf("scan column name: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
