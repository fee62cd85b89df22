package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/transfer"
)

const backupTimeLayout = "20060102150405"

func (s *session) exportCSV(ctx context.Context) error {
	return s.export(ctx, "records.csv", transfer.ExportCSV)
}

func (s *session) exportXLSX(ctx context.Context) error {
	return s.export(ctx, "records.xlsx", transfer.ExportXLSX)
}

type exporter func(ctx context.Context, src transfer.RecordSource, w io.Writer, start, end core.Date) (int, error)

func (s *session) export(ctx context.Context, defaultPath string, fn exporter) error {
	path, err := s.ask("file path (default " + defaultPath + "): ")
	if err != nil {
		return err
	}
	if path == "" {
		path = defaultPath
	}
	start, end, err := s.askRange()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	n, err := fn(ctx, s.records, f, start, end)
	if err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	s.logger.InfoContext(ctx, "Exported records", log.FieldOperation, log.OpExport, log.FieldPath, path, log.FieldCount, n)
	s.printf("exported %d records to %s\n", n, path)
	return nil
}

func (s *session) importCSV(ctx context.Context) error {
	path, err := s.ask("csv file path: ")
	if err != nil {
		return err
	}
	if path == "" {
		return errCancelled
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	n, err := transfer.ImportCSV(ctx, s.records, f)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Imported records", log.FieldOperation, log.OpImport, log.FieldPath, path, log.FieldCount, n)
	s.printf("imported %d records\n", n)
	return nil
}

// backupPath names a timestamped copy of the database in the backup directory.
func (s *session) backupPath() string {
	base := filepath.Base(s.store.Path())
	return filepath.Join(s.backupDir, base+".backup."+s.now().Format(backupTimeLayout))
}

func (s *session) backup(ctx context.Context) error {
	path, err := s.ask("backup path (optional): ")
	if err != nil {
		return err
	}
	if path == "" {
		path = s.backupPath()
	}
	if err := s.store.Backup(ctx, path); err != nil {
		return err
	}
	s.println("backup saved to", path)
	return nil
}

func (s *session) restore(ctx context.Context) error {
	path, err := s.ask("backup file to restore: ")
	if err != nil {
		return err
	}
	if path == "" {
		return errCancelled
	}
	ok, err := s.confirm("Type YES to replace the current database with " + path + ": ")
	if err != nil {
		return err
	}
	if !ok {
		s.println("aborted")
		return nil
	}
	if err := s.store.Restore(ctx, path); err != nil {
		return err
	}
	s.println("database restored from", path)
	return nil
}

func (s *session) reset(ctx context.Context) error {
	s.println("WARNING: this will delete ALL user data (records, accounts, categories, budgets, notifications)")
	ok, err := s.confirm("Type YES to proceed and create a backup: ")
	if err != nil {
		return err
	}
	if !ok {
		s.println("aborted")
		return nil
	}

	path := s.backupPath()
	if err := s.store.Backup(ctx, path); err != nil {
		s.println("backup failed:", err)
		more, err := s.confirm("Backup failed. Type YES to continue without backup: ")
		if err != nil {
			return err
		}
		if !more {
			s.println("aborted")
			return nil
		}
	} else {
		s.println("backup saved to", path)
	}

	if err := s.store.Reset(ctx); err != nil {
		return err
	}
	s.println("database reset complete")
	return nil
}
