package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"ledger/internal/amqp"
	"ledger/internal/cli"
	"ledger/internal/config"
	"ledger/internal/log"
	"ledger/internal/services"
)

func main() {
	cli.LoadEnvFile()

	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("ledger", flag.ContinueOnError)
	fs.SetOutput(stderr)

	dbPath := fs.String("db", "", "Path to database file (default $LEDGER_DB_PATH)")
	backupDir := fs.String("backup-dir", "", "Directory for backups (default $LEDGER_BACKUP_DIR)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Load()
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *backupDir != "" {
		cfg.BackupDir = *backupDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := cli.SetupLogger(stderr, cfg.LogLevel, log.ComponentCLI)

	store, err := cli.OpenStore(logger, cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	// A nil interface keeps publishing off; never assign a nil *amqp.Client here.
	var publisher services.EventPublisher
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, record events disabled", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	monitor := services.NewBudgetMonitor(store, logger)
	s := newSession(stdin, stdout, store, services.NewRecordService(store, monitor, publisher, logger), monitor, cfg.BackupDir, logger)

	if isTerminal(stdin) {
		fmt.Fprintln(stdout, "Simple Accounting CLI. Type 'help' for commands.")
	}
	return s.loop(context.Background())
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
