package worker

import (
	"context"
	"errors"
	"fmt"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/sheets"
	"ledger/internal/storage"
)

// SyncWorker mirrors record changes announced over AMQP into a RecordMirror
// and re-runs the budget monitor after each change.
type SyncWorker struct {
	records *storage.RecordRepository
	store   *storage.Store
	mirror  sheets.RecordMirror
	monitor *services.BudgetMonitor
	logger  *log.Logger
}

func NewSyncWorker(store *storage.Store, mirror sheets.RecordMirror, monitor *services.BudgetMonitor, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &SyncWorker{
		records: storage.NewRecordRepository(store),
		store:   store,
		mirror:  mirror,
		monitor: monitor,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// HandleRecordEvent processes a single record event. It satisfies
// amqp.RecordEventHandler; a returned error requeues the message.
func (w *SyncWorker) HandleRecordEvent(ctx context.Context, ev *amqp.RecordEvent) error {
	w.logger.InfoContext(ctx, "Processing record event",
		log.FieldRecordID, ev.ID,
		log.FieldAction, string(ev.Action))

	switch ev.Action {
	case amqp.ActionCreated, amqp.ActionUpdated:
		if err := w.syncRecord(ctx, ev.ID); err != nil {
			return err
		}
	case amqp.ActionDeleted:
		if err := w.remove(ctx, ev.ID); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown action %q", amqp.ErrInvalidEvent, ev.Action)
	}

	if w.monitor != nil {
		alerts, err := w.monitor.Check(ctx, w.store.Today())
		if err != nil {
			// The mirror is already in sync; a failed check is retried by the sweeper.
			w.logger.ErrorContext(ctx, "Budget check failed", log.FieldError, err)
			return nil
		}
		if len(alerts) > 0 {
			w.logger.InfoContext(ctx, "Budget alerts raised", log.FieldCount, len(alerts))
		}
	}
	return nil
}

func (w *SyncWorker) syncRecord(ctx context.Context, id string) error {
	rec, err := w.records.Get(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		// deleted before we got here
		w.logger.DebugContext(ctx, "Record gone, removing from mirror", log.FieldRecordID, id)
		return w.remove(ctx, id)
	}
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to load record",
			log.FieldOperation, log.OpRead,
			log.FieldRecordID, id,
			log.FieldError, err)
		return fmt.Errorf("get record: %w", err)
	}

	if err := w.mirror.Upsert(ctx, *rec); err != nil {
		w.logger.ErrorContext(ctx, "Failed to mirror record",
			log.FieldRecordID, id,
			log.FieldError, err)
		return fmt.Errorf("upsert record: %w", err)
	}

	w.logger.InfoContext(ctx, "Successfully mirrored record",
		log.NewFields().
			WithOperation(log.OpSync).
			WithRecord(rec.ID, rec.Type.String(), rec.Amount, rec.Date.String()).
			ToSlice()...)
	return nil
}

func (w *SyncWorker) remove(ctx context.Context, id string) error {
	if err := w.mirror.Remove(ctx, id); err != nil {
		w.logger.ErrorContext(ctx, "Failed to remove mirrored record",
			log.FieldRecordID, id,
			log.FieldError, err)
		return fmt.Errorf("remove record: %w", err)
	}
	w.logger.InfoContext(ctx, "Removed mirrored record", log.FieldRecordID, id)
	return nil
}
