package services

import (
	"context"
	"fmt"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"
)

// EventPublisher is the outbound side of the record event queue.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, ev *amqp.RecordEvent) error
}

// RecordService orchestrates record writes across storage, the event queue
// and budget alerts. Storage is always written first; publishing and budget
// checks never fail a write that already succeeded.
type RecordService struct {
	store     *storage.Store
	records   *storage.RecordRepository
	monitor   *BudgetMonitor
	publisher EventPublisher
	logger    *log.Logger
}

// NewRecordService wires the service. monitor and publisher may be nil.
func NewRecordService(store *storage.Store, monitor *BudgetMonitor, publisher EventPublisher, logger *log.Logger) *RecordService {
	if logger == nil {
		logger = log.Discard()
	}
	return &RecordService{
		store:     store,
		records:   storage.NewRecordRepository(store),
		monitor:   monitor,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentRecord),
	}
}

// Create saves rec, publishes a created event and re-checks budgets for
// expenses. It returns the alerts the budget check raised.
func (s *RecordService) Create(ctx context.Context, rec *core.Record) ([]core.Notification, error) {
	if err := s.records.Add(ctx, rec); err != nil {
		return nil, fmt.Errorf("save record: %w", err)
	}

	s.logger.InfoContext(ctx, "Record created",
		log.NewFields().WithOperation(log.OpCreate).
			WithRecord(rec.ID, rec.Type.String(), rec.Amount, rec.Date.String()).
			WithAccount(rec.AccountID).ToSlice()...)

	s.publish(ctx, rec.ID, amqp.ActionCreated)
	return s.checkBudgets(ctx, rec), nil
}

// Update replaces rec. It reports false, without side effects, when the
// record does not exist.
func (s *RecordService) Update(ctx context.Context, rec *core.Record) (bool, []core.Notification, error) {
	ok, err := s.records.Update(ctx, rec)
	if err != nil {
		return false, nil, fmt.Errorf("update record: %w", err)
	}
	if !ok {
		return false, nil, nil
	}

	s.logger.InfoContext(ctx, "Record updated",
		log.NewFields().WithOperation(log.OpUpdate).
			WithRecord(rec.ID, rec.Type.String(), rec.Amount, rec.Date.String()).
			WithAccount(rec.AccountID).ToSlice()...)

	s.publish(ctx, rec.ID, amqp.ActionUpdated)
	return true, s.checkBudgets(ctx, rec), nil
}

// Delete removes a record and publishes a deleted event when it existed.
func (s *RecordService) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := s.records.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	if ok {
		s.publish(ctx, id, amqp.ActionDeleted)
	}
	return ok, nil
}

func (s *RecordService) publish(ctx context.Context, id string, action amqp.Action) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "No event publisher configured, skipping record event", log.FieldRecordID, id)
		return
	}
	if err := s.publisher.PublishRecordEvent(ctx, amqp.NewRecordEvent(id, action)); err != nil {
		// the record is saved locally; the worker catches up on the next change
		s.logger.ErrorContext(ctx, "Failed to publish record event",
			log.FieldOperation, log.OpPublish,
			log.FieldRecordID, id,
			log.FieldAction, action,
			log.FieldError, err)
	}
}

func (s *RecordService) checkBudgets(ctx context.Context, rec *core.Record) []core.Notification {
	if s.monitor == nil || rec.Type != core.Expense {
		return nil
	}
	sent, err := s.monitor.Check(ctx, s.store.Today())
	if err != nil {
		s.logger.ErrorContext(ctx, "Budget check failed", log.FieldOperation, log.OpCheck, log.FieldError, err)
		return nil
	}
	return sent
}
