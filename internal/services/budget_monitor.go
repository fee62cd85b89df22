package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"
)

// NotificationBudgetExceeded tags notifications raised by BudgetMonitor.
const NotificationBudgetExceeded = "budget_exceeded"

// budgetAlertNamespace scopes the deterministic alert ids.
var budgetAlertNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("ledger.budget_exceeded"))

// BudgetMonitor compares spending in each budget's current period against
// its limit and raises at most one notification per budget and period.
type BudgetMonitor struct {
	budgets       *storage.BudgetRepository
	categories    *storage.CategoryRepository
	notifications *storage.NotificationRepository
	stats         *storage.Statistics
	logger        *log.Logger

	// serializes Check so the exists-then-send pair is not interleaved
	mu sync.Mutex
}

func NewBudgetMonitor(store *storage.Store, logger *log.Logger) *BudgetMonitor {
	if logger == nil {
		logger = log.Discard()
	}
	return &BudgetMonitor{
		budgets:       storage.NewBudgetRepository(store),
		categories:    storage.NewCategoryRepository(store),
		notifications: storage.NewNotificationRepository(store),
		stats:         storage.NewStatistics(store),
		logger:        logger.WithComponent(log.ComponentBudget),
	}
}

// Check evaluates every budget for the period containing today and returns
// the notifications it sent. Budgets with an unknown period are skipped.
func (m *BudgetMonitor) Check(ctx context.Context, today core.Date) ([]core.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	budgets, err := m.budgets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	var sent []core.Notification
	for _, b := range budgets {
		window, err := GetPeriodWindow(b.Period)
		if err != nil {
			m.logger.WarnContext(ctx, "Skipping budget with unknown period",
				log.FieldBudgetID, b.ID,
				log.FieldPeriod, b.Period)
			continue
		}
		start, end := window.Window(today)

		spent, err := m.stats.CategorySpend(ctx, core.Value(b.CategoryID), start, end)
		if err != nil {
			return sent, fmt.Errorf("budget %s: %w", b.ID, err)
		}
		if spent <= b.Limit {
			continue
		}

		id := AlertID(b.ID, start)
		exists, err := m.notifications.Exists(ctx, id)
		if err != nil {
			return sent, err
		}
		if exists {
			continue
		}

		n := &core.Notification{
			ID:      id,
			Type:    NotificationBudgetExceeded,
			Message: m.message(ctx, b, spent, start, end),
		}
		if err := m.notifications.Send(ctx, n); err != nil {
			return sent, fmt.Errorf("send budget alert: %w", err)
		}
		sent = append(sent, *n)

		m.logger.InfoContext(ctx, "Budget exceeded",
			log.FieldBudgetID, b.ID,
			log.FieldPeriod, b.Period,
			log.FieldAmount, spent)
	}
	return sent, nil
}

// AlertID derives the notification id for one budget and period start.
func AlertID(budgetID string, periodStart core.Date) string {
	return uuid.NewSHA1(budgetAlertNamespace, []byte(budgetID+"|"+periodStart.String())).String()
}

func (m *BudgetMonitor) message(ctx context.Context, b core.Budget, spent float64, start, end core.Date) string {
	scope := "all categories"
	if b.CategoryID != nil {
		scope = *b.CategoryID
		c, err := m.categories.Get(ctx, *b.CategoryID)
		switch {
		case err == nil:
			scope = c.Name
		case !errors.Is(err, core.ErrNotFound):
			m.logger.WarnContext(ctx, "Category lookup failed", log.FieldCategoryID, *b.CategoryID, log.FieldError, err)
		}
	}
	return fmt.Sprintf("Budget for %s exceeded: spent %s of %s (%s %s..%s)",
		scope,
		decimal.NewFromFloat(spent).StringFixed(2),
		decimal.NewFromFloat(b.Limit).StringFixed(2),
		b.Period, start, end)
}
