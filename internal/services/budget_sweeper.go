package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ledger/internal/core"
	"ledger/internal/log"
)

// BudgetSweeper runs BudgetMonitor.Check on a fixed interval.
type BudgetSweeper struct {
	monitor  *BudgetMonitor
	interval time.Duration
	today    func() core.Date
	logger   *log.Logger

	mu      sync.Mutex
	running bool
}

func NewBudgetSweeper(monitor *BudgetMonitor, interval time.Duration, logger *log.Logger) *BudgetSweeper {
	if logger == nil {
		logger = log.Discard()
	}
	return &BudgetSweeper{
		monitor:  monitor,
		interval: interval,
		today:    core.Today,
		logger:   logger.WithComponent(log.ComponentBudget),
	}
}

// Run checks immediately and then on every tick until ctx is done. It
// returns an error if the sweeper is already running.
func (s *BudgetSweeper) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("budget sweeper is already running")
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// IsRunning returns whether Run is active.
func (s *BudgetSweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *BudgetSweeper) sweep(ctx context.Context) {
	started := time.Now()
	sent, err := s.monitor.Check(ctx, s.today())
	s.logger.DebugContext(ctx, "Budget sweep finished",
		log.FieldOperation, log.OpCheck,
		log.FieldDuration, time.Since(started).Milliseconds())
	if err != nil {
		s.logger.ErrorContext(ctx, "Budget sweep failed", log.FieldOperation, log.OpCheck, log.FieldError, err)
		return
	}
	if len(sent) > 0 {
		s.logger.InfoContext(ctx, "Budget sweep raised alerts", log.FieldCount, len(sent))
	}
}
