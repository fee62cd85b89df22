package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/storage"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []amqp.RecordEvent
	err    error
}

func (p *fakePublisher) PublishRecordEvent(_ context.Context, ev *amqp.RecordEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, *ev)
	return nil
}

func (p *fakePublisher) actions() []amqp.Action {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.Action, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Action
	}
	return out
}

type ServicesTestSuite struct {
	suite.Suite
	ctx       context.Context
	now       time.Time
	store     *storage.Store
	publisher *fakePublisher
	monitor   *BudgetMonitor
	service   *RecordService
}

func TestServicesTestSuite(t *testing.T) {
	suite.Run(t, new(ServicesTestSuite))
}

func (s *ServicesTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)

	store, err := storage.Open(filepath.Join(s.T().TempDir(), "ledger.db"), storage.WithClock(func() time.Time { return s.now }))
	require.NoError(s.T(), err)
	s.store = store
	s.publisher = &fakePublisher{}
	s.monitor = NewBudgetMonitor(store, nil)
	s.service = NewRecordService(store, s.monitor, s.publisher, nil)
}

func (s *ServicesTestSuite) TearDownTest() {
	s.store.Close()
}

func (s *ServicesTestSuite) expense(amount float64, categoryID string) *core.Record {
	rec := core.NewRecord(amount, core.Expense, core.DateOf(s.now))
	rec.CategoryID = core.Optional(categoryID)
	return rec
}

func (s *ServicesTestSuite) TestCreatePublishesAndSaves() {
	rec := s.expense(10, "food")
	alerts, err := s.service.Create(s.ctx, rec)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), alerts)

	_, err = storage.NewRecordRepository(s.store).Get(s.ctx, rec.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []amqp.Action{amqp.ActionCreated}, s.publisher.actions())
	assert.Equal(s.T(), rec.ID, s.publisher.events[0].ID)
}

func (s *ServicesTestSuite) TestPublishFailureDoesNotFailWrite() {
	s.publisher.err = errors.New("broker down")
	rec := s.expense(10, "food")

	_, err := s.service.Create(s.ctx, rec)
	require.NoError(s.T(), err)

	ok, err := storage.NewRecordRepository(s.store).Exists(s.ctx, rec.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), ok)
}

func (s *ServicesTestSuite) TestWithoutPublisherOrMonitor() {
	svc := NewRecordService(s.store, nil, nil, nil)
	rec := s.expense(10, "food")
	alerts, err := svc.Create(s.ctx, rec)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), alerts)

	ok, err := svc.Delete(s.ctx, rec.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), ok)
}

func (s *ServicesTestSuite) TestUpdateAndDeleteEvents() {
	rec := s.expense(10, "food")
	_, err := s.service.Create(s.ctx, rec)
	require.NoError(s.T(), err)

	rec.Amount = 12
	ok, _, err := s.service.Update(s.ctx, rec)
	require.NoError(s.T(), err)
	assert.True(s.T(), ok)

	ok, err = s.service.Delete(s.ctx, rec.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), ok)

	// misses publish nothing
	ok, _, err = s.service.Update(s.ctx, rec)
	require.NoError(s.T(), err)
	assert.False(s.T(), ok)
	ok, err = s.service.Delete(s.ctx, rec.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), ok)

	assert.Equal(s.T(), []amqp.Action{amqp.ActionCreated, amqp.ActionUpdated, amqp.ActionDeleted}, s.publisher.actions())
}

func (s *ServicesTestSuite) TestBudgetAlertRaisedOncePerWindow() {
	food := core.NewCategory("Food")
	require.NoError(s.T(), storage.NewCategoryRepository(s.store).Add(s.ctx, food))
	budget := core.NewBudget(&food.ID, 50, "monthly")
	require.NoError(s.T(), storage.NewBudgetRepository(s.store).Set(s.ctx, budget))

	alerts, err := s.service.Create(s.ctx, s.expense(40, food.ID))
	require.NoError(s.T(), err)
	assert.Empty(s.T(), alerts, "still under the limit")

	alerts, err = s.service.Create(s.ctx, s.expense(20, food.ID))
	require.NoError(s.T(), err)
	require.Len(s.T(), alerts, 1)
	assert.Equal(s.T(), NotificationBudgetExceeded, alerts[0].Type)
	assert.Equal(s.T(), AlertID(budget.ID, core.NewDate(2024, 1, 1)), alerts[0].ID)
	assert.Contains(s.T(), alerts[0].Message, "Food")
	assert.Contains(s.T(), alerts[0].Message, "60.00 of 50.00")

	alerts, err = s.service.Create(s.ctx, s.expense(5, food.ID))
	require.NoError(s.T(), err)
	assert.Empty(s.T(), alerts, "one alert per window")

	// a new month opens a new window
	s.now = time.Date(2024, 2, 3, 9, 0, 0, 0, time.UTC)
	alerts, err = s.service.Create(s.ctx, s.expense(70, food.ID))
	require.NoError(s.T(), err)
	require.Len(s.T(), alerts, 1)
	assert.NotEqual(s.T(), AlertID(budget.ID, core.NewDate(2024, 1, 1)), alerts[0].ID)

	list, err := storage.NewNotificationRepository(s.store).List(s.ctx)
	require.NoError(s.T(), err)
	assert.Len(s.T(), list, 2)
}

func (s *ServicesTestSuite) TestIncomeDoesNotTriggerBudgetCheck() {
	require.NoError(s.T(), storage.NewBudgetRepository(s.store).Set(s.ctx, core.NewBudget(nil, 1, "daily")))
	require.NoError(s.T(), storage.NewRecordRepository(s.store).Add(s.ctx, s.expense(5, "")))

	alerts, err := s.service.Create(s.ctx, core.NewRecord(100, core.Income, core.DateOf(s.now)))
	require.NoError(s.T(), err)
	assert.Empty(s.T(), alerts)

	alerts, err = s.monitor.Check(s.ctx, core.DateOf(s.now))
	require.NoError(s.T(), err)
	require.Len(s.T(), alerts, 1)
	assert.Contains(s.T(), alerts[0].Message, "all categories")
}

func (s *ServicesTestSuite) TestMonitorSkipsUnknownPeriods() {
	require.NoError(s.T(), storage.NewBudgetRepository(s.store).Set(s.ctx, core.NewBudget(nil, 1, "fortnightly")))
	require.NoError(s.T(), storage.NewRecordRepository(s.store).Add(s.ctx, s.expense(5, "")))

	alerts, err := s.monitor.Check(s.ctx, core.DateOf(s.now))
	require.NoError(s.T(), err)
	assert.Empty(s.T(), alerts)
}

func (s *ServicesTestSuite) TestSweeperRunsUntilCancelled() {
	require.NoError(s.T(), storage.NewBudgetRepository(s.store).Set(s.ctx, core.NewBudget(nil, 1, "yearly")))
	require.NoError(s.T(), storage.NewRecordRepository(s.store).Add(s.ctx, s.expense(5, "")))

	sweeper := NewBudgetSweeper(s.monitor, time.Hour, nil)
	sweeper.today = func() core.Date { return core.DateOf(s.now) }

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	go func() { done <- sweeper.Run(ctx) }()

	notes := storage.NewNotificationRepository(s.store)
	assert.Eventually(s.T(), func() bool {
		list, err := notes.List(s.ctx)
		return err == nil && len(list) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.True(s.T(), sweeper.IsRunning())
	assert.Error(s.T(), sweeper.Run(ctx), "second Run must be refused")

	cancel()
	select {
	case err := <-done:
		assert.NoError(s.T(), err)
	case <-time.After(2 * time.Second):
		s.T().Fatal("sweeper did not stop")
	}
	assert.False(s.T(), sweeper.IsRunning())
}
