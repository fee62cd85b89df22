package storage

import (
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
)

func (s *StoreTestSuite) TestBudgetSetReplacesByID() {
	b := core.NewBudget(core.Optional("food"), 100, "monthly")
	require.NoError(s.T(), s.budgets.Set(s.ctx, b))

	b.Limit = 150
	require.NoError(s.T(), s.budgets.Set(s.ctx, b))

	list, err := s.budgets.List(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 1)
	assert.Equal(s.T(), 150.0, list[0].Limit)
	assert.Equal(s.T(), "food", core.Value(list[0].CategoryID))

	got, err := s.budgets.Get(s.ctx, b.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), *b, *got)

	deleted, err := s.budgets.Delete(s.ctx, b.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), deleted)

	_, err = s.budgets.Get(s.ctx, b.ID)
	assert.ErrorIs(s.T(), err, core.ErrNotFound)
}

func (s *StoreTestSuite) TestNotificationsNewestFirst() {
	old := core.NewNotification("info", "old")
	old.Timestamp = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(s.T(), s.notes.Send(s.ctx, old))

	fresh := &core.Notification{ID: "n2", Type: "budget_exceeded", Message: "over"}
	require.NoError(s.T(), s.notes.Send(s.ctx, fresh))
	assert.Equal(s.T(), s.now, fresh.Timestamp)

	list, err := s.notes.List(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 2)
	assert.Equal(s.T(), "n2", list[0].ID)
	assert.True(s.T(), list[0].Timestamp.Equal(s.now))
	assert.Equal(s.T(), old.ID, list[1].ID)

	ok, err := s.notes.Exists(s.ctx, "n2")
	require.NoError(s.T(), err)
	assert.True(s.T(), ok)

	assert.Error(s.T(), s.notes.Send(s.ctx, fresh), "duplicate ids are rejected")
}
