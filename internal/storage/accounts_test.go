package storage

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
)

func (s *StoreTestSuite) TestAccountDefaults() {
	a := &core.Account{ID: "acc", Name: "Wallet"}
	require.NoError(s.T(), s.accounts.Add(s.ctx, a))
	assert.Equal(s.T(), core.DefaultCurrency, a.Currency)

	got, err := s.accounts.Get(s.ctx, "acc")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 0.0, got.Balance)
	assert.Equal(s.T(), "CNY", got.Currency)
	assert.Nil(s.T(), got.Type)

	_, err = s.accounts.Get(s.ctx, "missing")
	assert.ErrorIs(s.T(), err, core.ErrNotFound)
}

func (s *StoreTestSuite) TestAccountListOrderedByName() {
	for _, name := range []string{"Savings", "Cash", "Bank"} {
		a := core.NewAccount(name)
		a.Currency = "EUR"
		a.Balance = 10
		require.NoError(s.T(), s.accounts.Add(s.ctx, a))
	}
	accts, err := s.accounts.List(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), accts, 3)
	assert.Equal(s.T(), "Bank", accts[0].Name)
	assert.Equal(s.T(), "Savings", accts[2].Name)
	assert.Equal(s.T(), "EUR", accts[1].Currency)
	assert.Equal(s.T(), 10.0, accts[1].Balance)
}

func (s *StoreTestSuite) TestAccountDeleteRefusedWithDependents() {
	a := core.NewAccount("Cash")
	require.NoError(s.T(), s.accounts.Add(s.ctx, a))
	rec := s.addRecord(5, core.Expense, "2024-01-01", "", a.ID)

	deleted, err := s.accounts.Delete(s.ctx, a.ID, false)
	require.NoError(s.T(), err)
	assert.False(s.T(), deleted)

	_, err = s.records.Get(s.ctx, rec.ID)
	assert.NoError(s.T(), err)
}

func (s *StoreTestSuite) TestAccountForceDeleteCascades() {
	a := core.NewAccount("Cash")
	require.NoError(s.T(), s.accounts.Add(s.ctx, a))
	var recs []*core.Record
	for i := 0; i < 3; i++ {
		recs = append(recs, s.addRecord(float64(i+1), core.Expense, "2024-01-01", "", a.ID))
	}
	survivor := s.addRecord(9, core.Income, "2024-01-01", "", "bank")

	deleted, err := s.accounts.Delete(s.ctx, a.ID, true)
	require.NoError(s.T(), err)
	assert.True(s.T(), deleted)

	_, err = s.accounts.Get(s.ctx, a.ID)
	assert.ErrorIs(s.T(), err, core.ErrNotFound)
	for _, rec := range recs {
		_, err := s.records.Get(s.ctx, rec.ID)
		assert.ErrorIs(s.T(), err, core.ErrNotFound)
	}
	_, err = s.records.Get(s.ctx, survivor.ID)
	assert.NoError(s.T(), err)
}

func (s *StoreTestSuite) TestAccountDeleteUnknownKeepsDanglingRecords() {
	rec := s.addRecord(5, core.Expense, "2024-01-01", "", "ghost")

	deleted, err := s.accounts.Delete(s.ctx, "ghost", true)
	require.NoError(s.T(), err)
	assert.False(s.T(), deleted)

	_, err = s.records.Get(s.ctx, rec.ID)
	assert.NoError(s.T(), err)
}
