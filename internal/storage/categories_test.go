package storage

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
)

func (s *StoreTestSuite) TestCategoryListOrderedByNameWithDuplicates() {
	for _, name := range []string{"Transport", "Food", "Food"} {
		require.NoError(s.T(), s.categories.Add(s.ctx, core.NewCategory(name)))
	}
	cats, err := s.categories.List(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), cats, 3)
	assert.Equal(s.T(), "Food", cats[0].Name)
	assert.Equal(s.T(), "Food", cats[1].Name)
	assert.Equal(s.T(), "Transport", cats[2].Name)
}

func (s *StoreTestSuite) TestCategoryGet() {
	c := core.NewCategory("Food")
	c.Icon = core.Optional("🍜")
	require.NoError(s.T(), s.categories.Add(s.ctx, c))

	got, err := s.categories.Get(s.ctx, c.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), c, got)

	_, err = s.categories.Get(s.ctx, "missing")
	assert.ErrorIs(s.T(), err, core.ErrNotFound)
}

func (s *StoreTestSuite) TestCategoryDeleteRefusedWithDependents() {
	c := core.NewCategory("Food")
	require.NoError(s.T(), s.categories.Add(s.ctx, c))
	rec := s.addRecord(5, core.Expense, "2024-01-01", c.ID, "")

	deleted, err := s.categories.Delete(s.ctx, c.ID, false)
	require.NoError(s.T(), err)
	assert.False(s.T(), deleted)

	got, err := s.records.Get(s.ctx, rec.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), c.ID, core.Value(got.CategoryID))

	_, err = s.categories.Get(s.ctx, c.ID)
	assert.NoError(s.T(), err)
}

func (s *StoreTestSuite) TestCategoryForceDeleteDetachesRecords() {
	c := core.NewCategory("Food")
	require.NoError(s.T(), s.categories.Add(s.ctx, c))
	var recs []*core.Record
	for i := 0; i < 3; i++ {
		recs = append(recs, s.addRecord(float64(i+1), core.Expense, "2024-01-01", c.ID, ""))
	}
	other := s.addRecord(9, core.Expense, "2024-01-01", "rent", "")

	deleted, err := s.categories.Delete(s.ctx, c.ID, true)
	require.NoError(s.T(), err)
	assert.True(s.T(), deleted)

	_, err = s.categories.Get(s.ctx, c.ID)
	assert.ErrorIs(s.T(), err, core.ErrNotFound)

	for _, rec := range recs {
		got, err := s.records.Get(s.ctx, rec.ID)
		require.NoError(s.T(), err)
		assert.Nil(s.T(), got.CategoryID)
	}
	got, err := s.records.Get(s.ctx, other.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "rent", core.Value(got.CategoryID))
}

func (s *StoreTestSuite) TestCategoryForceDeleteUnknownDetachesDangling() {
	dangling := s.addRecord(4, core.Expense, "2024-01-01", "ghost", "")

	deleted, err := s.categories.Delete(s.ctx, "ghost", false)
	require.NoError(s.T(), err)
	assert.False(s.T(), deleted)
	got, err := s.records.Get(s.ctx, dangling.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "ghost", core.Value(got.CategoryID), "refused delete must not touch records")

	deleted, err = s.categories.Delete(s.ctx, "ghost", true)
	require.NoError(s.T(), err)
	assert.False(s.T(), deleted, "nothing was deleted from categories")
	got, err = s.records.Get(s.ctx, dangling.ID)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), got.CategoryID)
}

func (s *StoreTestSuite) TestCategoryDeleteWithoutDependents() {
	c := core.NewCategory("Unused")
	require.NoError(s.T(), s.categories.Add(s.ctx, c))

	deleted, err := s.categories.Delete(s.ctx, c.ID, false)
	require.NoError(s.T(), err)
	assert.True(s.T(), deleted)

	deleted, err = s.categories.Delete(s.ctx, c.ID, false)
	require.NoError(s.T(), err)
	assert.False(s.T(), deleted)
}

func (s *StoreTestSuite) TestOtherCategoryIsNeverDeleted() {
	other, err := s.categories.EnsureDefault(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), core.OtherCategoryName, other.Name)

	for _, force := range []bool{false, true} {
		deleted, err := s.categories.Delete(s.ctx, other.ID, force)
		require.NoError(s.T(), err)
		assert.False(s.T(), deleted, "force=%v", force)
	}

	again, err := s.categories.EnsureDefault(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), other.ID, again.ID, "EnsureDefault must not duplicate Other")
}
