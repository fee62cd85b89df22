package storage

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
)

func (s *StoreTestSuite) TestSummaryForMonth() {
	s.addRecord(12.5, core.Expense, "2024-01-05", "food", "")
	s.addRecord(100, core.Income, "2024-01-05", "", "")
	s.addRecord(999, core.Expense, "2024-02-01", "food", "")

	sum, err := s.stats.Summary(s.ctx, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31), "")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), core.Summary{Income: 100, Expense: 12.5, Balance: 87.5}, sum)
}

func (s *StoreTestSuite) TestSummaryEmptyRange() {
	s.addRecord(5, core.Expense, "2024-01-05", "", "")

	sum, err := s.stats.Summary(s.ctx, core.NewDate(2030, 1, 1), core.NewDate(2030, 12, 31), "")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), core.Summary{}, sum)
}

func (s *StoreTestSuite) TestSummaryBoundsAreInclusiveAndAccountScoped() {
	s.addRecord(1, core.Income, "2024-01-01", "", "cash")
	s.addRecord(2, core.Income, "2024-01-31", "", "cash")
	s.addRecord(4, core.Expense, "2024-01-15", "", "bank")

	sum, err := s.stats.Summary(s.ctx, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31), "cash")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), core.NewSummary(3, 0), sum)

	all, err := s.stats.Summary(s.ctx, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31), "")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), core.NewSummary(3, 4), all)
}

func (s *StoreTestSuite) TestAccountSummaryIgnoresDates() {
	s.addRecord(50, core.Income, "2019-06-01", "", "cash")
	s.addRecord(20, core.Expense, "2024-06-01", "", "cash")
	s.addRecord(7, core.Expense, "2024-06-01", "", "bank")

	sum, err := s.stats.AccountSummary(s.ctx, "cash")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), core.NewSummary(50, 20), sum)
}

func (s *StoreTestSuite) TestByCategoryBucketsUncategorized() {
	s.addRecord(12.5, core.Expense, "2024-01-05", "food", "")
	s.addRecord(7.5, core.Expense, "2024-01-06", "food", "")
	s.addRecord(100, core.Income, "2024-01-05", "", "")
	s.addRecord(3, core.Expense, "2024-01-09", "", "cash")

	totals, err := s.stats.ByCategory(s.ctx, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31), "")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), core.CategoryTotals{"food": 20, core.UncategorizedKey: 103}, totals)
	assert.Equal(s.T(), 123.0, totals.Total())

	scoped, err := s.stats.ByCategory(s.ctx, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31), "cash")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), core.CategoryTotals{core.UncategorizedKey: 3}, scoped)
}

func (s *StoreTestSuite) TestCategorySpend() {
	s.addRecord(10, core.Expense, "2024-01-05", "food", "")
	s.addRecord(5, core.Expense, "2024-01-06", "rent", "")
	s.addRecord(100, core.Income, "2024-01-06", "food", "")

	food, err := s.stats.CategorySpend(s.ctx, "food", core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 10.0, food)

	all, err := s.stats.CategorySpend(s.ctx, "", core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 15.0, all)
}
