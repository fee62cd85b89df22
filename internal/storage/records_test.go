package storage

import (
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
)

func (s *StoreTestSuite) TestRecordExplicitDateRoundTrip() {
	rec := core.NewRecord(12.5, core.Expense, core.NewDate(2024, 1, 5))
	rec.CategoryID = core.Optional("food")
	rec.AccountID = core.Optional("cash")
	rec.Tags = []string{"lunch", "work"}
	rec.Note = core.Optional("noodles")
	rec.Attachments = []string{"/tmp/receipt.png"}
	require.NoError(s.T(), s.records.Add(s.ctx, rec))

	got, err := s.records.Get(s.ctx, rec.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), rec, got)
}

func (s *StoreTestSuite) TestRecordWithoutDateGetsInsertionDay() {
	rec := core.NewRecord(1, core.Income, core.Date{})
	require.NoError(s.T(), s.records.Add(s.ctx, rec))
	assert.Equal(s.T(), "2024-03-10", rec.Date.String(), "caller sees the stored date")

	got, err := s.records.Get(s.ctx, rec.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "2024-03-10", got.Date.String())
	assert.Empty(s.T(), got.Tags)
	assert.Empty(s.T(), got.Attachments)
	assert.Nil(s.T(), got.Note)

	var tags string
	require.NoError(s.T(), s.store.QueryRow(s.ctx, `SELECT tags FROM records WHERE record_id = ?`, rec.ID).Scan(&tags))
	assert.Equal(s.T(), "[]", tags)
}

// A row stored without a date reads back as the current day, so the value
// drifts from one day to the next.
func (s *StoreTestSuite) TestNullStoredDateFollowsClock() {
	_, err := s.store.Execute(s.ctx, `INSERT INTO records (record_id, amount, type, date) VALUES ('legacy', 3, 'expense', NULL)`)
	require.NoError(s.T(), err)

	first, err := s.records.Get(s.ctx, "legacy")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "2024-03-10", first.Date.String())

	s.now = s.now.Add(24 * time.Hour)
	second, err := s.records.Get(s.ctx, "legacy")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "2024-03-11", second.Date.String())
}

func (s *StoreTestSuite) TestRecordAddDeleteGet() {
	rec := s.addRecord(9, core.Expense, "2024-02-01", "", "")

	deleted, err := s.records.Delete(s.ctx, rec.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), deleted)

	_, err = s.records.Get(s.ctx, rec.ID)
	assert.ErrorIs(s.T(), err, core.ErrNotFound)

	deleted, err = s.records.Delete(s.ctx, rec.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), deleted)
}

func (s *StoreTestSuite) TestRecordUpdateReplacesRow() {
	rec := s.addRecord(9, core.Expense, "2024-02-01", "food", "cash")

	rec.Amount = 11
	rec.Type = core.Income
	rec.CategoryID = nil
	rec.AccountID = core.Optional("bank")
	rec.Tags = []string{"refund"}
	updated, err := s.records.Update(s.ctx, rec)
	require.NoError(s.T(), err)
	assert.True(s.T(), updated)

	got, err := s.records.Get(s.ctx, rec.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 11.0, got.Amount)
	assert.Equal(s.T(), core.Income, got.Type)
	assert.Nil(s.T(), got.CategoryID)
	assert.Equal(s.T(), "bank", core.Value(got.AccountID))
	assert.Equal(s.T(), []string{"refund"}, got.Tags)

	missing := core.NewRecord(1, core.Expense, core.NewDate(2024, 1, 1))
	updated, err = s.records.Update(s.ctx, missing)
	require.NoError(s.T(), err)
	assert.False(s.T(), updated)
}

func (s *StoreTestSuite) TestRecordListOrderAndPaging() {
	a := s.addRecord(1, core.Expense, "2024-01-05", "", "")
	b := s.addRecord(2, core.Expense, "2024-01-07", "", "")
	c := s.addRecord(3, core.Expense, "2024-01-05", "", "")

	all, err := s.records.List(s.ctx, 0, 0)
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 3)
	assert.Equal(s.T(), []string{b.ID, a.ID, c.ID}, ids(all))

	page, err := s.records.List(s.ctx, 2, 1)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{a.ID, c.ID}, ids(page))
}

func (s *StoreTestSuite) TestRecordFilter() {
	jan := s.addRecord(1, core.Expense, "2024-01-15", "food", "cash")
	feb := s.addRecord(2, core.Expense, "2024-02-15", "rent", "cash")
	mar := s.addRecord(3, core.Income, "2024-03-15", "food", "cash")
	s.addRecord(4, core.Expense, "2024-02-20", "food", "bank")

	_, err := s.records.Filter(s.ctx, core.RecordFilter{})
	assert.ErrorIs(s.T(), err, core.ErrAccountRequired)

	cases := []struct {
		name   string
		filter core.RecordFilter
		want   []string
	}{
		{"account only", core.RecordFilter{AccountID: "cash"}, []string{mar.ID, feb.ID, jan.ID}},
		{"category", core.RecordFilter{AccountID: "cash", CategoryID: "food"}, []string{mar.ID, jan.ID}},
		{"both bounds", core.RecordFilter{AccountID: "cash", Start: core.NewDate(2024, 2, 1), End: core.NewDate(2024, 2, 29)}, []string{feb.ID}},
		{"start only", core.RecordFilter{AccountID: "cash", Start: core.NewDate(2024, 2, 15)}, []string{mar.ID, feb.ID}},
		{"end only", core.RecordFilter{AccountID: "cash", End: core.NewDate(2024, 2, 15)}, []string{feb.ID, jan.ID}},
	}
	for _, tc := range cases {
		got, err := s.records.Filter(s.ctx, tc.filter)
		require.NoError(s.T(), err, tc.name)
		assert.Equal(s.T(), tc.want, ids(got), tc.name)
	}
}

func (s *StoreTestSuite) TestRecordSearch() {
	lunch := core.NewRecord(8, core.Expense, core.NewDate(2024, 1, 2))
	lunch.Note = core.Optional("Lunch with team")
	require.NoError(s.T(), s.records.Add(s.ctx, lunch))

	taxi := core.NewRecord(20, core.Expense, core.NewDate(2024, 1, 3))
	taxi.Tags = []string{"travel", "work"}
	require.NoError(s.T(), s.records.Add(s.ctx, taxi))

	odd := core.NewRecord(1, core.Expense, core.NewDate(2024, 1, 4))
	odd.Note = core.Optional("100% off")
	require.NoError(s.T(), s.records.Add(s.ctx, odd))

	got, err := s.records.Search(s.ctx, core.SearchQuery{Text: "lunch"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{lunch.ID}, ids(got))

	got, err = s.records.Search(s.ctx, core.SearchQuery{Text: "work"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{taxi.ID}, ids(got))

	got, err = s.records.Search(s.ctx, core.SearchQuery{Text: "%"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{odd.ID}, ids(got))

	got, err = s.records.Search(s.ctx, core.SearchQuery{Start: core.NewDate(2024, 1, 3)})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{odd.ID, taxi.ID}, ids(got))
}

func (s *StoreTestSuite) TestRecordExistsAndCounts() {
	rec := s.addRecord(1, core.Expense, "2024-01-01", "food", "cash")
	s.addRecord(2, core.Expense, "2024-01-01", "food", "")

	ok, err := s.records.Exists(s.ctx, rec.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), ok)

	ok, err = s.records.Exists(s.ctx, "nope")
	require.NoError(s.T(), err)
	assert.False(s.T(), ok)

	n, err := s.records.CountByCategory(s.ctx, "food")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, n)

	n, err = s.records.CountByAccount(s.ctx, "cash")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, n)
}

func (s *StoreTestSuite) TestRecordImportSkipsExisting() {
	existing := s.addRecord(1, core.Expense, "2024-01-01", "", "")
	fresh := core.NewRecord(4, core.Income, core.Date{})

	n, err := s.records.Import(s.ctx, []core.Record{
		{ID: existing.ID, Amount: 99, Type: core.Expense},
		*fresh,
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, n)

	got, err := s.records.Get(s.ctx, existing.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1.0, got.Amount, "existing rows are never overwritten")

	got, err = s.records.Get(s.ctx, fresh.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "2024-03-10", got.Date.String())
}

func (s *StoreTestSuite) TestRecordCorruptTagsSurface() {
	_, err := s.store.Execute(s.ctx, `INSERT INTO records (record_id, amount, type, date, tags) VALUES ('bad', 1, 'expense', '2024-01-01', 'not json')`)
	require.NoError(s.T(), err)

	_, err = s.records.Get(s.ctx, "bad")
	assert.Error(s.T(), err)
	assert.NotErrorIs(s.T(), err, core.ErrNotFound)
}

func ids(records []core.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
