package core

// Summary holds income and expense totals and their difference.
type Summary struct {
	Income  float64
	Expense float64
	Balance float64
}

// NewSummary derives the balance from income and expense.
func NewSummary(income, expense float64) Summary {
	return Summary{Income: income, Expense: expense, Balance: income - expense}
}

// AsMap returns the summary keyed by "income", "expense" and "balance".
func (s Summary) AsMap() map[string]float64 {
	return map[string]float64{
		"income":  s.Income,
		"expense": s.Expense,
		"balance": s.Balance,
	}
}

// CategoryTotals maps a category id (or UncategorizedKey) to a summed amount.
type CategoryTotals map[string]float64

// Total sums every bucket.
func (c CategoryTotals) Total() float64 {
	var t float64
	for _, v := range c {
		t += v
	}
	return t
}

// RecordFilter selects records of one account, optionally narrowed by
// category and by an open or closed date range.
type RecordFilter struct {
	AccountID  string
	CategoryID string
	Start      Date
	End        Date
}

// SearchQuery matches text against notes and tags.
type SearchQuery struct {
	Text       string
	CategoryID string
	Start      Date
	End        Date
}
