package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	Income  RecordType = "income"
	Expense RecordType = "expense"
)

const (
	// DefaultCurrency is applied to accounts created without a currency.
	DefaultCurrency = "CNY"
	// OtherCategoryName is the reserved catch-all category. It can never be deleted.
	OtherCategoryName = "Other"
	// UncategorizedKey buckets records without a category in aggregations.
	UncategorizedKey = "uncategorized"
)

type (
	RecordType string

	Account struct {
		ID       string
		Name     string
		Type     *string
		Balance  float64 // informational only, never derived from records
		Currency string
	}

	Category struct {
		ID    string
		Name  string
		Icon  *string
		Color *string
	}

	// Record is a single income or expense transaction. Amount is never
	// negative; the direction of the cash flow is carried by Type.
	Record struct {
		ID          string
		Amount      float64
		Type        RecordType
		Date        Date
		CategoryID  *string // weak reference, may dangle
		AccountID   *string // weak reference, may dangle
		Tags        []string
		Note        *string
		Attachments []string
	}

	Budget struct {
		ID         string
		CategoryID *string // nil means all categories
		Limit      float64
		Period     string
	}

	Notification struct {
		ID        string
		Type      string
		Message   string
		Timestamp time.Time
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidRecordType = errors.New("invalid record type")
	ErrEmptyName         = errors.New("empty name")
	ErrInvalidCurrency   = errors.New("invalid currency code")
	ErrEmptyPeriod       = errors.New("empty budget period")
)

// ParseRecordType accepts "income"/"expense" and any prefix of them ("i", "exp").
func ParseRecordType(s string) (RecordType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return "", ErrInvalidRecordType
	case strings.HasPrefix(string(Income), s):
		return Income, nil
	case strings.HasPrefix(string(Expense), s):
		return Expense, nil
	}
	return "", ErrInvalidRecordType
}

func (t RecordType) Valid() bool {
	return t == Income || t == Expense
}

func (t RecordType) String() string {
	return string(t)
}

// NewRecord builds a record with a freshly generated id.
func NewRecord(amount float64, t RecordType, d Date) *Record {
	return &Record{
		ID:     NewID(),
		Amount: amount,
		Type:   t,
		Date:   d,
	}
}

func NewCategory(name string) *Category {
	return &Category{ID: NewID(), Name: name}
}

func NewAccount(name string) *Account {
	return &Account{ID: NewID(), Name: name, Currency: DefaultCurrency}
}

func NewBudget(categoryID *string, limit float64, period string) *Budget {
	return &Budget{ID: NewID(), CategoryID: categoryID, Limit: limit, Period: period}
}

func NewNotification(kind, message string) *Notification {
	return &Notification{ID: NewID(), Type: kind, Message: message, Timestamp: time.Now().UTC()}
}

func (r Record) Validate() error {
	if math.IsNaN(r.Amount) || math.IsInf(r.Amount, 0) || r.Amount < 0 {
		return ErrInvalidAmount
	}
	if !r.Type.Valid() {
		return ErrInvalidRecordType
	}
	if !r.Date.IsZero() {
		if err := r.Date.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// IsReserved reports whether c is the built-in catch-all category.
func (c Category) IsReserved() bool {
	return c.Name == OtherCategoryName
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if a.Currency != "" && len(a.Currency) != 3 {
		return ErrInvalidCurrency
	}
	return nil
}

func (b Budget) Validate() error {
	if math.IsNaN(b.Limit) || b.Limit < 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(b.Period) == "" {
		return ErrEmptyPeriod
	}
	return nil
}

// Optional returns nil for an empty (after trimming) string.
func Optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Value dereferences p, returning "" for nil.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
