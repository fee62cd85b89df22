// Package services provides business logic and orchestration services.
//
// This file implements the strategy registry for budget periods. Each period
// tag (daily, weekly, monthly, yearly) maps to a window that encloses a
// reference day.
package services

import (
	"fmt"
	"strings"

	"ledger/internal/core"
)

// PeriodWindow is the strategy interface for budget periods.
type PeriodWindow interface {
	// Window returns the inclusive first and last day of the period that
	// contains ref.
	Window(ref core.Date) (start, end core.Date)
}

// DailyWindow covers the reference day only.
type DailyWindow struct{}

func (DailyWindow) Window(ref core.Date) (core.Date, core.Date) {
	return ref, ref
}

// WeeklyWindow covers Monday through Sunday.
type WeeklyWindow struct{}

func (WeeklyWindow) Window(ref core.Date) (core.Date, core.Date) {
	offset := (int(ref.Weekday()) + 6) % 7
	start := ref.AddDays(-offset)
	return start, start.AddDays(6)
}

// MonthlyWindow covers the calendar month.
type MonthlyWindow struct{}

func (MonthlyWindow) Window(ref core.Date) (core.Date, core.Date) {
	start := core.NewDate(ref.Year(), int(ref.Month()), 1)
	return start, core.Date{Time: start.AddDate(0, 1, -1)}
}

// YearlyWindow covers the calendar year.
type YearlyWindow struct{}

func (YearlyWindow) Window(ref core.Date) (core.Date, core.Date) {
	return core.NewDate(ref.Year(), 1, 1), core.NewDate(ref.Year(), 12, 31)
}

var periodWindows = map[string]PeriodWindow{
	"daily":   DailyWindow{},
	"weekly":  WeeklyWindow{},
	"monthly": MonthlyWindow{},
	"yearly":  YearlyWindow{},
}

// GetPeriodWindow returns the window for a period tag (case-insensitive).
func GetPeriodWindow(period string) (PeriodWindow, error) {
	w, ok := periodWindows[strings.ToLower(strings.TrimSpace(period))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownPeriod, period)
	}
	return w, nil
}

// RegisterPeriodWindow adds or replaces the window for a period tag.
func RegisterPeriodWindow(period string, w PeriodWindow) {
	periodWindows[strings.ToLower(strings.TrimSpace(period))] = w
}
