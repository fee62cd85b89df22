package main

import (
	"context"
	"sort"
	"strings"

	"ledger/internal/core"
	"ledger/internal/services"
)

func (s *session) accountStats(ctx context.Context) error {
	accts, err := s.accounts.List(ctx)
	if err != nil {
		return err
	}
	if len(accts) == 0 {
		s.println("No accounts found. Please create an account first (addacct).")
		return nil
	}
	s.println("Choose account to view summary:")
	for i, a := range accts {
		s.printf("%d) %s\n", i+1, a.Name)
	}
	idx, ok, err := s.askIndex("account index: ", len(accts))
	if err != nil || !ok {
		return err
	}

	sum, err := s.stats.AccountSummary(ctx, accts[idx].ID)
	if err != nil {
		return err
	}
	s.printf("Account summary for %s:\n", accts[idx].Name)
	s.printSummary(sum)
	return nil
}

func (s *session) summary(ctx context.Context) error {
	start, end, err := s.askRange()
	if err != nil {
		return err
	}
	sum, err := s.stats.Summary(ctx, start, end, "")
	if err != nil {
		return err
	}
	s.printSummary(sum)
	return nil
}

func (s *session) byCategory(ctx context.Context) error {
	start, end, err := s.askRange()
	if err != nil {
		return err
	}
	totals, err := s.stats.ByCategory(ctx, start, end, "")
	if err != nil {
		return err
	}
	if len(totals) == 0 {
		s.println("No records in range.")
		return nil
	}
	n, err := s.loadNames(ctx)
	if err != nil {
		return err
	}

	// Uncategorized and dangling ids share the catch-all label.
	byName := map[string]float64{}
	for id, total := range totals {
		key := id
		byName[n.category(&key)] += total
	}
	labels := make([]string, 0, len(byName))
	for label := range byName {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if byName[labels[i]] != byName[labels[j]] {
			return byName[labels[i]] > byName[labels[j]]
		}
		return labels[i] < labels[j]
	})
	for _, label := range labels {
		s.printf("%s: %s\n", label, amount(byName[label]))
	}
	s.printf("total: %s\n", amount(totals.Total()))
	return nil
}

func (s *session) setBudget(ctx context.Context) error {
	categoryID, err := s.chooseOptionalCategory(ctx, "Choose category for the budget (Enter for all categories):")
	if err != nil {
		return err
	}
	limit, err := s.askAmount("limit: ")
	if err != nil {
		return err
	}

	var period string
	for {
		if period, err = s.ask("period (daily/weekly/monthly/yearly): "); err != nil {
			return err
		}
		period = strings.ToLower(period)
		if _, err := services.GetPeriodWindow(period); err == nil {
			break
		}
		s.println("unknown period")
	}

	b := core.NewBudget(core.Optional(categoryID), limit, period)
	if err := b.Validate(); err != nil {
		return err
	}
	if err := s.budgets.Set(ctx, b); err != nil {
		return err
	}
	s.printf("budget set: %s %s per %s (id=%s)\n", s.budgetScope(ctx, b), amount(b.Limit), periodUnit(b.Period), core.ShortID(b.ID))
	return nil
}

func (s *session) listBudgets(ctx context.Context) error {
	budgets, err := s.budgets.List(ctx)
	if err != nil {
		return err
	}
	if len(budgets) == 0 {
		s.println("No budgets.")
		return nil
	}
	for i, b := range budgets {
		s.printf("%d) %s %s %s (id=%s)\n", i+1, s.budgetScope(ctx, &b), amount(b.Limit), b.Period, core.ShortID(b.ID))
	}
	return nil
}

func (s *session) budgetScope(ctx context.Context, b *core.Budget) string {
	if b.CategoryID == nil {
		return "All categories"
	}
	c, err := s.categories.Get(ctx, *b.CategoryID)
	if err != nil {
		return core.OtherCategoryName
	}
	return c.Name
}

func periodUnit(period string) string {
	switch period {
	case "daily":
		return "day"
	case "weekly":
		return "week"
	case "monthly":
		return "month"
	case "yearly":
		return "year"
	}
	return period
}

func (s *session) checkBudgets(ctx context.Context) error {
	alerts, err := s.monitor.Check(ctx, s.store.Today())
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		s.println("No new budget alerts.")
		return nil
	}
	for _, a := range alerts {
		s.println("ALERT:", a.Message)
	}
	return nil
}

func (s *session) listNotifications(ctx context.Context) error {
	list, err := s.notifications.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		s.println("No notifications.")
		return nil
	}
	for _, n := range list {
		s.printf("%s [%s] %s\n", n.Timestamp.Format("2006-01-02 15:04"), n.Type, n.Message)
	}
	return nil
}
