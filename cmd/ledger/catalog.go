package main

import (
	"context"
	"strings"

	"ledger/internal/core"
)

func (s *session) addCategory(ctx context.Context) error {
	name, err := s.ask("name: ")
	if err != nil {
		return err
	}
	c := core.NewCategory(name)
	if err := c.Validate(); err != nil {
		s.println("name is required")
		return nil
	}
	if err := s.categories.Add(ctx, c); err != nil {
		return err
	}
	s.printf("category added: %s (id=%s)\n", c.Name, core.ShortID(c.ID))
	return nil
}

func (s *session) listCategories(ctx context.Context) error {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return err
	}
	for _, c := range cats {
		s.println(c.Name)
	}
	return nil
}

func (s *session) addAccount(ctx context.Context) error {
	name, err := s.ask("account name: ")
	if err != nil {
		return err
	}
	currency, err := s.ask("currency (optional, default " + core.DefaultCurrency + "): ")
	if err != nil {
		return err
	}

	a := core.NewAccount(name)
	if currency != "" {
		a.Currency = strings.ToUpper(currency)
	}
	if err := a.Validate(); err != nil {
		s.println("invalid account:", err)
		return nil
	}
	if err := s.accounts.Add(ctx, a); err != nil {
		return err
	}
	s.printf("account added: %s (id=%s)\n", a.Name, core.ShortID(a.ID))
	return nil
}

func (s *session) listAccounts(ctx context.Context) error {
	accts, err := s.accounts.List(ctx)
	if err != nil {
		return err
	}
	for i, a := range accts {
		s.printf("%d) %s  balance=%s  (id=%s)\n", i+1, a.Name, core.FormatAmount(a.Balance, a.Currency), core.ShortID(a.ID))
	}
	return nil
}

func (s *session) deleteAccount(ctx context.Context) error {
	accts, err := s.accounts.List(ctx)
	if err != nil {
		return err
	}
	if len(accts) == 0 {
		s.println("No accounts found.")
		return nil
	}
	s.println("Choose account to delete:")
	for i, a := range accts {
		s.printf("%d) %s\n", i+1, a.Name)
	}
	idx, ok, err := s.askIndex("account index: ", len(accts))
	if err != nil || !ok {
		return err
	}
	acc := accts[idx]

	refs, err := s.records.CountByAccount(ctx, acc.ID)
	if err != nil {
		return err
	}
	force := false
	if refs > 0 {
		s.printf("Account has %d records. Use force to delete account and its records.\n", refs)
		if force, err = s.confirm("Type YES to force delete (will remove related records): "); err != nil {
			return err
		}
	}
	ok, err = s.confirm("Type YES to delete account '" + acc.Name + "': ")
	if err != nil {
		return err
	}
	if !ok {
		s.println("aborted")
		return nil
	}

	deleted, err := s.accounts.Delete(ctx, acc.ID, force)
	if err != nil {
		return err
	}
	if deleted {
		s.println("deleted")
	} else {
		s.println("cannot delete account (has dependent records)")
	}
	return nil
}

func (s *session) deleteCategory(ctx context.Context) error {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		s.println("No categories found.")
		return nil
	}
	s.println("Choose category to delete:")
	for i, c := range cats {
		s.printf("%d) %s\n", i+1, c.Name)
	}
	idx, ok, err := s.askIndex("category index: ", len(cats))
	if err != nil || !ok {
		return err
	}
	cat := cats[idx]
	if cat.IsReserved() {
		s.printf("Cannot delete built-in category '%s'.\n", core.OtherCategoryName)
		return nil
	}

	refs, err := s.records.CountByCategory(ctx, cat.ID)
	if err != nil {
		return err
	}
	force := false
	if refs > 0 {
		s.printf("Category has %d records. Force will detach records (set to uncategorized) and delete category.\n", refs)
		if force, err = s.confirm("Type YES to force (detach records and delete): "); err != nil {
			return err
		}
	}
	ok, err = s.confirm("Type YES to delete category '" + cat.Name + "': ")
	if err != nil {
		return err
	}
	if !ok {
		s.println("aborted")
		return nil
	}

	deleted, err := s.categories.Delete(ctx, cat.ID, force)
	if err != nil {
		return err
	}
	if deleted {
		s.println("deleted")
	} else {
		s.println("cannot delete category (has dependent records)")
	}
	return nil
}
