package main

import (
	"context"
	"strconv"
	"strings"

	"ledger/internal/core"
)

const (
	defaultAccountName = "Default account"
	listLimit          = 50
	recentLimit        = 10
)

func (s *session) addRecord(ctx context.Context) error {
	amt, err := s.askAmount("amount: ")
	if err != nil {
		return err
	}
	t, err := s.askType("type (income/expense): ")
	if err != nil {
		return err
	}
	d, err := s.askDate("date (YYYY-MM-DD, optional): ", s.store.Today())
	if err != nil {
		return err
	}

	accountID, err := s.chooseAccountForRecord(ctx)
	if err != nil {
		return err
	}
	categoryID, err := s.chooseCategoryForRecord(ctx)
	if err != nil {
		return err
	}

	note, err := s.ask("note (optional): ")
	if err != nil {
		return err
	}

	rec := core.NewRecord(amt, t, d)
	rec.AccountID = &accountID
	rec.CategoryID = categoryID
	rec.Note = core.Optional(note)
	if err := rec.Validate(); err != nil {
		return err
	}

	alerts, err := s.service.Create(ctx, rec)
	if err != nil {
		return err
	}
	s.printf("added: %s %s on %s (id=%s)\n", amount(rec.Amount), rec.Type, rec.Date, core.ShortID(rec.ID))
	for _, a := range alerts {
		s.println("ALERT:", a.Message)
	}
	return nil
}

// chooseAccountForRecord requires an account, creating a default one when
// none exist.
func (s *session) chooseAccountForRecord(ctx context.Context) (string, error) {
	accts, err := s.accounts.List(ctx)
	if err != nil {
		return "", err
	}
	if len(accts) == 0 {
		s.printf("No accounts found. Creating a default account named %q.\n", defaultAccountName)
		acc := core.NewAccount(defaultAccountName)
		if err := s.accounts.Add(ctx, acc); err != nil {
			return "", err
		}
		accts = append(accts, *acc)
	}

	for {
		s.println("Choose an account by index:")
		for i, a := range accts {
			s.printf("%d) %s\n", i+1, a.Name)
		}
		idx, ok, err := s.askIndex("account index: ", len(accts))
		if err != nil {
			return "", err
		}
		if ok {
			return accts[idx].ID, nil
		}
		s.println("try again")
	}
}

// chooseCategoryForRecord returns nil when the user skips; with no
// categories at all the reserved catch-all category is created and used.
func (s *session) chooseCategoryForRecord(ctx context.Context) (*string, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(cats) == 0 {
		other, err := s.categories.EnsureDefault(ctx)
		if err != nil {
			return nil, err
		}
		return &other.ID, nil
	}

	s.println("Choose a category by index (optional, press Enter to skip):")
	for i, c := range cats {
		s.printf("%d) %s\n", i+1, c.Name)
	}
	idx, ok, err := s.askIndex("category index (optional): ", len(cats))
	if err != nil || !ok {
		return nil, err
	}
	return &cats[idx].ID, nil
}

func (s *session) listRecords(ctx context.Context) error {
	recs, err := s.records.List(ctx, listLimit, 0)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		s.println("No records.")
		return nil
	}
	n, err := s.loadNames(ctx)
	if err != nil {
		return err
	}
	s.printRecords(recs, n)
	return nil
}

func (s *session) deleteRecord(ctx context.Context) error {
	recent, err := s.records.List(ctx, recentLimit, 0)
	if err != nil {
		return err
	}
	if len(recent) == 0 {
		s.println("No records available to delete.")
		return nil
	}
	n, err := s.loadNames(ctx)
	if err != nil {
		return err
	}
	s.println("Recent records:")
	s.printRecords(recent, n)

	sel, err := s.ask("Choose record index to delete or paste full record_id (Enter to cancel): ")
	if err != nil {
		return err
	}
	if sel == "" {
		return errCancelled
	}

	id := sel
	if idx, err := strconv.Atoi(sel); err == nil {
		if idx < 1 || idx > len(recent) {
			s.println("invalid index")
			return nil
		}
		id = recent[idx-1].ID
	}

	ok, err := s.confirm("Type YES to permanently delete selected record (id starts with " + core.ShortID(id) + "): ")
	if err != nil {
		return err
	}
	if !ok {
		s.println("aborted")
		return nil
	}

	deleted, err := s.service.Delete(ctx, id)
	if err != nil {
		return err
	}
	if deleted {
		s.println("deleted")
	} else {
		s.println("record not found")
	}
	return nil
}

func (s *session) showRecords(ctx context.Context) error {
	accts, err := s.accounts.List(ctx)
	if err != nil {
		return err
	}
	if len(accts) == 0 {
		s.println("No accounts found. Please create an account first (addacct).")
		return nil
	}

	accountID, err := s.chooseAccountByIndexOrName(accts)
	if err != nil {
		return err
	}

	categoryID, err := s.chooseOptionalCategory(ctx, "Choose category to filter by (optional):")
	if err != nil {
		return err
	}
	start, end, err := s.askRange()
	if err != nil {
		return err
	}

	recs, err := s.records.Filter(ctx, core.RecordFilter{AccountID: accountID, CategoryID: categoryID, Start: start, End: end})
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		s.println("No records found for the given filters.")
		return nil
	}
	n, err := s.loadNames(ctx)
	if err != nil {
		return err
	}
	s.printRecords(recs, n)
	return nil
}

// chooseAccountByIndexOrName accepts an index, an exact name or an
// unambiguous name fragment. A blank answer cancels.
func (s *session) chooseAccountByIndexOrName(accts []core.Account) (string, error) {
	for {
		s.println("Choose account to filter by (enter index or account name, press Enter to cancel):")
		for i, a := range accts {
			s.printf("%d) %s\n", i+1, a.Name)
		}
		sel, err := s.ask("account index or name: ")
		if err != nil {
			return "", err
		}
		if sel == "" {
			return "", errCancelled
		}

		if idx, err := strconv.Atoi(sel); err == nil {
			if idx >= 1 && idx <= len(accts) {
				return accts[idx-1].ID, nil
			}
			s.println("invalid index, try again")
			continue
		}

		for _, a := range accts {
			if strings.EqualFold(a.Name, sel) {
				return a.ID, nil
			}
		}

		var partial []core.Account
		for _, a := range accts {
			if strings.Contains(strings.ToLower(a.Name), strings.ToLower(sel)) {
				partial = append(partial, a)
			}
		}
		switch len(partial) {
		case 1:
			return partial[0].ID, nil
		case 0:
			s.println("no matching account found; try again or press Enter to cancel")
		default:
			s.println("multiple accounts match that name, please be more specific or use index:")
			for _, a := range partial {
				s.println("-", a.Name)
			}
		}
	}
}

// chooseOptionalCategory returns "" when skipped or when there are no
// categories.
func (s *session) chooseOptionalCategory(ctx context.Context, title string) (string, error) {
	cats, err := s.categories.List(ctx)
	if err != nil || len(cats) == 0 {
		return "", err
	}
	s.println(title)
	for i, c := range cats {
		s.printf("%d) %s\n", i+1, c.Name)
	}
	idx, ok, err := s.askIndex("category index (optional): ", len(cats))
	if err != nil || !ok {
		return "", err
	}
	return cats[idx].ID, nil
}

func (s *session) search(ctx context.Context) error {
	text, err := s.ask("text (matches note and tags, optional): ")
	if err != nil {
		return err
	}
	categoryID, err := s.chooseOptionalCategory(ctx, "Choose category to narrow by (optional):")
	if err != nil {
		return err
	}
	start, end, err := s.askRange()
	if err != nil {
		return err
	}

	recs, err := s.records.Search(ctx, core.SearchQuery{Text: text, CategoryID: categoryID, Start: start, End: end})
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		s.println("No matching records.")
		return nil
	}
	n, err := s.loadNames(ctx)
	if err != nil {
		return err
	}
	s.printRecords(recs, n)
	return nil
}
