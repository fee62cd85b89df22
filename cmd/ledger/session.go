package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/storage"
)

const (
	noAccountLabel = "No account"
	confirmWord    = "YES"
)

var errCancelled = errors.New("cancelled")

type command func(ctx context.Context) error

// session is one interactive run over a single store.
type session struct {
	in  *bufio.Scanner
	out io.Writer

	store         *storage.Store
	records       *storage.RecordRepository
	categories    *storage.CategoryRepository
	accounts      *storage.AccountRepository
	budgets       *storage.BudgetRepository
	notifications *storage.NotificationRepository
	stats         *storage.Statistics
	service       *services.RecordService
	monitor       *services.BudgetMonitor

	backupDir string
	now       func() time.Time
	logger    *log.Logger

	commands map[string]command
}

func newSession(in io.Reader, out io.Writer, store *storage.Store, service *services.RecordService, monitor *services.BudgetMonitor, backupDir string, logger *log.Logger) *session {
	s := &session{
		in:            bufio.NewScanner(in),
		out:           out,
		store:         store,
		records:       storage.NewRecordRepository(store),
		categories:    storage.NewCategoryRepository(store),
		accounts:      storage.NewAccountRepository(store),
		budgets:       storage.NewBudgetRepository(store),
		notifications: storage.NewNotificationRepository(store),
		stats:         storage.NewStatistics(store),
		service:       service,
		monitor:       monitor,
		backupDir:     backupDir,
		now:           time.Now,
		logger:        logger,
	}
	s.commands = map[string]command{
		"add":           s.addRecord,
		"list":          s.listRecords,
		"stats":         s.accountStats,
		"summary":       s.summary,
		"bycat":         s.byCategory,
		"addcat":        s.addCategory,
		"listcat":       s.listCategories,
		"addacct":       s.addAccount,
		"listacct":      s.listAccounts,
		"delrec":        s.deleteRecord,
		"deleterec":     s.deleteRecord,
		"delacct":       s.deleteAccount,
		"delcat":        s.deleteCategory,
		"showrecords":   s.showRecords,
		"search":        s.search,
		"export":        s.exportCSV,
		"import":        s.importCSV,
		"xlsx":          s.exportXLSX,
		"backup":        s.backup,
		"restore":       s.restore,
		"setbudget":     s.setBudget,
		"listbudget":    s.listBudgets,
		"checkbudget":   s.checkBudgets,
		"notifications": s.listNotifications,
		"reset":         s.reset,
		"help":          s.help,
	}
	return s
}

// loop reads commands until exit or end of input.
func (s *session) loop(ctx context.Context) error {
	for {
		line, err := s.ask("> ")
		if errors.Is(err, io.EOF) {
			s.println()
			s.println("exit")
			return nil
		}
		if err != nil {
			return err
		}

		name := strings.ToLower(line)
		if name == "" {
			continue
		}
		if name == "q" || name == "quit" || name == "exit" {
			return nil
		}

		cmd, ok := s.commands[name]
		if !ok {
			s.println("unknown command")
			continue
		}

		err = cmd(ctx)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			s.println()
			s.println("exit")
			return nil
		case errors.Is(err, errCancelled):
			s.println("cancelled")
		default:
			s.logger.ErrorContext(ctx, "Command failed", log.FieldOperation, name, log.FieldError, err)
			s.println("error:", err)
		}
	}
}

func (s *session) help(context.Context) error {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		if name == "deleterec" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	s.println("commands: " + strings.Join(names, ", ") + ", exit")
	return nil
}

func (s *session) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *session) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

// ask prints prompt and returns the next trimmed input line.
func (s *session) ask(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *session) askAmount(prompt string) (float64, error) {
	for {
		in, err := s.ask(prompt)
		if err != nil {
			return 0, err
		}
		amount, err := core.ParseAmount(in)
		if err == nil {
			return amount, nil
		}
		s.println("invalid amount, please input a non-negative number")
	}
}

func (s *session) askType(prompt string) (core.RecordType, error) {
	for {
		in, err := s.ask(prompt)
		if err != nil {
			return "", err
		}
		if in == "" {
			s.println("type is required (income/expense)")
			continue
		}
		t, err := core.ParseRecordType(in)
		if err == nil {
			return t, nil
		}
		s.println("invalid type, please enter 'income' or 'expense'")
	}
}

// askDate loops until a valid date or a blank line, which yields fallback.
func (s *session) askDate(prompt string, fallback core.Date) (core.Date, error) {
	for {
		in, err := s.ask(prompt)
		if err != nil {
			return core.Date{}, err
		}
		d, err := core.ParseDateOr(in, fallback)
		if err == nil {
			return d, nil
		}
		s.println("invalid date format, expected YYYY-MM-DD (or leave empty)")
	}
}

// askRange asks for optional start and end dates.
func (s *session) askRange() (core.Date, core.Date, error) {
	start, err := s.askDate("start date (YYYY-MM-DD, optional): ", core.Date{})
	if err != nil {
		return core.Date{}, core.Date{}, err
	}
	end, err := s.askDate("end date (YYYY-MM-DD, optional): ", core.Date{})
	if err != nil {
		return core.Date{}, core.Date{}, err
	}
	return start, end, nil
}

// askIndex reads a 1-based choice among n items and returns it 0-based.
// ok is false for a blank, non-numeric or out of range answer.
func (s *session) askIndex(prompt string, n int) (int, bool, error) {
	in, err := s.ask(prompt)
	if err != nil || in == "" {
		return 0, false, err
	}
	idx, err := strconv.Atoi(in)
	if err != nil {
		s.println("invalid input, enter a number")
		return 0, false, nil
	}
	if idx < 1 || idx > n {
		s.println("invalid index")
		return 0, false, nil
	}
	return idx - 1, true, nil
}

// confirm reports whether the user typed YES.
func (s *session) confirm(prompt string) (bool, error) {
	in, err := s.ask(prompt)
	if err != nil {
		return false, err
	}
	return in == confirmWord, nil
}

// names resolves ids to display names, tolerating dangling references.
type names struct {
	categories map[string]string
	accounts   map[string]string
}

func (s *session) loadNames(ctx context.Context) (names, error) {
	n := names{categories: map[string]string{}, accounts: map[string]string{}}
	cats, err := s.categories.List(ctx)
	if err != nil {
		return n, err
	}
	for _, c := range cats {
		n.categories[c.ID] = c.Name
	}
	accts, err := s.accounts.List(ctx)
	if err != nil {
		return n, err
	}
	for _, a := range accts {
		n.accounts[a.ID] = a.Name
	}
	return n, nil
}

func (n names) category(id *string) string {
	if name, ok := n.categories[core.Value(id)]; ok {
		return name
	}
	return core.OtherCategoryName
}

func (n names) account(id *string) string {
	if name, ok := n.accounts[core.Value(id)]; ok {
		return name
	}
	return noAccountLabel
}

func (s *session) printRecords(recs []core.Record, n names) {
	for i, r := range recs {
		s.printf("%d) %s %s %s %s %s %s %s\n", i+1,
			r.Date, r.Type, amount(r.Amount),
			n.category(r.CategoryID), n.account(r.AccountID),
			core.Value(r.Note), core.ShortID(r.ID))
	}
}

func (s *session) printSummary(sum core.Summary) {
	s.printf("income=%s expense=%s balance=%s\n", amount(sum.Income), amount(sum.Expense), amount(sum.Balance))
}

func amount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
