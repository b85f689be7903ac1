// Package seed loads a small demo data set into an empty store.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/storage"
)

// DemoPassword is the password of every seeded user.
const DemoPassword = "password123"

type demoExpense struct {
	group, payer, amount, description string
}

var (
	demoUsers = []struct{ key, name string }{
		{"alice", "Alice Johnson"},
		{"bob", "Bob Smith"},
		{"charlie", "Charlie Brown"},
		{"diana", "Diana Prince"},
		{"eve", "Eve Wilson"},
	}

	demoGroups = []struct {
		name    string
		members []string
	}{
		{"Roommates", []string{"alice", "bob", "charlie"}},
		{"Vacation Trip", []string{"alice", "bob", "charlie", "diana", "eve"}},
		{"Dinner Club", []string{"alice", "diana", "eve"}},
	}

	demoExpenses = []demoExpense{
		{"Roommates", "alice", "1500.00", "Monthly Rent"},
		{"Roommates", "bob", "200.00", "Electricity and Water"},
		{"Vacation Trip", "diana", "800.00", "Hotel Booking"},
		{"Vacation Trip", "eve", "300.00", "Group Dinner"},
		{"Dinner Club", "alice", "120.00", "Italian Restaurant"},
	}

	// demoPayments are (user, expense description) pairs whose splits start PAID.
	demoPayments = [][2]string{
		{"alice", "Electricity and Water"},
		{"bob", "Monthly Rent"},
	}
)

// Loader writes the demo data through the same ledger paths the API uses.
type Loader struct {
	store    storage.Store
	auth     auth.Authenticator
	expenses *ledger.ExpenseService
	splits   *ledger.SplitLedger
}

func NewLoader(store storage.Store, authenticator auth.Authenticator, expenses *ledger.ExpenseService, splits *ledger.SplitLedger) *Loader {
	return &Loader{store: store, auth: authenticator, expenses: expenses, splits: splits}
}

// Load seeds the store unless it already has users. It reports whether data
// was written.
func (l *Loader) Load(ctx context.Context) (bool, error) {
	n, err := l.store.CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if n > 0 {
		slog.Info("Store already has data, skipping seed", "users", n)
		return false, nil
	}

	slog.Info("Seeding store with sample data")

	users := make(map[string]*models.User, len(demoUsers))
	for _, u := range demoUsers {
		user, err := l.auth.Register(ctx, u.key+"@example.com", u.name, DemoPassword)
		if err != nil {
			return false, fmt.Errorf("failed to create user %s: %w", u.key, err)
		}
		users[u.key] = user
	}

	groups := make(map[string]int64, len(demoGroups))
	for _, g := range demoGroups {
		group := &models.Group{Name: g.name}
		for _, key := range g.members {
			group.MemberIDs = append(group.MemberIDs, users[key].ID)
		}
		if err := l.store.CreateGroup(ctx, group); err != nil {
			return false, fmt.Errorf("failed to create group %q: %w", g.name, err)
		}
		groups[g.name] = group.ID
	}

	expenses := make(map[string]int64, len(demoExpenses))
	for _, e := range demoExpenses {
		expense, err := l.expenses.AddGroupExpense(ctx, groups[e.group], users[e.payer].ID, money.MustParse(e.amount), e.description)
		if err != nil {
			return false, fmt.Errorf("failed to create expense %q: %w", e.description, err)
		}
		expenses[e.description] = expense.ID
	}

	for _, p := range demoPayments {
		split, err := l.splits.SplitForUserAndExpense(ctx, users[p[0]].ID, expenses[p[1]])
		if err != nil {
			return false, fmt.Errorf("failed to find split for %s: %w", p[0], err)
		}
		if _, err := l.splits.MarkPaid(ctx, split.ID); err != nil {
			return false, fmt.Errorf("failed to mark split %d paid: %w", split.ID, err)
		}
	}

	slog.Info("Sample data loaded",
		"users", len(users),
		"groups", len(groups),
		"expenses", len(expenses),
	)
	return true, nil
}
