// Package memory provides an in-process implementation of storage.Store.
// It backs tests and the DATA_BACKEND=memory mode; data is lost on exit.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps every record behind one RWMutex. Writers hold the lock for the
// whole operation, so an expense and its splits become visible together.
type Store struct {
	mu sync.RWMutex

	nextUserID, nextGroupID, nextExpenseID, nextSplitID int64

	users    map[int64]*models.User
	groups   map[int64]*models.Group
	expenses map[int64]*models.Expense // Splits field is not populated here
	splits   map[int64]*models.Split
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:    make(map[int64]*models.User),
		groups:   make(map[int64]*models.Group),
		expenses: make(map[int64]*models.Expense),
		splits:   make(map[int64]*models.Split),
	}
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	for _, u := range s.users {
		if u.Email == email {
			return models.NewValidationError("email", "already registered")
		}
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}
	s.nextUserID++
	user.ID = s.nextUserID
	stored := *user
	stored.Email = email
	s.users[user.ID] = &stored
	return nil
}

func (s *Store) GetUser(_ context.Context, userID int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, models.NewNotFoundError("user", userID)
	}
	user := *u
	return &user, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range s.users {
		if u.Email == email {
			user := *u
			return &user, nil
		}
	}
	return nil, nil
}

func (s *Store) ListUsers(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		user := *u
		users = append(users, &user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *Store) CountUsers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func (s *Store) CreateGroup(_ context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := make([]int64, 0, len(group.MemberIDs))
	for _, id := range group.MemberIDs {
		if _, ok := s.users[id]; !ok {
			return models.NewNotFoundError("user", id)
		}
		if !slices.Contains(members, id) {
			members = append(members, id)
		}
	}
	slices.Sort(members)

	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	s.nextGroupID++
	group.ID = s.nextGroupID
	group.MemberIDs = members
	s.groups[group.ID] = cloneGroup(group)
	return nil
}

func cloneGroup(g *models.Group) *models.Group {
	c := *g
	c.MemberIDs = slices.Clone(g.MemberIDs)
	if c.MemberIDs == nil {
		c.MemberIDs = []int64{}
	}
	return &c
}

func (s *Store) GetGroup(_ context.Context, groupID int64) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[groupID]
	if !ok {
		return nil, models.NewNotFoundError("group", groupID)
	}
	return cloneGroup(g), nil
}

func (s *Store) ListGroups(_ context.Context) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]*models.Group, 0, len(s.groups))
	for _, g := range s.groups {
		groups = append(groups, cloneGroup(g))
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

func (s *Store) AddGroupMember(_ context.Context, groupID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[groupID]
	if !ok {
		return models.NewNotFoundError("group", groupID)
	}
	if _, ok := s.users[userID]; !ok {
		return models.NewNotFoundError("user", userID)
	}
	if !g.HasMember(userID) {
		g.MemberIDs = append(g.MemberIDs, userID)
		slices.Sort(g.MemberIDs)
	}
	return nil
}

func (s *Store) DeleteGroup(_ context.Context, groupID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[groupID]; !ok {
		return models.NewNotFoundError("group", groupID)
	}
	for id, e := range s.expenses {
		if e.GroupID == groupID {
			s.deleteExpenseLocked(id)
		}
	}
	delete(s.groups, groupID)
	return nil
}

func (s *Store) CreateExpense(_ context.Context, expense *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[expense.GroupID]; !ok {
		return models.NewNotFoundError("group", expense.GroupID)
	}
	for _, split := range expense.Splits {
		if _, ok := s.users[split.UserID]; !ok {
			return models.NewNotFoundError("user", split.UserID)
		}
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	s.nextExpenseID++
	expense.ID = s.nextExpenseID
	for i := range expense.Splits {
		split := &expense.Splits[i]
		s.nextSplitID++
		split.ID = s.nextSplitID
		split.ExpenseID = expense.ID
		split.GroupID = expense.GroupID
		if split.Status == "" {
			split.Status = models.StatusPending
		}
		if split.CreatedAt == 0 {
			split.CreatedAt = expense.CreatedAt
		}
		stored := *split
		s.splits[split.ID] = &stored
	}

	stored := *expense
	stored.Splits = nil
	s.expenses[expense.ID] = &stored
	return nil
}

// expenseLocked assembles an expense with its splits. Caller holds s.mu.
func (s *Store) expenseLocked(e *models.Expense) *models.Expense {
	expense := *e
	expense.Splits = s.splitsLocked(func(sp *models.Split) bool { return sp.ExpenseID == e.ID })
	return &expense
}

func (s *Store) splitsLocked(match func(*models.Split) bool) []models.Split {
	var out []models.Split
	for _, sp := range s.splits {
		if match(sp) {
			out = append(out, *sp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) GetExpense(_ context.Context, expenseID int64) (*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.expenses[expenseID]
	if !ok {
		return nil, models.NewNotFoundError("expense", expenseID)
	}
	return s.expenseLocked(e), nil
}

func (s *Store) ListExpenses(_ context.Context) ([]*models.Expense, error) {
	return s.listExpenses(func(*models.Expense) bool { return true }), nil
}

func (s *Store) ListExpensesByGroup(_ context.Context, groupID int64) ([]*models.Expense, error) {
	return s.listExpenses(func(e *models.Expense) bool { return e.GroupID == groupID }), nil
}

func (s *Store) listExpenses(match func(*models.Expense) bool) []*models.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Expense
	for _, e := range s.expenses {
		if match(e) {
			out = append(out, s.expenseLocked(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *Store) DeleteExpense(_ context.Context, expenseID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[expenseID]; !ok {
		return models.NewNotFoundError("expense", expenseID)
	}
	s.deleteExpenseLocked(expenseID)
	return nil
}

func (s *Store) deleteExpenseLocked(expenseID int64) {
	for id, sp := range s.splits {
		if sp.ExpenseID == expenseID {
			delete(s.splits, id)
		}
	}
	delete(s.expenses, expenseID)
}

func (s *Store) GetSplit(_ context.Context, splitID int64) (*models.Split, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sp, ok := s.splits[splitID]
	if !ok {
		return nil, models.NewNotFoundError("split", splitID)
	}
	split := *sp
	return &split, nil
}

func (s *Store) ListSplitsByUser(_ context.Context, userID int64) ([]models.Split, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.splitsLocked(func(sp *models.Split) bool { return sp.UserID == userID }), nil
}

func (s *Store) ListSplitsByExpense(_ context.Context, expenseID int64) ([]models.Split, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.splitsLocked(func(sp *models.Split) bool { return sp.ExpenseID == expenseID }), nil
}

func (s *Store) ListSplitsByGroup(_ context.Context, groupID int64) ([]models.Split, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.splitsLocked(func(sp *models.Split) bool { return sp.GroupID == groupID }), nil
}

func (s *Store) CompareAndSetSplitStatus(_ context.Context, splitID int64, from, to models.SplitStatus, updatedAt int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.splits[splitID]
	if !ok {
		return false, models.NewNotFoundError("split", splitID)
	}
	if sp.Status != from {
		return false, nil
	}
	sp.Status = to
	sp.UpdatedAt = updatedAt
	return true, nil
}
