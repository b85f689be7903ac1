// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/settleup/internal/models"
)

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, in-memory, etc.)
// without changing the ledger or service layers.
//
// Lookups of unknown IDs return a *models.NotFoundError, except GetUserByEmail
// which returns nil, nil so callers can probe for registration.
type Store interface {
	// CreateUser persists a new user and assigns user.ID.
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	CountUsers(ctx context.Context) (int, error)

	// CreateGroup persists a new group with its members and assigns group.ID.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID int64) (*models.Group, error)
	ListGroups(ctx context.Context) ([]*models.Group, error)
	// AddGroupMember adds a user to a group. Adding an existing member is a no-op.
	AddGroupMember(ctx context.Context, groupID, userID int64) error
	// DeleteGroup removes a group together with its expenses and their splits.
	DeleteGroup(ctx context.Context, groupID int64) error

	// CreateExpense persists an expense and all of its splits atomically,
	// assigning IDs to the expense and each split. Readers never observe
	// the expense without its full set of splits.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	// GetExpense returns the expense with its splits.
	GetExpense(ctx context.Context, expenseID int64) (*models.Expense, error)
	// ListExpenses returns every expense with its splits, newest first.
	ListExpenses(ctx context.Context) ([]*models.Expense, error)
	// ListExpensesByGroup returns a group's expenses with their splits, newest first.
	ListExpensesByGroup(ctx context.Context, groupID int64) ([]*models.Expense, error)
	// DeleteExpense removes an expense and cascades to its splits.
	DeleteExpense(ctx context.Context, expenseID int64) error

	GetSplit(ctx context.Context, splitID int64) (*models.Split, error)
	ListSplitsByUser(ctx context.Context, userID int64) ([]models.Split, error)
	ListSplitsByExpense(ctx context.Context, expenseID int64) ([]models.Split, error)
	ListSplitsByGroup(ctx context.Context, groupID int64) ([]models.Split, error)

	// CompareAndSetSplitStatus moves a split from one status to another only if
	// its stored status still equals from. It reports whether the write happened.
	CompareAndSetSplitStatus(ctx context.Context, splitID int64, from, to models.SplitStatus, updatedAt int64) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}
