// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := buildDSN(dbPath)

	if err := runMigrations(dsn); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// buildDSN applies per-connection pragmas. Foreign keys must be enabled on every
// pooled connection for cascades to work.
func buildDSN(dbPath string) string {
	pragmas := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_pragma=journal_mode(WAL)",
	}
	return "file:" + dbPath + "?" + strings.Join(pragmas, "&")
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateExpense persists a new expense and its splits in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO expenses (group_id, paid_by_id, amount_cents, description, split_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		expense.GroupID, expense.PaidByID, expense.Amount, expense.Description, string(expense.SplitType), expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	expenseID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read expense id: %w", err)
	}

	splitIDs := make([]int64, len(expense.Splits))
	for i := range expense.Splits {
		split := &expense.Splits[i]
		if split.CreatedAt == 0 {
			split.CreatedAt = expense.CreatedAt
		}
		if split.Status == "" {
			split.Status = models.StatusPending
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO splits (expense_id, group_id, user_id, amount_cents, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			expenseID, expense.GroupID, split.UserID, split.Amount, string(split.Status), split.CreatedAt, split.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
		if splitIDs[i], err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read split id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Only publish IDs once the rows are durable.
	expense.ID = expenseID
	for i := range expense.Splits {
		expense.Splits[i].ID = splitIDs[i]
		expense.Splits[i].ExpenseID = expenseID
		expense.Splits[i].GroupID = expense.GroupID
	}
	return nil
}

const expenseColumns = `id, group_id, paid_by_id, amount_cents, description, split_type, created_at`

func scanExpense(row interface{ Scan(...any) error }) (*models.Expense, error) {
	e := &models.Expense{}
	var splitType string
	if err := row.Scan(&e.ID, &e.GroupID, &e.PaidByID, &e.Amount, &e.Description, &splitType, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.SplitType = models.SplitType(splitType)
	return e, nil
}

// GetExpense retrieves an expense by ID, including its splits. Both reads
// share one transaction so a concurrent delete cannot strip the splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID int64) (*models.Expense, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	expense, err := scanExpense(tx.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?", expenseID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFoundError("expense", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	expense.Splits, err = querySplits(ctx, tx,
		"SELECT "+splitColumns+" FROM splits WHERE expense_id = ? ORDER BY id", expenseID)
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpenses retrieves all expenses with their splits.
func (s *SQLiteStore) ListExpenses(ctx context.Context) ([]*models.Expense, error) {
	return s.listExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses ORDER BY created_at DESC, id DESC",
		"SELECT "+splitColumns+" FROM splits ORDER BY id")
}

// ListExpensesByGroup retrieves all expenses of a group with their splits.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID int64) ([]*models.Expense, error) {
	return s.listExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE group_id = ? ORDER BY created_at DESC, id DESC",
		"SELECT "+splitColumns+" FROM splits WHERE group_id = ? ORDER BY id",
		groupID)
}

// listExpenses reads expenses and their splits inside one read transaction so
// a concurrent insert cannot show up in one query and not the other.
func (s *SQLiteStore) listExpenses(ctx context.Context, expenseQuery, splitQuery string, args ...any) ([]*models.Expense, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, expenseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	byID := make(map[int64]*models.Expense)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
		byID[expense.ID] = expense
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	splits, err := querySplits(ctx, tx, splitQuery, args...)
	if err != nil {
		return nil, err
	}
	for _, split := range splits {
		if expense, ok := byID[split.ExpenseID]; ok {
			expense.Splits = append(expense.Splits, split)
		}
	}

	return expenses, nil
}

// DeleteExpense removes an expense; splits are removed by ON DELETE CASCADE.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n == 0 {
		return models.NewNotFoundError("expense", expenseID)
	}
	return nil
}
