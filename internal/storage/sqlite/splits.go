package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/settleup/internal/models"
)

const splitColumns = `id, expense_id, group_id, user_id, amount_cents, status, created_at, updated_at`

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func scanSplit(row interface{ Scan(...any) error }, split *models.Split) error {
	var status string
	if err := row.Scan(&split.ID, &split.ExpenseID, &split.GroupID, &split.UserID,
		&split.Amount, &status, &split.CreatedAt, &split.UpdatedAt); err != nil {
		return err
	}
	split.Status = models.SplitStatus(status)
	return nil
}

func querySplits(ctx context.Context, q querier, query string, args ...any) ([]models.Split, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()

	var splits []models.Split
	for rows.Next() {
		var split models.Split
		if err := scanSplit(rows, &split); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return splits, nil
}

// GetSplit retrieves a split by ID.
func (s *SQLiteStore) GetSplit(ctx context.Context, splitID int64) (*models.Split, error) {
	split := &models.Split{}
	err := scanSplit(s.db.QueryRowContext(ctx,
		"SELECT "+splitColumns+" FROM splits WHERE id = ?", splitID), split)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFoundError("split", splitID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split: %w", err)
	}
	return split, nil
}

// ListSplitsByUser retrieves every split owed by a user.
func (s *SQLiteStore) ListSplitsByUser(ctx context.Context, userID int64) ([]models.Split, error) {
	return querySplits(ctx, s.db, "SELECT "+splitColumns+" FROM splits WHERE user_id = ? ORDER BY id", userID)
}

// ListSplitsByExpense retrieves the splits of one expense.
func (s *SQLiteStore) ListSplitsByExpense(ctx context.Context, expenseID int64) ([]models.Split, error) {
	return querySplits(ctx, s.db, "SELECT "+splitColumns+" FROM splits WHERE expense_id = ? ORDER BY id", expenseID)
}

// ListSplitsByGroup retrieves the splits of every expense in a group.
func (s *SQLiteStore) ListSplitsByGroup(ctx context.Context, groupID int64) ([]models.Split, error) {
	return querySplits(ctx, s.db, "SELECT "+splitColumns+" FROM splits WHERE group_id = ? ORDER BY id", groupID)
}

// CompareAndSetSplitStatus updates the status only if it still equals from.
// The conditional UPDATE is a single statement, so SQLite serializes competing writers.
func (s *SQLiteStore) CompareAndSetSplitStatus(ctx context.Context, splitID int64, from, to models.SplitStatus, updatedAt int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE splits SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		string(to), updatedAt, splitID, string(from),
	)
	if err != nil {
		return false, fmt.Errorf("failed to update split status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to update split status: %w", err)
	}
	if n == 1 {
		return true, nil
	}

	// Distinguish a lost race from an unknown split.
	if _, err := s.GetSplit(ctx, splitID); err != nil {
		return false, err
	}
	return false, nil
}
