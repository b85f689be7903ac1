package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/settleup/internal/models"
)

// CreateGroup persists a new group and its members.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO groups (name, created_at) VALUES (?, ?)",
		group.Name, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	groupID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read group id: %w", err)
	}

	for _, userID := range group.MemberIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO group_members (group_id, user_id) VALUES (?, ?)",
			groupID, userID,
		); err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	group.ID = groupID
	return nil
}

// GetGroup retrieves a group by ID, including its members.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID int64) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM groups WHERE id = ?", groupID,
	).Scan(&group.ID, &group.Name, &group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFoundError("group", groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	group.MemberIDs, err = s.groupMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (s *SQLiteStore) groupMembers(ctx context.Context, groupID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM group_members WHERE group_id = ? ORDER BY user_id", groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	members := []int64{}
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}
	return members, nil
}

// ListGroups retrieves all groups with their members.
func (s *SQLiteStore) ListGroups(ctx context.Context) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, created_at FROM groups ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	for _, group := range groups {
		if group.MemberIDs, err = s.groupMembers(ctx, group.ID); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// AddGroupMember adds a user to a group. Existing members are ignored.
func (s *SQLiteStore) AddGroupMember(ctx context.Context, groupID, userID int64) error {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return err
	}
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO group_members (group_id, user_id) VALUES (?, ?)",
		groupID, userID,
	); err != nil {
		return fmt.Errorf("failed to add group member: %w", err)
	}
	return nil
}

// DeleteGroup removes a group. Members, expenses and splits cascade.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if n == 0 {
		return models.NewNotFoundError("group", groupID)
	}
	return nil
}
