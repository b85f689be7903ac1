package models

import (
	"fmt"
	"strings"

	"github.com/mmynk/settleup/internal/money"
)

// SplitType selects how an expense is divided among participants.
type SplitType string

const (
	// SplitEqual divides the amount evenly; leftover cents go to the lowest user IDs.
	SplitEqual SplitType = "EQUAL"
	// SplitPercentage divides the amount by per-participant percentages summing to 100.
	SplitPercentage SplitType = "PERCENTAGE"
	// SplitCustom uses explicit per-participant amounts summing to the total.
	SplitCustom SplitType = "CUSTOM"
)

// ParseSplitType converts a request value to a SplitType. Matching is case-insensitive.
func ParseSplitType(s string) (SplitType, error) {
	switch t := SplitType(strings.ToUpper(strings.TrimSpace(s))); t {
	case SplitEqual, SplitPercentage, SplitCustom:
		return t, nil
	default:
		return "", NewValidationError("split_type", fmt.Sprintf("unknown split type %q", s))
	}
}

// Expense is an amount paid by one group member and divided into splits.
// Expenses are immutable once created; deleting one deletes its splits.
type Expense struct {
	// ID is the unique identifier for the expense.
	ID int64 `json:"id"`

	// GroupID is the group that owns the expense.
	GroupID int64 `json:"group_id"`

	// PaidByID is the member who paid the full amount.
	// The payer is an ordinary participant: if included in the split set,
	// their own share is recorded as a split like anyone else's.
	PaidByID int64 `json:"paid_by_id"`

	// Amount is the positive total of the expense.
	Amount money.Money `json:"amount"`

	// Description is a non-empty human-readable label.
	Description string `json:"description"`

	// SplitType records the strategy used to compute the splits.
	SplitType SplitType `json:"split_type"`

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64 `json:"created_at"`

	// Splits are the obligations derived from this expense.
	Splits []Split `json:"splits"`
}

// Split is one user's obligation arising from a single expense.
type Split struct {
	ID        int64 `json:"id"`
	ExpenseID int64 `json:"expense_id"`

	// GroupID mirrors the parent expense's group for group-scoped queries.
	GroupID int64 `json:"group_id"`

	// UserID is the member who owes Amount.
	UserID int64       `json:"user_id"`
	Amount money.Money `json:"amount"`
	Status SplitStatus `json:"status"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at,omitempty"`
}

// Outstanding reports whether the split still counts toward what its user owes.
func (s Split) Outstanding() bool {
	return s.Status != StatusSettled
}

// BalanceSummary maps users to their net owed amount.
// It is derived from splits on every request and never stored.
type BalanceSummary struct {
	// GroupID scopes the summary; zero means all groups.
	GroupID int64 `json:"group_id,omitempty"`

	// Owed is the sum of PENDING and PAID split amounts per user.
	Owed map[int64]money.Money `json:"owed"`
}
