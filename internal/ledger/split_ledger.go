package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// maxStatusAttempts bounds the read/validate/compare-and-set loop. A split can
// change status at most twice, so three attempts always observe a final answer.
const maxStatusAttempts = 3

// SplitLedger owns split records and their status transitions.
type SplitLedger struct {
	store storage.Store
	opts  *options
}

// NewSplitLedger creates a SplitLedger over store.
func NewSplitLedger(store storage.Store, opts ...Option) *SplitLedger {
	return &SplitLedger{store: store, opts: newOptions(opts)}
}

// CreateSplitsForExpense turns computed shares into PENDING splits and stores
// them together with the expense in a single transaction. On success the
// expense carries its assigned ID and splits.
func (l *SplitLedger) CreateSplitsForExpense(ctx context.Context, expense *models.Expense, shares []calculator.Share) error {
	ctx, span := tracer.Start(ctx, "ledger.create_splits")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("group.id", expense.GroupID),
		attribute.Int("splits.count", len(shares)),
	)

	if err := l.checkShares(expense, shares); err != nil {
		spanError(span, "invalid shares", err)
		return err
	}

	now := l.opts.now().Unix()
	expense.CreatedAt = now
	expense.Splits = make([]models.Split, len(shares))
	for i, share := range shares {
		expense.Splits[i] = models.Split{
			UserID:    share.UserID,
			Amount:    share.Amount,
			Status:    models.StatusPending,
			CreatedAt: now,
		}
	}

	if err := l.store.CreateExpense(ctx, expense); err != nil {
		expense.Splits = nil
		spanError(span, "failed to store expense", err)
		return err
	}
	span.SetAttributes(attribute.Int64("expense.id", expense.ID))
	return nil
}

// checkShares enforces the sum invariant: exact for EQUAL and PERCENTAGE,
// within epsilon for CUSTOM.
func (l *SplitLedger) checkShares(expense *models.Expense, shares []calculator.Share) error {
	if len(shares) == 0 {
		return models.NewValidationError("splits", "at least one split is required")
	}
	seen := make(map[int64]bool, len(shares))
	for _, s := range shares {
		if !s.Amount.IsPositive() {
			return models.NewValidationError("splits", fmt.Sprintf("split for user %d must be positive", s.UserID))
		}
		if seen[s.UserID] {
			return models.NewValidationError("splits", fmt.Sprintf("user %d appears more than once", s.UserID))
		}
		seen[s.UserID] = true
	}

	sum := calculator.SumShares(shares)
	ok := sum.Equal(expense.Amount)
	if expense.SplitType == models.SplitCustom {
		ok = sum.WithinEpsilon(expense.Amount, l.opts.epsilon)
	}
	if !ok {
		return models.NewValidationError("splits",
			fmt.Sprintf("splits sum to %s but the expense amount is %s", sum, expense.Amount))
	}
	return nil
}

// MarkPaid moves a split to PAID. Marking an already PAID split succeeds
// without a write; a SETTLED split cannot be marked paid.
func (l *SplitLedger) MarkPaid(ctx context.Context, splitID int64) (*models.Split, error) {
	return l.transition(ctx, splitID, models.StatusPaid)
}

// MarkSettled moves a PENDING or PAID split to SETTLED. Settling an already
// SETTLED split succeeds without a write.
func (l *SplitLedger) MarkSettled(ctx context.Context, splitID int64) (*models.Split, error) {
	return l.transition(ctx, splitID, models.StatusSettled)
}

func (l *SplitLedger) transition(ctx context.Context, splitID int64, target models.SplitStatus) (*models.Split, error) {
	ctx, span := tracer.Start(ctx, "ledger.split_transition")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("split.id", splitID),
		attribute.String("split.target_status", string(target)),
	)

	for attempt := 1; attempt <= maxStatusAttempts; attempt++ {
		split, err := l.store.GetSplit(ctx, splitID)
		if err != nil {
			spanError(span, "failed to read split", err)
			return nil, err
		}

		noop, err := split.Status.Transition(target)
		if err != nil {
			var invalid *models.InvalidStatusTransitionError
			if errors.As(err, &invalid) {
				invalid.SplitID = splitID
			}
			spanError(span, "invalid transition", err)
			return nil, err
		}
		if noop {
			return split, nil
		}

		from := split.Status
		updatedAt := l.opts.now().Unix()
		ok, err := l.store.CompareAndSetSplitStatus(ctx, splitID, from, target, updatedAt)
		if err != nil {
			spanError(span, "failed to update split", err)
			return nil, err
		}
		if !ok {
			slog.DebugContext(ctx, "Split status changed concurrently, retrying",
				"split_id", splitID, "expected", from, "attempt", attempt)
			l.opts.metrics.StatusConflict()
			continue
		}

		split.Status = target
		split.UpdatedAt = updatedAt
		l.opts.metrics.SplitTransition(string(from), string(target))
		slog.InfoContext(ctx, "Split status changed",
			"split_id", splitID, "from", from, "to", target)

		e := events.New(events.SplitStatusChanged)
		e.SplitID = split.ID
		e.ExpenseID = split.ExpenseID
		e.GroupID = split.GroupID
		e.UserID = split.UserID
		e.Amount = split.Amount.String()
		e.FromStatus = string(from)
		e.ToStatus = string(target)
		l.opts.publish(ctx, e)
		return split, nil
	}

	err := fmt.Errorf("failed to update split %d: status kept changing", splitID)
	spanError(span, "too many conflicts", err)
	return nil, err
}

// DeleteForExpense removes an expense and every split it owns.
func (l *SplitLedger) DeleteForExpense(ctx context.Context, expenseID int64) error {
	ctx, span := tracer.Start(ctx, "ledger.delete_expense")
	defer span.End()
	span.SetAttributes(attribute.Int64("expense.id", expenseID))

	expense, err := l.store.GetExpense(ctx, expenseID)
	if err != nil {
		spanError(span, "failed to read expense", err)
		return err
	}
	if err := l.store.DeleteExpense(ctx, expenseID); err != nil {
		spanError(span, "failed to delete expense", err)
		return err
	}

	slog.InfoContext(ctx, "Expense deleted", "expense_id", expenseID, "splits", len(expense.Splits))
	e := events.New(events.ExpenseDeleted)
	e.ExpenseID = expenseID
	e.GroupID = expense.GroupID
	e.Amount = expense.Amount.String()
	l.opts.publish(ctx, e)
	return nil
}

func (l *SplitLedger) GetSplit(ctx context.Context, splitID int64) (*models.Split, error) {
	return l.store.GetSplit(ctx, splitID)
}

// SplitsForUser returns every split owed by the user, in any status.
func (l *SplitLedger) SplitsForUser(ctx context.Context, userID int64) ([]models.Split, error) {
	if _, err := l.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return l.store.ListSplitsByUser(ctx, userID)
}

// SplitsForExpense returns the splits of one expense.
func (l *SplitLedger) SplitsForExpense(ctx context.Context, expenseID int64) ([]models.Split, error) {
	if _, err := l.store.GetExpense(ctx, expenseID); err != nil {
		return nil, err
	}
	return l.store.ListSplitsByExpense(ctx, expenseID)
}

// SplitForUserAndExpense finds the user's split on an expense.
func (l *SplitLedger) SplitForUserAndExpense(ctx context.Context, userID, expenseID int64) (*models.Split, error) {
	splits, err := l.SplitsForExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	for i := range splits {
		if splits[i].UserID == userID {
			return &splits[i], nil
		}
	}
	return nil, models.NewNotFoundError("split", fmt.Sprintf("user %d on expense %d", userID, expenseID))
}
