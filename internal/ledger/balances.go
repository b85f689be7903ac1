package ledger

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/storage"
)

// BalanceAggregator answers balance queries. Each call reads the current
// splits; SETTLED splits never count toward what a user owes.
type BalanceAggregator struct {
	store storage.Store
}

func NewBalanceAggregator(store storage.Store) *BalanceAggregator {
	return &BalanceAggregator{store: store}
}

// TotalOwedByUser sums the user's PENDING and PAID splits across all groups.
func (a *BalanceAggregator) TotalOwedByUser(ctx context.Context, userID int64) (money.Money, error) {
	ctx, span := tracer.Start(ctx, "ledger.total_owed")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", userID))

	if _, err := a.store.GetUser(ctx, userID); err != nil {
		return money.Zero, err
	}
	splits, err := a.store.ListSplitsByUser(ctx, userID)
	if err != nil {
		spanError(span, "failed to list splits", err)
		return money.Zero, err
	}
	return calculator.TotalOutstanding(splits), nil
}

// BalanceInGroup is TotalOwedByUser restricted to one group's expenses.
func (a *BalanceAggregator) BalanceInGroup(ctx context.Context, userID, groupID int64) (money.Money, error) {
	ctx, span := tracer.Start(ctx, "ledger.group_balance")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", userID), attribute.Int64("group.id", groupID))

	if _, err := a.store.GetUser(ctx, userID); err != nil {
		return money.Zero, err
	}
	if _, err := a.store.GetGroup(ctx, groupID); err != nil {
		return money.Zero, err
	}
	splits, err := a.store.ListSplitsByUser(ctx, userID)
	if err != nil {
		spanError(span, "failed to list splits", err)
		return money.Zero, err
	}

	inGroup := splits[:0]
	for _, s := range splits {
		if s.GroupID == groupID {
			inGroup = append(inGroup, s)
		}
	}
	return calculator.TotalOutstanding(inGroup), nil
}

// PendingSplitsForGroup lists every non-SETTLED split of the group's expenses.
func (a *BalanceAggregator) PendingSplitsForGroup(ctx context.Context, groupID int64) ([]models.Split, error) {
	ctx, span := tracer.Start(ctx, "ledger.pending_splits")
	defer span.End()
	span.SetAttributes(attribute.Int64("group.id", groupID))

	if _, err := a.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	splits, err := a.store.ListSplitsByGroup(ctx, groupID)
	if err != nil {
		spanError(span, "failed to list splits", err)
		return nil, err
	}
	return calculator.OutstandingSplits(splits), nil
}

// GroupSummary is a group's full balance picture.
type GroupSummary struct {
	// Balance holds what each member owes across outstanding splits.
	Balance models.BalanceSummary
	// Members holds paid/owed/net per member, payer shares netted out.
	Members []calculator.MemberBalance
	// Transfers clears every net position.
	Transfers []calculator.DebtEdge
}

// GroupSummary computes the per-member owed totals and a settle-up plan.
func (a *BalanceAggregator) GroupSummary(ctx context.Context, groupID int64) (*GroupSummary, error) {
	ctx, span := tracer.Start(ctx, "ledger.group_summary")
	defer span.End()
	span.SetAttributes(attribute.Int64("group.id", groupID))

	group, err := a.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	expenses, err := a.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		spanError(span, "failed to list expenses", err)
		return nil, err
	}

	var splits []models.Split
	values := make([]models.Expense, len(expenses))
	for i, e := range expenses {
		values[i] = *e
		splits = append(splits, e.Splits...)
	}

	members, transfers := calculator.SettleUpPlan(values)
	return &GroupSummary{
		Balance:   calculator.Summarize(groupID, group.MemberIDs, splits),
		Members:   members,
		Transfers: transfers,
	}, nil
}
