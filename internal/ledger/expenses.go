package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/storage"
)

// AddExpenseInput is a request to record an expense.
type AddExpenseInput struct {
	GroupID     int64
	PaidByID    int64
	Amount      money.Money
	Description string
	SplitType   models.SplitType
	// Participants carries user IDs and, depending on SplitType, a
	// percentage (PERCENTAGE) or an amount (CUSTOM).
	Participants []calculator.Participant
}

// ExpenseService records expenses: it validates the request, computes the
// splits and hands both to the SplitLedger.
type ExpenseService struct {
	store  storage.Store
	ledger *SplitLedger
	opts   *options
}

func NewExpenseService(store storage.Store, ledger *SplitLedger, opts ...Option) *ExpenseService {
	return &ExpenseService{store: store, ledger: ledger, opts: newOptions(opts)}
}

// AddExpense validates and records an expense with its splits. Nothing is
// persisted unless every check passes and the store commits.
func (s *ExpenseService) AddExpense(ctx context.Context, in AddExpenseInput) (*models.Expense, error) {
	ctx, span := tracer.Start(ctx, "ledger.add_expense")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("group.id", in.GroupID),
		attribute.String("split.type", string(in.SplitType)),
	)

	expense, shares, err := s.prepare(ctx, in)
	if err != nil {
		spanError(span, "invalid expense", err)
		return nil, err
	}
	if err := s.ledger.CreateSplitsForExpense(ctx, expense, shares); err != nil {
		return nil, err
	}

	s.opts.metrics.ExpenseCreated(string(expense.SplitType))
	slog.InfoContext(ctx, "Expense added",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"amount", expense.Amount.String(),
		"split_type", expense.SplitType,
		"splits", len(expense.Splits))

	e := events.New(events.ExpenseCreated)
	e.ExpenseID = expense.ID
	e.GroupID = expense.GroupID
	e.UserID = expense.PaidByID
	e.Amount = expense.Amount.String()
	s.opts.publish(ctx, e)

	return expense, nil
}

func (s *ExpenseService) prepare(ctx context.Context, in AddExpenseInput) (*models.Expense, []calculator.Share, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, nil, models.NewValidationError("description", "must not be empty")
	}
	if !in.Amount.IsPositive() {
		return nil, nil, models.NewValidationError("amount", "must be greater than zero")
	}
	kind, err := models.ParseSplitType(string(in.SplitType))
	if err != nil {
		return nil, nil, err
	}

	group, err := s.store.GetGroup(ctx, in.GroupID)
	if err != nil {
		return nil, nil, err
	}
	if !group.HasMember(in.PaidByID) {
		return nil, nil, models.NewValidationError("paid_by_id",
			fmt.Sprintf("user %d is not a member of group %d", in.PaidByID, in.GroupID))
	}
	for _, p := range in.Participants {
		if !group.HasMember(p.UserID) {
			return nil, nil, models.NewValidationError("splits",
				fmt.Sprintf("user %d is not a member of group %d", p.UserID, in.GroupID))
		}
	}

	shares, err := calculator.Compute(in.Amount, in.Participants, kind, calculator.WithEpsilon(s.opts.epsilon))
	if err != nil {
		return nil, nil, err
	}

	return &models.Expense{
		GroupID:     in.GroupID,
		PaidByID:    in.PaidByID,
		Amount:      in.Amount,
		Description: description,
		SplitType:   kind,
	}, shares, nil
}

// AddGroupExpense records an expense split equally among every current
// member of the group.
func (s *ExpenseService) AddGroupExpense(ctx context.Context, groupID, paidByID int64, amount money.Money, description string) (*models.Expense, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	participants := make([]calculator.Participant, len(group.MemberIDs))
	for i, id := range group.MemberIDs {
		participants[i] = calculator.Participant{UserID: id}
	}
	return s.AddExpense(ctx, AddExpenseInput{
		GroupID:      groupID,
		PaidByID:     paidByID,
		Amount:       amount,
		Description:  description,
		SplitType:    models.SplitEqual,
		Participants: participants,
	})
}

func (s *ExpenseService) GetExpense(ctx context.Context, expenseID int64) (*models.Expense, error) {
	return s.store.GetExpense(ctx, expenseID)
}

// ListExpenses returns every expense, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context) ([]*models.Expense, error) {
	return s.store.ListExpenses(ctx)
}

// ListExpensesByGroup returns the group's expenses, newest first.
func (s *ExpenseService) ListExpensesByGroup(ctx context.Context, groupID int64) ([]*models.Expense, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListExpensesByGroup(ctx, groupID)
}

// DeleteExpense removes an expense and its splits.
func (s *ExpenseService) DeleteExpense(ctx context.Context, expenseID int64) error {
	return s.ledger.DeleteForExpense(ctx, expenseID)
}
