package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

var _ apiconnect.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	store    storage.Store
	expenses *ledger.ExpenseService
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(store storage.Store, expenses *ledger.ExpenseService) *ExpenseService {
	return &ExpenseService{store: store, expenses: expenses}
}

// AddExpense records an expense. The caller must belong to the group.
func (s *ExpenseService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	msg := req.Msg
	slog.Info("AddExpense request received",
		"group_id", msg.GroupID,
		"paid_by_id", msg.PaidByID,
		"split_type", msg.SplitType,
		"splits_count", len(msg.Splits),
	)

	if err := requireMember(ctx, s.store, msg.GroupID); err != nil {
		return nil, toConnectError(ctx, "AddExpense", err)
	}

	amount, err := parseAmount("amount", msg.Amount)
	if err != nil {
		return nil, toConnectError(ctx, "AddExpense", err)
	}
	kind, err := models.ParseSplitType(msg.SplitType)
	if err != nil {
		return nil, toConnectError(ctx, "AddExpense", err)
	}
	participants, err := participantsFromAPI(kind, msg.Splits)
	if err != nil {
		return nil, toConnectError(ctx, "AddExpense", err)
	}

	expense, err := s.expenses.AddExpense(ctx, ledger.AddExpenseInput{
		GroupID:      msg.GroupID,
		PaidByID:     msg.PaidByID,
		Amount:       amount,
		Description:  msg.Description,
		SplitType:    kind,
		Participants: participants,
	})
	if err != nil {
		return nil, toConnectError(ctx, "AddExpense", err)
	}

	return connect.NewResponse(&api.AddExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// AddGroupExpense records an expense split equally among all group members.
func (s *ExpenseService) AddGroupExpense(ctx context.Context, req *connect.Request[api.AddGroupExpenseRequest]) (*connect.Response[api.AddGroupExpenseResponse], error) {
	msg := req.Msg
	slog.Info("AddGroupExpense request received", "group_id", msg.GroupID, "paid_by_id", msg.PaidByID)

	if err := requireMember(ctx, s.store, msg.GroupID); err != nil {
		return nil, toConnectError(ctx, "AddGroupExpense", err)
	}
	amount, err := parseAmount("amount", msg.Amount)
	if err != nil {
		return nil, toConnectError(ctx, "AddGroupExpense", err)
	}

	expense, err := s.expenses.AddGroupExpense(ctx, msg.GroupID, msg.PaidByID, amount, msg.Description)
	if err != nil {
		return nil, toConnectError(ctx, "AddGroupExpense", err)
	}

	return connect.NewResponse(&api.AddGroupExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// GetExpense retrieves an expense with its splits.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	if err := requirePositiveID("expense_id", req.Msg.ExpenseID); err != nil {
		return nil, err
	}

	expense, err := s.expenses.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(ctx, "GetExpense", err)
	}
	return connect.NewResponse(&api.GetExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// ListExpenses lists every expense, or one group's expenses.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	var (
		expenses []*models.Expense
		err      error
	)
	if req.Msg.GroupID != 0 {
		expenses, err = s.expenses.ListExpensesByGroup(ctx, req.Msg.GroupID)
	} else {
		expenses, err = s.expenses.ListExpenses(ctx)
	}
	if err != nil {
		return nil, toConnectError(ctx, "ListExpenses", err)
	}

	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}
	slog.Info("ListExpenses successful", "group_id", req.Msg.GroupID, "count", len(out))
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// DeleteExpense removes an expense and its splits. The caller must belong to
// the expense's group.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	expenseID := req.Msg.ExpenseID
	slog.Info("DeleteExpense request received", "expense_id", expenseID)

	if err := requirePositiveID("expense_id", expenseID); err != nil {
		return nil, err
	}
	expense, err := s.expenses.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, toConnectError(ctx, "DeleteExpense", err)
	}
	if err := requireMember(ctx, s.store, expense.GroupID); err != nil {
		return nil, toConnectError(ctx, "DeleteExpense", err)
	}

	if err := s.expenses.DeleteExpense(ctx, expenseID); err != nil {
		return nil, toConnectError(ctx, "DeleteExpense", err)
	}
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}
