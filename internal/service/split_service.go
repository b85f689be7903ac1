package service

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

var _ apiconnect.SplitServiceHandler = (*SplitService)(nil)

// SplitService implements the Connect SplitService: split status changes
// and balance queries.
type SplitService struct {
	store    storage.Store
	ledger   *ledger.SplitLedger
	balances *ledger.BalanceAggregator
}

// NewSplitService creates a new SplitService.
func NewSplitService(store storage.Store, splits *ledger.SplitLedger, balances *ledger.BalanceAggregator) *SplitService {
	return &SplitService{store: store, ledger: splits, balances: balances}
}

func (s *SplitService) GetSplit(ctx context.Context, req *connect.Request[api.GetSplitRequest]) (*connect.Response[api.GetSplitResponse], error) {
	if err := requirePositiveID("split_id", req.Msg.SplitID); err != nil {
		return nil, err
	}
	split, err := s.ledger.GetSplit(ctx, req.Msg.SplitID)
	if err != nil {
		return nil, toConnectError(ctx, "GetSplit", err)
	}
	return connect.NewResponse(&api.GetSplitResponse{Split: toAPISplit(split)}), nil
}

// MarkSplitPaid marks a split PAID. The caller must belong to the split's group.
func (s *SplitService) MarkSplitPaid(ctx context.Context, req *connect.Request[api.MarkSplitPaidRequest]) (*connect.Response[api.MarkSplitPaidResponse], error) {
	split, err := s.mark(ctx, "MarkSplitPaid", req.Msg.SplitID, s.ledger.MarkPaid)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.MarkSplitPaidResponse{Split: split}), nil
}

// MarkSplitSettled marks a split SETTLED. The caller must belong to the split's group.
func (s *SplitService) MarkSplitSettled(ctx context.Context, req *connect.Request[api.MarkSplitSettledRequest]) (*connect.Response[api.MarkSplitSettledResponse], error) {
	split, err := s.mark(ctx, "MarkSplitSettled", req.Msg.SplitID, s.ledger.MarkSettled)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.MarkSplitSettledResponse{Split: split}), nil
}

func (s *SplitService) mark(ctx context.Context, op string, splitID int64, apply func(context.Context, int64) (*models.Split, error)) (*api.Split, error) {
	slog.Info(op+" request received", "split_id", splitID)

	if err := requirePositiveID("split_id", splitID); err != nil {
		return nil, err
	}
	current, err := s.ledger.GetSplit(ctx, splitID)
	if err != nil {
		return nil, toConnectError(ctx, op, err)
	}
	if err := requireMember(ctx, s.store, current.GroupID); err != nil {
		return nil, toConnectError(ctx, op, err)
	}

	split, err := apply(ctx, splitID)
	if err != nil {
		return nil, toConnectError(ctx, op, err)
	}
	return toAPISplit(split), nil
}

func (s *SplitService) ListSplitsByUser(ctx context.Context, req *connect.Request[api.ListSplitsByUserRequest]) (*connect.Response[api.ListSplitsByUserResponse], error) {
	splits, err := s.ledger.SplitsForUser(ctx, req.Msg.UserID)
	if err != nil {
		return nil, toConnectError(ctx, "ListSplitsByUser", err)
	}
	return connect.NewResponse(&api.ListSplitsByUserResponse{Splits: toAPISplits(splits)}), nil
}

func (s *SplitService) ListSplitsByExpense(ctx context.Context, req *connect.Request[api.ListSplitsByExpenseRequest]) (*connect.Response[api.ListSplitsByExpenseResponse], error) {
	splits, err := s.ledger.SplitsForExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(ctx, "ListSplitsByExpense", err)
	}
	return connect.NewResponse(&api.ListSplitsByExpenseResponse{Splits: toAPISplits(splits)}), nil
}

// GetTotalOwed returns what a user owes across all groups, excluding settled splits.
func (s *SplitService) GetTotalOwed(ctx context.Context, req *connect.Request[api.GetTotalOwedRequest]) (*connect.Response[api.GetTotalOwedResponse], error) {
	total, err := s.balances.TotalOwedByUser(ctx, req.Msg.UserID)
	if err != nil {
		return nil, toConnectError(ctx, "GetTotalOwed", err)
	}
	return connect.NewResponse(&api.GetTotalOwedResponse{
		UserID: req.Msg.UserID,
		Total:  total.String(),
	}), nil
}

// GetGroupBalance returns what a user owes within one group.
func (s *SplitService) GetGroupBalance(ctx context.Context, req *connect.Request[api.GetGroupBalanceRequest]) (*connect.Response[api.GetGroupBalanceResponse], error) {
	balance, err := s.balances.BalanceInGroup(ctx, req.Msg.UserID, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(ctx, "GetGroupBalance", err)
	}
	return connect.NewResponse(&api.GetGroupBalanceResponse{
		UserID:  req.Msg.UserID,
		GroupID: req.Msg.GroupID,
		Balance: balance.String(),
	}), nil
}

// ListPendingSplits lists the group's PENDING and PAID splits.
func (s *SplitService) ListPendingSplits(ctx context.Context, req *connect.Request[api.ListPendingSplitsRequest]) (*connect.Response[api.ListPendingSplitsResponse], error) {
	splits, err := s.balances.PendingSplitsForGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(ctx, "ListPendingSplits", err)
	}
	return connect.NewResponse(&api.ListPendingSplitsResponse{Splits: toAPISplits(splits)}), nil
}

// GetGroupSummary returns per-member balances and a settle-up plan.
func (s *SplitService) GetGroupSummary(ctx context.Context, req *connect.Request[api.GetGroupSummaryRequest]) (*connect.Response[api.GetGroupSummaryResponse], error) {
	groupID := req.Msg.GroupID
	slog.Info("GetGroupSummary request received", "group_id", groupID)

	summary, err := s.balances.GroupSummary(ctx, groupID)
	if err != nil {
		return nil, toConnectError(ctx, "GetGroupSummary", err)
	}

	resp := &api.GetGroupSummaryResponse{GroupID: groupID}
	for _, memberID := range slices.Sorted(maps.Keys(summary.Balance.Owed)) {
		resp.Owed = append(resp.Owed, &api.UserAmount{
			UserID: memberID,
			Amount: summary.Balance.Owed[memberID].String(),
		})
	}
	for _, m := range summary.Members {
		resp.Members = append(resp.Members, &api.MemberBalance{
			UserID: m.UserID,
			Paid:   m.Paid.String(),
			Owed:   m.Owed.String(),
			Net:    formatSignedCents(m.Net),
		})
	}
	for _, t := range summary.Transfers {
		resp.Transfers = append(resp.Transfers, &api.Transfer{
			FromUserID: t.From,
			ToUserID:   t.To,
			Amount:     t.Amount.String(),
		})
	}

	slog.Info("GetGroupSummary successful",
		"group_id", groupID,
		"members", len(resp.Members),
		"transfers", len(resp.Transfers),
	)
	return connect.NewResponse(resp), nil
}
