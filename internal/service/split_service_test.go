package service

import (
	"context"
	"reflect"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

func TestSplitLifecycle(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	alice, bob, _, groupID := c.household(t)

	add := func(amount string) *api.Expense {
		resp, err := c.expenses.AddExpense(ctx, authed(alice, &api.AddExpenseRequest{
			GroupID: groupID, PaidByID: alice.user.ID, Amount: amount,
			Description: "Rent", SplitType: "EQUAL",
			Splits: []*api.SplitInput{{UserID: bob.user.ID}},
		}))
		if err != nil {
			t.Fatalf("AddExpense failed: %v", err)
		}
		return resp.Msg.Expense
	}
	pending := add("20.00")
	settled := add("30.00")
	splitID := settled.Splits[0].ID

	owed := func() string {
		t.Helper()
		resp, err := c.splits.GetTotalOwed(ctx, authed(bob, &api.GetTotalOwedRequest{UserID: bob.user.ID}))
		if err != nil {
			t.Fatalf("GetTotalOwed failed: %v", err)
		}
		return resp.Msg.Total
	}
	if got := owed(); got != "50.00" {
		t.Errorf("expected 50.00 owed, got %s", got)
	}

	for i := 0; i < 2; i++ {
		resp, err := c.splits.MarkSplitPaid(ctx, authed(bob, &api.MarkSplitPaidRequest{SplitID: splitID}))
		if err != nil {
			t.Fatalf("MarkSplitPaid #%d failed: %v", i+1, err)
		}
		if resp.Msg.Split.Status != "PAID" {
			t.Errorf("expected PAID, got %s", resp.Msg.Split.Status)
		}
	}
	if got := owed(); got != "50.00" {
		t.Errorf("expected PAID split to still count, got %s", got)
	}

	resp, err := c.splits.MarkSplitSettled(ctx, authed(alice, &api.MarkSplitSettledRequest{SplitID: splitID}))
	if err != nil {
		t.Fatalf("MarkSplitSettled failed: %v", err)
	}
	if resp.Msg.Split.Status != "SETTLED" {
		t.Errorf("expected SETTLED, got %s", resp.Msg.Split.Status)
	}
	if got := owed(); got != "20.00" {
		t.Errorf("expected 20.00 owed after settling, got %s", got)
	}

	_, err = c.splits.MarkSplitPaid(ctx, authed(bob, &api.MarkSplitPaidRequest{SplitID: splitID}))
	wantCode(t, err, connect.CodeFailedPrecondition)

	balance, err := c.splits.GetGroupBalance(ctx, authed(bob, &api.GetGroupBalanceRequest{UserID: bob.user.ID, GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroupBalance failed: %v", err)
	}
	if balance.Msg.Balance != "20.00" {
		t.Errorf("expected group balance 20.00, got %s", balance.Msg.Balance)
	}

	open, err := c.splits.ListPendingSplits(ctx, authed(bob, &api.ListPendingSplitsRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("ListPendingSplits failed: %v", err)
	}
	if len(open.Msg.Splits) != 1 || open.Msg.Splits[0].ExpenseID != pending.ID {
		t.Errorf("expected only the pending expense's split, got %+v", open.Msg.Splits)
	}

	byUser, err := c.splits.ListSplitsByUser(ctx, authed(bob, &api.ListSplitsByUserRequest{UserID: bob.user.ID}))
	if err != nil {
		t.Fatalf("ListSplitsByUser failed: %v", err)
	}
	if len(byUser.Msg.Splits) != 2 {
		t.Errorf("expected 2 splits for bob, got %d", len(byUser.Msg.Splits))
	}

	byExpense, err := c.splits.ListSplitsByExpense(ctx, authed(bob, &api.ListSplitsByExpenseRequest{ExpenseID: settled.ID}))
	if err != nil {
		t.Fatalf("ListSplitsByExpense failed: %v", err)
	}
	if len(byExpense.Msg.Splits) != 1 || byExpense.Msg.Splits[0].Status != "SETTLED" {
		t.Errorf("unexpected splits %+v", byExpense.Msg.Splits)
	}
}

func TestMarkSplitErrors(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	alice, bob, _, groupID := c.household(t)
	outsider := c.register(t, "mallory")

	resp, err := c.expenses.AddExpense(ctx, authed(alice, &api.AddExpenseRequest{
		GroupID: groupID, PaidByID: alice.user.ID, Amount: "8.00",
		Description: "Snacks", SplitType: "EQUAL",
		Splits: []*api.SplitInput{{UserID: bob.user.ID}},
	}))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	splitID := resp.Msg.Expense.Splits[0].ID

	_, err = c.splits.MarkSplitPaid(ctx, authed(outsider, &api.MarkSplitPaidRequest{SplitID: splitID}))
	wantCode(t, err, connect.CodePermissionDenied)

	_, err = c.splits.MarkSplitSettled(ctx, authed(bob, &api.MarkSplitSettledRequest{SplitID: 9999}))
	wantCode(t, err, connect.CodeNotFound)

	_, err = c.splits.MarkSplitPaid(ctx, authed(bob, &api.MarkSplitPaidRequest{}))
	wantCode(t, err, connect.CodeInvalidArgument)

	_, err = c.splits.GetTotalOwed(ctx, authed(bob, &api.GetTotalOwedRequest{UserID: 9999}))
	wantCode(t, err, connect.CodeNotFound)
}

func TestGetGroupSummary(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	alice, bob, carol, groupID := c.household(t)

	if _, err := c.expenses.AddGroupExpense(ctx, authed(alice, &api.AddGroupExpenseRequest{
		GroupID: groupID, PaidByID: alice.user.ID, Amount: "30.00", Description: "Groceries",
	})); err != nil {
		t.Fatalf("AddGroupExpense failed: %v", err)
	}

	resp, err := c.splits.GetGroupSummary(ctx, authed(bob, &api.GetGroupSummaryRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroupSummary failed: %v", err)
	}
	summary := resp.Msg

	wantOwed := []*api.UserAmount{
		{UserID: alice.user.ID, Amount: "10.00"},
		{UserID: bob.user.ID, Amount: "10.00"},
		{UserID: carol.user.ID, Amount: "10.00"},
	}
	if !reflect.DeepEqual(summary.Owed, wantOwed) {
		t.Errorf("unexpected owed: %+v", summary.Owed)
	}

	net := map[int64]string{}
	for _, m := range summary.Members {
		net[m.UserID] = m.Net
	}
	wantNet := map[int64]string{alice.user.ID: "20.00", bob.user.ID: "-10.00", carol.user.ID: "-10.00"}
	if !reflect.DeepEqual(net, wantNet) {
		t.Errorf("expected net %v, got %v", wantNet, net)
	}

	if len(summary.Transfers) != 2 {
		t.Fatalf("expected 2 transfers, got %d", len(summary.Transfers))
	}
	for _, tr := range summary.Transfers {
		if tr.ToUserID != alice.user.ID || tr.Amount != "10.00" {
			t.Errorf("unexpected transfer %+v", tr)
		}
	}
}
