package calculator

import (
	"sort"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
)

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	UserID int64       `json:"user_id"`
	Paid   money.Money `json:"paid"` // Outstanding amounts others owe this member
	Owed   money.Money `json:"owed"` // Outstanding amounts this member owes others
	// Net is Paid - Owed in cents. Positive = is owed money, negative = owes money.
	Net int64 `json:"net_cents"`
}

// DebtEdge represents a suggested transfer from one member to another.
type DebtEdge struct {
	From   int64       `json:"from"` // Member who owes
	To     int64       `json:"to"`   // Member who is owed
	Amount money.Money `json:"amount"`
}

// TotalOutstanding sums the amounts of splits that are not SETTLED.
func TotalOutstanding(splits []models.Split) money.Money {
	var total money.Money
	for _, s := range splits {
		if s.Outstanding() {
			total = total.Add(s.Amount)
		}
	}
	return total
}

// OutstandingSplits filters out SETTLED splits, preserving order.
func OutstandingSplits(splits []models.Split) []models.Split {
	out := make([]models.Split, 0, len(splits))
	for _, s := range splits {
		if s.Outstanding() {
			out = append(out, s)
		}
	}
	return out
}

// Summarize folds splits into a per-user owed total.
// Every user in members appears in the result, with zero when nothing is outstanding.
func Summarize(groupID int64, members []int64, splits []models.Split) models.BalanceSummary {
	owed := make(map[int64]money.Money, len(members))
	for _, m := range members {
		owed[m] = money.Zero
	}
	for _, s := range splits {
		if s.Outstanding() {
			owed[s.UserID] = owed[s.UserID].Add(s.Amount)
		}
	}
	return models.BalanceSummary{GroupID: groupID, Owed: owed}
}

// SettleUpPlan computes net positions across expenses and a minimal-ish set of
// transfers that clears them.
//
// Algorithm:
//   - For each outstanding split whose user is not the payer: the user owes the
//     amount and the payer is owed the same amount. A payer's own split nets to zero.
//   - Net = paid - owed per member.
//   - Debtors and creditors are matched greedily, largest first, in integer cents.
func SettleUpPlan(expenses []models.Expense) ([]MemberBalance, []DebtEdge) {
	balances := make(map[int64]*MemberBalance)
	get := func(id int64) *MemberBalance {
		b, ok := balances[id]
		if !ok {
			b = &MemberBalance{UserID: id}
			balances[id] = b
		}
		return b
	}

	for _, e := range expenses {
		payer := get(e.PaidByID)
		for _, s := range e.Splits {
			if !s.Outstanding() || s.UserID == e.PaidByID {
				continue
			}
			payer.Paid = payer.Paid.Add(s.Amount)
			ower := get(s.UserID)
			ower.Owed = ower.Owed.Add(s.Amount)
		}
	}

	memberBalances := make([]MemberBalance, 0, len(balances))
	for _, b := range balances {
		b.Net = money.SignedDiff(b.Paid, b.Owed)
		memberBalances = append(memberBalances, *b)
	}
	sort.Slice(memberBalances, func(i, j int) bool { return memberBalances[i].UserID < memberBalances[j].UserID })

	type position struct {
		userID int64
		cents  int64
	}
	var debtors, creditors []position
	for _, b := range memberBalances {
		switch {
		case b.Net < 0:
			debtors = append(debtors, position{b.UserID, -b.Net})
		case b.Net > 0:
			creditors = append(creditors, position{b.UserID, b.Net})
		}
	}
	byLargest := func(p []position) func(i, j int) bool {
		return func(i, j int) bool {
			if p[i].cents != p[j].cents {
				return p[i].cents > p[j].cents
			}
			return p[i].userID < p[j].userID
		}
	}
	sort.Slice(debtors, byLargest(debtors))
	sort.Slice(creditors, byLargest(creditors))

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := min(debtors[i].cents, creditors[j].cents)
		edges = append(edges, DebtEdge{
			From:   debtors[i].userID,
			To:     creditors[j].userID,
			Amount: money.FromCents(amount),
		})
		debtors[i].cents -= amount
		creditors[j].cents -= amount
		if debtors[i].cents == 0 {
			i++
		}
		if creditors[j].cents == 0 {
			j++
		}
	}

	return memberBalances, edges
}
