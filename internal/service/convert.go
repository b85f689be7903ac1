package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func toAPIGroup(g *models.Group) *api.Group {
	return &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		MemberIDs: g.MemberIDs,
		CreatedAt: g.CreatedAt,
	}
}

func toAPISplit(s *models.Split) *api.Split {
	return &api.Split{
		ID:        s.ID,
		ExpenseID: s.ExpenseID,
		GroupID:   s.GroupID,
		UserID:    s.UserID,
		Amount:    s.Amount.String(),
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toAPISplits(splits []models.Split) []*api.Split {
	out := make([]*api.Split, len(splits))
	for i := range splits {
		out[i] = toAPISplit(&splits[i])
	}
	return out
}

func toAPIExpense(e *models.Expense) *api.Expense {
	return &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PaidByID:    e.PaidByID,
		Amount:      e.Amount.String(),
		Description: e.Description,
		SplitType:   string(e.SplitType),
		CreatedAt:   e.CreatedAt,
		Splits:      toAPISplits(e.Splits),
	}
}

// formatSignedCents renders a signed cent count as a decimal string.
func formatSignedCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func parseAmount(field, s string) (money.Money, error) {
	m, err := money.Parse(strings.TrimSpace(s))
	if err != nil {
		return money.Zero, models.NewValidationError(field, err.Error())
	}
	return m, nil
}

// participantsFromAPI reads the per-user inputs relevant to the split type.
func participantsFromAPI(kind models.SplitType, inputs []*api.SplitInput) ([]calculator.Participant, error) {
	out := make([]calculator.Participant, 0, len(inputs))
	for i, in := range inputs {
		if in == nil {
			return nil, models.NewValidationError("splits", fmt.Sprintf("entry %d is empty", i))
		}
		p := calculator.Participant{UserID: in.UserID}
		switch kind {
		case models.SplitPercentage:
			pct, err := decimal.NewFromString(strings.TrimSpace(in.Percentage))
			if err != nil {
				return nil, models.NewValidationError("splits",
					fmt.Sprintf("percentage for user %d: %q is not a number", in.UserID, in.Percentage))
			}
			p.Percentage = pct
		case models.SplitCustom:
			amount, err := parseAmount("splits", in.Amount)
			if err != nil {
				return nil, models.NewValidationError("splits",
					fmt.Sprintf("amount for user %d: %q is not a valid amount", in.UserID, in.Amount))
			}
			p.Amount = amount
		}
		out = append(out, p)
	}
	return out, nil
}
