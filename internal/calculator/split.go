package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
)

var hundredPercent = decimal.NewFromInt(100)

// Participant is one member's raw input to a split.
// Percentage is only read for PERCENTAGE splits and Amount only for CUSTOM splits.
type Participant struct {
	UserID     int64
	Percentage decimal.Decimal
	Amount     money.Money
}

// Share is the computed amount one participant owes.
type Share struct {
	UserID int64
	Amount money.Money
}

type options struct {
	epsilon decimal.Decimal
}

// Option customizes Compute.
type Option func(*options)

// WithEpsilon sets the reconciliation tolerance used for percentage and custom sums.
// For percentages the same value is read in percentage points.
func WithEpsilon(eps money.Money) Option {
	return func(o *options) {
		o.epsilon = eps.Decimal()
	}
}

// Compute turns a total and per-participant inputs into owed amounts.
// Results are ordered by ascending user ID. For EQUAL and PERCENTAGE splits the
// shares always sum to total exactly; for CUSTOM they sum to total within epsilon.
// Every failure is a *models.ValidationError.
func Compute(total money.Money, participants []Participant, kind models.SplitType, opts ...Option) ([]Share, error) {
	o := options{epsilon: money.DefaultEpsilon.Decimal()}
	for _, opt := range opts {
		opt(&o)
	}

	if !total.IsPositive() {
		return nil, models.NewValidationError("amount", "must be greater than zero")
	}
	if len(participants) == 0 {
		return nil, models.NewValidationError("splits", "at least one participant is required")
	}

	sorted := make([]Participant, len(participants))
	copy(sorted, participants)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].UserID < sorted[j].UserID })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].UserID == sorted[i-1].UserID {
			return nil, models.NewValidationError("splits", fmt.Sprintf("user %d appears more than once", sorted[i].UserID))
		}
	}

	switch kind {
	case models.SplitEqual:
		return computeEqual(total, sorted)
	case models.SplitPercentage:
		return computePercentage(total, sorted, o.epsilon)
	case models.SplitCustom:
		return computeCustom(total, sorted, o.epsilon)
	default:
		return nil, models.NewValidationError("split_type", fmt.Sprintf("unknown split type %q", kind))
	}
}

func computeEqual(total money.Money, participants []Participant) ([]Share, error) {
	n := int64(len(participants))
	base := total.Cents() / n
	remainder := total.Cents() % n
	if base == 0 {
		return nil, models.NewValidationError("amount",
			fmt.Sprintf("%s cannot be split among %d participants", total, n))
	}

	cents := make([]int64, len(participants))
	for i := range cents {
		cents[i] = base
		if int64(i) < remainder {
			cents[i]++
		}
	}
	return toShares(participants, cents), nil
}

func computePercentage(total money.Money, participants []Participant, eps decimal.Decimal) ([]Share, error) {
	sum := decimal.Zero
	for _, p := range participants {
		if !p.Percentage.IsPositive() || p.Percentage.GreaterThan(hundredPercent) {
			return nil, models.NewValidationError("percentage",
				fmt.Sprintf("user %d: %s is not in (0, 100]", p.UserID, p.Percentage.String()))
		}
		sum = sum.Add(p.Percentage)
	}
	if sum.Sub(hundredPercent).Abs().GreaterThan(eps) {
		return nil, models.NewValidationError("percentage",
			fmt.Sprintf("percentages sum to %s, expected 100", sum.String()))
	}

	// Shares are normalized by the actual sum so the floors never exceed total.
	totalCents := decimal.NewFromInt(total.Cents())
	cents := make([]int64, len(participants))
	fractions := make([]decimal.Decimal, len(participants))
	var assigned int64
	for i, p := range participants {
		exact := totalCents.Mul(p.Percentage).Div(sum)
		floor := exact.Floor()
		cents[i] = floor.IntPart()
		fractions[i] = exact.Sub(floor)
		assigned += cents[i]
	}

	distributeResidual(cents, fractions, total.Cents()-assigned)

	for i, c := range cents {
		if c == 0 {
			return nil, models.NewValidationError("percentage",
				fmt.Sprintf("user %d: share of %s rounds to zero", participants[i].UserID, total))
		}
	}
	return toShares(participants, cents), nil
}

// distributeResidual hands out leftover cents one at a time, largest fractional
// remainder first. Ties go to the earlier (lower user ID) participant.
func distributeResidual(cents []int64, fractions []decimal.Decimal, residual int64) {
	order := make([]int, len(cents))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fractions[order[a]].GreaterThan(fractions[order[b]])
	})
	for i := int64(0); i < residual; i++ {
		cents[order[i%int64(len(order))]]++
	}
}

func computeCustom(total money.Money, participants []Participant, eps decimal.Decimal) ([]Share, error) {
	var sum money.Money
	cents := make([]int64, len(participants))
	for i, p := range participants {
		if !p.Amount.IsPositive() {
			return nil, models.NewValidationError("amount",
				fmt.Sprintf("user %d: custom amount must be greater than zero", p.UserID))
		}
		cents[i] = p.Amount.Cents()
		sum = sum.Add(p.Amount)
	}

	diff := decimal.New(money.SignedDiff(sum, total), -money.Scale).Abs()
	if diff.GreaterThan(eps) {
		return nil, models.NewValidationError("splits",
			fmt.Sprintf("custom amounts sum to %s, expected %s", sum, total))
	}
	return toShares(participants, cents), nil
}

func toShares(participants []Participant, cents []int64) []Share {
	shares := make([]Share, len(participants))
	for i, p := range participants {
		shares[i] = Share{UserID: p.UserID, Amount: money.FromCents(cents[i])}
	}
	return shares
}

// SumShares adds the amounts of all shares.
func SumShares(shares []Share) money.Money {
	var total money.Money
	for _, s := range shares {
		total = total.Add(s.Amount)
	}
	return total
}
