package calculator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
)

func users(ids ...int64) []Participant {
	ps := make([]Participant, len(ids))
	for i, id := range ids {
		ps[i] = Participant{UserID: id}
	}
	return ps
}

func percentages(pcts ...string) []Participant {
	ps := make([]Participant, len(pcts))
	for i, p := range pcts {
		ps[i] = Participant{UserID: int64(i + 1), Percentage: decimal.RequireFromString(p)}
	}
	return ps
}

func amounts(vals ...string) []Participant {
	ps := make([]Participant, len(vals))
	for i, v := range vals {
		ps[i] = Participant{UserID: int64(i + 1), Amount: money.MustParse(v)}
	}
	return ps
}

func amountsOf(shares []Share) []string {
	out := make([]string, len(shares))
	for i, s := range shares {
		out[i] = s.Amount.String()
	}
	return out
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name         string
		total        string
		participants []Participant
		kind         models.SplitType
		want         []string
		wantErr      bool
	}{
		{
			name:         "equal split of 10.00 among three gives the extra cent to the lowest id",
			total:        "10.00",
			participants: users(3, 1, 2),
			kind:         models.SplitEqual,
			want:         []string{"3.34", "3.33", "3.33"},
		},
		{
			name:         "equal split with two leftover cents",
			total:        "0.05",
			participants: users(1, 2, 3),
			kind:         models.SplitEqual,
			want:         []string{"0.02", "0.02", "0.01"},
		},
		{
			name:         "equal split with no participants",
			total:        "10.00",
			participants: nil,
			kind:         models.SplitEqual,
			wantErr:      true,
		},
		{
			name:         "equal split smaller than one cent each",
			total:        "0.02",
			participants: users(1, 2, 3),
			kind:         models.SplitEqual,
			wantErr:      true,
		},
		{
			name:         "duplicate participants",
			total:        "10.00",
			participants: users(1, 1),
			kind:         models.SplitEqual,
			wantErr:      true,
		},
		{
			name:         "percentage 50/30/20",
			total:        "100.00",
			participants: percentages("50", "30", "20"),
			kind:         models.SplitPercentage,
			want:         []string{"50.00", "30.00", "20.00"},
		},
		{
			name:         "percentage thirds reconcile to the total",
			total:        "100.00",
			participants: percentages("33.33", "33.33", "33.34"),
			kind:         models.SplitPercentage,
			want:         []string{"33.33", "33.33", "33.34"},
		},
		{
			name:         "percentage residual goes to the largest remainder",
			total:        "10.00",
			participants: percentages("33.33", "33.33", "33.34"),
			kind:         models.SplitPercentage,
			want:         []string{"3.33", "3.33", "3.34"},
		},
		{
			name:         "percentage zero",
			total:        "100.00",
			participants: percentages("0", "100"),
			kind:         models.SplitPercentage,
			wantErr:      true,
		},
		{
			name:         "percentage negative",
			total:        "100.00",
			participants: percentages("-10", "110"),
			kind:         models.SplitPercentage,
			wantErr:      true,
		},
		{
			name:         "percentages sum within epsilon",
			total:        "100.00",
			participants: percentages("50", "49.99"),
			kind:         models.SplitPercentage,
			want:         []string{"50.01", "49.99"},
		},
		{
			name:         "percentages sum off by more than epsilon",
			total:        "100.00",
			participants: percentages("50", "49.98"),
			kind:         models.SplitPercentage,
			wantErr:      true,
		},
		{
			name:         "custom exact",
			total:        "100.00",
			participants: amounts("40.00", "60.00"),
			kind:         models.SplitCustom,
			want:         []string{"40.00", "60.00"},
		},
		{
			name:         "custom off by one cent passes",
			total:        "100.00",
			participants: amounts("40.00", "59.99"),
			kind:         models.SplitCustom,
			want:         []string{"40.00", "59.99"},
		},
		{
			name:         "custom off by two cents fails",
			total:        "100.00",
			participants: amounts("40.00", "59.98"),
			kind:         models.SplitCustom,
			wantErr:      true,
		},
		{
			name:         "custom over by two cents fails",
			total:        "100.00",
			participants: amounts("40.00", "60.02"),
			kind:         models.SplitCustom,
			wantErr:      true,
		},
		{
			name:         "custom zero amount",
			total:        "100.00",
			participants: amounts("0", "100.00"),
			kind:         models.SplitCustom,
			wantErr:      true,
		},
		{
			name:         "unknown split type",
			total:        "100.00",
			participants: users(1),
			kind:         models.SplitType("EXCLUDED"),
			wantErr:      true,
		},
		{
			name:         "zero total",
			total:        "0",
			participants: users(1),
			kind:         models.SplitEqual,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := Compute(money.MustParse(tt.total), tt.participants, tt.kind)
			if tt.wantErr {
				var valErr *models.ValidationError
				require.True(t, errors.As(err, &valErr), "expected ValidationError, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, amountsOf(shares))
		})
	}
}

func TestComputeEqualAssignsExtraCentToLowestID(t *testing.T) {
	shares, err := Compute(money.MustParse("10.00"), users(30, 10, 20), models.SplitEqual)
	require.NoError(t, err)
	require.Len(t, shares, 3)
	assert.Equal(t, int64(10), shares[0].UserID)
	assert.Equal(t, "3.34", shares[0].Amount.String())
}

func TestComputeSumsExactly(t *testing.T) {
	pctSets := [][]string{
		{"33.33", "33.33", "33.34"},
		{"12.5", "12.5", "75"},
		{"1", "2", "3", "94"},
		{"14.29", "14.29", "14.29", "14.29", "14.28", "14.28", "14.28"},
	}
	for cents := int64(7); cents < 50000; cents += 997 {
		total := money.FromCents(cents)
		for n := 1; n <= 7; n++ {
			ids := make([]int64, n)
			for i := range ids {
				ids[i] = int64(n - i)
			}
			shares, err := Compute(total, users(ids...), models.SplitEqual)
			if cents < int64(n) {
				assert.Error(t, err)
				continue
			}
			require.NoError(t, err)
			assert.Equal(t, total, SumShares(shares), "equal %s / %d", total, n)
		}
		for _, set := range pctSets {
			t.Run(fmt.Sprintf("%s/%v", total, set), func(t *testing.T) {
				shares, err := Compute(total, percentages(set...), models.SplitPercentage)
				if err != nil {
					// Small totals can round a share to zero.
					var valErr *models.ValidationError
					require.True(t, errors.As(err, &valErr))
					return
				}
				assert.Equal(t, total, SumShares(shares))
			})
		}
	}
}

func TestComputeWithEpsilon(t *testing.T) {
	_, err := Compute(money.MustParse("100.00"), amounts("40.00", "59.95"), models.SplitCustom,
		WithEpsilon(money.MustParse("0.05")))
	assert.NoError(t, err)

	_, err = Compute(money.MustParse("100.00"), amounts("40.00", "59.99"), models.SplitCustom,
		WithEpsilon(money.Zero))
	assert.Error(t, err)
}

func TestComputeCustomRejectsOverflowingSum(t *testing.T) {
	// Four near-2^62 amounts wrap an int64 sum to -4; the last 0.05 brings
	// a wrapped total back to exactly 0.01.
	huge := money.FromCents(1<<62 - 1)
	participants := []Participant{
		{UserID: 1, Amount: huge},
		{UserID: 2, Amount: huge},
		{UserID: 3, Amount: huge},
		{UserID: 4, Amount: huge},
		{UserID: 5, Amount: money.MustParse("0.05")},
	}

	shares, err := Compute(money.FromCents(1), participants, models.SplitCustom)
	require.Error(t, err, "accepted shares %v", amountsOf(shares))
	var verr *models.ValidationError
	assert.True(t, errors.As(err, &verr))
}
