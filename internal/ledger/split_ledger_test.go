package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/internal/storage/memory"
)

func TestSplitTransitions(t *testing.T) {
	type step struct {
		mark    models.SplitStatus
		wantErr bool
	}
	tests := []struct {
		name  string
		steps []step
		final models.SplitStatus
	}{
		{"pending to paid", []step{{models.StatusPaid, false}}, models.StatusPaid},
		{"pending to settled", []step{{models.StatusSettled, false}}, models.StatusSettled},
		{"paid to settled", []step{{models.StatusPaid, false}, {models.StatusSettled, false}}, models.StatusSettled},
		{"paid twice is a no-op", []step{{models.StatusPaid, false}, {models.StatusPaid, false}}, models.StatusPaid},
		{"settled twice is a no-op", []step{{models.StatusSettled, false}, {models.StatusSettled, false}}, models.StatusSettled},
		{"settled cannot be paid", []step{{models.StatusSettled, false}, {models.StatusPaid, true}}, models.StatusSettled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			expense := env.add(t, "20.00", models.SplitEqual, byUser(env.bob)...)
			id := expense.Splits[0].ID

			for _, st := range tt.steps {
				var (
					split *models.Split
					err   error
				)
				if st.mark == models.StatusPaid {
					split, err = env.ledger.MarkPaid(ctx, id)
				} else {
					split, err = env.ledger.MarkSettled(ctx, id)
				}
				if st.wantErr {
					invalid := requireKind[*models.InvalidStatusTransitionError](t, err)
					assert.Equal(t, id, invalid.SplitID)
					assert.Nil(t, split)
					continue
				}
				require.NoError(t, err)
				assert.Equal(t, st.mark, split.Status)
			}

			got, err := env.ledger.GetSplit(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, tt.final, got.Status)
		})
	}
}

func TestMarkPaidIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	expense := env.add(t, "20.00", models.SplitEqual, byUser(env.bob)...)
	id := expense.Splits[0].ID

	first, err := env.ledger.MarkPaid(ctx, id)
	require.NoError(t, err)
	second, err := env.ledger.MarkPaid(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1700000000), second.UpdatedAt)
	assert.Len(t, env.publisher.ofType(events.SplitStatusChanged), 1, "the no-op must not emit an event")
}

func TestMarkUnknownSplit(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.ledger.MarkPaid(context.Background(), 404)
	requireKind[*models.NotFoundError](t, err)
}

func TestStatusChangedEvent(t *testing.T) {
	env := newTestEnv(t)
	expense := env.add(t, "12.00", models.SplitEqual, byUser(env.alice, env.bob)...)

	_, err := env.ledger.MarkSettled(context.Background(), expense.Splits[1].ID)
	require.NoError(t, err)

	changed := env.publisher.ofType(events.SplitStatusChanged)
	require.Len(t, changed, 1)
	assert.Equal(t, events.Event{
		Type:       events.SplitStatusChanged,
		ExpenseID:  expense.ID,
		GroupID:    env.group,
		SplitID:    expense.Splits[1].ID,
		UserID:     env.bob,
		Amount:     "6.00",
		FromStatus: "PENDING",
		ToStatus:   "SETTLED",
		Timestamp:  changed[0].Timestamp,
	}, changed[0])
}

func TestPublishFailureDoesNotFailTransition(t *testing.T) {
	env := newTestEnv(t)
	expense := env.add(t, "12.00", models.SplitEqual, byUser(env.bob)...)
	env.publisher.err = errors.New("broker down")

	split, err := env.ledger.MarkPaid(context.Background(), expense.Splits[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, split.Status)
}

// racingStore lets another writer change the split just before the first
// compare-and-set, as if a concurrent request had won.
type racingStore struct {
	storage.Store
	once  sync.Once
	racer models.SplitStatus
}

func (s *racingStore) CompareAndSetSplitStatus(ctx context.Context, id int64, from, to models.SplitStatus, at int64) (bool, error) {
	s.once.Do(func() {
		if _, err := s.Store.CompareAndSetSplitStatus(ctx, id, from, s.racer, at); err != nil {
			panic(err)
		}
	})
	return s.Store.CompareAndSetSplitStatus(ctx, id, from, to, at)
}

func TestTransitionLosesRace(t *testing.T) {
	t.Run("settle retries after a concurrent paid", func(t *testing.T) {
		env := newTestEnvWithStore(t, &racingStore{Store: memory.New(), racer: models.StatusPaid})
		expense := env.add(t, "9.00", models.SplitEqual, byUser(env.bob)...)

		split, err := env.ledger.MarkSettled(context.Background(), expense.Splits[0].ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusSettled, split.Status)

		changed := env.publisher.ofType(events.SplitStatusChanged)
		require.Len(t, changed, 1)
		assert.Equal(t, "PAID", changed[0].FromStatus)
	})

	t.Run("paid fails after a concurrent settle", func(t *testing.T) {
		env := newTestEnvWithStore(t, &racingStore{Store: memory.New(), racer: models.StatusSettled})
		expense := env.add(t, "9.00", models.SplitEqual, byUser(env.bob)...)

		_, err := env.ledger.MarkPaid(context.Background(), expense.Splits[0].ID)
		invalid := requireKind[*models.InvalidStatusTransitionError](t, err)
		assert.Equal(t, models.StatusSettled, invalid.From)
		assert.Equal(t, models.StatusPaid, invalid.To)
	})
}

func TestConcurrentTransitionsKeepLegalHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	expense := env.add(t, "50.00", models.SplitEqual, byUser(env.bob)...)
	id := expense.Splits[0].ID

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = env.ledger.MarkPaid(ctx, id)
			} else {
				_, err = env.ledger.MarkSettled(ctx, id)
			}
			if err != nil {
				var invalid *models.InvalidStatusTransitionError
				assert.True(t, errors.As(err, &invalid), "unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, err := env.ledger.GetSplit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSettled, got.Status)

	// Every recorded change must chain from the previous one.
	status := models.StatusPending
	for _, e := range env.publisher.ofType(events.SplitStatusChanged) {
		require.Equal(t, string(status), e.FromStatus)
		_, err := status.Transition(models.SplitStatus(e.ToStatus))
		require.NoError(t, err)
		status = models.SplitStatus(e.ToStatus)
	}
	assert.Equal(t, models.StatusSettled, status)
}

func TestCreateSplitsForExpenseChecksSum(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	share := func(id int64, amount string) calculator.Share {
		return calculator.Share{UserID: id, Amount: money.MustParse(amount)}
	}
	newExpense := func(kind models.SplitType) *models.Expense {
		return &models.Expense{
			GroupID:     env.group,
			PaidByID:    env.alice,
			Amount:      money.MustParse("10.00"),
			Description: "Snacks",
			SplitType:   kind,
		}
	}

	tests := []struct {
		name    string
		kind    models.SplitType
		shares  []calculator.Share
		wantErr bool
	}{
		{"equal exact", models.SplitEqual, []calculator.Share{share(env.alice, "5.00"), share(env.bob, "5.00")}, false},
		{"equal off by a cent", models.SplitEqual, []calculator.Share{share(env.alice, "5.00"), share(env.bob, "4.99")}, true},
		{"custom within epsilon", models.SplitCustom, []calculator.Share{share(env.alice, "5.00"), share(env.bob, "4.99")}, false},
		{"custom beyond epsilon", models.SplitCustom, []calculator.Share{share(env.alice, "5.00"), share(env.bob, "4.98")}, true},
		{"no shares", models.SplitCustom, nil, true},
		{"zero share", models.SplitCustom, []calculator.Share{share(env.alice, "10.00"), share(env.bob, "0.00")}, true},
		{"duplicate user", models.SplitCustom, []calculator.Share{share(env.alice, "5.00"), share(env.alice, "5.00")}, true},
		{"custom sum wraps past int64", models.SplitCustom, []calculator.Share{
			{UserID: 101, Amount: money.FromCents(1<<62 - 1)},
			{UserID: 102, Amount: money.FromCents(1<<62 - 1)},
			{UserID: 103, Amount: money.FromCents(1<<62 - 1)},
			{UserID: 104, Amount: money.FromCents(1<<62 - 1)},
			share(env.alice, "10.04"),
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expense := newExpense(tt.kind)
			err := env.ledger.CreateSplitsForExpense(ctx, expense, tt.shares)
			if tt.wantErr {
				requireKind[*models.ValidationError](t, err)
				assert.Zero(t, expense.ID)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, expense.ID)
			assert.Len(t, expense.Splits, len(tt.shares))
		})
	}
}

func TestCreateSplitsForExpenseStoreFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	expense := &models.Expense{
		GroupID:     env.group,
		PaidByID:    env.alice,
		Amount:      money.MustParse("10.00"),
		Description: "Snacks",
		SplitType:   models.SplitEqual,
	}
	shares := []calculator.Share{
		{UserID: env.alice, Amount: money.MustParse("5.00")},
		{UserID: 9999, Amount: money.MustParse("5.00")},
	}

	err := env.ledger.CreateSplitsForExpense(ctx, expense, shares)
	requireKind[*models.NotFoundError](t, err)
	assert.Nil(t, expense.Splits)

	splits, err := env.store.ListSplitsByGroup(ctx, env.group)
	require.NoError(t, err)
	assert.Empty(t, splits)
}

func TestSplitLookups(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.add(t, "10.00", models.SplitEqual, byUser(env.alice, env.bob)...)
	env.add(t, "6.00", models.SplitEqual, byUser(env.bob, env.carol)...)

	bobs, err := env.ledger.SplitsForUser(ctx, env.bob)
	require.NoError(t, err)
	assert.Len(t, bobs, 2)

	splits, err := env.ledger.SplitsForExpense(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, splits, 2)

	split, err := env.ledger.SplitForUserAndExpense(ctx, env.bob, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "5.00", split.Amount.String())

	_, err = env.ledger.SplitForUserAndExpense(ctx, env.carol, first.ID)
	requireKind[*models.NotFoundError](t, err)
	_, err = env.ledger.SplitsForUser(ctx, 9999)
	requireKind[*models.NotFoundError](t, err)
	_, err = env.ledger.SplitsForExpense(ctx, 9999)
	requireKind[*models.NotFoundError](t, err)
}
