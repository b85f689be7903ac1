package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/internal/storage/memory"
	"github.com/mmynk/settleup/internal/storage/storagetest"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) ofType(t events.Type) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	store      storage.Store
	fixture    storagetest.Fixture
	publisher  *recordingPublisher
	ledger     *SplitLedger
	balances   *BalanceAggregator
	expenses   *ExpenseService
	alice, bob int64
	carol      int64
	group      int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, memory.New())
}

func newTestEnvWithStore(t *testing.T, store storage.Store) *testEnv {
	t.Helper()
	f := storagetest.NewFixture(t, store)
	pub := &recordingPublisher{}
	clock := func() time.Time { return time.Unix(1700000000, 0) }

	l := NewSplitLedger(store, WithPublisher(pub), WithClock(clock))
	return &testEnv{
		store:     store,
		fixture:   f,
		publisher: pub,
		ledger:    l,
		balances:  NewBalanceAggregator(store),
		expenses:  NewExpenseService(store, l, WithPublisher(pub)),
		alice:     f.Users[0].ID,
		bob:       f.Users[1].ID,
		carol:     f.Users[2].ID,
		group:     f.Group.ID,
	}
}

func (e *testEnv) add(t *testing.T, amount string, kind models.SplitType, participants ...calculator.Participant) *models.Expense {
	t.Helper()
	expense, err := e.expenses.AddExpense(context.Background(), AddExpenseInput{
		GroupID:      e.group,
		PaidByID:     e.alice,
		Amount:       money.MustParse(amount),
		Description:  "Dinner",
		SplitType:    kind,
		Participants: participants,
	})
	require.NoError(t, err)
	return expense
}

func byUser(ids ...int64) []calculator.Participant {
	out := make([]calculator.Participant, len(ids))
	for i, id := range ids {
		out[i] = calculator.Participant{UserID: id}
	}
	return out
}

func amountsOf(splits []models.Split) []string {
	out := make([]string, len(splits))
	for i, s := range splits {
		out[i] = s.Amount.String()
	}
	return out
}

func requireKind[T error](t *testing.T, err error) T {
	t.Helper()
	var target T
	require.Error(t, err)
	require.True(t, errors.As(err, &target), "expected %T, got %v", target, err)
	return target
}
