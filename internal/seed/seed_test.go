package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage/memory"
)

func newLoader(store *memory.Store) *Loader {
	splits := ledger.NewSplitLedger(store)
	return NewLoader(store, auth.NewPasswordAuthenticator(store), ledger.NewExpenseService(store, splits), splits)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	loader := newLoader(store)

	loaded, err := loader.Load(ctx)
	require.NoError(t, err)
	assert.True(t, loaded)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, len(demoUsers))

	groups, err := store.ListGroups(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, len(demoGroups))

	expenses, err := store.ListExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, expenses, len(demoExpenses))

	var paid int
	for _, e := range expenses {
		assert.Equal(t, models.SplitEqual, e.SplitType)
		for _, s := range e.Splits {
			if s.Status == models.StatusPaid {
				paid++
			}
		}
	}
	assert.Equal(t, len(demoPayments), paid)

	alice, err := store.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, alice)
	_, err = auth.NewPasswordAuthenticator(store).Authenticate(ctx, "alice@example.com", DemoPassword)
	assert.NoError(t, err)

	// 500.00 rent + 66.67 utilities (PAID still counts) + 160.00 hotel
	// + 60.00 trip dinner + 40.00 restaurant.
	total, err := ledger.NewBalanceAggregator(store).TotalOwedByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "826.67", total.String())
}

func TestLoadSkipsPopulatedStore(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.CreateUser(ctx, models.NewUser("someone@example.com", "someone", "")))

	loaded, err := newLoader(store).Load(ctx)
	require.NoError(t, err)
	assert.False(t, loaded)

	n, err := store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
