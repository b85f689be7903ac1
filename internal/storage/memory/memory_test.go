package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/internal/storage/storagetest"
)

func TestMemoryStore(t *testing.T) {
	storagetest.Run(t, func(*testing.T) storage.Store { return New() })
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := New()
	f := storagetest.NewFixture(t, store)

	expense := f.NewExpense("10.00")
	require.NoError(t, store.CreateExpense(ctx, expense))

	got, err := store.GetSplit(ctx, expense.Splits[0].ID)
	require.NoError(t, err)
	got.Status = "MUTATED"

	again, err := store.GetSplit(ctx, expense.Splits[0].ID)
	require.NoError(t, err)
	assert.NotEqual(t, got.Status, again.Status)

	group, err := store.GetGroup(ctx, f.Group.ID)
	require.NoError(t, err)
	group.MemberIDs[0] = 9999

	group, err = store.GetGroup(ctx, f.Group.ID)
	require.NoError(t, err)
	assert.Equal(t, f.Users[0].ID, group.MemberIDs[0])
}
