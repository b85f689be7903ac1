// Package storagetest holds a behavioral test suite every storage.Store must pass.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/storage"
)

// Factory returns a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) storage.Store

// Fixture is a group of three users ready to hold expenses.
type Fixture struct {
	Users []*models.User
	Group *models.Group
}

// NewFixture creates alice, bob and carol and a group containing all three.
func NewFixture(t *testing.T, store storage.Store) Fixture {
	t.Helper()
	ctx := context.Background()

	var f Fixture
	for _, name := range []string{"alice", "bob", "carol"} {
		u := models.NewUser(name+"@example.com", name, "")
		require.NoError(t, store.CreateUser(ctx, u))
		f.Users = append(f.Users, u)
	}

	f.Group = &models.Group{
		Name:      "Roommates",
		MemberIDs: []int64{f.Users[0].ID, f.Users[1].ID, f.Users[2].ID},
	}
	require.NoError(t, store.CreateGroup(ctx, f.Group))
	return f
}

// NewExpense builds an unsaved expense in the fixture group paid by the first
// user, with one pending split per amount in user order.
func (f Fixture) NewExpense(amounts ...string) *models.Expense {
	e := &models.Expense{
		GroupID:     f.Group.ID,
		PaidByID:    f.Users[0].ID,
		Description: "Groceries",
		SplitType:   models.SplitCustom,
	}
	var total money.Money
	for i, a := range amounts {
		m := money.MustParse(a)
		total = total.Add(m)
		e.Splits = append(e.Splits, models.Split{
			UserID: f.Users[i].ID,
			Amount: m,
			Status: models.StatusPending,
		})
	}
	e.Amount = total
	return e
}

func isNotFound(err error) bool {
	var nf *models.NotFoundError
	return errors.As(err, &nf)
}

// Run executes the suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	setup := func(t *testing.T) (storage.Store, Fixture) {
		store := newStore(t)
		t.Cleanup(func() { store.Close() })
		return store, NewFixture(t, store)
	}

	t.Run("users", func(t *testing.T) {
		store, f := setup(t)

		got, err := store.GetUser(ctx, f.Users[1].ID)
		require.NoError(t, err)
		assert.Equal(t, "bob", got.Name)

		byEmail, err := store.GetUserByEmail(ctx, "BOB@example.com")
		require.NoError(t, err)
		require.NotNil(t, byEmail)
		assert.Equal(t, f.Users[1].ID, byEmail.ID)

		missing, err := store.GetUserByEmail(ctx, "nobody@example.com")
		assert.NoError(t, err)
		assert.Nil(t, missing)

		_, err = store.GetUser(ctx, 9999)
		assert.True(t, isNotFound(err), "got %v", err)

		users, err := store.ListUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 3)

		n, err := store.CountUsers(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("groups", func(t *testing.T) {
		store, f := setup(t)

		got, err := store.GetGroup(ctx, f.Group.ID)
		require.NoError(t, err)
		assert.Equal(t, "Roommates", got.Name)
		assert.ElementsMatch(t, f.Group.MemberIDs, got.MemberIDs)

		dave := models.NewUser("dave@example.com", "dave", "")
		require.NoError(t, store.CreateUser(ctx, dave))
		require.NoError(t, store.AddGroupMember(ctx, f.Group.ID, dave.ID))
		require.NoError(t, store.AddGroupMember(ctx, f.Group.ID, dave.ID))

		got, err = store.GetGroup(ctx, f.Group.ID)
		require.NoError(t, err)
		assert.Len(t, got.MemberIDs, 4)
		assert.True(t, got.HasMember(dave.ID))

		err = store.AddGroupMember(ctx, f.Group.ID, 9999)
		assert.True(t, isNotFound(err), "got %v", err)
		err = store.AddGroupMember(ctx, 9999, dave.ID)
		assert.True(t, isNotFound(err), "got %v", err)

		groups, err := store.ListGroups(ctx)
		require.NoError(t, err)
		assert.Len(t, groups, 1)

		_, err = store.GetGroup(ctx, 9999)
		assert.True(t, isNotFound(err), "got %v", err)
	})

	t.Run("create expense assigns ids", func(t *testing.T) {
		store, f := setup(t)

		e := f.NewExpense("3.34", "3.33", "3.33")
		require.NoError(t, store.CreateExpense(ctx, e))

		assert.NotZero(t, e.ID)
		assert.NotZero(t, e.CreatedAt)
		for _, s := range e.Splits {
			assert.NotZero(t, s.ID)
			assert.Equal(t, e.ID, s.ExpenseID)
			assert.Equal(t, f.Group.ID, s.GroupID)
		}

		got, err := store.GetExpense(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, "10.00", got.Amount.String())
		assert.Equal(t, models.SplitCustom, got.SplitType)
		require.Len(t, got.Splits, 3)
		assert.Equal(t, e.Splits, got.Splits)
	})

	t.Run("create expense is all or nothing", func(t *testing.T) {
		store, f := setup(t)

		e := f.NewExpense("5.00", "5.00")
		e.Splits[1].UserID = 9999 // unknown user fails mid-way
		require.Error(t, store.CreateExpense(ctx, e))

		expenses, err := store.ListExpenses(ctx)
		require.NoError(t, err)
		assert.Empty(t, expenses)

		splits, err := store.ListSplitsByUser(ctx, f.Users[0].ID)
		require.NoError(t, err)
		assert.Empty(t, splits)
	})

	t.Run("list splits", func(t *testing.T) {
		store, f := setup(t)

		e1 := f.NewExpense("10.00", "20.00")
		e2 := f.NewExpense("1.00", "2.00", "3.00")
		require.NoError(t, store.CreateExpense(ctx, e1))
		require.NoError(t, store.CreateExpense(ctx, e2))

		byUser, err := store.ListSplitsByUser(ctx, f.Users[1].ID)
		require.NoError(t, err)
		assert.Len(t, byUser, 2)

		byExpense, err := store.ListSplitsByExpense(ctx, e2.ID)
		require.NoError(t, err)
		assert.Len(t, byExpense, 3)

		byGroup, err := store.ListSplitsByGroup(ctx, f.Group.ID)
		require.NoError(t, err)
		assert.Len(t, byGroup, 5)

		expenses, err := store.ListExpensesByGroup(ctx, f.Group.ID)
		require.NoError(t, err)
		require.Len(t, expenses, 2)
		for _, e := range expenses {
			assert.NotEmpty(t, e.Splits)
		}
	})

	t.Run("compare and set split status", func(t *testing.T) {
		store, f := setup(t)

		e := f.NewExpense("10.00")
		require.NoError(t, store.CreateExpense(ctx, e))
		id := e.Splits[0].ID

		ok, err := store.CompareAndSetSplitStatus(ctx, id, models.StatusPending, models.StatusPaid, 42)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.CompareAndSetSplitStatus(ctx, id, models.StatusPending, models.StatusSettled, 43)
		require.NoError(t, err)
		assert.False(t, ok, "stale from-status must not win")

		got, err := store.GetSplit(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPaid, got.Status)
		assert.Equal(t, int64(42), got.UpdatedAt)

		_, err = store.CompareAndSetSplitStatus(ctx, 9999, models.StatusPending, models.StatusPaid, 1)
		assert.True(t, isNotFound(err), "got %v", err)
	})

	t.Run("concurrent compare and set has one winner", func(t *testing.T) {
		store, f := setup(t)

		e := f.NewExpense("10.00")
		require.NoError(t, store.CreateExpense(ctx, e))
		id := e.Splits[0].ID

		const workers = 8
		var wg sync.WaitGroup
		wins := make(chan models.SplitStatus, workers)
		for i := 0; i < workers; i++ {
			to := models.StatusPaid
			if i%2 == 0 {
				to = models.StatusSettled
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := store.CompareAndSetSplitStatus(ctx, id, models.StatusPending, to, 1)
				assert.NoError(t, err)
				if ok {
					wins <- to
				}
			}()
		}
		wg.Wait()
		close(wins)

		var winners []models.SplitStatus
		for w := range wins {
			winners = append(winners, w)
		}
		require.Len(t, winners, 1)

		got, err := store.GetSplit(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, winners[0], got.Status)
	})

	t.Run("delete expense cascades", func(t *testing.T) {
		store, f := setup(t)

		e := f.NewExpense("10.00", "20.00")
		require.NoError(t, store.CreateExpense(ctx, e))

		require.NoError(t, store.DeleteExpense(ctx, e.ID))

		_, err := store.GetExpense(ctx, e.ID)
		assert.True(t, isNotFound(err), "got %v", err)
		_, err = store.GetSplit(ctx, e.Splits[0].ID)
		assert.True(t, isNotFound(err), "got %v", err)

		splits, err := store.ListSplitsByGroup(ctx, f.Group.ID)
		require.NoError(t, err)
		assert.Empty(t, splits)

		assert.True(t, isNotFound(store.DeleteExpense(ctx, e.ID)))
	})

	t.Run("get expense never sees partial splits during delete", func(t *testing.T) {
		store, f := setup(t)

		const n = 20
		var ids []int64
		for i := 0; i < n; i++ {
			e := f.NewExpense("1.00", "2.00", "3.00")
			require.NoError(t, store.CreateExpense(ctx, e))
			ids = append(ids, e.ID)
		}

		var wg sync.WaitGroup
		for _, id := range ids {
			wg.Add(2)
			go func() {
				defer wg.Done()
				assert.NoError(t, store.DeleteExpense(ctx, id))
			}()
			go func() {
				defer wg.Done()
				for i := 0; i < 5; i++ {
					got, err := store.GetExpense(ctx, id)
					if isNotFound(err) {
						return
					}
					if !assert.NoError(t, err) {
						return
					}
					assert.Len(t, got.Splits, 3, "expense %d", id)
				}
			}()
		}
		wg.Wait()
	})

	t.Run("delete group cascades", func(t *testing.T) {
		store, f := setup(t)

		e := f.NewExpense("10.00", "20.00")
		require.NoError(t, store.CreateExpense(ctx, e))

		require.NoError(t, store.DeleteGroup(ctx, f.Group.ID))

		_, err := store.GetExpense(ctx, e.ID)
		assert.True(t, isNotFound(err), "got %v", err)
		splits, err := store.ListSplitsByUser(ctx, f.Users[1].ID)
		require.NoError(t, err)
		assert.Empty(t, splits)

		assert.True(t, isNotFound(store.DeleteGroup(ctx, f.Group.ID)))
	})
}
