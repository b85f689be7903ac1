package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/internal/storage/storagetest"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestSQLiteStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return newTestStore(t)
	})
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "ledger.db")

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	f := storagetest.NewFixture(t, store)
	expense := f.NewExpense("12.50", "7.50")
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if _, err := store.CompareAndSetSplitStatus(ctx, expense.Splits[1].ID, models.StatusPending, models.StatusPaid, 99); err != nil {
		t.Fatalf("CompareAndSetSplitStatus failed: %v", err)
	}
	store.Close()

	// Migrations must tolerate an already migrated database.
	store, err = New(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer store.Close()

	got, err := store.GetExpense(ctx, expense.ID)
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if got.Amount.String() != "20.00" {
		t.Errorf("Expected amount 20.00, got %s", got.Amount)
	}
	if len(got.Splits) != 2 {
		t.Fatalf("Expected 2 splits, got %d", len(got.Splits))
	}
	if got.Splits[1].Status != models.StatusPaid {
		t.Errorf("Expected second split PAID, got %s", got.Splits[1].Status)
	}
}

func TestSQLiteStoreRejectsNegativeAmount(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	ctx := context.Background()

	f := storagetest.NewFixture(t, store)
	// Bypass the money type to hit the CHECK constraint directly.
	_, err := store.db.ExecContext(ctx,
		`INSERT INTO expenses (group_id, paid_by_id, amount_cents, description, split_type, created_at)
		 VALUES (?, ?, -1, 'bad', 'CUSTOM', 1)`, f.Group.ID, f.Users[0].ID)
	if err == nil {
		t.Fatal("Expected CHECK constraint to reject a negative amount")
	}
}
