package adminstore_test

import (
	"errors"
	"testing"

	adminstore "github.com/stoutly/stoutly/internal/app/store/admins"
	"github.com/stoutly/stoutly/internal/testutil"
)

func TestUpsertAndExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := adminstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Upsert(ctx, "Mod@Example.com", "hash-1"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	ok, err := store.Exists(ctx, "MOD@example.com")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !ok {
		t.Error("expected the admin record to exist under any case")
	}

	ok, err = store.Exists(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if ok {
		t.Error("expected no record for an unknown email")
	}
}

func TestUpsert_RefreshesHashKeepsCreatedAt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := adminstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Upsert(ctx, "mod@example.com", "hash-1"); err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}
	first, err := store.Get(ctx, "mod@example.com")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if err := store.Upsert(ctx, "mod@example.com", "hash-2"); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	second, err := store.Get(ctx, "mod@example.com")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if second.PasswordHash != "hash-2" {
		t.Errorf("hash: got %q, want hash-2", second.PasswordHash)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at changed: %v vs %v", second.CreatedAt, first.CreatedAt)
	}
}

func TestGet_Missing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := adminstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Get(ctx, "nobody@example.com"); !errors.Is(err, adminstore.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
