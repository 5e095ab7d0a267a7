package bootstrap

import (
	"testing"

	adminstore "github.com/stoutly/stoutly/internal/app/store/admins"
	"github.com/stoutly/stoutly/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestEnsureBootstrapAdmin_CreatesNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := ensureBootstrapAdmin(ctx, db, "Admin@Test.com", "hunter22", zap.NewNop())
	if err != nil {
		t.Fatalf("ensureBootstrapAdmin failed: %v", err)
	}

	admins := adminstore.New(db)
	admin, err := admins.Get(ctx, "admin@test.com")
	if err != nil {
		t.Fatalf("failed to find seeded admin: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("hunter22")) != nil {
		t.Error("stored hash does not match seeded password")
	}
}

func TestEnsureBootstrapAdmin_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := ensureBootstrapAdmin(ctx, db, "admin@test.com", "first", zap.NewNop()); err != nil {
		t.Fatalf("first seed failed: %v", err)
	}
	if err := ensureBootstrapAdmin(ctx, db, "admin@test.com", "second", zap.NewNop()); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}

	admins := adminstore.New(db)
	admin, err := admins.Get(ctx, "admin@test.com")
	if err != nil {
		t.Fatalf("failed to find admin: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("second")) != nil {
		t.Error("re-seeding did not refresh the password hash")
	}
}

func TestValidateConfig_BootstrapAdminMustBeAllowListed(t *testing.T) {
	cfg := AppConfig{
		MongoURI:               "mongodb://localhost:27017",
		AdminEmails:            []string{"mod@test.com"},
		BootstrapAdminEmail:    "other@test.com",
		BootstrapAdminPassword: "pw",
	}
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error for bootstrap admin outside allow-list")
	}

	cfg.BootstrapAdminEmail = "Mod@Test.com"
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err != nil {
		t.Fatalf("expected allow-listed bootstrap admin to validate, got %v", err)
	}
}
