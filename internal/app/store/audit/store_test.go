package audit_test

import (
	"testing"

	"github.com/stoutly/stoutly/internal/app/store/audit"
	"github.com/stoutly/stoutly/internal/domain/models"
	"github.com/stoutly/stoutly/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestRecord(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store.Record(ctx, audit.ActionAdminLogin, "mod@example.com", map[string]string{"ip": "127.0.0.1"})

	var ev models.AuditEvent
	err := db.Collection("admin_actions").FindOne(ctx, bson.M{"actor_id": "mod@example.com"}).Decode(&ev)
	if err != nil {
		t.Fatalf("expected a stored event: %v", err)
	}
	if ev.Action != audit.ActionAdminLogin {
		t.Errorf("action: got %q, want %q", ev.Action, audit.ActionAdminLogin)
	}
	if ev.Timestamp.IsZero() {
		t.Error("timestamp must be stamped")
	}
	if ev.Details["ip"] != "127.0.0.1" {
		t.Errorf("details: got %v", ev.Details)
	}
}
