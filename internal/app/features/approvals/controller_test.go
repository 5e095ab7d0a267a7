package approvals_test

import (
	"context"
	"testing"
	"time"

	"github.com/stoutly/stoutly/internal/app/features/approvals"
	"github.com/stoutly/stoutly/internal/app/sync/authfeed"
	"github.com/stoutly/stoutly/internal/app/sync/guard"
	"github.com/stoutly/stoutly/internal/app/sync/moderation"
	"github.com/stoutly/stoutly/internal/app/sync/role"
	"github.com/stoutly/stoutly/internal/domain/models"
	"github.com/stoutly/stoutly/internal/testutil"
	"go.uber.org/zap"
)

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

type fixture struct {
	ctrl     *approvals.Controller
	users    *testutil.MemoryUsers
	notifier *testutil.FakeNotifier
	notices  *testutil.SpyNotices
	nav      *testutil.SpyNavigator
	confirm  *testutil.SpyConfirmer
}

// newFixture builds a controller whose role has already resolved to
// admin unless asAdmin is false.
func newFixture(t *testing.T, asAdmin bool) *fixture {
	t.Helper()
	logger := zap.NewNop()

	admins := testutil.NewMemoryAdmins("mod@example.com")
	roles := role.New(admins, []string{"mod@example.com"}, logger)
	email := "mod@example.com"
	if !asAdmin {
		email = "user@example.com"
	}
	roles.HandleAuthChange(context.Background(), &authfeed.Principal{UID: "m1", Email: email})

	f := &fixture{
		users:    testutil.NewMemoryUsers(),
		notifier: testutil.NewFakeNotifier(),
		notices:  &testutil.SpyNotices{},
		nav:      &testutil.SpyNavigator{},
		confirm:  &testutil.SpyConfirmer{Answer: true},
	}
	g := guard.New(f.notices, f.nav, logger)
	gateway := moderation.New(f.users, &testutil.RecordingDeleter{}, &testutil.RecordingDeleter{},
		&testutil.RecordingDeleter{}, f.confirm, f.notices, logger)
	f.ctrl = approvals.New(roles, g, gateway, f.users, f.notifier, f.notices, logger)
	return f
}

func TestMount_DeniedForNonAdmin(t *testing.T) {
	f := newFixture(t, false)

	d, err := f.ctrl.Mount(context.Background())
	if err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	if d != guard.Deny {
		t.Fatalf("got %v, want Deny", d)
	}
	if got := f.nav.Replaced(); len(got) != 1 || got[0] != "/login" {
		t.Errorf("expected redirect to /login, got %v", got)
	}
}

func TestMount_LiveListSortedNewestFirst(t *testing.T) {
	f := newFixture(t, true)
	defer f.ctrl.Unmount()

	now := time.Now()
	f.users.Seed(models.User{ID: "old", Status: models.StatusPending, CreatedAt: now.Add(-2 * time.Hour)})
	f.users.Seed(models.User{ID: "new", Status: models.StatusPending, CreatedAt: now})
	f.users.Seed(models.User{ID: "approved", Status: models.StatusApproved, CreatedAt: now})

	d, err := f.ctrl.Mount(context.Background())
	if err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	if d != guard.Allow {
		t.Fatalf("got %v, want Allow", d)
	}

	f.notifier.Signal()
	waitUntil(t, "the first snapshot", func() bool { return f.ctrl.Count() == 2 })

	pending := f.ctrl.Pending()
	if pending[0].ID != "new" || pending[1].ID != "old" {
		t.Errorf("pending order: got %s, %s; want newest first", pending[0].ID, pending[1].ID)
	}
	if f.ctrl.Loading() {
		t.Error("loading must clear after the first snapshot")
	}
}

func TestApprove_RemovalComesFromNextSnapshot(t *testing.T) {
	f := newFixture(t, true)
	defer f.ctrl.Unmount()
	f.users.Seed(models.User{ID: "u1", Status: models.StatusPending, CreatedAt: time.Now()})

	if _, err := f.ctrl.Mount(context.Background()); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	f.notifier.Signal()
	waitUntil(t, "the first snapshot", func() bool { return f.ctrl.Count() == 1 })

	if err := f.ctrl.Approve(context.Background(), "u1"); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	// The local list is untouched until the change signal re-queries.
	if f.ctrl.Count() != 1 {
		t.Error("approval must not splice the local list")
	}

	f.notifier.Signal()
	waitUntil(t, "the post-approval snapshot", func() bool { return f.ctrl.Count() == 0 })
}

func TestMount_ReadFailureSurfacesNotice(t *testing.T) {
	f := newFixture(t, true)
	defer f.ctrl.Unmount()
	f.users.Err = testutil.ErrScripted

	if _, err := f.ctrl.Mount(context.Background()); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	f.notifier.Signal()
	waitUntil(t, "the failure notice", func() bool {
		for _, msg := range f.notices.Errors() {
			if msg == "Failed to load pending users" {
				return true
			}
		}
		return false
	})
	if f.ctrl.Loading() {
		t.Error("loading must clear on failure")
	}
}

func TestUnmount_CancelsSubscription(t *testing.T) {
	f := newFixture(t, true)

	if _, err := f.ctrl.Mount(context.Background()); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	f.ctrl.Unmount()

	if f.notifier.CancelCalls() != 1 {
		t.Errorf("cancel calls: got %d, want 1", f.notifier.CancelCalls())
	}

	// Unmount without a mount is safe.
	f.ctrl.Unmount()
	if f.notifier.CancelCalls() != 1 {
		t.Error("second Unmount must not cancel again")
	}
}
