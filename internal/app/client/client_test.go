package client_test

import (
	"context"
	"testing"
	"time"

	"github.com/stoutly/stoutly/internal/app/client"
	"github.com/stoutly/stoutly/internal/testutil"
	"go.uber.org/zap"
)

func newStack(t *testing.T) (*client.Client, *testutil.ScriptedFeed) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c := client.New(db, &testutil.FakeAuth{}, client.UI{
		Confirm: &testutil.SpyConfirmer{Answer: true},
		Notices: &testutil.SpyNotices{},
		Nav:     &testutil.SpyNavigator{},
	}, client.Config{
		AdminEmails:    []string{"mod@example.com"},
		GatewayBaseURL: "http://localhost:8080",
	}, zap.NewNop())

	feed := &testutil.ScriptedFeed{}
	c.Start(context.Background(), feed)
	return c, feed
}

func TestStack_ResolvesSignedOutState(t *testing.T) {
	c, feed := newStack(t)
	defer c.Close()

	feed.Emit(nil)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s := c.Session.Snapshot()
		r := c.Roles.Snapshot()
		if !s.Loading && !r.Loading {
			if s.User != nil {
				t.Fatal("signed-out state must carry no identity")
			}
			if r.IsAdmin {
				t.Fatal("signed-out state must not be admin")
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for resolvers to settle")
}

func TestStack_CloseDetachesFromFeed(t *testing.T) {
	c, feed := newStack(t)

	c.Close()
	// Both the identity and role subscriptions are released.
	if feed.CancelCount() != 2 {
		t.Errorf("cancelled subscriptions: got %d, want 2", feed.CancelCount())
	}

	feed.Emit(nil)
	if !c.Session.Snapshot().Loading {
		t.Error("a detached session must not observe feed events")
	}
}
