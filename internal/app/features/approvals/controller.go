// Package approvals holds the screen state for reviewing pending user
// registrations: a live pending list plus approve/reject actions.
package approvals

import (
	"context"
	"sort"
	"sync"

	"github.com/stoutly/stoutly/internal/app/sync/alerts"
	"github.com/stoutly/stoutly/internal/app/sync/guard"
	"github.com/stoutly/stoutly/internal/app/sync/livequery"
	"github.com/stoutly/stoutly/internal/app/sync/moderation"
	"github.com/stoutly/stoutly/internal/app/sync/role"
	"github.com/stoutly/stoutly/internal/domain/models"
	"go.uber.org/zap"
)

// PendingSource lists the full current set of pending users.
type PendingSource interface {
	ListPending(ctx context.Context) ([]models.User, error)
}

// Controller owns the pending-users screen state. State is private to
// one mounted screen; other screens converge by subscribing
// independently, never by sharing this state.
type Controller struct {
	roles    *role.Resolver
	guard    *guard.Guard
	gateway  *moderation.Gateway
	source   PendingSource
	notifier livequery.Notifier
	notices  alerts.Notices
	log      *zap.Logger

	mu      sync.Mutex
	mux     *livequery.Multiplexer
	pending []models.User
	loading bool
}

func New(roles *role.Resolver, g *guard.Guard, gateway *moderation.Gateway,
	source PendingSource, notifier livequery.Notifier,
	notices alerts.Notices, logger *zap.Logger) *Controller {
	return &Controller{
		roles:    roles,
		guard:    g,
		gateway:  gateway,
		source:   source,
		notifier: notifier,
		notices:  notices,
		log:      logger,
		loading:  true,
	}
}

// Mount gates on the moderator role and opens the live pending-list
// subscription. Callers invoke it again when a Wait decision resolves;
// the gate is checked once per successful mount, not continuously.
func (c *Controller) Mount(ctx context.Context) (guard.Decision, error) {
	d := c.guard.RequireAdmin(c.roles.Snapshot())
	if d != guard.Allow {
		return d, nil
	}

	c.mu.Lock()
	if c.mux != nil {
		c.mu.Unlock()
		return guard.Allow, nil
	}
	mux := livequery.NewMultiplexer(c.log)
	c.mux = mux
	c.mu.Unlock()

	c.log.Info("opening pending-users subscription")
	err := livequery.Watch(ctx, mux, "pending-users", c.notifier, c.source.ListPending,
		c.applyPending,
		func(error) {
			c.notices.Error("Failed to load pending users")
			c.mu.Lock()
			c.loading = false
			c.mu.Unlock()
		})
	if err != nil {
		c.notices.Error("Failed to load pending users")
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
		return guard.Allow, err
	}
	return guard.Allow, nil
}

// applyPending replaces the pending slice wholesale with the snapshot,
// newest registrations first. Ties keep the snapshot's arrival order.
func (c *Controller) applyPending(users []models.User) {
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	c.mu.Lock()
	c.pending = users
	c.loading = false
	c.mu.Unlock()
}

// Unmount tears down the subscription. Safe to call without a
// successful Mount.
func (c *Controller) Unmount() {
	c.mu.Lock()
	mux := c.mux
	c.mux = nil
	c.mu.Unlock()
	if mux != nil {
		c.log.Info("closing pending-users subscription")
		mux.Close()
	}
}

// Approve runs the approve mutation. The user disappears from Pending
// via the next snapshot, not by local removal.
func (c *Controller) Approve(ctx context.Context, userID string) error {
	return c.gateway.ApproveUser(ctx, userID)
}

// Reject runs the reject mutation.
func (c *Controller) Reject(ctx context.Context, userID string) error {
	return c.gateway.RejectUser(ctx, userID)
}

// Processing reports whether the control for the user should be
// disabled.
func (c *Controller) Processing(userID string) bool {
	return c.gateway.Processing(userID)
}

// Pending returns a copy of the current pending list.
func (c *Controller) Pending() []models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.User, len(c.pending))
	copy(out, c.pending)
	return out
}

// Count is derived from the latest snapshot, never independently
// maintained.
func (c *Controller) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Loading reports whether the first snapshot has arrived.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}
