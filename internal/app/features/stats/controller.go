// Package stats holds the screen state for the moderation dashboard:
// live counts over the user and flag collections and a confirmed
// sign-out.
package stats

import (
	"context"
	"sync"

	"github.com/stoutly/stoutly/internal/app/sync/alerts"
	"github.com/stoutly/stoutly/internal/app/sync/guard"
	"github.com/stoutly/stoutly/internal/app/sync/livequery"
	"github.com/stoutly/stoutly/internal/app/sync/role"
	"github.com/stoutly/stoutly/internal/domain/models"
	"go.uber.org/zap"
)

// UserSource lists users for counting. Counts are always derived from
// full snapshots, never maintained incrementally.
type UserSource interface {
	ListPending(ctx context.Context) ([]models.User, error)
	ListAll(ctx context.Context) ([]models.User, error)
}

// FlagSource lists the full current set of flags.
type FlagSource interface {
	List(ctx context.Context) ([]models.Flag, error)
}

// SignOut ends the authenticated session.
type SignOut interface {
	Logout()
}

// Counts is one dashboard snapshot. The three numbers come from
// independent subscriptions and are not jointly consistent.
type Counts struct {
	PendingUsers int
	TotalUsers   int
	Flags        int
	Loading      bool
}

// Controller owns the dashboard screen state.
type Controller struct {
	roles   *role.Resolver
	guard   *guard.Guard
	users   UserSource
	flagSrc FlagSource
	userNtf livequery.Notifier
	flagNtf livequery.Notifier
	session SignOut
	confirm alerts.Confirmer
	notices alerts.Notices
	nav     alerts.Navigator
	log     *zap.Logger

	mu     sync.Mutex
	mux    *livequery.Multiplexer
	counts Counts
}

func New(roles *role.Resolver, g *guard.Guard, users UserSource, flagSrc FlagSource,
	userNtf, flagNtf livequery.Notifier, session SignOut,
	confirm alerts.Confirmer, notices alerts.Notices, nav alerts.Navigator,
	logger *zap.Logger) *Controller {
	return &Controller{
		roles:   roles,
		guard:   g,
		users:   users,
		flagSrc: flagSrc,
		userNtf: userNtf,
		flagNtf: flagNtf,
		session: session,
		confirm: confirm,
		notices: notices,
		nav:     nav,
		log:     logger,
		counts:  Counts{Loading: true},
	}
}

// Mount gates on the moderator role and opens the three count
// subscriptions. Both user counts share one notifier since they watch
// the same collection.
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

	c.log.Info("opening dashboard subscriptions")
	if err := livequery.Watch(ctx, mux, "pending-count", c.userNtf, c.users.ListPending,
		func(users []models.User) {
			c.update(func(s *Counts) { s.PendingUsers = len(users) })
		}, c.loadError); err != nil {
		c.loadError(err)
		return guard.Allow, err
	}
	if err := livequery.Watch(ctx, mux, "user-count", c.userNtf, c.users.ListAll,
		func(users []models.User) {
			c.update(func(s *Counts) { s.TotalUsers = len(users) })
		}, c.loadError); err != nil {
		c.loadError(err)
		return guard.Allow, err
	}
	if err := livequery.Watch(ctx, mux, "flag-count", c.flagNtf, c.flagSrc.List,
		func(flags []models.Flag) {
			c.update(func(s *Counts) { s.Flags = len(flags) })
		}, c.loadError); err != nil {
		c.loadError(err)
		return guard.Allow, err
	}
	return guard.Allow, nil
}

func (c *Controller) update(fn func(*Counts)) {
	c.mu.Lock()
	fn(&c.counts)
	c.counts.Loading = false
	c.mu.Unlock()
}

func (c *Controller) loadError(error) {
	c.notices.Error("Failed to load statistics")
	c.update(func(*Counts) {})
}

// Unmount tears down all three subscriptions together.
func (c *Controller) Unmount() {
	c.mu.Lock()
	mux := c.mux
	c.mux = nil
	c.mu.Unlock()
	if mux != nil {
		c.log.Info("closing dashboard subscriptions")
		mux.Close()
	}
}

// SignOut confirms, ends the session, and returns to the login route.
// Declining leaves the session untouched.
func (c *Controller) SignOut(ctx context.Context) error {
	ok, err := c.confirm.Confirm(ctx, alerts.Prompt{
		Title:        "Sign Out",
		Message:      "Are you sure you want to sign out?",
		ConfirmLabel: "Sign Out",
	})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	c.session.Logout()
	c.nav.Replace("/login")
	return nil
}

// Snapshot returns the current counts.
func (c *Controller) Snapshot() Counts {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts
}
