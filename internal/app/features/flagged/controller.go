// Package flagged holds the screen state for the moderation queue:
// live lists of flagged profiles and flagged comments, plus the
// destructive actions that resolve them.
package flagged

import (
	"context"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stoutly/stoutly/internal/app/sync/alerts"
	"github.com/stoutly/stoutly/internal/app/sync/guard"
	"github.com/stoutly/stoutly/internal/app/sync/livequery"
	"github.com/stoutly/stoutly/internal/app/sync/moderation"
	"github.com/stoutly/stoutly/internal/app/sync/role"
	"github.com/stoutly/stoutly/internal/domain/models"
	"go.uber.org/zap"
)

// FlagSource lists the full current set of flags.
type FlagSource interface {
	List(ctx context.Context) ([]models.Flag, error)
}

// CommentSource lists the full current set of comments. The controller
// keeps only the flagged ones; filtering happens here, not in the
// query.
type CommentSource interface {
	List(ctx context.Context) ([]models.Comment, error)
}

// Controller owns the flagged-content screen state. The two lists are
// independent subscriptions with no joint consistency between their
// snapshots.
type Controller struct {
	roles    *role.Resolver
	guard    *guard.Guard
	gateway  *moderation.Gateway
	flagSrc  FlagSource
	comSrc   CommentSource
	flagNtf  livequery.Notifier
	comNtf   livequery.Notifier
	notices  alerts.Notices
	sanitize *bluemonday.Policy
	log      *zap.Logger

	mu       sync.Mutex
	mux      *livequery.Multiplexer
	flags    []models.Flag
	comments []models.Comment
	loading  bool
}

func New(roles *role.Resolver, g *guard.Guard, gateway *moderation.Gateway,
	flagSrc FlagSource, comSrc CommentSource,
	flagNtf, comNtf livequery.Notifier,
	notices alerts.Notices, logger *zap.Logger) *Controller {
	return &Controller{
		roles:    roles,
		guard:    g,
		gateway:  gateway,
		flagSrc:  flagSrc,
		comSrc:   comSrc,
		flagNtf:  flagNtf,
		comNtf:   comNtf,
		notices:  notices,
		sanitize: bluemonday.StrictPolicy(),
		log:      logger,
		loading:  true,
	}
}

// Mount gates on the moderator role and opens both subscriptions.
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

	c.log.Info("opening flagged-content subscriptions")
	if err := livequery.Watch(ctx, mux, "flagged-profiles", c.flagNtf, c.flagSrc.List,
		c.applyFlags, c.loadError); err != nil {
		c.loadError(err)
		return guard.Allow, err
	}
	if err := livequery.Watch(ctx, mux, "flagged-comments", c.comNtf, c.comSrc.List,
		c.applyComments, c.loadError); err != nil {
		c.loadError(err)
		return guard.Allow, err
	}
	return guard.Allow, nil
}

func (c *Controller) loadError(error) {
	c.notices.Error("Failed to load flagged content")
	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()
}

func (c *Controller) applyFlags(flags []models.Flag) {
	c.mu.Lock()
	c.flags = flags
	c.loading = false
	c.mu.Unlock()
}

// applyComments keeps only reported comments and strips any markup
// from their text before it can reach a screen.
func (c *Controller) applyComments(all []models.Comment) {
	flagged := make([]models.Comment, 0, len(all))
	for _, cm := range all {
		if cm.FlagType == "" {
			continue
		}
		cm.CommentText = c.sanitize.Sanitize(cm.CommentText)
		flagged = append(flagged, cm)
	}
	c.mu.Lock()
	c.comments = flagged
	c.loading = false
	c.mu.Unlock()
}

// Unmount tears down both subscriptions together.
func (c *Controller) Unmount() {
	c.mu.Lock()
	mux := c.mux
	c.mux = nil
	c.mu.Unlock()
	if mux != nil {
		c.log.Info("closing flagged-content subscriptions")
		mux.Close()
	}
}

// DeleteProfile removes the reported profile and its flag. The rows
// disappear via the next snapshots, not by local removal.
func (c *Controller) DeleteProfile(ctx context.Context, flagID, profileID string) error {
	return c.gateway.DeleteProfile(ctx, flagID, profileID)
}

// DismissFlag removes the flag and leaves the profile alone.
func (c *Controller) DismissFlag(ctx context.Context, flagID string) error {
	return c.gateway.DismissFlag(ctx, flagID)
}

// DeleteComment removes a reported comment.
func (c *Controller) DeleteComment(ctx context.Context, commentID string) error {
	return c.gateway.DeleteComment(ctx, commentID)
}

// Processing reports whether the controls for the entity should be
// disabled.
func (c *Controller) Processing(id string) bool {
	return c.gateway.Processing(id)
}

// Flags returns a copy of the current flag list, newest first.
func (c *Controller) Flags() []models.Flag {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Flag, len(c.flags))
	copy(out, c.flags)
	return out
}

// FlaggedComments returns a copy of the current reported comments,
// newest first, text already sanitized.
func (c *Controller) FlaggedComments() []models.Comment {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Comment, len(c.comments))
	copy(out, c.comments)
	return out
}

// Loading reports whether a first snapshot has arrived on either list.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}
