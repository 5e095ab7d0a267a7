// Package client assembles the client-side stack: stores, resolvers,
// live screen controllers, and the gateway HTTP client. The embedding
// application constructs one Client per process, starts it on its auth
// feed, and reads state through the controllers.
package client

import (
	"context"

	"github.com/stoutly/stoutly/internal/app/features/approvals"
	"github.com/stoutly/stoutly/internal/app/features/flagged"
	"github.com/stoutly/stoutly/internal/app/features/gatewayauth"
	"github.com/stoutly/stoutly/internal/app/features/stats"
	adminstore "github.com/stoutly/stoutly/internal/app/store/admins"
	commentstore "github.com/stoutly/stoutly/internal/app/store/comments"
	flagstore "github.com/stoutly/stoutly/internal/app/store/flags"
	profilestore "github.com/stoutly/stoutly/internal/app/store/profiles"
	userstore "github.com/stoutly/stoutly/internal/app/store/users"
	"github.com/stoutly/stoutly/internal/app/store/watch"
	"github.com/stoutly/stoutly/internal/app/sync/alerts"
	"github.com/stoutly/stoutly/internal/app/sync/authfeed"
	"github.com/stoutly/stoutly/internal/app/sync/guard"
	"github.com/stoutly/stoutly/internal/app/sync/moderation"
	"github.com/stoutly/stoutly/internal/app/sync/role"
	"github.com/stoutly/stoutly/internal/app/sync/session"
	"github.com/stoutly/stoutly/internal/app/system/imageurl"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Config carries the non-store settings the client stack needs.
type Config struct {
	// AdminEmails is the moderator allow-list.
	AdminEmails []string
	// GatewayBaseURL is the privileged gateway origin.
	GatewayBaseURL string
	// CloudinaryCloudName and CloudinaryUploadPreset configure selfie
	// uploads.
	CloudinaryCloudName    string
	CloudinaryUploadPreset string
}

// UI is the presentation surface the sync layer drives. The embedding
// application implements it; the stack never renders anything itself.
type UI struct {
	Confirm alerts.Confirmer
	Notices alerts.Notices
	Nav     alerts.Navigator
}

// Client is the assembled client-side stack.
type Client struct {
	Session   *session.Session
	Roles     *role.Resolver
	Approvals *approvals.Controller
	Flagged   *flagged.Controller
	Stats     *stats.Controller
	Uploader  *imageurl.Uploader

	cfg     Config
	log     *zap.Logger
	cancels []func()
}

// New wires the full stack against the database and auth service.
// Live lists are driven by change-stream watches on their collections.
func New(db *mongo.Database, auth authfeed.Service, ui UI, cfg Config, logger *zap.Logger) *Client {
	users := userstore.New(db)
	flags := flagstore.New(db)
	comments := commentstore.New(db)
	admins := adminstore.New(db)
	profiles := profilestore.New(db)

	sess := session.New(users, auth, logger)
	roles := role.New(admins, cfg.AdminEmails, logger)
	g := guard.New(ui.Notices, ui.Nav, logger)
	gateway := moderation.New(users, flags, comments, profiles,
		ui.Confirm, ui.Notices, logger)

	userNtf := watch.New(users.Collection(), logger)
	flagNtf := watch.New(flags.Collection(), logger)
	comNtf := watch.New(comments.Collection(), logger)

	return &Client{
		Session:   sess,
		Roles:     roles,
		Approvals: approvals.New(roles, g, gateway, users, userNtf, ui.Notices, logger),
		Flagged:   flagged.New(roles, g, gateway, flags, comments, flagNtf, comNtf, ui.Notices, logger),
		Stats: stats.New(roles, g, users, flags, userNtf, flagNtf,
			sess, ui.Confirm, ui.Notices, ui.Nav, logger),
		Uploader: imageurl.NewUploader(cfg.CloudinaryCloudName, cfg.CloudinaryUploadPreset, logger),
		cfg:      cfg,
		log:      logger,
	}
}

// Start subscribes the identity and role resolvers to the auth feed.
func (c *Client) Start(ctx context.Context, feed authfeed.Feed) {
	c.cancels = append(c.cancels, c.Session.Start(ctx, feed))
	c.cancels = append(c.cancels, c.Roles.Start(ctx, feed))
}

// Gateway returns an HTTP client for the privileged gateway carrying
// the given bearer token.
func (c *Client) Gateway(ctx context.Context, token string) *gatewayauth.Client {
	return gatewayauth.NewClient(ctx, c.cfg.GatewayBaseURL, gatewayauth.StaticToken(token))
}

// Close detaches from the auth feed and stops role resolution. Mounted
// controllers are unmounted by their screens, not here.
func (c *Client) Close() {
	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil
	c.Roles.Close()
	c.log.Info("client stack closed")
}
