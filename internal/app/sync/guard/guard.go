// Package guard gates screen access on the resolved moderator role.
package guard

import (
	"github.com/stoutly/stoutly/internal/app/sync/alerts"
	"github.com/stoutly/stoutly/internal/app/sync/role"
	"go.uber.org/zap"
)

// Decision is the outcome of a gate check.
type Decision int

const (
	// Wait means role resolution has not settled; render nothing yet
	// and check again when it does. Redirecting now would falsely deny
	// users whose resolution is merely slow.
	Wait Decision = iota

	// Allow means the principal may see the screen.
	Allow

	// Deny means the notice has been shown and navigation away has
	// been requested; render nothing.
	Deny
)

// Guard composes the role resolver's output with navigation.
type Guard struct {
	notices alerts.Notices
	nav     alerts.Navigator
	log     *zap.Logger
}

func New(notices alerts.Notices, nav alerts.Navigator, logger *zap.Logger) *Guard {
	return &Guard{notices: notices, nav: nav, log: logger}
}

// RequireAdmin checks the snapshot once, at mount. Role revocation
// mid-session is not observed; the screen keeps its subscriptions until
// unmount. On denial it surfaces a blocking notice and redirects to the
// login route.
func (g *Guard) RequireAdmin(s role.Snapshot) Decision {
	if s.Loading {
		return Wait
	}
	if !s.IsAdmin {
		g.log.Warn("admin screen denied", zap.Bool("authenticated", s.Authenticated))
		g.notices.Error("You do not have access to this screen.")
		g.nav.Replace("/login")
		return Deny
	}
	return Allow
}
