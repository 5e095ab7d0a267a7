// Package role derives the binary moderator authorization flag from the
// signed-in principal.
//
// Resolution is fail-closed: any lookup failure collapses to not-admin.
// It runs independently of, and slower than, identity resolution, so
// consumers that gate on the role must block on Loading, not on the
// flag being false - otherwise they flash unauthorized content while
// resolution is merely slow.
package role

import (
	"context"
	"sync"

	"github.com/stoutly/stoutly/internal/app/sync/authfeed"
	"github.com/stoutly/stoutly/internal/app/system/normalize"
	"github.com/stoutly/stoutly/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// AdminStore is the privileged existence check backing the role.
type AdminStore interface {
	Exists(ctx context.Context, email string) (bool, error)
}

// Snapshot is a read-only view of the resolver state.
type Snapshot struct {
	IsAdmin       bool
	Authenticated bool
	Loading       bool
}

// Resolver tracks the moderator flag for the current principal.
//
// The privileged lookup is gated behind a fixed allow-list: emails
// outside it collapse to false immediately, with no lookup at all. The
// flag is never cached across auth transitions; every change re-runs
// resolution.
type Resolver struct {
	admins AdminStore
	allow  map[string]struct{}
	log    *zap.Logger

	mu            sync.Mutex
	closed        bool
	gen           int
	isAdmin       bool
	authenticated bool
	loading       bool
}

// New constructs a Resolver with the allow-listed admin emails. It
// starts in the loading state until the first auth change settles.
func New(admins AdminStore, allowEmails []string, logger *zap.Logger) *Resolver {
	allow := make(map[string]struct{}, len(allowEmails))
	for _, e := range allowEmails {
		allow[normalize.Email(e)] = struct{}{}
	}
	return &Resolver{
		admins:  admins,
		allow:   allow,
		log:     logger,
		loading: true,
	}
}

// Start subscribes the resolver to the auth-state change feed.
func (r *Resolver) Start(ctx context.Context, feed authfeed.Feed) (cancel func()) {
	return feed.Subscribe(func(p *authfeed.Principal) {
		r.HandleAuthChange(ctx, p)
	})
}

// HandleAuthChange re-resolves the role for a new principal.
//
// The lookup suspends, so a different principal may sign in while it is
// in flight; every commit is keyed to the generation captured at entry
// and stale results are discarded, never attributed to the newer
// principal. After Close, no resolution commits anything.
func (r *Resolver) HandleAuthChange(ctx context.Context, p *authfeed.Principal) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.gen++
	gen := r.gen
	r.loading = true
	r.authenticated = p != nil
	r.mu.Unlock()

	if p == nil || p.Email == "" {
		r.commit(gen, false)
		return
	}

	email := normalize.Email(p.Email)
	if _, ok := r.allow[email]; !ok {
		// not allow-listed: no privileged lookup at all
		r.commit(gen, false)
		return
	}

	lookupCtx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	exists, err := r.admins.Exists(lookupCtx, email)
	if err != nil {
		r.log.Error("admin role lookup failed",
			zap.String("email", email),
			zap.Error(err))
		r.commit(gen, false)
		return
	}
	r.commit(gen, exists)
}

func (r *Resolver) commit(gen int, isAdmin bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || gen != r.gen {
		return
	}
	r.isAdmin = isAdmin
	r.loading = false
}

// Snapshot returns the current role state.
func (r *Resolver) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		IsAdmin:       r.isAdmin,
		Authenticated: r.authenticated,
		Loading:       r.loading,
	}
}

// Close marks the resolver's consumer as gone. In-flight resolutions
// that land afterwards are discarded instead of mutating state nobody
// owns.
func (r *Resolver) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}
