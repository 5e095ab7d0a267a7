// Package session resolves the signed-in principal into the
// application identity and keeps that identity current across
// auth-state transitions and status mutations.
//
// Resolution is fail-open: a principal with no profile document yet
// (first sign-in racing profile creation) gets a synthesized pending
// identity rather than an error, and a failed lookup leaves the
// previous identity in place. Loading is cleared on every path - no
// outcome may strand a consumer in a perpetual loading state.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	userstore "github.com/stoutly/stoutly/internal/app/store/users"
	"github.com/stoutly/stoutly/internal/app/sync/authfeed"
	"github.com/stoutly/stoutly/internal/domain/models"
	"go.uber.org/zap"
)

// ProfileStore is the slice of the users store the session needs.
type ProfileStore interface {
	Get(ctx context.Context, id string) (*models.User, error)
	Register(ctx context.Context, u models.User) error
	UpdateStatus(ctx context.Context, id, status, username string) error
}

// Identity is the resolved application identity for the signed-in
// principal. Consumers receive copies; the session owns the original.
type Identity struct {
	ID         string
	Name       string
	Email      string
	Phone      string
	Location   string
	SelfieURL  string
	Status     string
	Username   string
	CreatedAt  time.Time
	ApprovedAt *time.Time
}

// RegistrationData is the input to Register.
type RegistrationData struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Location string
}

// LoginData is the input to Login.
type LoginData struct {
	Email    string
	Password string
}

// Snapshot is a read-only view of the session state.
type Snapshot struct {
	User        *Identity
	Loading     bool
	Registering bool
}

// Approved reports whether the signed-in user has been approved.
func (s Snapshot) Approved() bool {
	return s.User != nil && s.User.Status == models.StatusApproved
}

// Pending reports whether the signed-in user awaits review.
func (s Snapshot) Pending() bool {
	return s.User != nil && s.User.Status == models.StatusPending
}

// Rejected reports whether the signed-in user was rejected.
func (s Snapshot) Rejected() bool {
	return s.User != nil && s.User.Status == models.StatusRejected
}

// HasUsername reports whether the signed-in user carries a handle.
func (s Snapshot) HasUsername() bool {
	return s.User != nil && s.User.Username != ""
}

// Session owns the resolved identity for one process lifetime. It is
// constructed once and read by every screen; there is no ambient
// global.
type Session struct {
	profiles ProfileStore
	auth     authfeed.Service
	log      *zap.Logger

	mu          sync.Mutex
	gen         int
	user        *Identity
	loading     bool
	registering bool
}

// New constructs a Session. It starts in the loading state until the
// first auth-state change settles.
func New(profiles ProfileStore, auth authfeed.Service, logger *zap.Logger) *Session {
	return &Session{
		profiles: profiles,
		auth:     auth,
		log:      logger,
		loading:  true,
	}
}

// Start subscribes the session to the auth-state change feed. The
// returned cancel detaches it.
func (s *Session) Start(ctx context.Context, feed authfeed.Feed) (cancel func()) {
	return feed.Subscribe(func(p *authfeed.Principal) {
		s.HandleAuthChange(ctx, p)
	})
}

// HandleAuthChange resolves an auth-state transition into local
// identity state.
//
// The feed serializes delivery, but the profile lookup suspends, so a
// newer transition can begin before this one's lookup returns. Each
// invocation is keyed to a generation captured at entry; a resolution
// whose generation is stale by commit time is discarded, so the settled
// identity always reflects the newest principal.
func (s *Session) HandleAuthChange(ctx context.Context, p *authfeed.Principal) {
	s.mu.Lock()
	s.gen++
	gen := s.gen

	if p == nil {
		s.user = nil
		s.loading = false
		s.mu.Unlock()
		return
	}
	s.loading = true
	s.mu.Unlock()

	doc, err := s.profiles.Get(ctx, p.UID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// a newer auth change superseded this resolution
		return
	}

	switch {
	case err == nil:
		ident := merge(p, doc)
		s.user = &ident
	case errors.Is(err, userstore.ErrNotFound):
		// first sign-in before profile creation completes; not an error
		ident := synthesize(p)
		s.user = &ident
	default:
		s.log.Error("auth change: profile lookup failed",
			zap.String("uid", p.UID),
			zap.Error(err))
		// identity left as previously set
	}
	s.loading = false
}

// merge combines the stored profile with live auth fields. Auth is
// authoritative for email; name prefers the stored copy and falls back
// to the auth display name.
func merge(p *authfeed.Principal, doc *models.User) Identity {
	name := doc.Name
	if name == "" {
		name = p.DisplayName
	}
	email := p.Email
	if email == "" {
		email = doc.Email
	}
	status := doc.Status
	if status == "" {
		status = models.StatusPending
	}
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return Identity{
		ID:         p.UID,
		Name:       name,
		Email:      email,
		Phone:      doc.Phone,
		Location:   doc.Location,
		SelfieURL:  doc.SelfieURL,
		Status:     status,
		Username:   doc.Username,
		CreatedAt:  createdAt,
		ApprovedAt: doc.ApprovedAt,
	}
}

// synthesize builds the minimal pending identity used when no profile
// document exists yet.
func synthesize(p *authfeed.Principal) Identity {
	return Identity{
		ID:        p.UID,
		Name:      p.DisplayName,
		Email:     p.Email,
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
	}
}

// Register provisions a new account, merge-writes its profile document,
// and installs an optimistic local identity. The optimistic identity is
// not reconciled against a later snapshot here; if the caller
// subscribes afterwards, the snapshot wins.
func (s *Session) Register(ctx context.Context, data RegistrationData) (Identity, error) {
	s.mu.Lock()
	s.registering = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.registering = false
		s.mu.Unlock()
	}()

	s.log.Info("register start", zap.String("email", data.Email))

	p, err := s.auth.CreateUser(ctx, data.Email, data.Password)
	if err != nil {
		s.log.Error("registration failed", zap.Error(err))
		return Identity{}, errors.New(authfeed.RegisterMessage(err))
	}

	if data.Name != "" {
		// best effort; the stored profile carries the name regardless
		if err := s.auth.UpdateDisplayName(ctx, p.UID, data.Name); err != nil {
			s.log.Warn("display name update failed", zap.String("uid", p.UID), zap.Error(err))
		}
	}

	if err := s.profiles.Register(ctx, models.User{
		ID:       p.UID,
		Name:     data.Name,
		Email:    data.Email,
		Phone:    data.Phone,
		Location: data.Location,
	}); err != nil {
		s.log.Error("registration profile write failed", zap.String("uid", p.UID), zap.Error(err))
		return Identity{}, errors.New(authfeed.RegisterMessage(err))
	}

	ident := Identity{
		ID:        p.UID,
		Name:      data.Name,
		Email:     data.Email,
		Phone:     data.Phone,
		Location:  data.Location,
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.user = &ident
	s.mu.Unlock()
	return ident, nil
}

// Login exchanges credentials and performs a one-shot profile fetch
// (not a subscription), merged the same way as an auth-change
// resolution. Unknown status defaults to pending.
func (s *Session) Login(ctx context.Context, data LoginData) (Identity, error) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	p, err := s.auth.SignIn(ctx, data.Email, data.Password)
	if err != nil {
		s.log.Error("login failed", zap.Error(err))
		return Identity{}, errors.New(authfeed.LoginMessage(err))
	}

	var ident Identity
	doc, err := s.profiles.Get(ctx, p.UID)
	switch {
	case err == nil:
		ident = merge(p, doc)
	case errors.Is(err, userstore.ErrNotFound):
		ident = synthesize(p)
	default:
		s.log.Error("login profile fetch failed", zap.String("uid", p.UID), zap.Error(err))
		return Identity{}, errors.New(authfeed.LoginMessage(err))
	}
	if ident.Email == "" {
		ident.Email = data.Email
	}

	s.mu.Lock()
	s.user = &ident
	s.mu.Unlock()
	return ident, nil
}

// Logout clears the local identity. The external auth session is owned
// by the provider and observed via the feed.
func (s *Session) Logout() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// UpdateStatus merge-writes {status, username?} to the identity's
// document and applies the same patch optimistically. Writing the same
// status twice produces no observable difference. The optimistic patch
// is superseded by the next authoritative snapshot if one arrives.
func (s *Session) UpdateStatus(ctx context.Context, status, username string) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return nil
	}
	id := s.user.ID
	s.mu.Unlock()

	if err := s.profiles.UpdateStatus(ctx, id, status, username); err != nil {
		s.log.Error("status update failed",
			zap.String("uid", id),
			zap.String("status", status),
			zap.Error(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil || s.user.ID != id {
		// signed out (or switched) while the write was in flight
		return nil
	}
	s.user.Status = status
	if username != "" {
		s.user.Username = username
	}
	return nil
}

// Snapshot returns a read-only copy of the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{Loading: s.loading, Registering: s.registering}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}
