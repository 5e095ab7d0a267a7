// Package moderation performs the state-transition writes moderators
// trigger: approve, reject, delete, dismiss.
//
// Every action runs confirm -> write -> notice. On success the entity
// is NOT spliced out of any local list; the next live snapshot removes
// it, so the store stays the single source of truth. On failure the
// error notice carries the failure's message and the entity stays
// visible with its control re-enabled.
//
// At most one mutation is in flight per entity. A second request for
// the same entity is rejected while the first runs; requests for other
// entities proceed - the in-flight token is a per-entity disable, not a
// global lock.
package moderation

import (
	"context"
	"errors"
	"sync"

	"github.com/stoutly/stoutly/internal/app/sync/alerts"
	"github.com/stoutly/stoutly/internal/app/system/usernamegen"
	"go.uber.org/zap"
)

// ErrMutationInFlight is returned when a mutation is requested for an
// entity that already has one running.
var ErrMutationInFlight = errors.New("moderation: mutation already in flight for entity")

// ErrMissingEntityID is returned for an empty entity id.
var ErrMissingEntityID = errors.New("moderation: missing entity id")

// UserModerator is the slice of the users store the gateway writes.
type UserModerator interface {
	Approve(ctx context.Context, id, username string) error
	Reject(ctx context.Context, id, reason string) error
}

// FlagDeleter removes flag documents.
type FlagDeleter interface {
	Delete(ctx context.Context, id string) error
}

// CommentDeleter removes comment documents.
type CommentDeleter interface {
	Delete(ctx context.Context, id string) error
}

// ProfileDeleter removes profile card documents.
type ProfileDeleter interface {
	Delete(ctx context.Context, id string) error
}

// rejectionReason is recorded on every manual rejection.
const rejectionReason = "Manual review rejection"

// Gateway executes moderation actions against the store.
type Gateway struct {
	users    UserModerator
	flags    FlagDeleter
	comments CommentDeleter
	profiles ProfileDeleter
	confirm  alerts.Confirmer
	notices  alerts.Notices
	log      *zap.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

func New(users UserModerator, flags FlagDeleter, comments CommentDeleter, profiles ProfileDeleter,
	confirm alerts.Confirmer, notices alerts.Notices, logger *zap.Logger) *Gateway {
	return &Gateway{
		users:    users,
		flags:    flags,
		comments: comments,
		profiles: profiles,
		confirm:  confirm,
		notices:  notices,
		log:      logger,
		inflight: make(map[string]struct{}),
	}
}

// Processing reports whether a mutation is currently in flight for the
// entity; the invoking control is disabled exactly while this is true.
func (g *Gateway) Processing(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.inflight[id]
	return ok
}

func (g *Gateway) begin(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.inflight[id]; ok {
		return ErrMutationInFlight
	}
	g.inflight[id] = struct{}{}
	return nil
}

func (g *Gateway) end(id string) {
	g.mu.Lock()
	delete(g.inflight, id)
	g.mu.Unlock()
}

// ApproveUser approves a pending user and assigns their generated
// handle. approved_at is recorded server-side. Declining the
// confirmation performs nothing.
func (g *Gateway) ApproveUser(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingEntityID
	}
	ok, err := g.confirm.Confirm(ctx, alerts.Prompt{
		Title:        "Approve User",
		Message:      "Are you sure you want to approve this user?",
		ConfirmLabel: "Approve",
	})
	if err != nil || !ok {
		return err
	}
	if err := g.begin(userID); err != nil {
		return err
	}
	defer g.end(userID)

	username := usernamegen.Generate()
	g.log.Info("approving user", zap.String("user_id", userID), zap.String("username", username))
	if err := g.users.Approve(ctx, userID, username); err != nil {
		g.log.Error("approve failed", zap.String("user_id", userID), zap.Error(err))
		g.notices.Error("Failed to approve user: " + err.Error())
		return err
	}
	g.notices.Success("User approved successfully!")
	return nil
}

// RejectUser rejects a pending user. The transition cannot be undone,
// so the prompt is framed as destructive. rejected_at is recorded
// server-side.
func (g *Gateway) RejectUser(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingEntityID
	}
	ok, err := g.confirm.Confirm(ctx, alerts.Prompt{
		Title:        "Reject User",
		Message:      "Are you sure you want to reject this user? This action cannot be undone.",
		ConfirmLabel: "Reject",
		Destructive:  true,
	})
	if err != nil || !ok {
		return err
	}
	if err := g.begin(userID); err != nil {
		return err
	}
	defer g.end(userID)

	g.log.Info("rejecting user", zap.String("user_id", userID))
	if err := g.users.Reject(ctx, userID, rejectionReason); err != nil {
		g.log.Error("reject failed", zap.String("user_id", userID), zap.Error(err))
		g.notices.Error("Failed to reject user: " + err.Error())
		return err
	}
	g.notices.Success("User rejected successfully!")
	return nil
}

// DeleteProfile removes a flagged profile card and then its flag. The
// in-flight token is keyed to the flag, which is what the invoking
// control represents.
func (g *Gateway) DeleteProfile(ctx context.Context, flagID, profileID string) error {
	if flagID == "" || profileID == "" {
		return ErrMissingEntityID
	}
	ok, err := g.confirm.Confirm(ctx, alerts.Prompt{
		Title:        "Delete Profile",
		Message:      "Are you sure you want to delete this profile? This action cannot be undone.",
		ConfirmLabel: "Delete",
		Destructive:  true,
	})
	if err != nil || !ok {
		return err
	}
	if err := g.begin(flagID); err != nil {
		return err
	}
	defer g.end(flagID)

	if err := g.profiles.Delete(ctx, profileID); err != nil {
		g.log.Error("profile delete failed", zap.String("profile_id", profileID), zap.Error(err))
		g.notices.Error("Failed to delete profile")
		return err
	}
	if err := g.flags.Delete(ctx, flagID); err != nil {
		g.log.Error("flag delete failed", zap.String("flag_id", flagID), zap.Error(err))
		g.notices.Error("Failed to delete profile")
		return err
	}
	g.notices.Success("Profile has been deleted")
	return nil
}

// DeleteComment removes a flagged comment.
func (g *Gateway) DeleteComment(ctx context.Context, commentID string) error {
	if commentID == "" {
		return ErrMissingEntityID
	}
	ok, err := g.confirm.Confirm(ctx, alerts.Prompt{
		Title:        "Delete Comment",
		Message:      "Are you sure you want to delete this comment? This action cannot be undone.",
		ConfirmLabel: "Delete",
		Destructive:  true,
	})
	if err != nil || !ok {
		return err
	}
	if err := g.begin(commentID); err != nil {
		return err
	}
	defer g.end(commentID)

	if err := g.comments.Delete(ctx, commentID); err != nil {
		g.log.Error("comment delete failed", zap.String("comment_id", commentID), zap.Error(err))
		g.notices.Error("Failed to delete comment")
		return err
	}
	g.notices.Success("Comment has been deleted")
	return nil
}

// DismissFlag removes a flag and leaves the content visible. Not
// destructive: the content itself is untouched.
func (g *Gateway) DismissFlag(ctx context.Context, flagID string) error {
	if flagID == "" {
		return ErrMissingEntityID
	}
	ok, err := g.confirm.Confirm(ctx, alerts.Prompt{
		Title:        "Dismiss Flag",
		Message:      "Are you sure you want to dismiss this flag? The content will remain visible.",
		ConfirmLabel: "Dismiss",
	})
	if err != nil || !ok {
		return err
	}
	if err := g.begin(flagID); err != nil {
		return err
	}
	defer g.end(flagID)

	if err := g.flags.Delete(ctx, flagID); err != nil {
		g.log.Error("flag dismiss failed", zap.String("flag_id", flagID), zap.Error(err))
		g.notices.Error("Failed to dismiss flag")
		return err
	}
	g.notices.Success("Flag has been dismissed")
	return nil
}
