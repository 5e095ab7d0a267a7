// Package authfeed defines the client's view of the external
// authentication service: the signed-in principal, the change feed that
// announces sign-in/sign-out/token-refresh transitions, and the
// credential operations the app invokes.
//
// The service itself is an opaque external collaborator. Delivery on the
// feed is serialized (a handler runs to completion before the next
// change is dispatched) but each change may trigger asynchronous work in
// the subscriber, so a new change can arrive while earlier resolution is
// still in flight. Subscribers own that race.
package authfeed

import "context"

// Principal is an authenticated identity handed to the client by the
// external auth service.
type Principal struct {
	UID         string
	Email       string
	DisplayName string
}

// Feed delivers principal-or-nil auth-state changes. A nil principal
// means signed out. Subscribe returns a cancel function that stops
// delivery; it is safe to call more than once.
type Feed interface {
	Subscribe(fn func(p *Principal)) (cancel func())
}

// Service is the credential surface of the external auth provider.
type Service interface {
	// CreateUser provisions a new account and returns its principal.
	CreateUser(ctx context.Context, email, password string) (*Principal, error)

	// UpdateDisplayName sets the display name on an existing account.
	UpdateDisplayName(ctx context.Context, uid, name string) error

	// SignIn exchanges credentials for the account's principal.
	SignIn(ctx context.Context, email, password string) (*Principal, error)
}
