// Package alerts holds the small user-interaction surfaces the sync
// layer drives: confirmation prompts, dismissible notices, and route
// navigation. The presentation layer supplies implementations; tests
// supply spies.
package alerts

import "context"

// Prompt describes a confirmation dialog. Destructive marks actions
// that cannot be undone so the presentation can frame them accordingly.
type Prompt struct {
	Title        string
	Message      string
	ConfirmLabel string
	Destructive  bool
}

// Confirmer presents a prompt and reports the user's choice.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

// Notices surfaces dismissible success and error notices.
type Notices interface {
	Success(msg string)
	Error(msg string)
}

// Navigator performs opaque route navigation.
type Navigator interface {
	Replace(route string)
	Back()
}
