// internal/app/sync/authfeed/errors.go
package authfeed

import "errors"

// Known failure codes reported by the external auth service. Anything
// outside this set maps to a generic message for the operation that
// triggered it.
const (
	CodeEmailInUse        = "auth/email-already-in-use"
	CodeWeakPassword      = "auth/weak-password"
	CodeInvalidCredential = "auth/invalid-credential"
	CodeUserNotFound      = "auth/user-not-found"
	CodeWrongPassword     = "auth/wrong-password"
	CodeInvalidEmail      = "auth/invalid-email"
)

// CodedError is an auth service failure carrying the provider's error
// code alongside the underlying cause.
type CodedError struct {
	Code string
	Err  error
}

func (e *CodedError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e *CodedError) Unwrap() error { return e.Err }

// NewCodedError wraps err with a provider error code.
func NewCodedError(code string, err error) *CodedError {
	return &CodedError{Code: code, Err: err}
}

// Code extracts the provider error code from err, or "" if err carries none.
func Code(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

// RegisterMessage maps a registration failure to the message shown to
// the end user.
func RegisterMessage(err error) string {
	switch Code(err) {
	case CodeEmailInUse:
		return "Email already in use"
	case CodeWeakPassword:
		return "Password is too weak"
	default:
		return "Failed to create account. Please try again."
	}
}

// LoginMessage maps a sign-in failure to the message shown to the end user.
func LoginMessage(err error) string {
	switch Code(err) {
	case CodeInvalidCredential:
		return "Invalid email or password"
	case CodeUserNotFound:
		return "No account found with this email"
	case CodeWrongPassword:
		return "Incorrect password"
	default:
		return "Login failed. Please try again."
	}
}
