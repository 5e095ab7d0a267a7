// internal/domain/models/user.go
package models

import "time"

// Verification statuses for a user document.
//
// A user starts as pending_verification when they register, and moves to
// approved_username_assigned or rejected when a moderator reviews them.
const (
	StatusPending  = "pending_verification"
	StatusApproved = "approved_username_assigned"
	StatusRejected = "rejected"
)

// ValidStatus reports whether s is one of the recognized verification statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// User is the profile document stored in the users collection.
//
// NOTE:
//   - The document _id is the auth provider's UID string, not an ObjectID,
//     so auth principals and profile documents share one key space.
//   - ApprovedAt/RejectedAt are written server-side ($currentDate) when a
//     moderator transitions the status; CreatedAt is set at registration.
type User struct {
	ID        string `bson:"_id" json:"id"`
	Name      string `bson:"name" json:"name"`
	Email     string `bson:"email" json:"email"`
	Phone     string `bson:"phone,omitempty" json:"phone,omitempty"`
	Location  string `bson:"location,omitempty" json:"location,omitempty"`
	SelfieURL string `bson:"selfie_url,omitempty" json:"selfie_url,omitempty"`

	Status          string `bson:"verification_status" json:"verification_status"`
	Username        string `bson:"username,omitempty" json:"username,omitempty"`
	RejectionReason string `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`

	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	ApprovedAt *time.Time `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
	RejectedAt *time.Time `bson:"rejected_at,omitempty" json:"rejected_at,omitempty"`
}
