// internal/domain/models/admin.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin is a privileged per-email record in the admins collection.
// The document _id is the normalized (lower-cased) email address; role
// resolution is an existence check against that key.
type Admin struct {
	Email        string    `bson:"_id" json:"email"`
	PasswordHash string    `bson:"password_hash,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// AuditEvent records a privileged gateway action in the admin_actions
// collection (admin logins, in particular).
type AuditEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Action    string             `bson:"action" json:"action"`
	ActorID   string             `bson:"actor_id" json:"actor_id"`
	Details   map[string]string  `bson:"details,omitempty" json:"details,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}
