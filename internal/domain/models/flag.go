// internal/domain/models/flag.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Flag reasons reported against a profile.
const (
	FlagInappropriate = "inappropriate"
	FlagSpam          = "spam"
	FlagFake          = "fake"
	FlagHarassment    = "harassment"
	FlagOther         = "other"
)

// Flag is a report filed against a profile, stored in the flags collection.
// Flags are append-only from the store's perspective; moderation removes
// them by deleting the document (dismiss) or deleting profile + flag.
type Flag struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProfileID        string             `bson:"profile_id" json:"profile_id"`
	ReporterID       string             `bson:"reporter_id" json:"reporter_id"`
	ReporterUsername string             `bson:"reporter_username" json:"reporter_username"`
	FlagType         string             `bson:"flag_type" json:"flag_type"`
	Timestamp        time.Time          `bson:"timestamp" json:"timestamp"`
}

// Comment is a comment left on a profile, stored in the comments collection.
// FlagType is empty for ordinary comments; a non-empty FlagType marks the
// comment as reported and makes it visible to moderators.
type Comment struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProfileID         string             `bson:"profile_id" json:"profile_id"`
	CommenterID       string             `bson:"commenter_id" json:"commenter_id"`
	CommenterUsername string             `bson:"commenter_username" json:"commenter_username"`
	CommentText       string             `bson:"comment_text" json:"comment_text"`
	FlagType          string             `bson:"flag_type,omitempty" json:"flag_type,omitempty"`
	Timestamp         time.Time          `bson:"timestamp" json:"timestamp"`
}
