package profilestore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store provides access to the profiles collection (the public profile
// cards users browse, distinct from the users registration documents).
// Moderation only ever deletes them; authoring lives elsewhere.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("profiles")}
}

// Delete removes a profile card by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.c.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete profile %s: %w", id, err)
	}
	return nil
}
