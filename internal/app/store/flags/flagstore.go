package flagstore

import (
	"context"
	"fmt"
	"time"

	"github.com/stoutly/stoutly/internal/app/system/normalize"
	"github.com/stoutly/stoutly/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the flags collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("flags")}
}

// Collection exposes the underlying collection for change-stream watches.
func (s *Store) Collection() *mongo.Collection { return s.c }

// Report files a new flag against a profile.
func (s *Store) Report(ctx context.Context, f models.Flag) (models.Flag, error) {
	f.ID = primitive.NewObjectID()
	f.FlagType = normalize.FlagType(f.FlagType)
	if f.Timestamp.IsZero() {
		f.Timestamp = time.Now()
	}
	if _, err := s.c.InsertOne(ctx, f); err != nil {
		return models.Flag{}, fmt.Errorf("report flag: %w", err)
	}
	return f, nil
}

// List returns the full current set of flags, newest first.
func (s *Store) List(ctx context.Context) ([]models.Flag, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var flags []models.Flag
	if err := cur.All(ctx, &flags); err != nil {
		return nil, err
	}
	return flags, nil
}

// Delete removes a flag by id hex. Deleting an already-deleted flag is
// not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("delete flag %s: %w", id, err)
	}
	if _, err := s.c.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("delete flag %s: %w", id, err)
	}
	return nil
}
