package commentstore

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

// Store provides access to the comments collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("comments")}
}

// Collection exposes the underlying collection for change-stream watches.
func (s *Store) Collection() *mongo.Collection { return s.c }

// Create inserts a new comment.
func (s *Store) Create(ctx context.Context, c models.Comment) (models.Comment, error) {
	c.ID = primitive.NewObjectID()
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now()
	}
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

// Flag marks an existing comment as reported.
func (s *Store) Flag(ctx context.Context, id, flagType string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("flag comment %s: %w", id, err)
	}
	update := bson.M{"$set": bson.M{"flag_type": normalize.FlagType(flagType)}}
	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": oid}, update); err != nil {
		return fmt.Errorf("flag comment %s: %w", id, err)
	}
	return nil
}

// List returns every comment, newest first. Moderation filters for
// flagged ones client-side; the snapshot is always the full set.
func (s *Store) List(ctx context.Context) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var comments []models.Comment
	if err := cur.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// Delete removes a comment by id hex.
func (s *Store) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("delete comment %s: %w", id, err)
	}
	if _, err := s.c.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("delete comment %s: %w", id, err)
	}
	return nil
}
