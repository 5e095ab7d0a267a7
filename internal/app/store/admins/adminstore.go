package adminstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stoutly/stoutly/internal/app/system/normalize"
	"github.com/stoutly/stoutly/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no admin record exists for an email.
var ErrNotFound = errors.New("admin record not found")

// Store provides access to the admins collection. Document ids are
// normalized (lower-cased) email addresses; role resolution is an
// existence check against those ids.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("admins")}
}

// Exists reports whether a privileged record exists for the email.
func (s *Store) Exists(ctx context.Context, email string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"_id": normalize.Email(email)}).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// Get loads the admin record for an email.
func (s *Store) Get(ctx context.Context, email string) (*models.Admin, error) {
	var a models.Admin
	if err := s.c.FindOne(ctx, bson.M{"_id": normalize.Email(email)}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Upsert creates or replaces the admin record for an email. Used by the
// startup bootstrap to seed the configured admin account.
func (s *Store) Upsert(ctx context.Context, email, passwordHash string) error {
	email = normalize.Email(email)
	update := bson.M{
		"$set":         bson.M{"password_hash": passwordHash},
		"$setOnInsert": bson.M{"created_at": time.Now()},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": email}, update, opts); err != nil {
		return fmt.Errorf("upsert admin %s: %w", email, err)
	}
	return nil
}
