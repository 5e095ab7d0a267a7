package userstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/stoutly/stoutly/internal/app/system/normalize"
	"github.com/stoutly/stoutly/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no profile document exists for an id.
// Callers treat it as a normal outcome (first sign-in races profile
// creation), never as a failure.
var ErrNotFound = errors.New("user profile not found")

var errBadStatus = errors.New(`status must be "pending_verification"|"approved_username_assigned"|"rejected"`)

// Store provides access to the users collection. Document ids are the
// auth provider's UID strings.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Collection exposes the underlying collection for change-stream watches.
func (s *Store) Collection() *mongo.Collection { return s.c }

// Get loads a profile document by auth UID.
func (s *Store) Get(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a profile by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Register merge-writes the initial profile document for a new account.
// created_at is recorded server-side so client clock skew never affects
// pending-list ordering. The write is an upsert: registering twice for
// the same id leaves a single document.
func (s *Store) Register(ctx context.Context, u models.User) error {
	if u.ID == "" {
		return errors.New("register: missing user id")
	}
	set := bson.M{
		"name":                normalize.Name(u.Name),
		"email":               normalize.Email(u.Email),
		"phone":               u.Phone,
		"location":            u.Location,
		"selfie_url":          u.SelfieURL,
		"verification_status": models.StatusPending,
	}
	update := bson.M{
		"$set":         set,
		"$currentDate": bson.M{"created_at": true},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": u.ID}, update, opts); err != nil {
		return fmt.Errorf("register user %s: %w", u.ID, err)
	}
	return nil
}

// UpdateStatus merge-writes a status transition onto the profile,
// leaving all other fields untouched. An empty username leaves any
// existing username in place. Repeating the same write produces no
// observable change in the stored document.
func (s *Store) UpdateStatus(ctx context.Context, id, status, username string) error {
	status = normalize.Status(status)
	if !models.ValidStatus(status) {
		return errBadStatus
	}
	set := bson.M{"verification_status": status}
	if username != "" {
		set["username"] = username
	}
	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("update status for user %s: %w", id, err)
	}
	return nil
}

// Approve transitions a user to approved with their assigned handle.
// approved_at is a server-side timestamp distinct from created_at.
func (s *Store) Approve(ctx context.Context, id, username string) error {
	update := bson.M{
		"$set": bson.M{
			"verification_status": models.StatusApproved,
			"username":            username,
		},
		"$currentDate": bson.M{"approved_at": true},
	}
	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return fmt.Errorf("approve user %s: %w", id, err)
	}
	return nil
}

// Reject transitions a user to rejected. rejected_at is recorded
// server-side.
func (s *Store) Reject(ctx context.Context, id, reason string) error {
	update := bson.M{
		"$set": bson.M{
			"verification_status": models.StatusRejected,
			"rejection_reason":    reason,
		},
		"$currentDate": bson.M{"rejected_at": true},
	}
	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return fmt.Errorf("reject user %s: %w", id, err)
	}
	return nil
}

// ListPending returns the full current set of users awaiting review,
// newest registrations first. The pending filter is evaluated
// store-side: a status transition removes the user from this result on
// the next read with no explicit removal call.
func (s *Store) ListPending(ctx context.Context) ([]models.User, error) {
	return s.list(ctx, bson.M{"verification_status": models.StatusPending})
}

// ListAll returns every user document, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.User, error) {
	return s.list(ctx, bson.M{})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
