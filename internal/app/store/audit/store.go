// Package audit records privileged gateway actions in the
// admin_actions collection.
package audit

import (
	"context"
	"time"

	"github.com/stoutly/stoutly/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Action types.
const (
	ActionAdminLogin = "admin_login"
	ActionUserLogin  = "user_login"
)

// Store writes audit events. Failures are logged and swallowed: losing
// an audit record must never fail the action being audited.
type Store struct {
	c   *mongo.Collection
	log *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Store {
	return &Store{c: db.Collection("admin_actions"), log: logger}
}

// Record inserts an audit event, stamping id and timestamp.
func (s *Store) Record(ctx context.Context, action, actorID string, details map[string]string) {
	ev := models.AuditEvent{
		ID:        primitive.NewObjectID(),
		Action:    action,
		ActorID:   actorID,
		Details:   details,
		Timestamp: time.Now(),
	}
	if _, err := s.c.InsertOne(ctx, ev); err != nil {
		s.log.Error("audit event write failed",
			zap.String("action", action),
			zap.String("actor", actorID),
			zap.Error(err))
	}
}
