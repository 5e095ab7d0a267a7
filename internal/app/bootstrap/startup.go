// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	adminstore "github.com/stoutly/stoutly/internal/app/store/admins"
	"github.com/stoutly/stoutly/internal/app/system/normalize"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// It seeds the bootstrap console operator when one is configured.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.BootstrapAdminEmail == "" {
		return nil
	}
	return ensureBootstrapAdmin(ctx, deps.MongoDatabase,
		appCfg.BootstrapAdminEmail, appCfg.BootstrapAdminPassword, logger)
}

// ensureBootstrapAdmin upserts the configured console operator with a
// bcrypt hash of the configured password. Re-running with the same
// config is a no-op apart from refreshing the hash.
func ensureBootstrapAdmin(ctx context.Context, db *mongo.Database, email, password string, logger *zap.Logger) error {
	email = normalize.Email(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash bootstrap admin password: %w", err)
	}

	admins := adminstore.New(db)
	if err := admins.Upsert(ctx, email, string(hash)); err != nil {
		return fmt.Errorf("seed bootstrap admin: %w", err)
	}

	logger.Info("bootstrap console operator ensured", zap.String("email", email))
	return nil
}
