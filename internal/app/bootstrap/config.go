// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/stoutly/stoutly/internal/app/system/normalize"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Stoutly.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, admin_emails, etc.
//   - Environment variables: STOUTLY_MONGO_URI, STOUTLY_ADMIN_EMAILS, etc.
//   - Command-line flags: --mongo_uri, --admin_emails, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "stoutly", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "token_signing_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "HS256 key for gateway tokens (must be strong in production)"},
	{Name: "token_ttl", Default: "1h", Desc: "Lifetime of gateway-minted tokens (e.g., 1h, 30m)"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Console session cookie signing key"},

	{Name: "admin_emails", Default: "", Desc: "Comma-separated allow-list of moderator emails"},

	{Name: "bootstrap_admin_email", Default: "", Desc: "Console operator seeded on startup (with bootstrap_admin_password)"},
	{Name: "bootstrap_admin_password", Default: "", Desc: "Password for the seeded console operator"},

	{Name: "cloudinary_cloud_name", Default: "", Desc: "Cloudinary cloud name for selfie uploads"},
	{Name: "cloudinary_upload_preset", Default: "", Desc: "Cloudinary unsigned upload preset"},

	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL the console uses to reach the gateway"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, STOUTLY_* for app), and
// command-line flags, merged with precedence flags > env > files >
// defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "STOUTLY", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		TokenSigningKey: appValues.String("token_signing_key"),
		TokenTTL:        appValues.Duration("token_ttl", time.Hour),

		SessionKey: appValues.String("session_key"),

		AdminEmails: splitEmails(appValues.String("admin_emails")),

		BootstrapAdminEmail:    appValues.String("bootstrap_admin_email"),
		BootstrapAdminPassword: appValues.String("bootstrap_admin_password"),

		CloudinaryCloudName:    appValues.String("cloudinary_cloud_name"),
		CloudinaryUploadPreset: appValues.String("cloudinary_upload_preset"),

		BaseURL: appValues.String("base_url"),
	}

	return coreCfg, appCfg, nil
}

// splitEmails parses the comma-separated allow-list, normalizing each
// entry and dropping blanks.
func splitEmails(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if e := normalize.Email(part); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// Stoutly validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect, and refuses a bootstrap
// operator whose email is outside the allow-list.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if (appCfg.BootstrapAdminEmail == "") != (appCfg.BootstrapAdminPassword == "") {
		return fmt.Errorf("bootstrap_admin_email and bootstrap_admin_password must be set together")
	}
	if appCfg.BootstrapAdminEmail != "" {
		email := normalize.Email(appCfg.BootstrapAdminEmail)
		found := false
		for _, e := range appCfg.AdminEmails {
			if e == email {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("bootstrap admin %s is not in admin_emails", email)
		}
	}

	return nil
}
