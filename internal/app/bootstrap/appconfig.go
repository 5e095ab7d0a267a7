// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, timeouts). AppConfig carries everything specific to Stoutly:
// the Mongo connection, the gateway token key, the moderator allow-list,
// and the Cloudinary account.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Gateway token configuration
	TokenSigningKey string        // HS256 key for gateway-minted tokens
	TokenTTL        time.Duration // Lifetime of minted tokens

	// Console session cookie
	SessionKey string // Secret key for signing the console session cookie

	// Moderation
	AdminEmails []string // Allow-list of moderator emails (comma-separated in config)

	// Bootstrap console operator, seeded on startup when both are set
	BootstrapAdminEmail    string
	BootstrapAdminPassword string

	// Cloudinary account for selfie uploads
	CloudinaryCloudName    string
	CloudinaryUploadPreset string

	// Base URL the console uses to reach the gateway
	BaseURL string
}
