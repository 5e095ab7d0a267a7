// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	gatewayauthfeature "github.com/stoutly/stoutly/internal/app/features/gatewayauth"
	healthfeature "github.com/stoutly/stoutly/internal/app/features/health"
	adminstore "github.com/stoutly/stoutly/internal/app/store/admins"
	"github.com/stoutly/stoutly/internal/app/store/audit"
	userstore "github.com/stoutly/stoutly/internal/app/store/users"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for the gateway.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and Startup have completed. The gateway is deliberately small: a
// health endpoint for orchestrators and the auth surface that mints
// tokens and guards the console API. Everything else in the app is
// client-side state, not HTTP.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Auth gateway: token minting, console login, admin-only API.
	// Cookies are signed with the configured key. In prod the payload
	// is also encrypted with a per-process key; console sessions end at
	// restart, bearer tokens do not.
	keys := [][]byte{[]byte(appCfg.SessionKey)}
	if coreCfg.Env == "prod" {
		keys = append(keys, securecookie.GenerateRandomKey(32))
	}
	cookieStore := sessions.NewCookieStore(keys...)
	cookieStore.Options.HttpOnly = true
	cookieStore.Options.Secure = coreCfg.Env == "prod"

	tokens := gatewayauthfeature.NewIssuer([]byte(appCfg.TokenSigningKey), appCfg.TokenTTL)
	authHandler := gatewayauthfeature.NewHandler(
		userstore.New(deps.MongoDatabase),
		adminstore.New(deps.MongoDatabase),
		audit.New(deps.MongoDatabase, logger),
		tokens,
		cookieStore,
		appCfg.AdminEmails,
		logger,
	)
	r.Mount("/api/auth", gatewayauthfeature.Routes(authHandler))

	return r, nil
}
