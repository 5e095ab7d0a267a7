// Package gatewayauth is the privileged HTTP gateway: it exchanges an
// email for a sign-in token, authenticates console operators, and
// guards the moderation API with bearer tokens. All credential checks
// run here, never in the client.
package gatewayauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"

	"github.com/gorilla/sessions"
	adminstore "github.com/stoutly/stoutly/internal/app/store/admins"
	"github.com/stoutly/stoutly/internal/app/store/audit"
	userstore "github.com/stoutly/stoutly/internal/app/store/users"
	"github.com/stoutly/stoutly/internal/app/system/normalize"
	"github.com/stoutly/stoutly/internal/app/system/timeouts"
	"github.com/stoutly/stoutly/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const sessionName = "stoutly-console"

// UserLookup is the slice of the users store the gateway reads.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// AdminLookup reads console operator credentials.
type AdminLookup interface {
	Get(ctx context.Context, email string) (*models.Admin, error)
}

// AuditRecorder records privileged actions.
type AuditRecorder interface {
	Record(ctx context.Context, action, actorID string, details map[string]string)
}

// Handler holds the gateway's dependencies.
type Handler struct {
	Users       UserLookup
	Admins      AdminLookup
	Audit       AuditRecorder
	Tokens      *Issuer
	Sessions    *sessions.CookieStore
	AllowEmails map[string]struct{}
	Log         *zap.Logger
}

func NewHandler(users UserLookup, admins AdminLookup, audit AuditRecorder,
	tokens *Issuer, store *sessions.CookieStore, allowEmails []string,
	logger *zap.Logger) *Handler {
	allow := make(map[string]struct{}, len(allowEmails))
	for _, e := range allowEmails {
		allow[normalize.Email(e)] = struct{}{}
	}
	return &Handler{
		Users:       users,
		Admins:      admins,
		Audit:       audit,
		Tokens:      tokens,
		Sessions:    store,
		AllowEmails: allow,
		Log:         logger,
	}
}

type loginRequest struct {
	Email string `json:"email"`
}

type LoginResponse struct {
	Token string    `json:"token"`
	User  LoginUser `json:"user"`
}

type LoginUser struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Status   string `json:"verification_status"`
	Username string `json:"username,omitempty"`
}

// Login handles POST /auth/login. It exchanges an email for a sign-in
// token the client redeems with the auth provider. The error messages
// are the exact strings the client surfaces verbatim.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Please enter a valid email address")
		return
	}
	email := normalize.Email(req.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		writeError(w, http.StatusBadRequest, "Please enter a valid email address")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if errors.Is(err, userstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "No account found with this email address")
		return
	}
	if err != nil {
		h.Log.Error("login lookup failed", zap.String("email", email), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Login failed. Please try again.")
		return
	}

	token, err := h.Tokens.CustomToken(u.ID)
	if err != nil {
		h.Log.Error("token mint failed", zap.String("uid", u.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Login failed. Please try again.")
		return
	}

	h.Audit.Record(ctx, audit.ActionUserLogin, u.ID, map[string]string{"email": email})
	writeJSON(w, http.StatusOK, LoginResponse{
		Token: token,
		User: LoginUser{
			UID:      u.ID,
			Email:    u.Email,
			Name:     u.Name,
			Status:   u.Status,
			Username: u.Username,
		},
	})
}

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminLoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// AdminLogin handles POST /auth/admin/login. Unknown email and wrong
// password return the same message so the response does not reveal
// which credential failed.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	email := normalize.Email(req.Email)
	if email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	admin, err := h.Admins.Get(ctx, email)
	if errors.Is(err, adminstore.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "Invalid admin credentials")
		return
	}
	if err != nil {
		h.Log.Error("admin lookup failed", zap.String("email", email), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Login failed. Please try again.")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid admin credentials")
		return
	}

	token, err := h.Tokens.AdminToken(email)
	if err != nil {
		h.Log.Error("admin token mint failed", zap.String("email", email), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Login failed. Please try again.")
		return
	}

	if sess, err := h.Sessions.Get(r, sessionName); err == nil {
		sess.Values["email"] = email
		sess.Options.HttpOnly = true
		sess.Options.SameSite = http.SameSiteLaxMode
		if err := sess.Save(r, w); err != nil {
			h.Log.Warn("console session save failed", zap.Error(err))
		}
	}

	h.Audit.Record(ctx, audit.ActionAdminLogin, email, nil)
	writeJSON(w, http.StatusOK, adminLoginResponse{Token: token, Email: email})
}

// Logout handles POST /auth/admin/logout and clears the console
// session cookie. Bearer tokens simply expire.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, err := h.Sessions.Get(r, sessionName); err == nil {
		sess.Options.MaxAge = -1
		if err := sess.Save(r, w); err != nil {
			h.Log.Warn("console session clear failed", zap.Error(err))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

type adminMeResponse struct {
	Email string `json:"email"`
}

// AdminMe handles GET /auth/admin/me behind the bearer middleware and
// echoes the verified operator identity.
func (h *Handler) AdminMe(w http.ResponseWriter, r *http.Request) {
	claims := AdminClaims(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	writeJSON(w, http.StatusOK, adminMeResponse{Email: claims.Email})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
