package gatewayauth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stoutly/stoutly/internal/app/features/gatewayauth"
	adminstore "github.com/stoutly/stoutly/internal/app/store/admins"
	userstore "github.com/stoutly/stoutly/internal/app/store/users"
	"github.com/stoutly/stoutly/internal/domain/models"
	"github.com/stoutly/stoutly/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsers struct {
	err   error
	users map[string]*models.User
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[email]
	if !ok {
		return nil, userstore.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeAdmins struct {
	admins map[string]*models.Admin
}

func (f *fakeAdmins) Get(ctx context.Context, email string) (*models.Admin, error) {
	a, ok := f.admins[email]
	if !ok {
		return nil, adminstore.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

type auditCall struct {
	action  string
	actorID string
}

type spyAudit struct {
	mu    sync.Mutex
	calls []auditCall
}

func (s *spyAudit) Record(ctx context.Context, action, actorID string, details map[string]string) {
	s.mu.Lock()
	s.calls = append(s.calls, auditCall{action: action, actorID: actorID})
	s.mu.Unlock()
}

func (s *spyAudit) Calls() []auditCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]auditCall, len(s.calls))
	copy(out, s.calls)
	return out
}

type gatewayFixture struct {
	router chi.Router
	users  *fakeUsers
	audit  *spyAudit
	issuer *gatewayauth.Issuer
}

func newGateway(t *testing.T) *gatewayFixture {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	f := &gatewayFixture{
		users: &fakeUsers{users: map[string]*models.User{
			"jane@example.com": {
				ID:       "uid-jane",
				Name:     "Jane",
				Email:    "jane@example.com",
				Status:   models.StatusApproved,
				Username: "swiftfalcon42",
			},
		}},
		audit:  &spyAudit{},
		issuer: gatewayauth.NewIssuer([]byte("test-signing-key"), time.Hour),
	}
	admins := &fakeAdmins{admins: map[string]*models.Admin{
		"mod@example.com": {Email: "mod@example.com", PasswordHash: string(hash)},
	}}
	store := sessions.NewCookieStore([]byte("session-key"))
	h := gatewayauth.NewHandler(f.users, admins, f.audit, f.issuer, store,
		[]string{"mod@example.com"}, zap.NewNop())
	f.router = gatewayauth.Routes(h)
	return f
}

func (f *gatewayFixture) post(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse error body: %v", err)
	}
	return body.Error
}

func TestLogin_InvalidEmail(t *testing.T) {
	f := newGateway(t)

	for _, body := range []string{`not json`, `{"email":""}`, `{"email":"not-an-email"}`} {
		rec := f.post("/login", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status %d, want %d", body, rec.Code, http.StatusBadRequest)
		}
		if msg := errorMessage(t, rec); msg != "Please enter a valid email address" {
			t.Errorf("body %q: message %q", body, msg)
		}
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := newGateway(t)

	rec := f.post("/login", `{"email":"nobody@example.com"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
	if msg := errorMessage(t, rec); msg != "No account found with this email address" {
		t.Errorf("message: got %q", msg)
	}
}

func TestLogin_LookupFailure(t *testing.T) {
	f := newGateway(t)
	f.users.err = testutil.ErrScripted

	rec := f.post("/login", `{"email":"jane@example.com"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if msg := errorMessage(t, rec); msg != "Login failed. Please try again." {
		t.Errorf("message: got %q", msg)
	}
}

func TestLogin_MintsTokenAndEchoesProfile(t *testing.T) {
	f := newGateway(t)

	// Email matching is case-insensitive.
	rec := f.post("/login", `{"email":"Jane@Example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp gatewayauth.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a sign-in token")
	}
	if resp.User.UID != "uid-jane" || resp.User.Username != "swiftfalcon42" {
		t.Errorf("user payload: %+v", resp.User)
	}
	if resp.User.Status != models.StatusApproved {
		t.Errorf("status: got %q, want %q", resp.User.Status, models.StatusApproved)
	}

	calls := f.audit.Calls()
	if len(calls) != 1 || calls[0].action != "user_login" || calls[0].actorID != "uid-jane" {
		t.Errorf("audit calls: %+v", calls)
	}
}

func TestAdminLogin_MissingCredentials(t *testing.T) {
	f := newGateway(t)

	rec := f.post("/admin-login", `{"email":"mod@example.com"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if msg := errorMessage(t, rec); msg != "Email and password are required" {
		t.Errorf("message: got %q", msg)
	}
}

func TestAdminLogin_BadCredentialsAreIndistinguishable(t *testing.T) {
	f := newGateway(t)

	unknown := f.post("/admin-login", `{"email":"nobody@example.com","password":"whatever"}`)
	wrongPw := f.post("/admin-login", `{"email":"mod@example.com","password":"wrong"}`)

	for name, rec := range map[string]*httptest.ResponseRecorder{"unknown email": unknown, "wrong password": wrongPw} {
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status %d, want %d", name, rec.Code, http.StatusUnauthorized)
		}
		if msg := errorMessage(t, rec); msg != "Invalid admin credentials" {
			t.Errorf("%s: message %q", name, msg)
		}
	}
}

func TestAdminLogin_IssuesConsoleToken(t *testing.T) {
	f := newGateway(t)

	rec := f.post("/admin-login", `{"email":"MOD@example.com","password":"correct horse"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Email != "mod@example.com" {
		t.Errorf("email: got %q, want the normalized form", resp.Email)
	}
	claims, err := f.issuer.VerifyAdmin(resp.Token)
	if err != nil {
		t.Fatalf("issued token failed verification: %v", err)
	}
	if claims.Email != "mod@example.com" {
		t.Errorf("claims email: got %q", claims.Email)
	}

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "stoutly-console" {
			found = true
		}
	}
	if !found {
		t.Error("expected a console session cookie")
	}

	calls := f.audit.Calls()
	if len(calls) != 1 || calls[0].action != "admin_login" {
		t.Errorf("audit calls: %+v", calls)
	}
}

func TestRequireAdmin_MissingOrInvalidTokenIs401(t *testing.T) {
	f := newGateway(t)

	for name, header := range map[string]string{
		"no header":     "",
		"not bearer":    "Basic abc",
		"garbage token": "Bearer not.a.token",
	} {
		req := httptest.NewRequest("GET", "/admin/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status %d, want %d", name, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestRequireAdmin_ValidTokenOutsideAllowListIs403(t *testing.T) {
	f := newGateway(t)

	token, err := f.issuer.AdminToken("intruder@example.com")
	if err != nil {
		t.Fatalf("AdminToken failed: %v", err)
	}
	req := httptest.NewRequest("GET", "/admin/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
	if msg := errorMessage(t, rec); msg != "Access denied" {
		t.Errorf("message: got %q", msg)
	}
}

func TestRequireAdmin_AllowListedTokenPasses(t *testing.T) {
	f := newGateway(t)

	token, err := f.issuer.AdminToken("mod@example.com")
	if err != nil {
		t.Fatalf("AdminToken failed: %v", err)
	}
	req := httptest.NewRequest("GET", "/admin/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Email != "mod@example.com" {
		t.Errorf("email: got %q", resp.Email)
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	f := newGateway(t)

	rec := f.post("/admin-logout", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNoContent)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "stoutly-console" && c.MaxAge >= 0 {
			t.Error("console cookie must be expired")
		}
	}
}
