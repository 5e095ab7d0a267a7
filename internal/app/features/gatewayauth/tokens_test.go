package gatewayauth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stoutly/stoutly/internal/app/features/gatewayauth"
)

func TestAdminToken_RoundTrip(t *testing.T) {
	issuer := gatewayauth.NewIssuer([]byte("test-signing-key"), time.Hour)

	token, err := issuer.AdminToken("Mod@Example.com")
	if err != nil {
		t.Fatalf("AdminToken failed: %v", err)
	}

	claims, err := issuer.VerifyAdmin(token)
	if err != nil {
		t.Fatalf("VerifyAdmin failed: %v", err)
	}
	if claims.Email != "Mod@Example.com" {
		t.Errorf("email: got %q, want %q", claims.Email, "Mod@Example.com")
	}
	if claims.Subject != "Mod@Example.com" {
		t.Errorf("subject: got %q, want the email", claims.Subject)
	}
	if claims.ID == "" {
		t.Error("token must carry a unique ID")
	}
}

func TestVerifyAdmin_RejectsCustomToken(t *testing.T) {
	issuer := gatewayauth.NewIssuer([]byte("test-signing-key"), time.Hour)

	token, err := issuer.CustomToken("uid-1")
	if err != nil {
		t.Fatalf("CustomToken failed: %v", err)
	}

	// Sign-in tokens and console tokens carry different audiences.
	if _, err := issuer.VerifyAdmin(token); !errors.Is(err, gatewayauth.ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyAdmin_RejectsForeignKey(t *testing.T) {
	issuer := gatewayauth.NewIssuer([]byte("test-signing-key"), time.Hour)
	other := gatewayauth.NewIssuer([]byte("some-other-key"), time.Hour)

	token, err := other.AdminToken("mod@example.com")
	if err != nil {
		t.Fatalf("AdminToken failed: %v", err)
	}
	if _, err := issuer.VerifyAdmin(token); !errors.Is(err, gatewayauth.ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyAdmin_RejectsExpired(t *testing.T) {
	issuer := gatewayauth.NewIssuer([]byte("test-signing-key"), -time.Minute)

	token, err := issuer.AdminToken("mod@example.com")
	if err != nil {
		t.Fatalf("AdminToken failed: %v", err)
	}
	if _, err := issuer.VerifyAdmin(token); !errors.Is(err, gatewayauth.ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyAdmin_RejectsGarbage(t *testing.T) {
	issuer := gatewayauth.NewIssuer([]byte("test-signing-key"), time.Hour)

	if _, err := issuer.VerifyAdmin("not.a.token"); !errors.Is(err, gatewayauth.ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}
