package gatewayauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token subjects. A custom token carries an end-user uid; an admin
// token carries a console operator's email.
const (
	audienceCustom = "stoutly-client"
	audienceAdmin  = "stoutly-console"
	issuerName     = "stoutly-gateway"
)

// ErrInvalidToken covers every parse and claim failure. Callers get no
// detail about why a token was rejected.
var ErrInvalidToken = errors.New("gatewayauth: invalid token")

// Claims is the token payload. Subject is the uid for custom tokens and
// the admin email for console tokens.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies HS256 tokens with a shared signing key.
type Issuer struct {
	key []byte
	ttl time.Duration
}

func NewIssuer(key []byte, ttl time.Duration) *Issuer {
	return &Issuer{key: key, ttl: ttl}
}

// CustomToken mints a sign-in token for the end-user uid. The client
// exchanges it with the auth provider; it is not a session credential.
func (i *Issuer) CustomToken(uid string) (string, error) {
	return i.sign(uid, "", audienceCustom)
}

// AdminToken mints a console credential for an authenticated operator.
func (i *Issuer) AdminToken(email string) (string, error) {
	return i.sign(email, email, audienceAdmin)
}

func (i *Issuer) sign(subject, email, audience string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			ID:        uuid.NewString(),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyAdmin parses a console token and returns its claims.
func (i *Issuer) VerifyAdmin(token string) (*Claims, error) {
	return i.verify(token, audienceAdmin)
}

func (i *Issuer) verify(token, audience string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.key, nil
	}, jwt.WithIssuer(issuerName), jwt.WithAudience(audience))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
