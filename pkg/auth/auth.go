// Package auth issues and verifies the HS256 tokens that identify API users.
// A token only names the user whose settings a request reads and writes; there are no
// roles or sessions. This is a leaf package with no domain dependencies.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ===== CONSTANTS =====

// DefaultExpiry is used when a Signer is created with a non-positive expiry.
const DefaultExpiry = 24 * time.Hour

// Issuer is written into every token and required when parsing.
const Issuer = "prdgen"

// MinSecretLength is the shortest accepted signing secret.
const MinSecretLength = 32

var (
	// ErrWeakSecret is returned by NewSigner for a missing or short secret.
	ErrWeakSecret = fmt.Errorf("auth: secret must be at least %d characters", MinSecretLength)
	// ErrInvalidToken wraps every parse or validation failure.
	ErrInvalidToken = errors.New("auth: invalid token")
)

// ===== JWT =====

// Claims are the token claims. UserID duplicates the subject for readability in clients.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Signer creates and validates tokens with one secret.
type Signer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewSigner creates a Signer.
func NewSigner(secret string, expiry time.Duration) (*Signer, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Signer{secret: []byte(secret), expiry: expiry, now: time.Now}, nil
}

// Issue returns a signed token for userID.
func (s *Signer) Issue(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("auth: user id is empty")
	}
	now := s.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Parse validates signature, algorithm, issuer and expiry, and returns the claims.
func (s *Signer) Parse(token string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token is empty", ErrInvalidToken)
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing claims", ErrInvalidToken)
	}
	return claims, nil
}
