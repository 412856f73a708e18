// Package auth issues and verifies reporter session tokens. A session is
// bound to an identity commitment, never to the secret.
package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

const signingKeySize = 32

// ErrInvalidToken is returned for tokens that fail verification for any reason.
var ErrInvalidToken = errors.New("invalid session token")

// Sessions issues and verifies HS256 session tokens for reporters.
type Sessions struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

// NewSessions derives the HS256 signing key from the server master secret
// using HKDF with SHA-256, so the raw secret is never used directly as key
// material.
func NewSessions(masterSecret []byte, issuer string, ttl time.Duration) (*Sessions, error) {
	if len(masterSecret) < 32 {
		return nil, fmt.Errorf("master secret must be at least 32 bytes")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}

	key := make([]byte, signingKeySize)
	reader := hkdf.New(sha256.New, masterSecret, nil, []byte("roadguard-session-signing"))
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}

	return &Sessions{signingKey: key, issuer: issuer, ttl: ttl}, nil
}

// IssueToken creates a session token whose subject is the reporter commitment.
func (s *Sessions) IssueToken(commitment string) (string, error) {
	if commitment == "" {
		return "", fmt.Errorf("commitment is required")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   commitment,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

// VerifyToken validates a session token and returns the bound commitment.
func (s *Sessions) VerifyToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// Middleware authenticates requests via the Authorization Bearer header and
// places the reporter commitment into the request context.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		commitment, err := s.VerifyToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			http.Error(w, "invalid session token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCommitment(r.Context(), commitment)))
	})
}

// SecretFromBase64 decodes a base64-encoded master secret, typically read
// from an environment variable.
func SecretFromBase64(encoded string) ([]byte, error) {
	secret, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode master secret: %w", err)
	}
	if len(secret) < 32 {
		return nil, fmt.Errorf("master secret must be at least 32 bytes, got %d", len(secret))
	}
	return secret, nil
}
