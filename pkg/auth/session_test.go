package auth

import (
	"bytes"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testSecret() []byte {
	secret := make([]byte, 32)
	for i := range secret {
		secret[i] = byte(i)
	}
	return secret
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	sessions, err := NewSessions(testSecret(), "roadguard", time.Hour)
	if err != nil {
		t.Fatalf("NewSessions failed: %v", err)
	}

	commitment := "0x1f4e9c01d2a5b8e4f7c6d9a0b3e2f1c4d5a6b7c8d9e0f1a2b3c4d5e6f7a8b9c0"
	token, err := sessions.IssueToken(commitment)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	got, err := sessions.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if got != commitment {
		t.Errorf("verified subject %q, want %q", got, commitment)
	}
}

func TestVerifyWrongKey(t *testing.T) {
	a, _ := NewSessions(testSecret(), "roadguard", time.Hour)

	other := testSecret()
	other[0] ^= 0xff
	b, _ := NewSessions(other, "roadguard", time.Hour)

	token, err := a.IssueToken("0xabc0000000000000000000000000000000000000000000000000000000000abc")
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if _, err := b.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong key, got %v", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	sessions, _ := NewSessions(testSecret(), "roadguard", time.Millisecond)
	token, err := sessions.IssueToken("0xdef")
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := sessions.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyWrongIssuer(t *testing.T) {
	a, _ := NewSessions(testSecret(), "roadguard", time.Hour)
	b, _ := NewSessions(testSecret(), "someone-else", time.Hour)

	token, _ := a.IssueToken("0xabc")
	if _, err := b.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong issuer, got %v", err)
	}
}

func TestNewSessionsShortSecret(t *testing.T) {
	if _, err := NewSessions(make([]byte, 16), "roadguard", time.Hour); err == nil {
		t.Error("expected error for short master secret")
	}
}

func TestMiddleware(t *testing.T) {
	sessions, _ := NewSessions(testSecret(), "roadguard", time.Hour)
	commitment := "0xfeed000000000000000000000000000000000000000000000000000000001234"
	token, _ := sessions.IssueToken(commitment)

	var seen string
	handler := sessions.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = CommitmentFromContext(r.Context())
	}))

	// Valid token passes through with the commitment in context.
	req := httptest.NewRequest(http.MethodPost, "/reports", bytes.NewBufferString("{}"))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid token, got %d", rec.Code)
	}
	if seen != commitment {
		t.Errorf("handler saw commitment %q, want %q", seen, commitment)
	}

	// Missing and garbage tokens are rejected.
	for _, header := range []string{"", "Bearer not-a-token"} {
		req := httptest.NewRequest(http.MethodPost, "/reports", bytes.NewBufferString("{}"))
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestSecretFromBase64(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(testSecret())
	secret, err := SecretFromBase64(encoded)
	if err != nil {
		t.Fatalf("SecretFromBase64 failed: %v", err)
	}
	if !bytes.Equal(secret, testSecret()) {
		t.Error("decoded secret does not match original")
	}

	if _, err := SecretFromBase64("not-base64!!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
	short := base64.StdEncoding.EncodeToString([]byte("short"))
	if _, err := SecretFromBase64(short); err == nil {
		t.Error("expected error for short secret")
	}
}
