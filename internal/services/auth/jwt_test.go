package auth

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	token, expiresAt, err := manager.GenerateAccessToken(42)
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}

	claims, err := manager.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("unexpected user id: got %d want %d", claims.UserID, 42)
	}
	if !claims.ExpiresAt.Equal(expiresAt.Truncate(time.Second)) {
		t.Fatalf("unexpected expiry: got %v want %v", claims.ExpiresAt, expiresAt)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	other := NewJWTManager("different-secret", time.Hour)

	token, _, err := manager.GenerateAccessToken(42)
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}

	if _, err := other.ParseAccessToken(token); err != ErrUnauthorized {
		t.Fatalf("unexpected error: got %v want %v", err, ErrUnauthorized)
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Minute)
	manager.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := manager.GenerateAccessToken(42)
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}

	manager.now = time.Now
	if _, err := manager.ParseAccessToken(token); err != ErrUnauthorized {
		t.Fatalf("unexpected error: got %v want %v", err, ErrUnauthorized)
	}
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	for _, raw := range []string{"", "   ", "not-a-token", "a.b.c"} {
		if _, err := manager.ParseAccessToken(raw); err != ErrUnauthorized {
			t.Fatalf("%q: unexpected error: got %v want %v", raw, err, ErrUnauthorized)
		}
	}
}
