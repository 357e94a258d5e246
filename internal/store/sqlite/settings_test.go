package sqlite

import (
	"context"
	"testing"
	"time"
)

func TestJWTSecretGeneratesAndPersists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	secret1, err := s.JWTSecret(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(secret1) != 64 { // 32 bytes = 64 hex chars
		t.Fatalf("expected 64 hex chars, got %d", len(secret1))
	}

	secret2, err := s.JWTSecret(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 != secret2 {
		t.Fatalf("expected same secret, got %q and %q", secret1, secret2)
	}
}

func TestRevokeAndCheckToken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	revoked, err := s.IsTokenRevoked(ctx, "test-jti-1")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if revoked {
		t.Error("expected token not to be revoked")
	}

	if err := s.RevokeToken(ctx, "test-jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	// Revoking twice is harmless.
	if err := s.RevokeToken(ctx, "test-jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken again: %v", err)
	}

	revoked, err = s.IsTokenRevoked(ctx, "test-jti-1")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if !revoked {
		t.Error("expected token to be revoked")
	}

	revoked, _ = s.IsTokenRevoked(ctx, "test-jti-2")
	if revoked {
		t.Error("expected other token not to be revoked")
	}
}

func TestExpiredRevocationsAreDropped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.RevokeToken(ctx, "old", time.Now().Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := s.RevokeToken(ctx, "new", time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	if revoked, _ := s.IsTokenRevoked(ctx, "old"); revoked {
		t.Error("expired revocation should have been cleaned up")
	}
	if revoked, _ := s.IsTokenRevoked(ctx, "new"); !revoked {
		t.Error("live revocation should remain")
	}
}
