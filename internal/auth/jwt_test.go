package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erazemk/recyclehub/internal/model"
)

func TestTokenRoundTrip(t *testing.T) {
	const secret = "test-secret-key"

	token, err := GenerateToken(secret, "u-1", "asha@example.com", model.RoleUser)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "u-1" || claims.Email != "asha@example.com" || claims.Role != model.RoleUser {
		t.Errorf("unexpected claims %+v", claims)
	}
	if claims.Subject != "u-1" || claims.Issuer != issuer {
		t.Errorf("unexpected registered claims: sub=%q iss=%q", claims.Subject, claims.Issuer)
	}

	actor := claims.Actor()
	if actor.UserID != "u-1" || actor.Role != model.RoleUser {
		t.Errorf("unexpected actor %+v", actor)
	}

	diff := time.Until(claims.ExpiresAt.Time) - TokenExpiry
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}

func TestTokenIDsAreUnique(t *testing.T) {
	a, _ := GenerateToken("s", "u-1", "a@example.com", model.RoleUser)
	b, _ := GenerateToken("s", "u-1", "a@example.com", model.RoleUser)
	ca, _ := ValidateToken("s", a)
	cb, _ := ValidateToken("s", b)
	if ca.ID == "" || ca.ID == cb.ID {
		t.Errorf("expected distinct token ids, got %q and %q", ca.ID, cb.ID)
	}
}

func TestNilClaimsActorIsAnonymous(t *testing.T) {
	var c *Claims
	if !c.Actor().Anonymous() {
		t.Error("nil claims should yield an anonymous actor")
	}
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}
	return s
}

func TestValidateTokenRejects(t *testing.T) {
	const secret = "secret"
	valid, _ := GenerateToken("other-secret", "u-1", "a@example.com", model.RoleVendor)

	base := func(mod func(*Claims)) Claims {
		c := Claims{
			UserID: "u-1",
			Role:   model.RoleUser,
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "jti",
				Issuer:    issuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		mod(&c)
		return c
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", valid},
		{"expired", sign(t, jwt.SigningMethodHS256, []byte(secret), base(func(c *Claims) {
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		}))},
		{"no expiry", sign(t, jwt.SigningMethodHS256, []byte(secret), base(func(c *Claims) {
			c.ExpiresAt = nil
		}))},
		{"foreign issuer", sign(t, jwt.SigningMethodHS256, []byte(secret), base(func(c *Claims) {
			c.Issuer = "someone-else"
		}))},
		{"other hmac", sign(t, jwt.SigningMethodHS512, []byte(secret), base(func(*Claims) {}))},
		{"no id", sign(t, jwt.SigningMethodHS256, []byte(secret), base(func(c *Claims) {
			c.ID = ""
		}))},
		{"unsigned", sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, base(func(*Claims) {}))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateToken(secret, tt.token); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGenerateSecret(t *testing.T) {
	a, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}
	b, _ := GenerateSecret()
	if len(a) != 64 || a == b {
		t.Errorf("expected distinct 64-char secrets, got %q and %q", a, b)
	}
}
