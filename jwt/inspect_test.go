package jwt

import (
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func sign(t *testing.T, claims AccessClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-only-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestInspectDecodesBackendClaims(t *testing.T) {
	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	tok := sign(t, AccessClaims{
		UserID: "user123",
		Scope:  []string{"ROLE_USER", "ROLE_ADMIN"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "testuser",
			Issuer:    "self",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	claims, err := Inspect(tok)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if claims.Username() != "testuser" || claims.UserID != "user123" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if !claims.HasScope("ROLE_ADMIN") || claims.HasScope("ROLE_ROOT") {
		t.Fatalf("unexpected scope %v", claims.Scope)
	}
	if !claims.Expiry().Equal(exp) {
		t.Fatalf("expected expiry %v, got %v", exp, claims.Expiry())
	}
	if claims.Expired(time.Now()) || !claims.Expired(exp) {
		t.Fatal("unexpected expiry evaluation")
	}
	if d := claims.ExpiresIn(exp.Add(-time.Minute)); d != time.Minute {
		t.Fatalf("expected 1m left, got %v", d)
	}
}

func TestInspectRejectsGarbage(t *testing.T) {
	for _, tok := range []string{"not-a-jwt", "a.b.c", "..."} {
		if _, err := Inspect(tok); !errors.Is(err, ErrMalformed) {
			t.Fatalf("%q: expected ErrMalformed, got %v", tok, err)
		}
	}
	if _, err := Inspect(""); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestFromJar(t *testing.T) {
	jar, _ := cookiejar.New(nil)
	u, _ := url.Parse("http://localhost:8097/graphql")

	if _, err := FromJar(jar, u.String()); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}

	tok := sign(t, AccessClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"}})
	jar.SetCookies(u, []*http.Cookie{
		{Name: RefreshTokenCookie, Value: "opaque", Path: "/"},
		{Name: AccessTokenCookie, Value: tok, Path: "/", HttpOnly: true},
	})

	claims, err := FromJar(jar, u.String())
	if err != nil {
		t.Fatalf("FromJar failed: %v", err)
	}
	if claims.Username() != "alice" || !claims.Expiry().IsZero() || claims.ExpiresIn(time.Now()) != 0 {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestNilClaims(t *testing.T) {
	var c *AccessClaims
	if c.Username() != "" || c.HasScope("x") || c.Expired(time.Now()) {
		t.Fatal("nil claims must be empty")
	}
}
