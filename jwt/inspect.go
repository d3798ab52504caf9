package jwt

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Cookie names set by the backend.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

var (
	// ErrNoToken is returned when no access_token cookie is present.
	ErrNoToken = errors.New("jwt: no access token cookie")
	// ErrMalformed is returned when the cookie is not a decodable JWT.
	ErrMalformed = errors.New("jwt: malformed access token")
)

// AccessClaims are the claims the backend puts in its access tokens.
type AccessClaims struct {
	UserID string   `json:"userId,omitempty"`
	Scope  []string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// Username returns the token subject.
func (c *AccessClaims) Username() string {
	if c == nil {
		return ""
	}
	return c.Subject
}

// Expiry returns the expiry, or the zero time when the token has none.
func (c *AccessClaims) Expiry() time.Time {
	if c == nil || c.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.ExpiresAt.Time
}

// ExpiresIn returns the time left at now. Tokens without expiry report 0.
func (c *AccessClaims) ExpiresIn(now time.Time) time.Duration {
	exp := c.Expiry()
	if exp.IsZero() {
		return 0
	}
	if d := exp.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Expired reports whether the token has an expiry at or before now.
func (c *AccessClaims) Expired(now time.Time) bool {
	exp := c.Expiry()
	return !exp.IsZero() && !exp.After(now)
}

// HasScope reports whether the token grants role.
func (c *AccessClaims) HasScope(role string) bool {
	if c == nil {
		return false
	}
	for _, s := range c.Scope {
		if s == role {
			return true
		}
	}
	return false
}

var parser = jwt.NewParser()

// Inspect decodes token without verifying its signature.
func Inspect(token string) (*AccessClaims, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	claims := &AccessClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, errors.Join(ErrMalformed, err)
	}
	return claims, nil
}

// FromJar inspects the access_token cookie jar holds for endpoint.
func FromJar(jar http.CookieJar, endpoint string) (*AccessClaims, error) {
	if jar == nil {
		return nil, ErrNoToken
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	for _, c := range jar.Cookies(u) {
		if c.Name == AccessTokenCookie {
			return Inspect(c.Value)
		}
	}
	return nil, ErrNoToken
}
