package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields the client reads from a bearer token. The
// signature is not verified; the server remains the authority.
type Claims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

type tokenClaims struct {
	ID   string `json:"id,omitempty"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ParseClaims decodes a JWT without verifying it.
func ParseClaims(token string) (Claims, error) {
	var tc tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &tc); err != nil {
		return Claims{}, fmt.Errorf("parse token: %w", err)
	}

	c := Claims{Subject: tc.Subject, Role: tc.Role}
	if c.Subject == "" {
		c.Subject = tc.ID
	}
	if tc.ExpiresAt != nil {
		c.ExpiresAt = tc.ExpiresAt.Time
	}
	return c, nil
}

// Expired reports whether token is a JWT whose exp is at or before now.
// Tokens that are not JWTs, or carry no exp, never expire locally.
func Expired(token string, now time.Time) bool {
	c, err := ParseClaims(token)
	if err != nil || c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}
