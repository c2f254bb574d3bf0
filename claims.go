package authgate

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the inner signed assertion: subject, roles, and the
// registered timestamp claims. It is deserialized at the verification
// boundary into this concrete shape; malformed claims are rejected there
// rather than surfacing as untyped maps downstream.
type TokenClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

// Subject returns the subject claim.
func (c *TokenClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Expires returns the expiration time, zero when absent.
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued-at time, zero when absent.
func (c *TokenClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// HasRole checks for an exact role.
func (c *TokenClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks the claims against a required-role set. An empty set
// means no role requirement: any authenticated subject passes.
func (c *TokenClaims) HasAnyRole(roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if c.HasRole(role) {
			return true
		}
	}
	return false
}
