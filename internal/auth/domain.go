package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by access tokens.
type Claims struct {
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
	// Role is accepted for tokens that carry a single role string.
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// RoleNames merges Roles and Role.
func (c *Claims) RoleNames() []string {
	out := make([]string, 0, len(c.Roles)+1)
	out = append(out, c.Roles...)
	if c.Role != "" {
		out = append(out, c.Role)
	}
	return out
}
