package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	SessionID string
	Username  string
}

// AccessTokenClaims represents the typed JWT issued to clients. The session id
// travels as the jti and keys both the refresh session and the basket slot.
type AccessTokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionID returns the jti.
func (c *AccessTokenClaims) SessionID() string {
	if c == nil {
		return ""
	}
	return c.ID
}
