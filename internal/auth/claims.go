package auth

import (
	"time"
)

// AccessClaims represents the claims stored in a PASETO access token.
// These are encrypted in v4.local tokens, so they're not readable without the key.
type AccessClaims struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	SessionID string `json:"sid"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// Identity is the authenticated caller of a request.
type Identity struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	SessionID string `json:"sessionId"`
}
