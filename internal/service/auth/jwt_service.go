// Package auth provides optional bearer-token authentication for the diary
// API. Tokens are HMAC-SHA256 signed JWTs issued to a named client, for
// example with `diaryctl token`.
package auth

import (
	"context"
	"time"
)

// Issuer is the iss claim of every token this package signs.
const Issuer = "diary-api"

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed JWT access token for subject. A
	// non-positive ttl selects the configured token lifetime.
	GenerateToken(ctx context.Context, subject string, ttl time.Duration) (string, error)

	// ValidateToken validates the provided access token string and extracts the claims.
	// Returns the claims if the token is valid, or an error if validation
	// fails (expired, invalid signature, etc.).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the claims of a validated token.
type Claims struct {
	Subject   string    `json:"sub,omitempty"`
	TokenType string    `json:"type,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
