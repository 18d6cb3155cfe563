// Package jwt implements generation and parsing of JWT tokens with custom claims.
//
// Maker is the interface the auth service depends on; MakerImpl is the
// HS256 implementation backed by a shared secret and a TTL per token kind.
package jwt

import (
	"time"
)

// Maker describes generation and parsing of access and refresh tokens.
type Maker interface {
	// GenerateToken issues a short-lived access token.
	GenerateToken(username, role, userUID string) (string, error)
	// GenerateRefreshToken issues a long-lived refresh token.
	GenerateRefreshToken(username, role, userUID string) (string, error)
	// ParseToken verifies a token and returns its claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl implements Maker with a secret key and per-kind TTLs.
type MakerImpl struct {
	secretKey  string
	tokenTTL   time.Duration
	refreshTTL time.Duration
}

// NewJWTMaker creates a MakerImpl from the secret key and token lifetimes.
func NewJWTMaker(secretKey string, tokenTTL, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey:  secretKey,
		tokenTTL:   tokenTTL,
		refreshTTL: refreshTTL,
	}
}
