// Package jwt implements generation and parsing of JWT tokens with custom
// claim fields for the storefront accounts.
//
// Maker is the interface for issuing and validating tokens, MakerImpl the
// concrete implementation backed by a secret key and a TTL.
package jwt

import (
	"time"
)

// Maker describes the interface for generating and parsing JWT tokens.
type Maker interface {
	// GenerateToken issues a token carrying username, role and user uid.
	GenerateToken(username, role, useruid string) (string, error)
	// ParseToken returns *CustomClaims when the token is valid.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl implements Maker with a secret key and a token lifetime.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker creates a MakerImpl from a secret key and TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
