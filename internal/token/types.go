package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type constants
const (
	TokenTypeBearer = "Bearer"
)

// Result is a signed session token.
type Result struct {
	TokenString string
	TokenType   string
	ExpiresAt   time.Time
	Claims      jwt.MapClaims
}

// ValidationResult carries the claims of a verified session token.
type ValidationResult struct {
	AccountID string
	Username  string
	ExpiresAt time.Time
	Claims    jwt.MapClaims
}
