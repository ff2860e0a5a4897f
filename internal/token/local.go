package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-authgate/devicelink/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	sessionIssuer    = "devicelink"
	sessionTokenType = "session"
)

// LocalTokenProvider signs and verifies HS256 session tokens handed to a
// device after it authenticates.
type LocalTokenProvider struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewLocalTokenProvider creates a new local token provider
func NewLocalTokenProvider(cfg *config.Config) *LocalTokenProvider {
	return &LocalTokenProvider{
		secret:     []byte(cfg.JWTSecret),
		expiration: cfg.JWTExpiration,
		now:        time.Now,
	}
}

// GenerateToken creates a session token for the account.
func (p *LocalTokenProvider) GenerateToken(accountID, username string) (*Result, error) {
	now := p.now()
	expiresAt := now.Add(p.expiration)
	claims := jwt.MapClaims{
		"account_id": accountID,
		"username":   username,
		"type":       sessionTokenType,
		"exp":        expiresAt.Unix(),
		"iat":        now.Unix(),
		"iss":        sessionIssuer,
		"sub":        accountID,
		"jti":        uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	return &Result{
		TokenString: tokenString,
		TokenType:   TokenTypeBearer,
		ExpiresAt:   expiresAt,
		Claims:      claims,
	}, nil
}

// ValidateToken verifies a session token and returns its claims.
func (p *LocalTokenProvider) ValidateToken(tokenString string) (*ValidationResult, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	},
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if tokenType, _ := claims["type"].(string); tokenType != sessionTokenType {
		return nil, ErrInvalidToken
	}

	accountID, _ := claims["account_id"].(string)
	if accountID == "" {
		return nil, ErrInvalidToken
	}
	username, _ := claims["username"].(string)

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}

	return &ValidationResult{
		AccountID: accountID,
		Username:  username,
		ExpiresAt: exp.Time,
		Claims:    claims,
	}, nil
}
