// Package auth issues and validates the bearer tokens guarding rowkeep's
// write routes.
package auth

import (
	stderrors "errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bitswalk/rowkeep/src/common/errors"
)

// Token scopes
const (
	ScopeRead  = "read"
	ScopeWrite = "write"
	ScopeAdmin = "admin"
)

// TokenConfig holds token service configuration
type TokenConfig struct {
	// Secret signs tokens. Empty disables authentication.
	Secret        string
	Issuer        string
	TokenDuration time.Duration
}

// DefaultTokenConfig returns default token configuration
func DefaultTokenConfig() TokenConfig {
	return TokenConfig{
		Issuer:        "rowkeep",
		TokenDuration: 24 * time.Hour,
	}
}

// TokenService handles token generation and validation
type TokenService struct {
	secretKey     []byte
	issuer        string
	tokenDuration time.Duration
	now           func() time.Time
}

// Claims are the validated contents of a token
type Claims struct {
	Subject   string    `json:"subject"`
	Scopes    []string  `json:"scopes"`
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HasScope reports whether the claims grant scope. Admin implies every scope
// and write implies read.
func (c *Claims) HasScope(scope string) bool {
	if c == nil {
		return false
	}
	for _, s := range c.Scopes {
		switch {
		case s == scope, s == ScopeAdmin:
			return true
		case s == ScopeWrite && scope == ScopeRead:
			return true
		}
	}
	return false
}

// jwtClaims represents the full JWT claims structure
type jwtClaims struct {
	jwt.RegisteredClaims
	Scopes []string `json:"scopes"`
}

// NewTokenService creates a token service from cfg
func NewTokenService(cfg TokenConfig) *TokenService {
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultTokenConfig().Issuer
	}
	if cfg.TokenDuration <= 0 {
		cfg.TokenDuration = DefaultTokenConfig().TokenDuration
	}

	return &TokenService{
		secretKey:     []byte(cfg.Secret),
		issuer:        cfg.Issuer,
		tokenDuration: cfg.TokenDuration,
		now:           time.Now,
	}
}

// Enabled reports whether a secret is configured
func (s *TokenService) Enabled() bool {
	return s != nil && len(s.secretKey) > 0
}

// ValidScope reports whether scope is one of the known scopes
func ValidScope(scope string) bool {
	return slices.Contains([]string{ScopeRead, ScopeWrite, ScopeAdmin}, scope)
}

// Issue signs a token for subject granting scopes. A ttl of zero uses the
// configured token duration.
func (s *TokenService) Issue(subject string, scopes []string, ttl time.Duration) (string, error) {
	if !s.Enabled() {
		return "", errors.ErrTokenInvalid.WithMessage("no signing secret configured")
	}
	for _, scope := range scopes {
		if !ValidScope(scope) {
			return "", errors.ErrValidationFailed.WithMessagef("unknown scope %q", scope)
		}
	}
	if ttl <= 0 {
		ttl = s.tokenDuration
	}

	now := s.now().UTC()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
		},
		Scopes: scopes,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Validate validates a token and returns its claims
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	if !s.Enabled() {
		return nil, errors.ErrTokenInvalid.WithMessage("no signing secret configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.ErrTokenInvalid.WithMessage("token has expired")
		}
		return nil, errors.ErrTokenInvalid.WithCause(err)
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid {
		return nil, errors.ErrTokenInvalid
	}

	c := &Claims{
		Subject: claims.Subject,
		Scopes:  claims.Scopes,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		c.ExpiresAt = claims.ExpiresAt.Time
	}
	return c, nil
}
