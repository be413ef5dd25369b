package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dadosgov/cnpq-api/internal/models"
	"github.com/dadosgov/cnpq-api/pkg/config"
	appErrors "github.com/dadosgov/cnpq-api/pkg/errors"
)

// TokenService issues and validates HS256-signed JWTs. Tokens are
// self-contained: validation needs only the signing key, never the
// database.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
}

// NewTokenService constructs a TokenService from the JWT configuration.
func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		issuer:     cfg.Issuer,
	}
}

// IssueAccess creates a short-lived access token for the user.
func (s *TokenService) IssueAccess(username string, role models.Role) (string, error) {
	return s.issue(username, role, models.TokenAccess, s.accessTTL)
}

// IssueRefresh creates a long-lived refresh token for the user.
func (s *TokenService) IssueRefresh(username string, role models.Role) (string, error) {
	return s.issue(username, role, models.TokenRefresh, s.refreshTTL)
}

func (s *TokenService) issue(username string, role models.Role, tokenType models.TokenType, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := models.Claims{
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// Validate parses and verifies a token, requiring the given type. Every
// failure collapses into ErrInvalidToken so callers leak nothing about
// which check tripped.
func (s *TokenService) Validate(raw string, expected models.TokenType) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.ErrInvalidToken
	}
	if claims.TokenType != expected {
		return nil, appErrors.ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, appErrors.ErrInvalidToken
	}
	return claims, nil
}
