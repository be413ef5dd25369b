package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dadosgov/cnpq-api/internal/models"
	"github.com/dadosgov/cnpq-api/pkg/config"
	appErrors "github.com/dadosgov/cnpq-api/pkg/errors"
)

func newTestTokenService(opts ...func(*config.JWTConfig)) *TokenService {
	cfg := config.JWTConfig{
		Secret:     "0123456789abcdef0123456789abcdef",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
		Issuer:     "cnpq-api-test",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewTokenService(cfg)
}

func TestTokenRoundtrip(t *testing.T) {
	svc := newTestTokenService()

	raw, err := svc.IssueAccess("maria", models.RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.Validate(raw, models.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, "maria", claims.Subject)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, models.TokenAccess, claims.TokenType)
}

func TestTokenTypeMismatchRejected(t *testing.T) {
	svc := newTestTokenService()

	refresh, err := svc.IssueRefresh("maria", models.RoleReader)
	require.NoError(t, err)

	_, err = svc.Validate(refresh, models.TokenAccess)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)

	access, err := svc.IssueAccess("maria", models.RoleReader)
	require.NoError(t, err)
	_, err = svc.Validate(access, models.TokenRefresh)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := newTestTokenService(func(cfg *config.JWTConfig) {
		cfg.AccessTTL = -time.Minute
	})

	raw, err := svc.IssueAccess("maria", models.RoleReader)
	require.NoError(t, err)

	_, err = svc.Validate(raw, models.TokenAccess)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
}

func TestTamperedSignatureRejected(t *testing.T) {
	svc := newTestTokenService()

	raw, err := svc.IssueAccess("maria", models.RoleReader)
	require.NoError(t, err)

	other := newTestTokenService(func(cfg *config.JWTConfig) {
		cfg.Secret = "ffffffffffffffffffffffffffffffff"
	})
	_, err = other.Validate(raw, models.TokenAccess)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)

	_, err = svc.Validate(raw+"x", models.TokenAccess)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
}

func TestGarbageTokenRejected(t *testing.T) {
	svc := newTestTokenService()
	_, err := svc.Validate("not.a.jwt", models.TokenAccess)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
}
