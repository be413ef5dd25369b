package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/dadosgov/cnpq-api/internal/models"
	"github.com/dadosgov/cnpq-api/internal/query"
	appErrors "github.com/dadosgov/cnpq-api/pkg/errors"
	"github.com/dadosgov/cnpq-api/pkg/password"
)

// UserStore is the credential persistence the auth service needs.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context, page, size int) ([]models.User, int, error)
}

// AuditStore records audit trail entries.
type AuditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuthService implements login, registration, token refresh and request
// principal resolution.
type AuthService struct {
	users  UserStore
	audits AuditStore
	tokens *TokenService
	hasher *password.Hasher
	logger *zap.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(users UserStore, audits AuditStore, tokens *TokenService, hasher *password.Hasher, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{users: users, audits: audits, tokens: tokens, hasher: hasher, logger: logger}
}

// Login verifies credentials and returns a fresh token pair. An unknown
// username and a wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest, clientIP string) (*models.LoginResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, appErrors.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, appErrors.ErrInactiveAccount
	}

	access, err := s.tokens.IssueAccess(user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, user.Username, models.AuditActionLogin, "auth", nil, clientIP)

	return &models.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		Role:         user.Role,
	}, nil
}

// Register creates a credential record. Username and email must both be
// unused; role defaults to reader.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest, clientIP string) (*models.User, error) {
	if err := checkInput(req); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByUsername(ctx, req.Username); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleReader
	}
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, user.Username, models.AuditActionRegister, "users", &user.Username, clientIP)

	return user, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The role
// embedded in the new pair comes from the current credential record, so a
// role change takes effect on the next refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.LoginResponse, error) {
	claims, err := s.tokens.Validate(refreshToken, models.TokenRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidToken
		}
		return nil, err
	}
	if !user.Active {
		return nil, appErrors.ErrInactiveAccount
	}

	access, err := s.tokens.IssueAccess(user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	return &models.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		Role:         user.Role,
	}, nil
}

// ResolvePrincipal validates an access token and re-reads the credential
// record, so deactivation takes effect immediately even on unexpired
// tokens.
func (s *AuthService) ResolvePrincipal(ctx context.Context, accessToken string) (*models.Principal, error) {
	claims, err := s.tokens.Validate(accessToken, models.TokenAccess)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrUnauthorized
		}
		return nil, err
	}
	if !user.Active {
		return nil, appErrors.ErrInactiveAccount
	}

	return &models.Principal{
		Username: user.Username,
		Role:     user.Role,
		Active:   user.Active,
	}, nil
}

// ListUsers returns registered users for the admin surface.
func (s *AuthService) ListUsers(ctx context.Context, page, size int) ([]models.User, query.Pagination, error) {
	effectivePage, effectiveSize := query.PageRequest{Page: page, Size: size}.Normalize(query.DefaultPageSize)
	users, total, err := s.users.List(ctx, effectivePage, effectiveSize)
	if err != nil {
		return nil, query.Pagination{}, err
	}
	return users, query.NewPagination(total, effectivePage, effectiveSize), nil
}

// recordAudit appends a trail entry, best effort. A failed write is logged
// and never fails the request that triggered it.
func (s *AuthService) recordAudit(ctx context.Context, username string, action models.AuditAction, resource string, resourceID *string, ip string) {
	if s.audits == nil {
		return
	}
	entry := &models.AuditLog{
		Username:   username,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IPAddress:  ip,
	}
	if err := s.audits.Create(ctx, entry); err != nil {
		s.logger.Warn("audit write failed",
			zap.String("action", string(action)),
			zap.String("resource", resource),
			zap.Error(err))
	}
}
