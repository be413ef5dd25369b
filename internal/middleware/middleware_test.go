package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dadosgov/cnpq-api/internal/models"
	"github.com/dadosgov/cnpq-api/internal/service"
	"github.com/dadosgov/cnpq-api/pkg/config"
	"github.com/dadosgov/cnpq-api/pkg/password"
)

type staticUserStore struct {
	user *models.User
}

func (s *staticUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.user != nil && s.user.Username == username {
		return s.user, nil
	}
	return nil, sql.ErrNoRows
}

func (s *staticUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (s *staticUserStore) Create(ctx context.Context, user *models.User) error { return nil }

func (s *staticUserStore) List(ctx context.Context, page, size int) ([]models.User, int, error) {
	return nil, 0, nil
}

func testAuthStack(t *testing.T, role models.Role, active bool) (*service.AuthService, string) {
	t.Helper()
	tokens := service.NewTokenService(config.JWTConfig{
		Secret:     "0123456789abcdef0123456789abcdef",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
		Issuer:     "cnpq-api-test",
	})
	store := &staticUserStore{user: &models.User{
		ID:       1,
		Username: "maria",
		Role:     role,
		Active:   active,
	}}
	hasher := password.NewHasher(bcrypt.MinCost)
	svc := service.NewAuthService(store, nil, tokens, hasher, nil)

	token, err := tokens.IssueAccess("maria", role)
	require.NoError(t, err)
	return svc, token
}

func newProtectedRouter(svc *service.AuthService, gates ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{Auth(svc)}, gates...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": Principal(c).Username})
	})
	r.GET("/protected", handlers...)
	return r
}

func doRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMissingHeader(t *testing.T) {
	svc, _ := testAuthStack(t, models.RoleReader, true)
	w := doRequest(newProtectedRouter(svc), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
}

func TestAuthMalformedHeader(t *testing.T) {
	svc, token := testAuthStack(t, models.RoleReader, true)
	r := newProtectedRouter(svc)

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, token).Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "Basic "+token).Code)
}

func TestAuthValidToken(t *testing.T) {
	svc, token := testAuthStack(t, models.RoleReader, true)
	w := doRequest(newProtectedRouter(svc), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "maria")
}

func TestAuthInactiveAccountIsBadRequest(t *testing.T) {
	svc, token := testAuthStack(t, models.RoleReader, false)
	w := doRequest(newProtectedRouter(svc), "Bearer "+token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequireAdminRejectsReader(t *testing.T) {
	svc, token := testAuthStack(t, models.RoleReader, true)
	w := doRequest(newProtectedRouter(svc, RequireAdmin()), "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	svc, token := testAuthStack(t, models.RoleAdmin, true)
	w := doRequest(newProtectedRouter(svc, RequireAdmin()), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesRejectsUnknownRole(t *testing.T) {
	svc, token := testAuthStack(t, models.Role("superuser"), true)
	w := doRequest(newProtectedRouter(svc, RequireRoles(models.RoleAdmin, models.RoleReader)), "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
