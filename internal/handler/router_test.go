package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
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

type memoryUserStore struct {
	users map[string]*models.User
}

func (m *memoryUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryUserStore) Create(_ context.Context, user *models.User) error {
	user.ID = int64(len(m.users) + 1)
	user.CreatedAt = time.Now()
	m.users[user.Username] = user
	return nil
}

func (m *memoryUserStore) List(_ context.Context, _, _ int) ([]models.User, int, error) {
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func newAuthRouter(t *testing.T) (*gin.Engine, *memoryUserStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &memoryUserStore{users: map[string]*models.User{}}
	tokens := service.NewTokenService(config.JWTConfig{
		Secret:     "0123456789abcdef0123456789abcdef",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
		Issuer:     "cnpq-api-test",
	})
	authService := service.NewAuthService(store, nil, tokens, password.NewHasher(bcrypt.MinCost), nil)

	r := gin.New()
	RegisterRoutes(r, "/api/v1", Handlers{
		Auth:        NewAuthHandler(authService),
		AuthService: authService,
	})
	return r, store
}

// Registration takes no token: it is the only way to create the first
// account on an empty database.
func TestRegisterIsPublic(t *testing.T) {
	r, store := newAuthRouter(t)

	body := `{"username":"maria","email":"maria@example.org","password":"senha123","role":"admin"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	created, ok := store.users["maria"]
	require.True(t, ok)
	assert.Equal(t, models.RoleAdmin, created.Role)
}

func TestRegisterDuplicateUsernameConflicts(t *testing.T) {
	r, _ := newAuthRouter(t)

	body := `{"username":"maria","email":"maria@example.org","password":"senha123"}`
	first := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	first.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, first)
	require.Equal(t, http.StatusCreated, rec.Code)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	second.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, second)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListUsersStaysGated(t *testing.T) {
	r, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/users", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}
