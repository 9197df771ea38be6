package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nis2meetu/paymongo-server/internal/domain"
	"github.com/nis2meetu/paymongo-server/internal/service"
)

type fakeAdminStore struct {
	users map[string]*domain.AdminUser // by email
	codes map[string]*domain.VerificationCode
}

func (s *fakeAdminStore) ByEmail(_ context.Context, email string) (*domain.AdminUser, error) {
	if u, ok := s.users[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeAdminStore) UpdatePassword(_ context.Context, email, hash string) error {
	u, ok := s.users[email]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (s *fakeAdminStore) SaveCode(_ context.Context, c *domain.VerificationCode) error {
	cp := *c
	s.codes[c.UserID] = &cp
	return nil
}

func (s *fakeAdminStore) CodeByUser(_ context.Context, userID string) (*domain.VerificationCode, error) {
	if c, ok := s.codes[userID]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeAdminStore) DeleteCode(_ context.Context, userID string) error {
	delete(s.codes, userID)
	return nil
}

type dropMailer struct{}

func (dropMailer) Send(_ context.Context, _, _, _ string) error { return nil }

// newAdminRouter wires the real route map; only the /admin group is hit,
// so the remaining handlers stay nil.
func newAdminRouter(t *testing.T) (*gin.Engine, *fakeAdminStore) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	store := &fakeAdminStore{
		users: map[string]*domain.AdminUser{},
		codes: map[string]*domain.VerificationCode{},
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	require.NoError(t, err)
	store.users["admin@example.com"] = &domain.AdminUser{
		ID: "admin_1", Email: "admin@example.com", PasswordHash: string(hash), Role: "admin",
	}

	log := zap.NewNop()
	svc := service.NewAdmin(store, dropMailer{}, "", 10*time.Minute, time.Hour, log)
	return NewRouter(Handlers{Admin: NewAdminHandler(svc, log)}), store
}

func postJSON(r *gin.Engine, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// A locked-out admin holds no session, so the reset token from verify-code
// must be enough to reach change-password.
func TestPasswordResetFlow(t *testing.T) {
	r, store := newAdminRouter(t)

	w := postJSON(r, "/admin/forgot-password", "", `{"email":"admin@example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	code := store.codes["admin_1"].Code

	w = postJSON(r, "/admin/verify-code", "", `{"email":"admin@example.com","code":"`+code+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var verified struct {
		ResetToken string `json:"reset_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verified))
	require.NotEmpty(t, verified.ResetToken)

	w = postJSON(r, "/admin/change-password", verified.ResetToken,
		`{"email":"admin@example.com","password":"new-password"}`)
	require.Equal(t, http.StatusOK, w.Code)

	hash := store.users["admin@example.com"].PasswordHash
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("new-password")))

	w = postJSON(r, "/admin/login", "", `{"email":"admin@example.com","password":"new-password"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChangePasswordWithoutToken(t *testing.T) {
	r, store := newAdminRouter(t)

	w := postJSON(r, "/admin/change-password", "",
		`{"email":"admin@example.com","password":"new-password"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	hash := store.users["admin@example.com"].PasswordHash
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("old-password")),
		"password must be unchanged")
}

func TestResetTokenBoundToAccount(t *testing.T) {
	r, store := newAdminRouter(t)
	store.users["other@example.com"] = &domain.AdminUser{
		ID: "admin_2", Email: "other@example.com", PasswordHash: "x", Role: "admin",
	}

	w := postJSON(r, "/admin/forgot-password", "", `{"email":"admin@example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	code := store.codes["admin_1"].Code

	w = postJSON(r, "/admin/verify-code", "", `{"email":"admin@example.com","code":"`+code+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var verified struct {
		ResetToken string `json:"reset_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verified))

	w = postJSON(r, "/admin/change-password", verified.ResetToken,
		`{"email":"other@example.com","password":"hijacked"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "x", store.users["other@example.com"].PasswordHash)
}
