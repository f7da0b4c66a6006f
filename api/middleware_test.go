package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avolare/skybook/internal/auth"
	"github.com/avolare/skybook/internal/domain"
	"github.com/avolare/skybook/internal/service/users"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockUserUseCase is a mock implementation of users.UserUseCase
type MockUserUseCase struct {
	mock.Mock
}

func (m *MockUserUseCase) Register(ctx context.Context, input users.RegisterInput) (*users.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.AuthResult), args.Error(1)
}

func (m *MockUserUseCase) Login(ctx context.Context, input users.LoginInput) (*users.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.AuthResult), args.Error(1)
}

func (m *MockUserUseCase) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func TestRequireAuth_ValidToken(t *testing.T) {
	manager := auth.NewManager("secret", time.Hour)
	mockUsers := &MockUserUseCase{}

	token, err := manager.IssueToken("user-1", "ada@example.com", domain.RoleUser)
	assert.NoError(t, err)
	mockUsers.On("GetByID", mock.Anything, "user-1").Return(&domain.User{
		ID:   "user-1",
		Role: domain.RoleUser,
	}, nil)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", RequireAuth(manager, mockUsers), func(c *gin.Context) {
		c.JSON(http.StatusOK, CurrentUser(c))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	manager := auth.NewManager("secret", time.Hour)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", RequireAuth(manager, &MockUserUseCase{}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_BadToken(t *testing.T) {
	manager := auth.NewManager("secret", time.Hour)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", RequireAuth(manager, &MockUserUseCase{}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_UnknownUser(t *testing.T) {
	manager := auth.NewManager("secret", time.Hour)
	mockUsers := &MockUserUseCase{}

	token, _ := manager.IssueToken("ghost", "ghost@example.com", domain.RoleUser)
	mockUsers.On("GetByID", mock.Anything, "ghost").Return(nil, domain.NotFoundError{Resource: "user"})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", RequireAuth(manager, mockUsers), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/admin", func(c *gin.Context) {
		c.Set(userContextKey, &domain.User{ID: "user-1", Role: domain.RoleUser})
	}, RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/admin-ok", func(c *gin.Context) {
		c.Set(userContextKey, &domain.User{ID: "admin-1", Role: domain.RoleAdmin})
	}, RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/admin-ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
