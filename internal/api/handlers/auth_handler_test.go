package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/api/handlers"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/auth"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/config"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/models"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/utils"
)

func authTestRouter(users *MockUserService, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewAuthHandler(users, cfg, nil)

	r := gin.New()
	r.POST("/resetpassword/:token", handler.ResetPassword)
	return r
}

func TestAuthHandler_ResetPassword_WithResetToken(t *testing.T) {
	users := new(MockUserService)
	cfg := &config.Config{JwtSecret: "handler-test-secret"}
	r := authTestRouter(users, cfg)

	userID := utils.NewSixID()
	token, err := auth.GenerateResetToken(userID, "viewer@example.com", cfg.JwtSecret, time.Hour)
	require.NoError(t, err)

	users.On("ResetPassword", mock.Anything, userID, "n3wpassword").Return(nil)

	w := postJSON(r, "/resetpassword/"+token, gin.H{"password": "n3wpassword"})

	assert.Equal(t, http.StatusOK, w.Code)
	users.AssertExpectations(t)
}

func TestAuthHandler_ResetPassword_RejectsSessionToken(t *testing.T) {
	users := new(MockUserService)
	cfg := &config.Config{JwtSecret: "handler-test-secret"}
	r := authTestRouter(users, cfg)

	userID := utils.NewSixID()
	token, err := auth.GenerateJWT(userID, "viewer@example.com", models.RoleViewer, cfg.JwtSecret, time.Hour)
	require.NoError(t, err)

	// A login token must not be able to rewrite the account password
	w := postJSON(r, "/resetpassword/"+token, gin.H{"password": "n3wpassword"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	users.AssertNotCalled(t, "ResetPassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthHandler_ResetPassword_RejectsGarbageToken(t *testing.T) {
	users := new(MockUserService)
	cfg := &config.Config{JwtSecret: "handler-test-secret"}
	r := authTestRouter(users, cfg)

	w := postJSON(r, "/resetpassword/not-a-jwt", gin.H{"password": "n3wpassword"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
