package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/auth"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/config"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/models"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/services"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/tasks"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/utils"
)

// AuthHandler handles registration, login and account management.
type AuthHandler struct {
	users      services.IUserService
	cfg        *config.Config
	taskClient *tasks.Client
}

// NewAuthHandler creates a new AuthHandler. taskClient may be nil; welcome and
// reset emails are then skipped.
func NewAuthHandler(users services.IUserService, cfg *config.Config, taskClient *tasks.Client) *AuthHandler {
	return &AuthHandler{users: users, cfg: cfg, taskClient: taskClient}
}

type registerRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

func (h *AuthHandler) register(c *gin.Context, role models.Role) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "firstName, lastName, email and password are required"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.FirstName, req.LastName, req.Email, req.Password, role)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if h.taskClient != nil {
		err := h.taskClient.EnqueueEmail(c.Request.Context(), tasks.EmailTaskPayload{
			To:         user.Email,
			TemplateID: services.TemplateWelcome,
			Data: map[string]string{
				"FirstName": user.FirstName,
				"AppName":   h.cfg.AppName,
			},
		})
		if err != nil {
			log.Printf("Failed to enqueue welcome email for %s: %v", user.Email, err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Registration successful", "user": user})
}

// RegisterViewer handles POST /register.
func (h *AuthHandler) RegisterViewer(c *gin.Context) {
	h.register(c, models.RoleViewer)
}

// RegisterAdvertiser handles POST /register/advertiser.
func (h *AuthHandler) RegisterAdvertiser(c *gin.Context) {
	h.register(c, models.RoleAdvertiser)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) login(c *gin.Context, requiredRole models.Role) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if user.Role != requiredRole {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, user.Role, h.cfg.JwtSecret, h.cfg.JwtTTL)
	if err != nil {
		log.Printf("Failed to issue JWT for %s: %v", user.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// LoginViewer handles POST /login.
func (h *AuthHandler) LoginViewer(c *gin.Context) {
	h.login(c, models.RoleViewer)
}

// LoginAdvertiser handles POST /login/advertiser.
func (h *AuthHandler) LoginAdvertiser(c *gin.Context) {
	h.login(c, models.RoleAdvertiser)
}

// GetUser handles GET /user/:id. Accounts may only read themselves.
func (h *AuthHandler) GetUser(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if callerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You may only access your own account"})
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type updateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// UpdateProfile handles PUT /updateuserprofile/:id.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if callerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You may only update your own account"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), userID, req.FirstName, req.LastName, req.Email)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type updatePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// UpdatePassword handles PUT /updateuserpassword/:id.
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if callerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You may only update your own account"})
		return
	}

	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "oldPassword and newPassword are required"})
		return
	}

	if err := h.users.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// ForgotPassword handles POST /forgotpassword. The response does not reveal
// whether the address is registered.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), req.Email)
	if err == nil {
		token, tokenErr := auth.GenerateResetToken(user.ID, user.Email, h.cfg.JwtSecret, h.cfg.ResetTokenTTL)
		if tokenErr == nil && h.taskClient != nil {
			enqueueErr := h.taskClient.EnqueueEmail(c.Request.Context(), tasks.EmailTaskPayload{
				To:         user.Email,
				TemplateID: services.TemplatePasswordReset,
				Data: map[string]string{
					"FirstName": user.FirstName,
					"AppName":   h.cfg.AppName,
					"ResetURL":  h.cfg.FrontendURL + "/resetpassword/" + token,
				},
			})
			if enqueueErr != nil {
				log.Printf("Failed to enqueue reset email for %s: %v", user.Email, enqueueErr)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the address is registered, a reset link has been sent"})
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// ResetPassword handles POST /resetpassword/:token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	claims, err := auth.ValidateJWT(c.Param("token"), h.cfg.JwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired reset token"})
		return
	}
	if claims.Scope != auth.ScopePasswordReset {
		// Session tokens must not double as reset links
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired reset token"})
		return
	}
	userID, err := utils.ParseSixID(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid reset token"})
		return
	}

	if err := h.users.ResetPassword(c.Request.Context(), userID, req.Password); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}
