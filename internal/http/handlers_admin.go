package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nis2meetu/paymongo-server/internal/service"
)

type AdminHandler struct {
	svc *service.Admin
	log *zap.Logger
}

func NewAdminHandler(svc *service.Admin, log *zap.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, log: log}
}

type loginBody struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AdminHandler) Login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email and password required"})
		return
	}
	token, u, err := h.svc.Login(c.Request.Context(), body.Email, body.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password"})
		return
	}
	if err != nil {
		h.log.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"user":    gin.H{"id": u.ID, "email": u.Email, "role": u.Role},
	})
}

type forgotBody struct {
	Email string `json:"email" binding:"required"`
}

func (h *AdminHandler) ForgotPassword(c *gin.Context) {
	var body forgotBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email required"})
		return
	}
	if err := h.svc.SendVerificationCode(c.Request.Context(), body.Email); err != nil {
		h.log.Error("forgot password failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to send code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Verification code sent!"})
}

type verifyBody struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

func (h *AdminHandler) VerifyCode(c *gin.Context) {
	var body verifyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Code required"})
		return
	}
	resetToken, err := h.svc.VerifyCode(c.Request.Context(), body.Email, body.Code)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Code verified", "reset_token": resetToken})
	case errors.Is(err, service.ErrCodeNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No code found"})
	case errors.Is(err, service.ErrCodeExpired):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Code expired"})
	case errors.Is(err, service.ErrCodeMismatch):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Incorrect code"})
	default:
		h.log.Error("verify code failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to verify code"})
	}
}

type changePasswordBody struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AdminHandler) ChangePassword(c *gin.Context) {
	var body changePasswordBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email and password required"})
		return
	}
	// A reset token only authorizes changing the account it was issued for.
	if c.GetString("role") == service.RolePasswordReset && !strings.EqualFold(c.GetString("email"), body.Email) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Token does not match account"})
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), body.Email, body.Password); err != nil {
		h.log.Error("change password failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password updated successfully"})
}
