package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-catalog-api/internal/application"
	"github.com/oksasatya/go-ddd-catalog-api/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-catalog-api/internal/domain/repository"
	"github.com/oksasatya/go-ddd-catalog-api/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-catalog-api/pkg/helpers"
	"github.com/oksasatya/go-ddd-catalog-api/pkg/response"
	"github.com/oksasatya/go-ddd-catalog-api/pkg/validation"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Audit   repo.AuditRepository // optional
	Cookies *helpers.Manager
	Logger  *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, audit repo.AuditRepository, cookies *helpers.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Audit: audit, Cookies: cookies, Logger: logger}
}

type SignupRequest struct {
	Username string `json:"username" binding:"required,username"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// audit records an auth event. Failures are logged and swallowed.
func (h *AuthHandler) audit(c *gin.Context, userID, username, action string, metadata map[string]any) {
	if h.Audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 2*time.Second)
	defer cancel()
	err := h.Audit.Insert(ctx, entity.AuditEntry{
		UserID:    userID,
		Username:  username,
		Action:    action,
		IP:        clientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
		Metadata:  metadata,
	})
	if err != nil {
		helpers.LogError(h.Logger, "audit insert failed", err, logrus.Fields{"action": action})
	}
}

// Signup POST /api/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Signup(c.Request.Context(), application.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	switch {
	case errors.Is(err, application.ErrDuplicateUser):
		h.audit(c, "", req.Username, "signup_conflict", nil)
		response.Error[any](c, http.StatusBadRequest, "User already exists", nil)
		return
	case errors.Is(err, application.ErrInvalidInput):
		response.Error[any](c, http.StatusBadRequest, "invalid payload", nil)
		return
	case err != nil:
		helpers.LogError(h.Logger, "signup failed", err, logrus.Fields{"username": req.Username})
		response.Error[any](c, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	h.audit(c, u.ID, u.Username, "signup", nil)
	response.Success(c, http.StatusOK, gin.H{"userId": u.ID}, "User registered successfully", nil)
}

// Login POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, application.ErrInvalidCredentials):
		h.audit(c, "", req.Username, "login_failed", nil)
		response.Error[any](c, http.StatusBadRequest, "Invalid credentials", nil)
		return
	case err != nil:
		helpers.LogError(h.Logger, "login failed", err, logrus.Fields{"username": req.Username})
		response.Error[any](c, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	if h.Cookies != nil {
		h.Cookies.SetAccess(c, res.Token, res.ExpiresAt)
	}
	h.audit(c, res.UserID, res.Username, "login", nil)
	response.Success(c, http.StatusOK, gin.H{
		"token":     res.Token,
		"userId":    res.UserID,
		"expiresAt": res.ExpiresAt,
	}, "Login successful", nil)
}

// Protected GET /api/protected (auth required)
func (h *AuthHandler) Protected(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	response.Success(c, http.StatusOK, gin.H{"userId": uid}, "Access granted", nil)
}

// Logout POST /api/logout. Tokens stay valid until expiry; this only drops
// the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if h.Cookies != nil {
		h.Cookies.Clear(c)
	}
	response.Success[any](c, http.StatusOK, nil, "Logged out", nil)
}
