package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-catalog-api/internal/application"
	handlers "github.com/oksasatya/go-ddd-catalog-api/internal/interface/http"
	"github.com/oksasatya/go-ddd-catalog-api/internal/interface/middleware"
)

// AuthModule serves signup, login, logout and the protected probe.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Svc     *application.AuthService
	RDB     *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, svc *application.AuthService, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, Svc: svc, RDB: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	signupLimiter := middleware.RateLimit(m.RDB, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/signup", signupLimiter, m.Handler.Signup)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/logout", m.Handler.Logout)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Svc))
	auth.Use(middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/protected", m.Handler.Protected)
	}
}
