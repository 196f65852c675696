package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-catalog-api/internal/container"
	handlers "github.com/oksasatya/go-ddd-catalog-api/internal/interface/http"
	"github.com/oksasatya/go-ddd-catalog-api/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-catalog-api/internal/router/modules"
	"github.com/oksasatya/go-ddd-catalog-api/pkg/validation"
)

// Collections served by the catalog API.
var Collections = []string{"products", "offers"}

// InitModules builds the handlers from c and adds every module to r. Call
// once at startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	validation.Init()

	authHandler := handlers.NewAuthHandler(c.AuthService, c.Audit, c.Cookies, c.Logger)
	r.Add(modules.NewAuthModule(authHandler, c.AuthService, c.Redis))

	var writeAuth gin.HandlerFunc
	if c.Config.CatalogWriteAuth {
		writeAuth = middleware.Auth(c.AuthService)
	}
	for _, coll := range Collections {
		h := handlers.NewDocumentHandler(c.DocumentService, coll, c.Logger)
		r.Add(modules.NewCatalogModule(h, writeAuth, c.Redis))
	}

	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}

	r.Engine.GET("/healthz", health(c))
}

func health(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if c.Pool != nil {
			pctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
			defer cancel()
			if err := c.Pool.Ping(pctx); err != nil {
				ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
