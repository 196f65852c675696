package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ddd-catalog-api/internal/interface/http"
	"github.com/oksasatya/go-ddd-catalog-api/internal/interface/middleware"
)

// CatalogModule mounts CRUD, search and image upload for one collection at
// /api/<collection>. Writes go through WriteAuth when it is set.
type CatalogModule struct {
	Handler   *handlers.DocumentHandler
	WriteAuth gin.HandlerFunc
	RDB       *redis.Client
}

func NewCatalogModule(h *handlers.DocumentHandler, writeAuth gin.HandlerFunc, rdb *redis.Client) *CatalogModule {
	return &CatalogModule{Handler: h, WriteAuth: writeAuth, RDB: rdb}
}

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/" + m.Handler.Collection)
	g.Use(middleware.RateLimit(m.RDB, 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()))

	g.GET("", m.Handler.List)
	g.GET("/search", m.Handler.Search)
	g.GET("/:id", m.Handler.Get)

	w := g.Group("")
	if m.WriteAuth != nil {
		w.Use(m.WriteAuth)
	}
	{
		w.POST("", m.Handler.Create)
		w.PUT("/:id", m.Handler.Update)
		w.DELETE("/:id", m.Handler.Delete)
		w.DELETE("", m.Handler.DeleteAll)
		w.POST("/:id/image", m.Handler.UploadImage)
	}
}
