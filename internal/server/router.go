package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bytecrate/itemgraph/internal/handlers"
	"github.com/bytecrate/itemgraph/internal/middleware"
)

type RouterConfig struct {
	ItemHandler      *handlers.ItemHandler
	SchemaHandler    *handlers.SchemaHandler
	TenantMiddleware *middleware.TenantMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Tenant-ID"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// ===============
	// || Tenant    ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.TenantMiddleware.RequireTenant())
	// Items
	api.POST("/items", cfg.ItemHandler.Create)
	api.GET("/items", cfg.ItemHandler.List)
	api.GET("/items/:id", cfg.ItemHandler.Get)
	api.PATCH("/items/:id", cfg.ItemHandler.Update)
	api.DELETE("/items/:id", cfg.ItemHandler.Delete)
	api.POST("/items/:id/restore", cfg.ItemHandler.Restore)
	api.GET("/items/:id/links/:relation", cfg.ItemHandler.ListLinked)
	// Schemas
	api.PUT("/schemas/:slug", cfg.SchemaHandler.Put)
	api.GET("/schemas", cfg.SchemaHandler.List)
	api.GET("/schemas/:slug", cfg.SchemaHandler.Get)
	api.DELETE("/schemas/:slug", cfg.SchemaHandler.Delete)

	return router
}
