package main

import (
	"fmt"
	"os"

	"github.com/bytecrate/itemgraph/internal/data/db"
	"github.com/bytecrate/itemgraph/internal/data/repos/items"
	"github.com/bytecrate/itemgraph/internal/handlers"
	"github.com/bytecrate/itemgraph/internal/item"
	"github.com/bytecrate/itemgraph/internal/middleware"
	"github.com/bytecrate/itemgraph/internal/platform/envutil"
	"github.com/bytecrate/itemgraph/internal/platform/logger"
	"github.com/bytecrate/itemgraph/internal/schema"
	"github.com/bytecrate/itemgraph/internal/server"
	"github.com/bytecrate/itemgraph/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()
	if err = db.AutoMigrateAll(thePG); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}

	// Repos
	log.Info("Setting up repos...")
	itemRepo := items.NewItemRepo(thePG, log)
	linkRepo := items.NewItemLinkRepo(thePG, log)
	schemaRepo := items.NewItemSchemaRepo(thePG, log)

	// Item engine
	log.Info("Setting up item engine...")
	resolver := schema.NewResolver(schemaRepo, log)
	engine := item.NewEngine(thePG, resolver, log)

	// Services
	log.Info("Setting up services...")
	itemService := services.NewItemService(thePG, log, engine, itemRepo, linkRepo)
	schemaService := services.NewSchemaService(thePG, log, schemaRepo)

	// Handlers
	log.Info("Setting up handlers...")
	itemHandler := handlers.NewItemHandler(log, itemService)
	schemaHandler := handlers.NewSchemaHandler(log, schemaService)

	// Middleware
	tenantMiddleware := middleware.NewTenantMiddleware(log)

	// Router
	log.Info("Setting up router...")
	router := server.NewRouter(server.RouterConfig{
		ItemHandler:      itemHandler,
		SchemaHandler:    schemaHandler,
		TenantMiddleware: tenantMiddleware,
	})

	port := envutil.Str("PORT", "8080")
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
