package server

import (
  "github.com/gin-gonic/gin"
  "github.com/gin-contrib/cors"
  "github.com/assettrack/assettrack-backend/internal/handlers"
  "github.com/assettrack/assettrack-backend/internal/middleware"
)

type RouterConfig struct {
  AuthHandler       *handlers.AuthHandler
  AuthMiddleware    *middleware.AuthMiddleware
  AssetHandler      *handlers.AssetHandler
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
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

// ===============
// || Public    ||
// ===============
  router.GET("/healthcheck", handlers.HealthCheck)
  router.POST("/register", cfg.AuthHandler.Register)
  router.POST("/login", cfg.AuthHandler.Login)

// ===============
// || Protected ||
// ===============
  protected := router.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  // Auth
  protected.POST("/logout", cfg.AuthHandler.Logout)
  // Assets
  protected.POST("/asset_add", cfg.AssetHandler.AddAsset)
  protected.POST("/asset_edit/:id", cfg.AssetHandler.EditAsset)
  protected.GET("/asset_get/:id", cfg.AssetHandler.GetAsset)
  protected.GET("/asset_all", cfg.AssetHandler.ListAssets)
  protected.POST("/asset_delete/:id", cfg.AssetHandler.DeleteAsset)
  // Service records
  protected.POST("/service_add/:asset_id", cfg.AssetHandler.AddService)

  return router
}
