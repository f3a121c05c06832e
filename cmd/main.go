package main

import (
  "fmt"
  "os"
  "time"
  "github.com/assettrack/assettrack-backend/internal/logger"
  "github.com/assettrack/assettrack-backend/internal/utils"
  "github.com/assettrack/assettrack-backend/internal/db"
  "github.com/assettrack/assettrack-backend/internal/repos"
  "github.com/assettrack/assettrack-backend/internal/services"
  "github.com/assettrack/assettrack-backend/internal/handlers"
  "github.com/assettrack/assettrack-backend/internal/middleware"
  "github.com/assettrack/assettrack-backend/internal/server"
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

  // Env
  log.Info("Loading environment variables from main...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
  uploadBaseDir := utils.GetEnv("UPLOAD_FOLDER", "uploads", log)

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  userRepo := repos.NewUserRepo(thePG, log)
  userTokenRepo := repos.NewUserTokenRepo(thePG, log)
  assetRepo := repos.NewAssetRepo(thePG, log)
  serviceRepo := repos.NewServiceRepo(thePG, log)
  attachmentRepo := repos.NewServiceAttachmentRepo(thePG, log)

  // Services
  log.Info("Setting up Services from main...")
  storageService, err := services.NewStorageService(log, uploadBaseDir)
  if err != nil {
    log.Error("Could not init StorageService", "error", err)
    os.Exit(1)
  }
  authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
  assetService := services.NewAssetService(thePG, log, assetRepo, serviceRepo, attachmentRepo, storageService)

  // Handlers
  log.Info("Setting up handlers from main...")
  authHandler := handlers.NewAuthHandler(authService)
  assetHandler := handlers.NewAssetHandler(log, assetService)

  // Middleware
  log.Info("Setting up middleware from main...")
  authMiddleware := middleware.NewAuthMiddleware(log, authService)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    AuthHandler:    authHandler,
    AuthMiddleware: authMiddleware,
    AssetHandler:   assetHandler,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed", "error", err)
  }
}
