package main

import (
	"gitcms/pkg/config"
	"gitcms/pkg/handlers"
	"gitcms/pkg/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Initialize config
	config.Init()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	collections, err := config.LoadCollections(config.CollectionsFile)
	if err != nil {
		logger.Fatal("load collections registry", zap.Error(err))
	}

	manager := services.NewSessionManager()
	syncer := services.NewSyncer(collections, config.ConfigDocumentPath, config.ImageDir, logger)
	api := handlers.NewAPI(manager, syncer, logger)

	r := gin.Default()

	// Session Setup
	store := cookie.NewStore([]byte(config.SessionSecret))
	r.Use(sessions.Sessions("gitcms_session", store))

	// --- Auth Routes ---
	r.POST("/login", api.Login)
	r.GET("/login/github", api.GithubLogin)
	r.GET("/auth/callback", api.AuthCallback)
	r.POST("/logout", api.Logout)

	// --- Main App (Authorized) ---
	authorized := r.Group("/api")
	authorized.Use(api.AuthRequired)
	{
		authorized.GET("/collections", api.ListCollections)
		authorized.GET("/collections/:kind", api.GetCollection)
		authorized.POST("/collections/:kind", api.SaveRecord)
		authorized.DELETE("/collections/:kind/:id", api.DeleteRecord)

		authorized.GET("/settings", api.GetSettings)
		authorized.PUT("/settings", api.SaveSettings)

		authorized.GET("/images", api.ListImages)
		authorized.POST("/images", api.UploadImage)
		authorized.DELETE("/images", api.DeleteImage)

		authorized.POST("/reload", api.Reload)
		authorized.GET("/status", api.Status)
	}

	r.Run(config.ListenAddr)
}
