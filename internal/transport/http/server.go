package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "autofilter-bot/internal/app"
	"autofilter-bot/internal/bootstrap"
	"autofilter-bot/internal/transport/http/handler"
	"autofilter-bot/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	authService := appsvc.NewAuthService(
		app.Config.Auth.AdminUsername,
		app.Config.Auth.AdminPasswordHash,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	authHandler := handler.NewAuthHandler(authService)
	adminHandler := handler.NewAdminHandler(app.Premium, app.FileRepo, app.UserRepo, app.ChatRepo, app.StartedAt)

	v1 := router.Group("/api/v1")
	v1.POST("/auth/login", authHandler.Login)

	admin := v1.Group("/admin")
	admin.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	admin.POST("/premium/grant", adminHandler.GrantPremium)
	admin.POST("/premium/revoke", adminHandler.RevokePremium)
	admin.GET("/premium/users", adminHandler.ListPremiumUsers)
	admin.POST("/premium/trial", adminHandler.ToggleTrial)
	admin.POST("/users/ban", adminHandler.BanUser)
	admin.POST("/users/unban", adminHandler.UnbanUser)
	admin.POST("/chats/disable", adminHandler.DisableChat)
	admin.POST("/files/delete", adminHandler.DeleteFiles)
	admin.POST("/files/move", adminHandler.MoveFiles)
	admin.GET("/files", adminHandler.ListFiles)
	admin.GET("/stats", adminHandler.Stats)

	return router
}
