package router

import (
	"github.com/MaksymY11/mates-backend/config"
	"github.com/MaksymY11/mates-backend/internal/handler"
	"github.com/MaksymY11/mates-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authHandler    *handler.AuthHandler
	profileHandler *handler.ProfileHandler
	healthHandler  *handler.HealthHandler
	jwtMiddleware  *middleware.JWTMiddleware
	config         *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	healthHandler *handler.HealthHandler,
	jwtMiddleware *middleware.JWTMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:    authHandler,
		profileHandler: profileHandler,
		healthHandler:  healthHandler,
		jwtMiddleware:  jwtMiddleware,
		config:         cfg,
	}
}

// SetupRoutes wires all endpoints and returns the engine.
func (r *Router) SetupRoutes() *gin.Engine {
	if r.config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.RequestContext("http", r.config.App.Timeout))

	engine.GET("/health", r.healthHandler.Health)

	// Uploaded avatars are public, served straight off disk.
	engine.Static("/static/avatars", r.config.Upload.Dir)

	auth := engine.Group("/auth")
	{
		auth.POST("/register", r.authHandler.Register)
		auth.POST("/login", r.authHandler.Login)
		auth.POST("/refresh", r.authHandler.Refresh)
		auth.POST("/logout", r.authHandler.Logout)
	}

	users := engine.Group("/users")
	users.Use(r.jwtMiddleware.RequireAuth())
	{
		users.GET("/me", r.profileHandler.Me)
		users.PATCH("/me", r.profileHandler.Update)
		users.POST("/me/avatar", r.profileHandler.UploadAvatar)
	}

	return engine
}
