package router

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/ignatzorin/brandlink-backend/internal/config"
	"github.com/ignatzorin/brandlink-backend/internal/http/handlers"
	"github.com/ignatzorin/brandlink-backend/internal/http/middleware"
	"github.com/ignatzorin/brandlink-backend/internal/metrics"
)

func SetupRouter(
	cfg *config.Config,
	redisClient *redis.Client,
	tokens middleware.AccessTokenParser,
	m *metrics.Metrics,
	registerHandler *handlers.RegisterHandler,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	brandHandler *handlers.BrandHandler,
	channelHandler *handlers.ChannelHandler,
	connectHandler *handlers.ConnectHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	if m != nil {
		r.Use(m.Middleware())
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(redisClient, cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", registerHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	api.GET("/ws", wsHandler.Handle)

	v1 := api.Group("/v1")
	v1.Use(middleware.AuthMiddleware(tokens))
	{
		v1.GET("/user", profileHandler.Get)
		v1.PUT("/user", profileHandler.Update)
		v1.DELETE("/user", profileHandler.Delete)
		v1.GET("/user/sessions", authHandler.ListSessions)
		v1.DELETE("/user/sessions/:id", middleware.UUIDValidator("id"), authHandler.DeleteSession)

		v1.GET("/brand", brandHandler.List)
		v1.POST("/brand", brandHandler.Create)
		v1.PUT("/brand", brandHandler.Update)
		v1.DELETE("/brand", brandHandler.Delete)
		v1.PUT("/brand/select", brandHandler.Select)

		v1.GET("/channel", channelHandler.List)
		v1.PUT("/channel", channelHandler.UpdateToken)
		v1.DELETE("/channel", channelHandler.Delete)
		v1.GET("/app", channelHandler.List)

		v1.GET("/connect", connectHandler.Connect)
	}

	return r
}
