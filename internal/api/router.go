package api

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/drink-tracker/config"
	_ "github.com/d60-Lab/drink-tracker/docs"
	"github.com/d60-Lab/drink-tracker/internal/api/handler"
	"github.com/d60-Lab/drink-tracker/internal/api/middleware"
	"github.com/d60-Lab/drink-tracker/internal/service"
	"github.com/d60-Lab/drink-tracker/pkg/auth"
	"github.com/d60-Lab/drink-tracker/pkg/response"
)

// SetupRouter 注册中间件与路由
func SetupRouter(cfg *config.Config, h *handler.Handler, tokens *auth.TokenIssuer, users service.UserService) (*gin.Engine, error) {
	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger())
	r.Use(middleware.Recovery()...)
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)))
	}

	r.NoRoute(func(c *gin.Context) { response.NotFound(c, "Not found") })
	r.GET("/health", h.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/token", h.Token)
	}

	requireUser := middleware.Auth(tokens, users)

	usersGroup := r.Group("/users", requireUser)
	{
		usersGroup.GET("/", h.ListUsers)
		usersGroup.GET("/me", h.Me)
		usersGroup.GET("/search", h.SearchUsers)
		usersGroup.GET("/me/followers", h.ListFollowers)
		usersGroup.POST("/me/following", h.Follow)
		usersGroup.DELETE("/me/following/:username", h.Unfollow)
		usersGroup.GET("/username/:username", h.GetUserByUsername)
		usersGroup.GET("/:id", h.GetUser)
		usersGroup.POST("/:id/follow", h.FollowByID)
		usersGroup.DELETE("/:id/follow", h.UnfollowByID)

		admin := usersGroup.Group("", middleware.RequireAdmin())
		admin.PATCH("/:id", h.ModifyUser)
		admin.DELETE("/:id", h.DeleteUser)
	}

	drinking := r.Group("/drinking", requireUser)
	{
		drinking.GET("/", h.ListDrinks)
		drinking.POST("/", h.AddDrink)
		drinking.GET("/notifications", h.Notifications)
		drinking.POST("/notifications/received", h.MarkNotificationsReceived)
		drinking.GET("/notifications/unseen", h.UnseenNotifications)
	}

	return r, nil
}
