package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/edusloth/edusloth-backend/internal/handlers"
	"github.com/edusloth/edusloth-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName          string
	AuthMiddleware       *middleware.AuthMiddleware
	HealthcheckHandler   *handlers.HealthcheckHandler
	AuthHandler          *handlers.AuthHandler
	UserHandler          *handlers.UserHandler
	ContentHandler       *handlers.ContentHandler
	TranscriptionHandler *handlers.TranscriptionHandler
	AIHandler            *handlers.AIHandler
	ReminderHandler      *handlers.ReminderHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "edusloth-backend"
	}
	router.Use(otelgin.Middleware(serviceName))
	router.Use(middleware.AttachTraceContext())

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", cfg.HealthcheckHandler.Healthcheck)

	api := router.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", cfg.AuthHandler.Register)
		auth.POST("/login", cfg.AuthHandler.Login)
	}

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	users := protected.Group("/users")
	{
		users.GET("/me", cfg.UserHandler.GetMe)
		users.PATCH("/me", cfg.UserHandler.UpdateMe)
	}

	content := protected.Group("/content")
	{
		content.POST("", cfg.ContentHandler.Create)
		content.GET("", cfg.ContentHandler.List)
		content.GET("/:id", cfg.ContentHandler.Get)
		content.DELETE("/:id", cfg.ContentHandler.Delete)

		content.POST("/:id/transcribe", cfg.TranscriptionHandler.Start)
		content.GET("/:id/transcription", cfg.TranscriptionHandler.Get)

		content.POST("/:id/generate", cfg.AIHandler.Generate)
		content.GET("/:id/generated", cfg.AIHandler.ListGenerated)
		content.GET("/:id/generated/:type", cfg.AIHandler.GetGenerated)
	}

	reminders := protected.Group("/reminders")
	{
		reminders.POST("", cfg.ReminderHandler.Create)
		reminders.GET("", cfg.ReminderHandler.List)
		reminders.GET("/upcoming", cfg.ReminderHandler.Upcoming)
		reminders.GET("/:id", cfg.ReminderHandler.Get)
		reminders.PATCH("/:id", cfg.ReminderHandler.Update)
		reminders.DELETE("/:id", cfg.ReminderHandler.Delete)
	}

	return router
}
