package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/neuroplay/neuroplay-backend/internal/handlers"
	"github.com/neuroplay/neuroplay-backend/internal/middleware"
	"github.com/neuroplay/neuroplay-backend/internal/utils"
)

type RouterConfig struct {
	AuthMiddleware *middleware.AuthMiddleware
	AuthHandler    *handlers.AuthHandler
	LearnerHandler *handlers.LearnerHandler
	SessionHandler *handlers.SessionHandler
	ReportHandler  *handlers.ReportHandler
	TrendHandler   *handlers.TrendHandler
	ChatHandler    *handlers.ChatHandler
	HealthHandler  *handlers.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := strings.Split(utils.GetEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173", nil), ",")
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))
	router.Use(otelgin.Middleware("neuroplay-backend"))

	// Public
	router.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	router.GET("/healthcheck/guardrails", cfg.HealthHandler.Guardrails)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)
	router.POST("/refresh", cfg.AuthHandler.Refresh)

	// Child devices authenticate with a learner code in the request
	// body, not a token. These routes never return analysis output.
	child := router.Group("/child")
	{
		child.POST("/sessions", cfg.SessionHandler.ChildStart)
		child.POST("/sessions/:session_id/events", cfg.SessionHandler.ChildAppendEvents)
		child.POST("/sessions/:session_id/complete", cfg.SessionHandler.ChildComplete)
	}

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	protected.POST("/logout", cfg.AuthHandler.Logout)

	protected.POST("/learners", cfg.LearnerHandler.Create)
	protected.GET("/learners", cfg.LearnerHandler.List)
	protected.GET("/learners/:learner_id", cfg.LearnerHandler.Get)
	protected.PATCH("/learners/:learner_id", cfg.LearnerHandler.Rename)
	protected.DELETE("/learners/:learner_id", cfg.LearnerHandler.Delete)

	protected.POST("/sessions", cfg.SessionHandler.Start)
	protected.POST("/sessions/:session_id/events", cfg.SessionHandler.AppendEvents)
	protected.POST("/sessions/:session_id/complete", cfg.SessionHandler.Complete)
	protected.GET("/sessions/:session_id", cfg.SessionHandler.Status)
	protected.GET("/sessions/:session_id/report", cfg.ReportHandler.SessionReport)

	protected.GET("/learners/:learner_id/report", cfg.ReportHandler.LearnerReport)
	protected.GET("/learners/:learner_id/reports/latest", cfg.ReportHandler.LatestReport)
	protected.POST("/reports/generate", cfg.ReportHandler.Generate)
	protected.GET("/reports/:report_id", cfg.ReportHandler.GetAIReport)

	protected.GET("/learners/:learner_id/trends", cfg.TrendHandler.List)
	protected.POST("/learners/:learner_id/trends/recompute", cfg.TrendHandler.Recompute)

	protected.POST("/chat", cfg.ChatHandler.Send)

	return router
}
