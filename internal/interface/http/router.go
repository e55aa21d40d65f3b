package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepnest/prepnest/internal/domain/users"
	"github.com/prepnest/prepnest/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, qnaHandler *QnAHandler, authHandler *AuthHandler, userSvc users.Service, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(logger),
		metricsMiddleware(),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, logger),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metricsHandler())

	api := router.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	// Reads are public; only authoring operations require identity.
	questions := api.Group("/qna/questions")
	authed := authMiddleware(userSvc)
	{
		questions.GET("", qnaHandler.ListQuestions)
		questions.GET("/:id", qnaHandler.GetQuestion)
		questions.GET("/:id/related", qnaHandler.RelatedQuestions)
		questions.POST("", authed, qnaHandler.CreateQuestion)
		questions.POST("/:id/answers", authed, qnaHandler.PostAnswer)
		questions.POST("/:id/answers/:answerId/accept", authed, qnaHandler.AcceptAnswer)
		questions.POST("/:id/attachments", authed, qnaHandler.AttachFile)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
