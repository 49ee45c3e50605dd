package app

import (
	"daily_puzzle_backend/internal/config"
	"daily_puzzle_backend/internal/middleware"
	"daily_puzzle_backend/internal/model"
	"daily_puzzle_backend/pkg/monitoring"
	"daily_puzzle_backend/pkg/security"
	"daily_puzzle_backend/pkg/tracing"
	"time"

	"github.com/gin-gonic/gin"
)

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 300
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/health", c.health.HealthCheck)
	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")

	// 1. 公共路由(无需登录)
	auth := api.Group("/auth")
	{
		auth.POST("/register", c.auth.Register)
		auth.POST("/login", c.auth.Login)
	}

	// 2. 谜题游玩：可选认证，登录与匿名都可参与
	play := api.Group("/")
	play.Use(middleware.TryAuthMiddleware(cfg))
	{
		submitMax := cfg.RateLimit.SubmitMaxRequests
		if submitMax <= 0 {
			submitMax = 10
		}

		play.GET("/puzzle-of-the-day", c.puzzle.GetPuzzleOfTheDay)
		play.GET("/puzzles/:id/attempts", c.puzzle.GetAttemptStatus)
		// 提交接口单独一档更严的限流，防刷答案
		play.POST("/puzzles/:id/submit",
			security.SubmissionRateLimiter(submitMax, time.Minute),
			c.puzzle.SubmitAnswer)
	}

	// 3. 需要授权的路由
	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware(cfg))
	{
		authorized.GET("/me", c.auth.GetCurrentUser)
		authorized.POST("/puzzles/:id/give-up", c.puzzle.GiveUp)
		authorized.POST("/convert-attempts", c.conversion.ConvertAttempts)

		stats := authorized.Group("/stats")
		{
			stats.GET("/player", c.statistics.GetPlayerStats)
			stats.POST("/recalculate", c.statistics.Recalculate)
			stats.GET("/sessions", c.statistics.GetRecentSessions)
		}
	}

	// 4. 管理员相关接口
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/puzzles", c.puzzle.ListPuzzles)
		admin.GET("/puzzles/:id", c.puzzle.GetPuzzle)
		admin.POST("/puzzles", c.puzzle.CreatePuzzle)
		admin.PUT("/puzzles/:id", c.puzzle.UpdatePuzzle)
		admin.POST("/puzzles/:id/archive", c.puzzle.ArchivePuzzle)
		admin.DELETE("/puzzles/:id", c.puzzle.DeletePuzzle)
	}
}
