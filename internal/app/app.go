package app

import (
	"context"
	"daily_puzzle_backend/internal/config"
	"daily_puzzle_backend/internal/controller"
	"daily_puzzle_backend/internal/repository"
	"daily_puzzle_backend/internal/service"
	"daily_puzzle_backend/pkg/database"
	"daily_puzzle_backend/pkg/logger"
	"daily_puzzle_backend/pkg/monitoring"
	"daily_puzzle_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	user        *repository.UserRepository
	puzzle      *repository.PuzzleRepository
	attempt     *repository.AttemptRepository
	gameSession *repository.GameSessionRepository
	playerStats *repository.PlayerStatisticsRepository
}

type services struct {
	auth       *service.AuthService
	identity   *service.IdentityService
	puzzle     *service.PuzzleService
	attempt    *service.AttemptService
	conversion *service.ConversionService
	statistics *service.StatisticsService
}

type controllers struct {
	auth       *controller.AuthController
	puzzle     *controller.PuzzleController
	statistics *controller.StatisticsController
	conversion *controller.ConversionController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		puzzle:      repository.NewPuzzleRepository(db),
		attempt:     repository.NewAttemptRepository(db),
		gameSession: repository.NewGameSessionRepository(db),
		playerStats: repository.NewPlayerStatisticsRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.identity = service.NewIdentityService(cfg)
	s.puzzle = service.NewPuzzleService(repos.puzzle, rdb)
	s.statistics = service.NewStatisticsService(repos.gameSession, repos.playerStats, db)
	s.attempt = service.NewAttemptService(repos.attempt, repos.puzzle, s.statistics, cfg)
	s.conversion = service.NewConversionService(repos.attempt, cfg, db)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		puzzle:     controller.NewPuzzleController(s.puzzle, s.attempt, s.identity),
		statistics: controller.NewStatisticsController(s.statistics),
		conversion: controller.NewConversionController(s.conversion),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) startBackgroundTasks(s *services) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		for range ticker.C {
			if err := s.puzzle.ProcessScheduledPublishes(); err != nil {
				logger.Log.Error("scheduled publish error", zap.Error(err))
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("daily-puzzle", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if err := tracing.Shutdown(ctx); err != nil {
		logger.Log.Warn("tracing shutdown failed", zap.Error(err))
	}

	log.Println("Server exiting")
}
