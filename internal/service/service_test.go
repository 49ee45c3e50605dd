package service

import (
	"daily_puzzle_backend/internal/config"
	"daily_puzzle_backend/internal/model"
	"daily_puzzle_backend/internal/repository"
	"daily_puzzle_backend/pkg/logger"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// newTestDB 每个测试用独立的内存库，避免用例间串数据
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.Puzzle{},
		&model.PuzzleAttempt{},
		&model.GameSession{},
		&model.PlayerStatistics{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Fingerprint: config.FingerprintConfig{Secret: "test-fingerprint-secret"},
		GuessLimits: config.GuessLimitConfig{Anonymous: 3, Authenticated: 5},
	}
}

type testEnv struct {
	db         *gorm.DB
	cfg        *config.Config
	puzzles    *repository.PuzzleRepository
	attempts   *repository.AttemptRepository
	sessions   *repository.GameSessionRepository
	stats      *StatisticsService
	attempt    *AttemptService
	conversion *ConversionService
	identity   *IdentityService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	cfg := newTestConfig()

	puzzleRepo := repository.NewPuzzleRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	sessionRepo := repository.NewGameSessionRepository(db)
	statsRepo := repository.NewPlayerStatisticsRepository(db)

	stats := NewStatisticsService(sessionRepo, statsRepo, db)

	return &testEnv{
		db:         db,
		cfg:        cfg,
		puzzles:    puzzleRepo,
		attempts:   attemptRepo,
		sessions:   sessionRepo,
		stats:      stats,
		attempt:    NewAttemptService(attemptRepo, puzzleRepo, stats, cfg),
		conversion: NewConversionService(attemptRepo, cfg, db),
		identity:   NewIdentityService(cfg),
	}
}

func (e *testEnv) createPuzzle(t *testing.T, answer string, published, archived bool) *model.Puzzle {
	t.Helper()

	puzzle := &model.Puzzle{
		Question:  "What is the capital of France?",
		Answer:    answer,
		Hints:     []string{"It is in Europe", "Known as the city of light"},
		Category:  "geography",
		Published: published,
		Archived:  archived,
	}
	if err := e.puzzles.Create(puzzle); err != nil {
		t.Fatalf("failed to create puzzle: %v", err)
	}
	return puzzle
}

func authenticatedIdentity(userID uint) PlayerIdentity {
	return PlayerIdentity{
		UserID:        userID,
		Authenticated: true,
		IPAddress:     "203.0.113.10",
		UserAgent:     "test-agent",
	}
}

func anonymousIdentity(fingerprint string) PlayerIdentity {
	return PlayerIdentity{
		Fingerprint: fingerprint,
		IPAddress:   "203.0.113.10",
		UserAgent:   "test-agent",
	}
}
