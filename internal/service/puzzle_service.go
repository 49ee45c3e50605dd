package service

import (
	"context"
	"daily_puzzle_backend/internal/model"
	"daily_puzzle_backend/internal/repository"
	"daily_puzzle_backend/internal/util"
	"daily_puzzle_backend/pkg/logger"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const puzzleOfTheDayTTL = 5 * time.Minute

// PublicPuzzle 对玩家暴露的谜题视图 永远不带答案
type PublicPuzzle struct {
	ID         string     `json:"id"`
	Question   string     `json:"question"`
	Hints      []string   `json:"hints"`
	Category   string     `json:"category"`
	PuzzleDate *time.Time `json:"puzzleDate,omitempty"`
}

type PuzzleService struct {
	PuzzleRepo *repository.PuzzleRepository
	Redis      *redis.Client
}

func NewPuzzleService(puzzleRepo *repository.PuzzleRepository, rdb *redis.Client) *PuzzleService {
	return &PuzzleService{
		PuzzleRepo: puzzleRepo,
		Redis:      rdb,
	}
}

// GetPuzzleOfTheDay 今日谜题，短TTL的Redis缓存兜底数据库
func (s *PuzzleService) GetPuzzleOfTheDay(ctx context.Context) (*PublicPuzzle, error) {
	key := puzzleOfTheDayKey(time.Now())

	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, key).Result()
		if err == nil {
			var view PublicPuzzle
			if jsonErr := json.Unmarshal([]byte(cached), &view); jsonErr == nil {
				return &view, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("puzzle cache read failed", zap.Error(err))
		}
	}

	puzzle, err := s.PuzzleRepo.FindByDate(time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNoPuzzleToday
		}
		return nil, err
	}

	view := publicView(puzzle)

	if s.Redis != nil {
		if data, jsonErr := json.Marshal(view); jsonErr == nil {
			if err := s.Redis.Set(ctx, key, data, puzzleOfTheDayTTL).Err(); err != nil {
				logger.Log.Warn("puzzle cache write failed", zap.Error(err))
			}
		}
	}

	return view, nil
}

func (s *PuzzleService) GetPuzzleByID(id string) (*model.Puzzle, error) {
	puzzle, err := s.PuzzleRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPuzzleNotFound
		}
		return nil, err
	}
	return puzzle, nil
}

func (s *PuzzleService) ListPuzzles(page, pageSize int, includeArchived bool) ([]model.Puzzle, int64, error) {
	return s.PuzzleRepo.List(page, pageSize, includeArchived)
}

func (s *PuzzleService) CreatePuzzle(puzzle *model.Puzzle) error {
	return s.PuzzleRepo.Create(puzzle)
}

func (s *PuzzleService) UpdatePuzzle(puzzle *model.Puzzle) error {
	if err := s.PuzzleRepo.Update(puzzle); err != nil {
		return err
	}
	s.invalidateToday(context.Background())
	return nil
}

// ArchivePuzzle 软删除 归档后的谜题不再接受提交
func (s *PuzzleService) ArchivePuzzle(id string) error {
	puzzle, err := s.GetPuzzleByID(id)
	if err != nil {
		return err
	}
	puzzle.Archived = true
	return s.UpdatePuzzle(puzzle)
}

func (s *PuzzleService) DeletePuzzle(id string) error {
	if _, err := s.GetPuzzleByID(id); err != nil {
		return err
	}
	if err := s.PuzzleRepo.Delete(id); err != nil {
		return err
	}
	s.invalidateToday(context.Background())
	return nil
}

// ProcessScheduledPublishes 后台任务：把计划日期已到的谜题发布出去
func (s *PuzzleService) ProcessScheduledPublishes() error {
	published, err := s.PuzzleRepo.PublishDue(time.Now())
	if err != nil {
		return err
	}
	if published > 0 {
		logger.Log.Info("scheduled puzzles published", zap.Int64("count", published))
		s.invalidateToday(context.Background())
	}
	return nil
}

func (s *PuzzleService) invalidateToday(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, puzzleOfTheDayKey(time.Now())).Err(); err != nil {
		logger.Log.Warn("puzzle cache invalidation failed", zap.Error(err))
	}
}

func puzzleOfTheDayKey(t time.Time) string {
	return fmt.Sprintf("puzzle:potd:%s", t.Format("2006-01-02"))
}

func publicView(puzzle *model.Puzzle) *PublicPuzzle {
	return &PublicPuzzle{
		ID:         puzzle.ID,
		Question:   puzzle.Question,
		Hints:      puzzle.Hints,
		Category:   puzzle.Category,
		PuzzleDate: puzzle.PuzzleDate,
	}
}
