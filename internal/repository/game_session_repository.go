package repository

import (
	"daily_puzzle_backend/internal/model"

	"gorm.io/gorm"
)

type GameSessionRepository struct {
	DB *gorm.DB
}

func NewGameSessionRepository(db *gorm.DB) *GameSessionRepository {
	return &GameSessionRepository{DB: db}
}

// WithTx 返回绑定到事务的仓库，使事务内的写入也走仓库方法
func (r *GameSessionRepository) WithTx(tx *gorm.DB) *GameSessionRepository {
	return &GameSessionRepository{DB: tx}
}

func (r *GameSessionRepository) Create(session *model.GameSession) error {
	return r.DB.Create(session).Error
}

// HasCompletedByUserAndPuzzle 该账号在该谜题上是否已有一次完成的对局
// 对局按 (账号, 谜题) 每次通关只记一条，提交和放弃路径都先查这里
func (r *GameSessionRepository) HasCompletedByUserAndPuzzle(userID uint, puzzleID string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.GameSession{}).
		Where("user_id = ? AND puzzle_id = ? AND completed_at IS NOT NULL", userID, puzzleID).
		Count(&count).Error
	return count > 0, err
}

// FindCompletedByUser 用户的已完成对局，按完成时间倒序（最新在前）
func (r *GameSessionRepository) FindCompletedByUser(userID uint) ([]model.GameSession, error) {
	var sessions []model.GameSession
	err := r.DB.Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Order("completed_at DESC").
		Find(&sessions).Error
	return sessions, err
}

// FindRecentByUser 用户最近的若干条已完成对局
func (r *GameSessionRepository) FindRecentByUser(userID uint, limit int) ([]model.GameSession, error) {
	var sessions []model.GameSession
	err := r.DB.Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Order("completed_at DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}
