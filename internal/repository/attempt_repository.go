package repository

import (
	"daily_puzzle_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.PuzzleAttempt) error {
	return r.DB.Create(attempt).Error
}

// CountByPuzzleAndUser 登录用户在某谜题上的已有尝试数
func (r *AttemptRepository) CountByPuzzleAndUser(puzzleID string, userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.PuzzleAttempt{}).
		Where("puzzle_id = ? AND user_id = ?", puzzleID, userID).
		Count(&count).Error
	return count, err
}

// CountByPuzzleAndFingerprint 匿名指纹在某谜题上的已有尝试数
func (r *AttemptRepository) CountByPuzzleAndFingerprint(puzzleID, fingerprint string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.PuzzleAttempt{}).
		Where("puzzle_id = ? AND fingerprint = ? AND user_id IS NULL", puzzleID, fingerprint).
		Count(&count).Error
	return count, err
}

// FindByPuzzleAndUser 按创建时间升序返回登录用户在某谜题上的全部尝试
func (r *AttemptRepository) FindByPuzzleAndUser(puzzleID string, userID uint) ([]model.PuzzleAttempt, error) {
	var attempts []model.PuzzleAttempt
	err := r.DB.Where("puzzle_id = ? AND user_id = ?", puzzleID, userID).
		Order("created_at ASC").
		Find(&attempts).Error
	return attempts, err
}

// HasCorrectByUser 用户是否已在某谜题上答对过
func (r *AttemptRepository) HasCorrectByUser(puzzleID string, userID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.PuzzleAttempt{}).
		Where("puzzle_id = ? AND user_id = ? AND correct = ?", puzzleID, userID, true).
		Count(&count).Error
	return count > 0, err
}

// FindAnonymousByFingerprint 指纹名下尚未归属任何账号的尝试
func (r *AttemptRepository) FindAnonymousByFingerprint(fingerprint string) ([]model.PuzzleAttempt, error) {
	var attempts []model.PuzzleAttempt
	err := r.DB.Where("fingerprint = ? AND user_id IS NULL", fingerprint).
		Order("created_at ASC").
		Find(&attempts).Error
	return attempts, err
}
