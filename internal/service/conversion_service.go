package service

import (
	"daily_puzzle_backend/internal/config"
	"daily_puzzle_backend/internal/model"
	"daily_puzzle_backend/internal/repository"
	"daily_puzzle_backend/pkg/logger"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	reasonWouldExceedLimit = "Would exceed authenticated user limit"
	reasonAlreadyAtLimit   = "User already at or over attempt limit for this puzzle"
)

type ConversionDetail struct {
	PuzzleID  string  `json:"puzzleId"`
	Converted int     `json:"converted"`
	Skipped   int     `json:"skipped"`
	Reason    *string `json:"reason"`
}

type ConversionResult struct {
	ConvertedCount int                `json:"convertedCount"`
	Message        string             `json:"message"`
	Details        []ConversionDetail `json:"details"`
}

// ConversionService 登录后把匿名指纹名下的尝试并入账号
// 合并不允许让账号的单谜题尝试数超过登录上限；装不下的按最旧优先保留、其余丢弃。
type ConversionService struct {
	AttemptRepo *repository.AttemptRepository
	Cfg         *config.Config
	DB          *gorm.DB
}

func NewConversionService(attemptRepo *repository.AttemptRepository, cfg *config.Config, db *gorm.DB) *ConversionService {
	return &ConversionService{
		AttemptRepo: attemptRepo,
		Cfg:         cfg,
		DB:          db,
	}
}

// ConvertAttempts 整个转换在一个事务里完成，部分转换不会留下双计或孤儿记录
// 同一指纹的第二次调用找不到匿名尝试，自然成为幂等的空操作。
func (s *ConversionService) ConvertAttempts(fingerprint string, userID uint) (*ConversionResult, error) {
	result := &ConversionResult{Details: []ConversionDetail{}}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var anonymous []model.PuzzleAttempt
		if err := tx.Where("fingerprint = ? AND user_id IS NULL", fingerprint).
			Order("created_at ASC").
			Find(&anonymous).Error; err != nil {
			return err
		}

		if len(anonymous) == 0 {
			result.Message = "No anonymous attempts found to convert"
			return nil
		}

		// 按谜题分组，保持首次出现的顺序
		var puzzleIDs []string
		byPuzzle := make(map[string][]model.PuzzleAttempt)
		for _, attempt := range anonymous {
			if _, seen := byPuzzle[attempt.PuzzleID]; !seen {
				puzzleIDs = append(puzzleIDs, attempt.PuzzleID)
			}
			byPuzzle[attempt.PuzzleID] = append(byPuzzle[attempt.PuzzleID], attempt)
		}

		maxAllowed := s.Cfg.GuessLimits.Authenticated

		for _, puzzleID := range puzzleIDs {
			group := byPuzzle[puzzleID]

			var existingCount int64
			if err := tx.Model(&model.PuzzleAttempt{}).
				Where("puzzle_id = ? AND user_id = ?", puzzleID, userID).
				Count(&existingCount).Error; err != nil {
				return err
			}

			capacity := maxAllowed - int(existingCount)
			if capacity < 0 {
				capacity = 0
			}

			toConvert := len(group)
			if toConvert > capacity {
				toConvert = capacity
			}

			if toConvert == 0 {
				reason := reasonAlreadyAtLimit
				result.Details = append(result.Details, ConversionDetail{
					PuzzleID: puzzleID,
					Skipped:  len(group),
					Reason:   &reason,
				})
				continue
			}

			// 最旧优先：group 已按创建时间升序，取前缀即可
			ids := make([]string, 0, toConvert)
			for _, attempt := range group[:toConvert] {
				ids = append(ids, attempt.ID)
			}

			if err := tx.Model(&model.PuzzleAttempt{}).
				Where("id IN ?", ids).
				Updates(map[string]interface{}{
					"user_id":     userID,
					"fingerprint": nil,
				}).Error; err != nil {
				return err
			}

			result.ConvertedCount += toConvert

			detail := ConversionDetail{
				PuzzleID:  puzzleID,
				Converted: toConvert,
				Skipped:   len(group) - toConvert,
			}
			if detail.Skipped > 0 {
				reason := reasonWouldExceedLimit
				detail.Reason = &reason
			}
			result.Details = append(result.Details, detail)
		}

		// 已转换的行 user_id 已写入，不再匹配；剩下的就是装不下的，直接清掉
		if err := tx.Where("fingerprint = ? AND user_id IS NULL", fingerprint).
			Delete(&model.PuzzleAttempt{}).Error; err != nil {
			return err
		}

		result.Message = fmt.Sprintf("Successfully converted %d attempts", result.ConvertedCount)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("anonymous attempts converted",
		zap.Uint("userId", userID),
		zap.Int("converted", result.ConvertedCount))

	return result, nil
}
