package service

import (
	"daily_puzzle_backend/internal/model"
	"daily_puzzle_backend/internal/repository"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"
)

// PlayerStats 对外返回的玩家统计
// WinRate 为百分比，TotalGames 为0时恒为0；可选指标在没有已解对局时缺省。
type PlayerStats struct {
	TotalGames         int        `json:"totalGames"`
	GamesWon           int        `json:"gamesWon"`
	WinRate            float64    `json:"winRate"`
	CurrentStreak      int        `json:"currentStreak"`
	LongestStreak      int        `json:"longestStreak"`
	AverageGuesses     *float64   `json:"averageGuesses,omitempty"`
	AverageSolveTimeMs *int64     `json:"averageSolveTimeMs,omitempty"`
	FastestSolveMs     *int64     `json:"fastestSolveMs,omitempty"`
	LastPlayedAt       *time.Time `json:"lastPlayedAt,omitempty"`
}

// StatisticsService 从 GameSession 历史全量重算玩家统计
// 不做增量维护：重算是幂等的，重试永远安全，也不会漂移。
type StatisticsService struct {
	SessionRepo *repository.GameSessionRepository
	StatsRepo   *repository.PlayerStatisticsRepository
	DB          *gorm.DB
}

func NewStatisticsService(sessionRepo *repository.GameSessionRepository, statsRepo *repository.PlayerStatisticsRepository, db *gorm.DB) *StatisticsService {
	return &StatisticsService{
		SessionRepo: sessionRepo,
		StatsRepo:   statsRepo,
		DB:          db,
	}
}

// RecordGameSession 写入对局并在同一事务内重算统计
// 崩溃时整体回滚，统计不会与对局历史出现可见的不一致。
func (s *StatisticsService) RecordGameSession(session *model.GameSession) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.SessionRepo.WithTx(tx).Create(session); err != nil {
			return err
		}
		return s.recalculate(tx, session.UserID)
	})
}

// RecalculatePlayerStats 强制重算（调试/修复用）
func (s *StatisticsService) RecalculatePlayerStats(userID uint) (*PlayerStats, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		return s.recalculate(tx, userID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetPlayerStats(userID)
}

// GetPlayerStats 没有统计行的账号返回全零结构，而不是报错
func (s *StatisticsService) GetPlayerStats(userID uint) (*PlayerStats, error) {
	stats, err := s.StatsRepo.FindByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &PlayerStats{}, nil
		}
		return nil, err
	}

	result := &PlayerStats{
		TotalGames:         stats.TotalGames,
		GamesWon:           stats.GamesWon,
		CurrentStreak:      stats.CurrentStreak,
		LongestStreak:      stats.LongestStreak,
		AverageGuesses:     stats.AverageGuesses,
		AverageSolveTimeMs: stats.AverageSolveTimeMs,
		FastestSolveMs:     stats.FastestSolveMs,
		LastPlayedAt:       stats.LastPlayedAt,
	}
	if stats.TotalGames > 0 {
		result.WinRate = float64(stats.GamesWon) / float64(stats.TotalGames) * 100
	}
	return result, nil
}

func (s *StatisticsService) GetRecentSessions(userID uint, limit int) ([]model.GameSession, error) {
	return s.SessionRepo.FindRecentByUser(userID, limit)
}

// recalculate 在给定事务里按完整历史重建统计行
func (s *StatisticsService) recalculate(tx *gorm.DB, userID uint) error {
	// 只统计已完成的对局，按完成时间倒序
	var sessions []model.GameSession
	if err := tx.Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Order("completed_at DESC").
		Find(&sessions).Error; err != nil {
		return err
	}

	totalGames := len(sessions)
	gamesWon := 0
	for _, sess := range sessions {
		if sess.Solved {
			gamesWon++
		}
	}

	currentStreak, longestStreak := calculateStreaks(sessions)
	avgGuesses, avgSolveMs, fastestMs := calculatePerformance(sessions)

	var lastPlayedAt *time.Time
	if totalGames > 0 {
		lastPlayedAt = sessions[0].CompletedAt
	}

	var existing model.PlayerStatistics
	err := tx.Where("user_id = ?", userID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&model.PlayerStatistics{
			UserID:             userID,
			TotalGames:         totalGames,
			GamesWon:           gamesWon,
			CurrentStreak:      currentStreak,
			LongestStreak:      longestStreak,
			AverageGuesses:     avgGuesses,
			AverageSolveTimeMs: avgSolveMs,
			FastestSolveMs:     fastestMs,
			LastPlayedAt:       lastPlayedAt,
		}).Error
	}
	if err != nil {
		return err
	}

	existing.TotalGames = totalGames
	existing.GamesWon = gamesWon
	existing.CurrentStreak = currentStreak
	existing.LongestStreak = longestStreak
	existing.AverageGuesses = avgGuesses
	existing.AverageSolveTimeMs = avgSolveMs
	existing.FastestSolveMs = fastestMs
	existing.LastPlayedAt = lastPlayedAt
	existing.UpdatedAt = time.Now()
	return tx.Save(&existing).Error
}

// calculateStreaks 输入按完成时间倒序的已完成对局
// 当前连胜：从最新往回数连续答对，遇到失败或放弃即停；
// 最长连胜：按时间正序扫描，答对累加、否则清零，取历史最大值。
func calculateStreaks(sessions []model.GameSession) (int, int) {
	if len(sessions) == 0 {
		return 0, 0
	}

	currentStreak := 0
	for _, sess := range sessions {
		if !sess.Solved {
			break
		}
		currentStreak++
	}

	longestStreak := 0
	tempStreak := 0
	for i := len(sessions) - 1; i >= 0; i-- {
		if sessions[i].Solved {
			tempStreak++
			if tempStreak > longestStreak {
				longestStreak = tempStreak
			}
		} else {
			tempStreak = 0
		}
	}

	return currentStreak, longestStreak
}

// calculatePerformance 仅对已解对局计算；没有已解对局时全部缺省
func calculatePerformance(sessions []model.GameSession) (*float64, *int64, *int64) {
	var solved []model.GameSession
	for _, sess := range sessions {
		if sess.Solved {
			solved = append(solved, sess)
		}
	}

	if len(solved) == 0 {
		return nil, nil, nil
	}

	totalGuesses := 0
	for _, sess := range solved {
		totalGuesses += sess.Guesses
	}
	avgGuesses := math.Round(float64(totalGuesses)/float64(len(solved))*100) / 100

	var withTime []model.GameSession
	for _, sess := range solved {
		if sess.SolveTimeMs != nil {
			withTime = append(withTime, sess)
		}
	}

	var avgSolveMs, fastestMs *int64
	if len(withTime) > 0 {
		var totalMs int64
		fastest := *withTime[0].SolveTimeMs
		for _, sess := range withTime {
			totalMs += *sess.SolveTimeMs
			if *sess.SolveTimeMs < fastest {
				fastest = *sess.SolveTimeMs
			}
		}
		avg := int64(math.Round(float64(totalMs) / float64(len(withTime))))
		avgSolveMs = &avg
		fastestMs = &fastest
	}

	return &avgGuesses, avgSolveMs, fastestMs
}
