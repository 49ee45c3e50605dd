package model

import (
	"time"
)

// PlayerStatistics 玩家统计缓存 每个账号一行
// 完全由该账号的 GameSession 历史重算得出，是物化视图而不是事实来源。
type PlayerStatistics struct {
	BaseModel
	UserID             uint       `gorm:"uniqueIndex;not null" json:"userId"`
	TotalGames         int        `gorm:"default:0" json:"totalGames"`
	GamesWon           int        `gorm:"default:0" json:"gamesWon"`
	CurrentStreak      int        `gorm:"default:0" json:"currentStreak"`
	LongestStreak      int        `gorm:"default:0" json:"longestStreak"`
	AverageGuesses     *float64   `json:"averageGuesses,omitempty"`
	AverageSolveTimeMs *int64     `json:"averageSolveTimeMs,omitempty"`
	FastestSolveMs     *int64     `json:"fastestSolveMs,omitempty"`
	LastPlayedAt       *time.Time `json:"lastPlayedAt,omitempty"`
}

func (PlayerStatistics) TableName() string {
	return "player_statistics"
}
