package model

import (
	"time"
)

// GameSession 登录用户对某个谜题的一次完整对局
// 只在对局结束（答对、用尽次数或放弃）时创建一条，而不是每次提交都建。
// 完成判定：Solved || GaveUp || Guesses >= 登录用户上限。
type GameSession struct {
	UUIDBase
	UserID      uint       `gorm:"not null;index" json:"userId"`
	PuzzleID    string     `gorm:"type:varchar(36);not null;index" json:"puzzleId"`
	StartedAt   time.Time  `gorm:"not null" json:"startedAt"` // 第一次提交的时间
	CompletedAt *time.Time `gorm:"index" json:"completedAt,omitempty"`
	Guesses     int        `gorm:"not null" json:"guesses"`
	Solved      bool       `gorm:"not null" json:"solved"`
	GaveUp      bool       `gorm:"not null" json:"gaveUp"`
	HintsUsed   int        `gorm:"default:0" json:"hintsUsed"`
	SolveTimeMs *int64     `json:"solveTimeMs,omitempty"` // 仅在答对时记录
}

func (GameSession) TableName() string {
	return "game_sessions"
}
