package model

import (
	"time"
)

// Puzzle 每日谜题 答案字段永远不随响应返回
type Puzzle struct {
	UUIDBase
	Question   string     `gorm:"type:text;not null" json:"question"`
	Hints      []string   `gorm:"serializer:json" json:"hints"`
	Answer     string     `gorm:"size:255;not null" json:"-"`
	Category   string     `gorm:"size:50" json:"category"`
	Published  bool       `gorm:"default:false;index" json:"published"`
	Archived   bool       `gorm:"default:false" json:"archived"`
	PuzzleDate *time.Time `gorm:"index" json:"puzzleDate"` // 计划上线日期
}

func (Puzzle) TableName() string {
	return "puzzles"
}

// Playable 只有已发布且未归档的谜题才接受提交
func (p *Puzzle) Playable() bool {
	return p.Published && !p.Archived
}
