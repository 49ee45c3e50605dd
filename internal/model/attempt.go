package model

// PuzzleAttempt 一次答案提交
// UserID 与 Fingerprint 互斥：匿名尝试只有 Fingerprint，转换后只有 UserID。
// 记录创建后不可变，唯一的例外是转换引擎把 Fingerprint 清空并写入 UserID。
type PuzzleAttempt struct {
	UUIDBase
	PuzzleID    string  `gorm:"type:varchar(36);not null;index:idx_attempt_puzzle_user;index:idx_attempt_puzzle_fp" json:"puzzleId"`
	UserID      *uint   `gorm:"index:idx_attempt_puzzle_user" json:"userId,omitempty"`
	Fingerprint *string `gorm:"size:32;index:idx_attempt_puzzle_fp" json:"-"`
	Answer      string  `gorm:"size:255;not null" json:"answer"` // 归一化后的提交文本
	Correct     bool    `gorm:"not null" json:"correct"`
	IPAddress   string  `gorm:"size:45" json:"-"`
	UserAgent   string  `gorm:"size:255" json:"-"`
}

func (PuzzleAttempt) TableName() string {
	return "puzzle_attempts"
}
