package repository

import (
	"daily_puzzle_backend/internal/model"

	"gorm.io/gorm"
)

type PlayerStatisticsRepository struct {
	DB *gorm.DB
}

func NewPlayerStatisticsRepository(db *gorm.DB) *PlayerStatisticsRepository {
	return &PlayerStatisticsRepository{DB: db}
}

func (r *PlayerStatisticsRepository) FindByUser(userID uint) (*model.PlayerStatistics, error) {
	var stats model.PlayerStatistics
	err := r.DB.Where("user_id = ?", userID).First(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
