package repository

import (
	"daily_puzzle_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type PuzzleRepository struct {
	DB *gorm.DB
}

func NewPuzzleRepository(db *gorm.DB) *PuzzleRepository {
	return &PuzzleRepository{DB: db}
}

func (r *PuzzleRepository) Create(puzzle *model.Puzzle) error {
	return r.DB.Create(puzzle).Error
}

func (r *PuzzleRepository) FindByID(id string) (*model.Puzzle, error) {
	var puzzle model.Puzzle
	err := r.DB.Where("id = ?", id).First(&puzzle).Error
	if err != nil {
		return nil, err
	}
	return &puzzle, nil
}

// FindByDate 查找指定日期上线的已发布谜题
func (r *PuzzleRepository) FindByDate(date time.Time) (*model.Puzzle, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	var puzzle model.Puzzle
	err := r.DB.Where("published = ? AND archived = ? AND puzzle_date >= ? AND puzzle_date < ?",
		true, false, startOfDay, endOfDay).
		Order("puzzle_date ASC").
		First(&puzzle).Error
	if err != nil {
		return nil, err
	}
	return &puzzle, nil
}

func (r *PuzzleRepository) List(page, pageSize int, includeArchived bool) ([]model.Puzzle, int64, error) {
	var puzzles []model.Puzzle
	var total int64

	query := r.DB.Model(&model.Puzzle{})
	if !includeArchived {
		query = query.Where("archived = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&puzzles).Error
	return puzzles, total, err
}

func (r *PuzzleRepository) Update(puzzle *model.Puzzle) error {
	return r.DB.Save(puzzle).Error
}

func (r *PuzzleRepository) Delete(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.Puzzle{}).Error
}

// PublishDue 把计划日期已到的谜题置为已发布，返回发布数量
func (r *PuzzleRepository) PublishDue(now time.Time) (int64, error) {
	res := r.DB.Model(&model.Puzzle{}).
		Where("published = ? AND archived = ? AND puzzle_date IS NOT NULL AND puzzle_date <= ?", false, false, now).
		Update("published", true)
	return res.RowsAffected, res.Error
}
