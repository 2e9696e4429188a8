package repository

import (
	"context"
	"sems_backend/internal/model"

	"gorm.io/gorm"
)

type ImportLogRepository struct {
	DB *gorm.DB
}

func NewImportLogRepository(db *gorm.DB) *ImportLogRepository {
	return &ImportLogRepository{DB: db}
}

func (r *ImportLogRepository) Create(ctx context.Context, log *model.ImportLog) error {
	return r.DB.WithContext(ctx).Create(log).Error
}

func (r *ImportLogRepository) FindByExam(ctx context.Context, examID uint) ([]model.ImportLog, error) {
	var logs []model.ImportLog
	err := r.DB.WithContext(ctx).
		Where("exam_template_id = ?", examID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
