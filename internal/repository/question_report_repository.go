package repository

import (
	"context"
	"sems_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionReportRepository struct {
	DB *gorm.DB
}

func NewQuestionReportRepository(db *gorm.DB) *QuestionReportRepository {
	return &QuestionReportRepository{DB: db}
}

func (r *QuestionReportRepository) Create(ctx context.Context, report *model.QuestionReport) error {
	return r.DB.WithContext(ctx).Omit("Question", "Student").Create(report).Error
}

func (r *QuestionReportRepository) FindByExam(ctx context.Context, examID uint) ([]model.QuestionReport, error) {
	var reports []model.QuestionReport
	err := r.DB.WithContext(ctx).
		Preload("Question").
		Preload("Student").
		Where("exam_template_id = ?", examID).
		Order("created_at DESC, id DESC").
		Find(&reports).Error
	return reports, err
}
