package repository

import (
	"context"
	"sems_backend/internal/model"

	"gorm.io/gorm"
)

type ResultRepository struct {
	DB *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

func (r *ResultRepository) WithTx(tx *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: tx}
}

func (r *ResultRepository) ExistsForStudent(ctx context.Context, examID, studentID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Result{}).
		Where("exam_template_id = ? AND student_id = ? AND is_guest = ?", examID, studentID, false).
		Count(&count).Error
	return count > 0, err
}

func (r *ResultRepository) Create(ctx context.Context, result *model.Result) error {
	return r.DB.WithContext(ctx).Omit("ExamTemplate", "Student").Create(result).Error
}

// FindByStudent returns a student's results, newest first, with template and subject.
func (r *ResultRepository) FindByStudent(ctx context.Context, studentID uint) ([]model.Result, error) {
	var results []model.Result
	err := r.DB.WithContext(ctx).
		Preload("ExamTemplate").
		Preload("ExamTemplate.Subject").
		Where("student_id = ? AND is_guest = ?", studentID, false).
		Order("completed_at DESC, id DESC").
		Find(&results).Error
	return results, err
}
