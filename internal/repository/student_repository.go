package repository

import (
	"context"
	"sems_backend/internal/model"

	"gorm.io/gorm"
)

type StudentFilter struct {
	Search    string
	SectionID *uint
	Page      int
	Limit     int
}

type StudentRepository struct {
	DB *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

func (r *StudentRepository) WithTx(tx *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: tx}
}

func (r *StudentRepository) List(ctx context.Context, f StudentFilter) ([]model.StudentProfile, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.StudentProfile{}).
		Joins("LEFT JOIN users ON users.id = students.user_id")

	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("students.full_name LIKE ? OR students.student_number LIKE ? OR users.national_id LIKE ?", like, like, like)
	}
	if f.SectionID != nil {
		q = q.Where("students.section_id = ?", *f.SectionID)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var students []model.StudentProfile
	err := q.Preload("User").Preload("Section").
		Order("students.full_name ASC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&students).Error
	return students, total, err
}

func (r *StudentRepository) FindByID(ctx context.Context, id uint) (*model.StudentProfile, error) {
	var student model.StudentProfile
	err := r.DB.WithContext(ctx).Preload("User").Preload("Section").First(&student, id).Error
	return &student, err
}

// FindByUserID resolves the profile linked to a login identity.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID uint) (*model.StudentProfile, error) {
	var student model.StudentProfile
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&student).Error
	return &student, err
}

func (r *StudentRepository) ExistsByNumber(ctx context.Context, number string, excludeID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.StudentProfile{}).
		Where("student_number = ? AND id <> ?", number, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *StudentRepository) Create(ctx context.Context, student *model.StudentProfile) error {
	return r.DB.WithContext(ctx).Omit("User", "Section").Create(student).Error
}

func (r *StudentRepository) Update(ctx context.Context, student *model.StudentProfile) error {
	return r.DB.WithContext(ctx).Omit("User", "Section").Save(student).Error
}

// Delete removes the profile, its results and reports, and the linked login.
func (r *StudentRepository) Delete(ctx context.Context, student *model.StudentProfile) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", student.ID).Delete(&model.Result{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.QuestionReport{}).
			Where("student_id = ?", student.ID).
			Update("student_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.StudentProfile{}, student.ID).Error; err != nil {
			return err
		}
		if student.UserID != nil {
			return tx.Delete(&model.User{}, *student.UserID).Error
		}
		return nil
	})
}
