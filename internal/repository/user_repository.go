package repository

import (
	"context"
	"sems_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).
		Preload("Student").
		Preload("Student.Section").
		First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByNationalID(ctx context.Context, nationalID string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("national_id = ?", nationalID).First(&user).Error
	return &user, err
}

// ExistsConflicting reports whether another user already holds any of the given identifiers.
func (r *UserRepository) ExistsConflicting(ctx context.Context, excludeID uint, nationalID, username string, email *string) (bool, error) {
	q := r.DB.WithContext(ctx).Model(&model.User{}).Where("id <> ?", excludeID)
	cond := r.DB.Where("national_id = ?", nationalID)
	if username != "" {
		cond = cond.Or("username = ?", username)
	}
	if email != nil && *email != "" {
		cond = cond.Or("email = ?", *email)
	}
	var count int64
	err := q.Where(cond).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) CountByRole(ctx context.Context, role model.UserRole) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Omit("Student").Save(user).Error
}

func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&model.User{}, id).Error
}
