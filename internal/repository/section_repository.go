package repository

import (
	"context"
	"sems_backend/internal/model"

	"gorm.io/gorm"
)

type SectionRepository struct {
	DB *gorm.DB
}

func NewSectionRepository(db *gorm.DB) *SectionRepository {
	return &SectionRepository{DB: db}
}

func (r *SectionRepository) FindAll(ctx context.Context) ([]model.Section, error) {
	var sections []model.Section
	err := r.DB.WithContext(ctx).Order("name ASC").Find(&sections).Error
	return sections, err
}

func (r *SectionRepository) FindByID(ctx context.Context, id uint) (*model.Section, error) {
	var section model.Section
	err := r.DB.WithContext(ctx).First(&section, id).Error
	return &section, err
}

func (r *SectionRepository) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Section{}).
		Where("name = ? AND id <> ?", name, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *SectionRepository) Create(ctx context.Context, section *model.Section) error {
	return r.DB.WithContext(ctx).Create(section).Error
}

func (r *SectionRepository) Update(ctx context.Context, section *model.Section) error {
	return r.DB.WithContext(ctx).Save(section).Error
}

// Delete detaches the section's students before removing it.
func (r *SectionRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.StudentProfile{}).
			Where("section_id = ?", id).
			Update("section_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Section{}, id).Error
	})
}
