package service

import (
	"context"
	"errors"
	"sems_backend/internal/model"
	"sems_backend/internal/repository"
	"sems_backend/internal/util"
	"strings"

	"gorm.io/gorm"
)

type SectionService struct {
	Repo    *repository.SectionRepository
	Reports *ReportService
}

func NewSectionService(repo *repository.SectionRepository, reports *ReportService) *SectionService {
	return &SectionService{Repo: repo, Reports: reports}
}

func (s *SectionService) List(ctx context.Context) ([]model.Section, error) {
	return s.Repo.FindAll(ctx)
}

func (s *SectionService) Get(ctx context.Context, id uint) (*model.Section, error) {
	section, err := s.Repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSectionNotFound
	}
	return section, err
}

func (s *SectionService) checkName(ctx context.Context, name string, excludeID uint) error {
	if name == "" {
		return util.NewValidationError("name is required")
	}
	exists, err := s.Repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return util.ErrSectionExists
	}
	return nil
}

func (s *SectionService) Create(ctx context.Context, in CatalogInput) (*model.Section, error) {
	name := strings.TrimSpace(in.Name)
	if err := s.checkName(ctx, name, 0); err != nil {
		return nil, err
	}
	section := &model.Section{Name: name, Description: in.Description}
	if err := s.Repo.Create(ctx, section); err != nil {
		return nil, err
	}
	return section, nil
}

func (s *SectionService) Update(ctx context.Context, id uint, in CatalogInput) (*model.Section, error) {
	section, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if err := s.checkName(ctx, name, id); err != nil {
		return nil, err
	}
	section.Name = name
	section.Description = in.Description
	if err := s.Repo.Update(ctx, section); err != nil {
		return nil, err
	}
	s.Reports.Invalidate(ctx)
	return section, nil
}

// Delete removes the section; its students stay, unassigned.
func (s *SectionService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.Reports.Invalidate(ctx)
	return nil
}
