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

type CatalogInput struct {
	Name        string  `json:"name" binding:"required,max=150" example:"Mathematics"`
	Description *string `json:"description" example:"Grade 10 mathematics"`
}

type SubjectService struct {
	Repo    *repository.SubjectRepository
	Reports *ReportService
}

func NewSubjectService(repo *repository.SubjectRepository, reports *ReportService) *SubjectService {
	return &SubjectService{Repo: repo, Reports: reports}
}

func (s *SubjectService) List(ctx context.Context) ([]model.Subject, error) {
	return s.Repo.FindAll(ctx)
}

func (s *SubjectService) Get(ctx context.Context, id uint) (*model.Subject, error) {
	subject, err := s.Repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSubjectNotFound
	}
	return subject, err
}

func (s *SubjectService) checkName(ctx context.Context, name string, excludeID uint) error {
	if name == "" {
		return util.NewValidationError("name is required")
	}
	exists, err := s.Repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return util.ErrSubjectExists
	}
	return nil
}

func (s *SubjectService) Create(ctx context.Context, in CatalogInput) (*model.Subject, error) {
	name := strings.TrimSpace(in.Name)
	if err := s.checkName(ctx, name, 0); err != nil {
		return nil, err
	}
	subject := &model.Subject{Name: name, Description: in.Description}
	if err := s.Repo.Create(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *SubjectService) Update(ctx context.Context, id uint, in CatalogInput) (*model.Subject, error) {
	subject, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if err := s.checkName(ctx, name, id); err != nil {
		return nil, err
	}
	subject.Name = name
	subject.Description = in.Description
	if err := s.Repo.Update(ctx, subject); err != nil {
		return nil, err
	}
	s.Reports.Invalidate(ctx)
	return subject, nil
}

// Delete refuses to remove a subject that still owns exam templates.
func (s *SubjectService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	deleted, err := s.Repo.DeleteIfUnused(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return util.ErrSubjectHasExams
	}
	return nil
}
