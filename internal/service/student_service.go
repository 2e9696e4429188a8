package service

import (
	"context"
	"errors"
	"fmt"
	"sems_backend/internal/model"
	"sems_backend/internal/repository"
	"sems_backend/internal/util"
	"strings"

	"gorm.io/gorm"
)

const studentEmailDomain = "sems.local"

type StudentInput struct {
	FullName      string  `json:"full_name" binding:"required,max=150" example:"Sara Hassan"`
	NationalID    string  `json:"national_id" binding:"required,max=50" example:"30001011234567"`
	StudentNumber *string `json:"student_number" binding:"omitempty,max=50" example:"S-1002"`
	SectionID     *uint   `json:"section_id" example:"1"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Password      string  `json:"password" binding:"required,min=6"`
}

type StudentUpdateInput struct {
	FullName      *string `json:"full_name" binding:"omitempty,max=150"`
	NationalID    *string `json:"national_id" binding:"omitempty,max=50"`
	StudentNumber *string `json:"student_number" binding:"omitempty,max=50"`
	SectionID     *uint   `json:"section_id"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Password      *string `json:"password" binding:"omitempty,min=6"`
}

type StudentService struct {
	DB          *gorm.DB
	Repo        *repository.StudentRepository
	UserRepo    *repository.UserRepository
	SectionRepo *repository.SectionRepository
	Reports     *ReportService
}

func NewStudentService(
	db *gorm.DB,
	repo *repository.StudentRepository,
	userRepo *repository.UserRepository,
	sectionRepo *repository.SectionRepository,
	reports *ReportService,
) *StudentService {
	return &StudentService{
		DB:          db,
		Repo:        repo,
		UserRepo:    userRepo,
		SectionRepo: sectionRepo,
		Reports:     reports,
	}
}

func (s *StudentService) List(ctx context.Context, f repository.StudentFilter) ([]model.StudentProfile, int64, error) {
	f.Search = strings.TrimSpace(f.Search)
	return s.Repo.List(ctx, f)
}

func (s *StudentService) Get(ctx context.Context, id uint) (*model.StudentProfile, error) {
	student, err := s.Repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrStudentNotFound
	}
	return student, err
}

func (s *StudentService) ensureSection(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	_, err := s.SectionRepo.FindByID(ctx, *id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.NewValidationError("section %d does not exist", *id)
	}
	return err
}

// Create registers the login and the student profile together. Username and
// student number fall back to the national id.
func (s *StudentService) Create(ctx context.Context, in StudentInput) (*model.StudentProfile, error) {
	nationalID := strings.TrimSpace(in.NationalID)
	fullName := strings.TrimSpace(in.FullName)
	if nationalID == "" || fullName == "" {
		return nil, util.NewValidationError("national_id and full_name are required")
	}
	if err := s.ensureSection(ctx, in.SectionID); err != nil {
		return nil, err
	}

	number := nationalID
	if in.StudentNumber != nil && strings.TrimSpace(*in.StudentNumber) != "" {
		number = strings.TrimSpace(*in.StudentNumber)
	}
	email := in.Email
	if email == nil || *email == "" {
		generated := fmt.Sprintf("%s@%s", nationalID, studentEmailDomain)
		email = &generated
	}

	taken, err := s.UserRepo.ExistsConflicting(ctx, 0, nationalID, number, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, util.ErrUserAlreadyExists
	}
	if exists, err := s.Repo.ExistsByNumber(ctx, number, 0); err != nil {
		return nil, err
	} else if exists {
		return nil, util.NewConflictError("student number %s already exists", number)
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	student := &model.StudentProfile{
		FullName:      fullName,
		StudentNumber: &number,
		SectionID:     in.SectionID,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := &model.User{
			Username:     number,
			Email:        email,
			NationalID:   nationalID,
			PasswordHash: hashed,
			Role:         model.RoleStudent,
		}
		if err := s.UserRepo.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		student.UserID = &user.ID
		return s.Repo.WithTx(tx).Create(ctx, student)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, student.ID)
}

func (s *StudentService) Update(ctx context.Context, id uint, in StudentUpdateInput) (*model.StudentProfile, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSection(ctx, in.SectionID); err != nil {
		return nil, err
	}

	if in.StudentNumber != nil {
		number := strings.TrimSpace(*in.StudentNumber)
		if number != "" {
			exists, err := s.Repo.ExistsByNumber(ctx, number, student.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, util.NewConflictError("student number %s already exists", number)
			}
			student.StudentNumber = &number
		}
	}
	if in.FullName != nil && strings.TrimSpace(*in.FullName) != "" {
		student.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.SectionID != nil {
		student.SectionID = in.SectionID
	}

	user := student.User
	if user != nil {
		if in.NationalID != nil && strings.TrimSpace(*in.NationalID) != "" {
			nationalID := strings.TrimSpace(*in.NationalID)
			taken, err := s.UserRepo.ExistsConflicting(ctx, user.ID, nationalID, "", in.Email)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, util.ErrUserAlreadyExists
			}
			user.NationalID = nationalID
		}
		if in.Email != nil && *in.Email != "" {
			user.Email = in.Email
		}
		if in.Password != nil && strings.TrimSpace(*in.Password) != "" {
			hashed, err := hashPassword(*in.Password)
			if err != nil {
				return nil, err
			}
			user.PasswordHash = hashed
		}
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if user != nil {
			if err := s.UserRepo.WithTx(tx).Update(ctx, user); err != nil {
				return err
			}
		}
		return s.Repo.WithTx(tx).Update(ctx, student)
	})
	if err != nil {
		return nil, err
	}
	if in.SectionID != nil {
		s.Reports.Invalidate(ctx)
	}
	return s.Get(ctx, id)
}

// Delete removes the profile, its results and its login.
func (s *StudentService) Delete(ctx context.Context, id uint) error {
	student, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, student); err != nil {
		return err
	}
	s.Reports.Invalidate(ctx)
	return nil
}
