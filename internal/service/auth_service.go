package service

import (
	"context"
	"errors"
	"fmt"
	"sems_backend/internal/config"
	"sems_backend/internal/model"
	"sems_backend/internal/repository"
	"sems_backend/internal/util"
	"sems_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	NationalID    string  `json:"national_id" binding:"required,max=50" example:"29801011234567"`
	Username      string  `json:"username" binding:"required,max=100" example:"ahmed"`
	Password      string  `json:"password" binding:"required,min=6" example:"secret123"`
	Email         *string `json:"email" binding:"omitempty,email" example:"ahmed@example.com"`
	FullName      string  `json:"full_name" example:"Ahmed Ali"`
	StudentNumber *string `json:"student_number" example:"S-1001"`
}

type UpdateProfileInput struct {
	NationalID *string `json:"national_id" binding:"omitempty,max=50"`
	Password   *string `json:"password" binding:"omitempty,min=6"`
}

type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type AuthService struct {
	DB          *gorm.DB
	UserRepo    *repository.UserRepository
	StudentRepo *repository.StudentRepository
	Cfg         *config.Config
}

func NewAuthService(db *gorm.DB, userRepo *repository.UserRepository, studentRepo *repository.StudentRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		DB:          db,
		UserRepo:    userRepo,
		StudentRepo: studentRepo,
		Cfg:         cfg,
	}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Register always creates a student account together with its profile.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	nationalID := strings.TrimSpace(in.NationalID)
	username := strings.TrimSpace(in.Username)

	taken, err := s.UserRepo.ExistsConflicting(ctx, 0, nationalID, username, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, util.ErrUserAlreadyExists
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        in.Email,
		NationalID:   nationalID,
		PasswordHash: hashed,
		Role:         model.RoleStudent,
	}
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		fullName = username
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.UserRepo.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		student := &model.StudentProfile{
			FullName:      fullName,
			StudentNumber: in.StudentNumber,
			UserID:        &user.ID,
		}
		return s.StudentRepo.WithTx(tx).Create(ctx, student)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Student registered", zap.Uint("user_id", user.ID))
	return s.issue(ctx, user.ID)
}

func (s *AuthService) Login(ctx context.Context, nationalID, password string) (*AuthResult, error) {
	user, err := s.UserRepo.FindByNationalID(ctx, strings.TrimSpace(nationalID))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}
	return s.issue(ctx, user.ID)
}

func (s *AuthService) issue(ctx context.Context, userID uint) (*AuthResult, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Me returns the user with role, student profile and section.
func (s *AuthService) Me(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

// UpdateProfile changes national id or password. Students may not edit their account.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*model.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == model.RoleStudent {
		return nil, util.ErrStudentCannotEdit
	}

	if in.NationalID != nil {
		nationalID := strings.TrimSpace(*in.NationalID)
		if nationalID == "" {
			return nil, util.NewValidationError("national_id must not be empty")
		}
		if nationalID != user.NationalID {
			taken, err := s.UserRepo.ExistsConflicting(ctx, user.ID, nationalID, "", nil)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, util.ErrUserAlreadyExists
			}
			user.NationalID = nationalID
		}
	}
	if in.Password != nil && strings.TrimSpace(*in.Password) != "" {
		hashed, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}

	if err := s.UserRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureBootstrapSupervisor creates the configured supervisor when none exists yet.
func (s *AuthService) EnsureBootstrapSupervisor(ctx context.Context) error {
	b := s.Cfg.Bootstrap
	if b.SupervisorNationalID == "" || b.SupervisorPassword == "" {
		return nil
	}
	count, err := s.UserRepo.CountByRole(ctx, model.RoleSupervisor)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := hashPassword(b.SupervisorPassword)
	if err != nil {
		return err
	}
	name := b.SupervisorName
	if name == "" {
		name = "supervisor"
	}
	user := &model.User{
		Username:     name,
		NationalID:   b.SupervisorNationalID,
		PasswordHash: hashed,
		Role:         model.RoleSupervisor,
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("create bootstrap supervisor: %w", err)
	}
	logger.Log.Info("Bootstrap supervisor created", zap.String("national_id", user.NationalID))
	return nil
}
