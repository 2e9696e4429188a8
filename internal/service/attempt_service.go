package service

import (
	"context"
	"errors"
	"sems_backend/internal/model"
	"sems_backend/internal/repository"
	"sems_backend/internal/util"
	"sems_backend/pkg/logger"
	"sems_backend/pkg/monitoring"
	"sems_backend/pkg/tracing"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SubmitRequest struct {
	Answers   []SubmittedAnswer `json:"answers" binding:"dive"`
	StartedAt *time.Time        `json:"started_at" example:"2024-05-01T08:00:00Z"`
}

type GuestSubmitRequest struct {
	SubmitRequest
	GuestName string `json:"guest_name" binding:"required,max=150" example:"Visitor"`
}

// MyResult is a flattened result row for the student's own history.
type MyResult struct {
	ID             uint      `json:"id"`
	ExamTemplateID uint      `json:"exam_template_id"`
	ExamName       string    `json:"exam_name"`
	SubjectName    string    `json:"subject_name"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     float64   `json:"percentage"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
}

type AttemptService struct {
	DB          *gorm.DB
	ExamRepo    *repository.ExamRepository
	StudentRepo *repository.StudentRepository
	ResultRepo  *repository.ResultRepository
	Reports     *ReportService
	now         func() time.Time
}

func NewAttemptService(
	db *gorm.DB,
	examRepo *repository.ExamRepository,
	studentRepo *repository.StudentRepository,
	resultRepo *repository.ResultRepository,
	reports *ReportService,
) *AttemptService {
	return &AttemptService{
		DB:          db,
		ExamRepo:    examRepo,
		StudentRepo: studentRepo,
		ResultRepo:  resultRepo,
		Reports:     reports,
		now:         time.Now,
	}
}

// score loads the exam snapshot and scores the submission against it.
func (s *AttemptService) score(ctx context.Context, examID uint, answers []SubmittedAnswer) (*model.ExamTemplate, ScoreOutcome, error) {
	ctx, span := tracing.StartSpan(ctx, "attempt.score")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	if err = ValidateSubmission(answers); err != nil {
		return nil, ScoreOutcome{}, err
	}

	exam, err := s.ExamRepo.FindWithQuestions(ctx, examID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = util.ErrExamNotFound
	}
	if err != nil {
		return nil, ScoreOutcome{}, err
	}

	outcome := ScoreAttempt(exam.Questions, answers)
	span.SetAttributes(
		attribute.Int("exam.id", int(examID)),
		attribute.Int("attempt.score", outcome.Score),
		attribute.Int("attempt.total", outcome.TotalQuestions),
	)
	return exam, outcome, nil
}

func (s *AttemptService) newResult(examID uint, outcome ScoreOutcome, startedAt *time.Time) *model.Result {
	completed := s.now()
	started := completed
	if startedAt != nil && !startedAt.IsZero() {
		started = *startedAt
	}
	return &model.Result{
		Score:          outcome.Score,
		TotalQuestions: outcome.TotalQuestions,
		Percentage:     outcome.Percentage,
		StartedAt:      started,
		CompletedAt:    completed,
		ExamTemplateID: examID,
	}
}

// SubmitStudent scores the attempt and records it for the caller's student profile.
// The reattempt rule is re-checked and the result inserted in one transaction that
// holds a row lock on the exam template, so concurrent submits cannot both pass.
func (s *AttemptService) SubmitStudent(ctx context.Context, examID, userID uint, req SubmitRequest) (*model.Result, error) {
	student, err := s.StudentRepo.FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrStudentProfileMissing
	}
	if err != nil {
		return nil, err
	}

	_, outcome, err := s.score(ctx, examID, req.Answers)
	if err != nil {
		return nil, err
	}

	result := s.newResult(examID, outcome, req.StartedAt)
	result.StudentID = &student.ID

	if err := s.record(ctx, result, true); err != nil {
		if errors.Is(err, util.ErrReattemptNotAllowed) {
			monitoring.ReattemptDenied.Inc()
		}
		return nil, err
	}

	monitoring.ExamSubmissions.WithLabelValues("student").Inc()
	s.Reports.Invalidate(ctx)
	logger.Log.Info("Exam attempt recorded",
		zap.Uint("exam_id", examID),
		zap.Uint("student_id", student.ID),
		zap.Int("score", result.Score),
		zap.Int("total", result.TotalQuestions),
	)
	return result, nil
}

// SubmitGuest scores and records a guest attempt. Guests are never blocked by earlier attempts.
func (s *AttemptService) SubmitGuest(ctx context.Context, examID uint, req GuestSubmitRequest) (*model.Result, error) {
	name := strings.TrimSpace(req.GuestName)
	if name == "" {
		return nil, util.NewValidationError("guest_name is required")
	}

	exam, outcome, err := s.score(ctx, examID, req.Answers)
	if err != nil {
		return nil, err
	}
	if !exam.IsActive {
		return nil, util.ErrExamInactive
	}

	result := s.newResult(examID, outcome, req.StartedAt)
	result.IsGuest = true
	result.GuestName = &name

	if err := s.record(ctx, result, false); err != nil {
		return nil, err
	}

	monitoring.ExamSubmissions.WithLabelValues("guest").Inc()
	logger.Log.Info("Guest attempt recorded",
		zap.Uint("exam_id", examID),
		zap.Int("score", result.Score),
		zap.Int("total", result.TotalQuestions),
	)
	return result, nil
}

func (s *AttemptService) record(ctx context.Context, result *model.Result, enforceOnce bool) (err error) {
	ctx, span := tracing.StartSpan(ctx, "attempt.record")
	defer func() { tracing.EndSpan(span, err) }()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exam, err := s.ExamRepo.WithTx(tx).LockByID(ctx, result.ExamTemplateID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrExamNotFound
		}
		if err != nil {
			return err
		}

		results := s.ResultRepo.WithTx(tx)
		if enforceOnce && !exam.AllowReattempt {
			exists, err := results.ExistsForStudent(ctx, exam.ID, *result.StudentID)
			if err != nil {
				return err
			}
			if exists {
				return util.ErrReattemptNotAllowed
			}
		}
		return results.Create(ctx, result)
	})
}

func (s *AttemptService) MyResults(ctx context.Context, userID uint) ([]MyResult, error) {
	items := []MyResult{}
	student, err := s.StudentRepo.FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return items, nil
	}
	if err != nil {
		return nil, err
	}

	results, err := s.ResultRepo.FindByStudent(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		item := MyResult{
			ID:             r.ID,
			ExamTemplateID: r.ExamTemplateID,
			Score:          r.Score,
			TotalQuestions: r.TotalQuestions,
			Percentage:     r.Percentage,
			StartedAt:      r.StartedAt,
			CompletedAt:    r.CompletedAt,
		}
		if r.ExamTemplate != nil {
			item.ExamName = r.ExamTemplate.Name
			item.SubjectName = subjectName(r.ExamTemplate)
		}
		items = append(items, item)
	}
	return items, nil
}
