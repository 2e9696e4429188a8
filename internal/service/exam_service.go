package service

import (
	"context"
	"errors"
	"sems_backend/internal/model"
	"sems_backend/internal/repository"
	"sems_backend/internal/util"
	"sems_backend/pkg/logger"
	"sems_backend/pkg/monitoring"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultDurationMinutes = 30
	defaultReportMessage   = "This question was flagged for review."
)

type ExamInput struct {
	Name            string `json:"name" binding:"required,max=200" example:"Math-1"`
	DurationMinutes *int   `json:"duration_minutes" binding:"omitempty,min=1,max=600" example:"30"`
	AllowReattempt  *bool  `json:"allow_reattempt" example:"false"`
	IsActive        *bool  `json:"is_active" example:"true"`
	SubjectID       uint   `json:"subject_id" binding:"required" example:"1"`
}

type AnswerInput struct {
	AnswerText string `json:"answer_text" binding:"required"`
	IsCorrect  bool   `json:"is_correct"`
}

type QuestionInput struct {
	QuestionText string        `json:"question_text" binding:"required"`
	SortOrder    *int          `json:"sort_order"`
	Answers      []AnswerInput `json:"answers" binding:"required,dive"`
}

type ExamService struct {
	ExamRepo    *repository.ExamRepository
	SubjectRepo *repository.SubjectRepository
	StudentRepo *repository.StudentRepository
	ResultRepo  *repository.ResultRepository
	ReportRepo  *repository.QuestionReportRepository
	Reports     *ReportService
}

func NewExamService(
	examRepo *repository.ExamRepository,
	subjectRepo *repository.SubjectRepository,
	studentRepo *repository.StudentRepository,
	resultRepo *repository.ResultRepository,
	reportRepo *repository.QuestionReportRepository,
	reports *ReportService,
) *ExamService {
	return &ExamService{
		ExamRepo:    examRepo,
		SubjectRepo: subjectRepo,
		StudentRepo: studentRepo,
		ResultRepo:  resultRepo,
		ReportRepo:  reportRepo,
		Reports:     reports,
	}
}

func (s *ExamService) List(ctx context.Context, filter repository.ExamFilter) ([]ExamListItem, error) {
	exams, err := s.ExamRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]ExamListItem, 0, len(exams))
	for i := range exams {
		items = append(items, NewExamListItem(&exams[i]))
	}
	return items, nil
}

func (s *ExamService) findExam(ctx context.Context, id uint) (*model.ExamTemplate, error) {
	exam, err := s.ExamRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrExamNotFound
	}
	return exam, err
}

// Get loads the template with its questions and answer choices.
func (s *ExamService) Get(ctx context.Context, id uint) (*model.ExamTemplate, error) {
	exam, err := s.ExamRepo.FindWithQuestions(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrExamNotFound
	}
	return exam, err
}

func (s *ExamService) ensureSubject(ctx context.Context, subjectID uint) error {
	_, err := s.SubjectRepo.FindByID(ctx, subjectID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.NewValidationError("subject %d does not exist", subjectID)
	}
	return err
}

func (s *ExamService) Create(ctx context.Context, in ExamInput) (*model.ExamTemplate, error) {
	if err := s.ensureSubject(ctx, in.SubjectID); err != nil {
		return nil, err
	}
	exam := &model.ExamTemplate{
		Name:            strings.TrimSpace(in.Name),
		DurationMinutes: defaultDurationMinutes,
		IsActive:        true,
		SubjectID:       in.SubjectID,
	}
	applyExamInput(exam, in)
	if err := s.ExamRepo.Create(ctx, exam); err != nil {
		return nil, err
	}
	logger.Log.Info("Exam template created", zap.Uint("exam_id", exam.ID), zap.String("name", exam.Name))
	return s.findExam(ctx, exam.ID)
}

func (s *ExamService) Update(ctx context.Context, id uint, in ExamInput) (*model.ExamTemplate, error) {
	exam, err := s.findExam(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.SubjectID != exam.SubjectID {
		if err := s.ensureSubject(ctx, in.SubjectID); err != nil {
			return nil, err
		}
	}
	exam.Name = strings.TrimSpace(in.Name)
	exam.SubjectID = in.SubjectID
	exam.Subject = nil
	applyExamInput(exam, in)
	if err := s.ExamRepo.Update(ctx, exam); err != nil {
		return nil, err
	}
	s.Reports.Invalidate(ctx)
	return s.findExam(ctx, id)
}

func applyExamInput(exam *model.ExamTemplate, in ExamInput) {
	if in.DurationMinutes != nil {
		exam.DurationMinutes = *in.DurationMinutes
	}
	if in.AllowReattempt != nil {
		exam.AllowReattempt = *in.AllowReattempt
	}
	if in.IsActive != nil {
		exam.IsActive = *in.IsActive
	}
}

// Delete removes the template along with its questions, answers, results and question reports.
func (s *ExamService) Delete(ctx context.Context, id uint) error {
	if _, err := s.findExam(ctx, id); err != nil {
		return err
	}
	if err := s.ExamRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.Reports.Invalidate(ctx)
	logger.Log.Info("Exam template deleted", zap.Uint("exam_id", id))
	return nil
}

// CheckEligibility decides whether the student behind userID may attempt the exam.
// A caller without a student profile is let through; submission rejects it later.
func (s *ExamService) CheckEligibility(ctx context.Context, exam *model.ExamTemplate, userID uint) error {
	if exam.AllowReattempt {
		return nil
	}
	student, err := s.StudentRepo.FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	exists, err := s.ResultRepo.ExistsForStudent(ctx, exam.ID, student.ID)
	if err != nil {
		return err
	}
	if exists {
		monitoring.ReattemptDenied.Inc()
		return util.ErrReattemptNotAllowed
	}
	return nil
}

// Start opens an exam for an authenticated caller. Students go through the
// eligibility check and never see the answer key; staff get a keyed preview.
func (s *ExamService) Start(ctx context.Context, examID, userID uint, asStudent bool) (*ExamView, error) {
	exam, err := s.Get(ctx, examID)
	if err != nil {
		return nil, err
	}
	if asStudent {
		if err := s.CheckEligibility(ctx, exam, userID); err != nil {
			return nil, err
		}
	}
	view := NewExamView(exam, !asStudent)
	return &view, nil
}

// StartForGuest returns an active exam without its answer key. Guests skip eligibility.
func (s *ExamService) StartForGuest(ctx context.Context, examID uint) (*ExamView, error) {
	exam, err := s.Get(ctx, examID)
	if err != nil {
		return nil, err
	}
	if !exam.IsActive {
		return nil, util.ErrExamInactive
	}
	view := NewExamView(exam, false)
	return &view, nil
}

func (s *ExamService) ListQuestions(ctx context.Context, examID uint) ([]model.Question, error) {
	if _, err := s.findExam(ctx, examID); err != nil {
		return nil, err
	}
	return s.ExamRepo.ListQuestions(ctx, examID)
}

// validateQuestion enforces at least two choices and exactly one correct choice.
func validateQuestion(in QuestionInput) error {
	if strings.TrimSpace(in.QuestionText) == "" {
		return util.NewValidationError("question_text is required")
	}
	if len(in.Answers) < 2 {
		return util.NewValidationError("a question needs at least 2 answer choices")
	}
	correct := 0
	for _, a := range in.Answers {
		if strings.TrimSpace(a.AnswerText) == "" {
			return util.NewValidationError("answer_text must not be empty")
		}
		if a.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return util.NewValidationError("a question needs exactly one correct answer, got %d", correct)
	}
	return nil
}

func buildAnswers(in []AnswerInput) []model.AnswerChoice {
	answers := make([]model.AnswerChoice, 0, len(in))
	for i, a := range in {
		answers = append(answers, model.AnswerChoice{
			AnswerText: strings.TrimSpace(a.AnswerText),
			IsCorrect:  a.IsCorrect,
			SortOrder:  i,
		})
	}
	return answers
}

func (s *ExamService) AddQuestion(ctx context.Context, examID uint, in QuestionInput) (*model.Question, error) {
	if err := validateQuestion(in); err != nil {
		return nil, err
	}
	if _, err := s.findExam(ctx, examID); err != nil {
		return nil, err
	}
	order := 0
	if in.SortOrder != nil {
		order = *in.SortOrder
	} else {
		next, err := s.ExamRepo.NextQuestionOrder(ctx, examID)
		if err != nil {
			return nil, err
		}
		order = next
	}
	question := &model.Question{
		ExamTemplateID: examID,
		QuestionText:   strings.TrimSpace(in.QuestionText),
		SortOrder:      order,
		Answers:        buildAnswers(in.Answers),
	}
	if err := s.ExamRepo.CreateQuestion(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *ExamService) findQuestion(ctx context.Context, examID, questionID uint) (*model.Question, error) {
	question, err := s.ExamRepo.FindQuestion(ctx, examID, questionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestionNotFound
	}
	return question, err
}

// UpdateQuestion rewrites the question and replaces its answer choices atomically.
func (s *ExamService) UpdateQuestion(ctx context.Context, examID, questionID uint, in QuestionInput) (*model.Question, error) {
	if err := validateQuestion(in); err != nil {
		return nil, err
	}
	question, err := s.findQuestion(ctx, examID, questionID)
	if err != nil {
		return nil, err
	}
	question.QuestionText = strings.TrimSpace(in.QuestionText)
	if in.SortOrder != nil {
		question.SortOrder = *in.SortOrder
	}
	question.Answers = buildAnswers(in.Answers)
	if err := s.ExamRepo.ReplaceQuestion(ctx, question); err != nil {
		return nil, err
	}
	return s.findQuestion(ctx, examID, questionID)
}

func (s *ExamService) DeleteQuestion(ctx context.Context, examID, questionID uint) error {
	if _, err := s.findQuestion(ctx, examID, questionID); err != nil {
		return err
	}
	return s.ExamRepo.DeleteQuestion(ctx, questionID)
}

// ReportQuestion flags a question of the exam. The reporter's student profile is optional.
func (s *ExamService) ReportQuestion(ctx context.Context, examID, questionID, userID uint, message string) (*model.QuestionReport, error) {
	if _, err := s.findQuestion(ctx, examID, questionID); err != nil {
		return nil, err
	}
	report := &model.QuestionReport{
		ExamTemplateID: examID,
		QuestionID:     questionID,
		Message:        strings.TrimSpace(message),
		Status:         model.QuestionReportPending,
	}
	if report.Message == "" {
		report.Message = defaultReportMessage
	}
	student, err := s.StudentRepo.FindByUserID(ctx, userID)
	switch {
	case err == nil:
		report.StudentID = &student.ID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	if err := s.ReportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *ExamService) ListQuestionReports(ctx context.Context, examID uint) ([]model.QuestionReport, error) {
	if _, err := s.findExam(ctx, examID); err != nil {
		return nil, err
	}
	return s.ReportRepo.FindByExam(ctx, examID)
}
