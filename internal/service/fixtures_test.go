package service

import (
	"context"
	"sems_backend/internal/config"
	"sems_backend/internal/model"
	"sems_backend/internal/repository"
	"sems_backend/pkg/database"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	auth     *AuthService
	subjects *SubjectService
	sections *SectionService
	students *StudentService
	exams    *ExamService
	attempts *AttemptService
	reports  *ReportService
	imports  *ImportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.InitDB(&config.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:", LogLevel: "silent"})
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	userRepo := repository.NewUserRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	examRepo := repository.NewExamRepository(db)
	resultRepo := repository.NewResultRepository(db)

	cfg := &config.Config{
		JWT:     config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
		Storage: config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
	}

	env := &testEnv{db: db}
	env.auth = NewAuthService(db, userRepo, studentRepo, cfg)
	env.reports = NewReportService(repository.NewReportRepository(db), nil, 0)
	env.subjects = NewSubjectService(subjectRepo, env.reports)
	env.sections = NewSectionService(sectionRepo, env.reports)
	env.students = NewStudentService(db, studentRepo, userRepo, sectionRepo, env.reports)
	env.exams = NewExamService(examRepo, subjectRepo, studentRepo, resultRepo, repository.NewQuestionReportRepository(db), env.reports)
	env.attempts = NewAttemptService(db, examRepo, studentRepo, resultRepo, env.reports)
	env.imports = NewImportService(db, examRepo, repository.NewImportLogRepository(db), env.students, NewStorageService(cfg))
	return env
}

// withRedis backs the shared report service with an in-process redis server.
func (e *testEnv) withRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	e.reports.Redis = rdb
	return mr
}

func boolPtr(b bool) *bool { return &b }

func (e *testEnv) subject(t *testing.T, name string) *model.Subject {
	t.Helper()
	s, err := e.subjects.Create(context.Background(), CatalogInput{Name: name})
	if err != nil {
		t.Fatalf("create subject %s: %v", name, err)
	}
	return s
}

func (e *testEnv) section(t *testing.T, name string) *model.Section {
	t.Helper()
	s, err := e.sections.Create(context.Background(), CatalogInput{Name: name})
	if err != nil {
		t.Fatalf("create section %s: %v", name, err)
	}
	return s
}

func (e *testEnv) student(t *testing.T, nationalID string, sectionID *uint) *model.StudentProfile {
	t.Helper()
	s, err := e.students.Create(context.Background(), StudentInput{
		FullName:   "Student " + nationalID,
		NationalID: nationalID,
		SectionID:  sectionID,
		Password:   "secret123",
	})
	if err != nil {
		t.Fatalf("create student %s: %v", nationalID, err)
	}
	return s
}

// mathExam creates a two-question exam, each question with four choices and the
// second choice correct.
func (e *testEnv) mathExam(t *testing.T, subjectID uint, allowReattempt bool) *model.ExamTemplate {
	t.Helper()
	ctx := context.Background()
	exam, err := e.exams.Create(ctx, ExamInput{Name: "Math-1", SubjectID: subjectID, AllowReattempt: boolPtr(allowReattempt)})
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}
	for _, text := range []string{"1 + 1 = ?", "2 * 3 = ?"} {
		_, err := e.exams.AddQuestion(ctx, exam.ID, QuestionInput{
			QuestionText: text,
			Answers: []AnswerInput{
				{AnswerText: "w1"},
				{AnswerText: "right", IsCorrect: true},
				{AnswerText: "w2"},
				{AnswerText: "w3"},
			},
		})
		if err != nil {
			t.Fatalf("add question: %v", err)
		}
	}
	full, err := e.exams.Get(ctx, exam.ID)
	if err != nil {
		t.Fatalf("get exam: %v", err)
	}
	return full
}

// answersFor picks the correct choice for the first `right` questions and a wrong one for the rest.
func answersFor(exam *model.ExamTemplate, right int) []SubmittedAnswer {
	answers := make([]SubmittedAnswer, 0, len(exam.Questions))
	for i, q := range exam.Questions {
		for _, a := range q.Answers {
			if a.IsCorrect == (i < right) {
				answers = append(answers, SubmittedAnswer{QuestionID: q.ID, AnswerID: a.ID})
				break
			}
		}
	}
	return answers
}

func bootstrapFor(nationalID, password string) config.BootstrapConfig {
	return config.BootstrapConfig{SupervisorNationalID: nationalID, SupervisorPassword: password, SupervisorName: "head"}
}
