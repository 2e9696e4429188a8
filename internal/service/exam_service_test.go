package service

import (
	"context"
	"errors"
	"sems_backend/internal/model"
	"sems_backend/internal/repository"
	"sems_backend/internal/util"
	"testing"
)

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name    string
		in      QuestionInput
		wantErr bool
	}{
		{
			name: "valid",
			in: QuestionInput{QuestionText: "q", Answers: []AnswerInput{
				{AnswerText: "a", IsCorrect: true}, {AnswerText: "b"},
			}},
		},
		{
			name:    "single choice",
			in:      QuestionInput{QuestionText: "q", Answers: []AnswerInput{{AnswerText: "a", IsCorrect: true}}},
			wantErr: true,
		},
		{
			name: "no correct choice",
			in: QuestionInput{QuestionText: "q", Answers: []AnswerInput{
				{AnswerText: "a"}, {AnswerText: "b"},
			}},
			wantErr: true,
		},
		{
			name: "two correct choices",
			in: QuestionInput{QuestionText: "q", Answers: []AnswerInput{
				{AnswerText: "a", IsCorrect: true}, {AnswerText: "b", IsCorrect: true},
			}},
			wantErr: true,
		},
		{
			name: "blank text",
			in: QuestionInput{QuestionText: "  ", Answers: []AnswerInput{
				{AnswerText: "a", IsCorrect: true}, {AnswerText: "b"},
			}},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateQuestion(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("validateQuestion() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestCreateExamDefaultsAndMissingSubject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.exams.Create(ctx, ExamInput{Name: "Orphan", SubjectID: 77}); util.KindOf(err) != util.KindValidation {
		t.Fatalf("missing subject err = %v, want validation error", err)
	}

	subject := env.subject(t, "Mathematics")
	exam, err := env.exams.Create(ctx, ExamInput{Name: " Algebra ", SubjectID: subject.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if exam.Name != "Algebra" || exam.DurationMinutes != 30 || !exam.IsActive || exam.AllowReattempt {
		t.Errorf("defaults not applied: %+v", exam)
	}
	if exam.Subject == nil || exam.Subject.Name != "Mathematics" {
		t.Errorf("subject not loaded: %+v", exam.Subject)
	}
}

func TestListExamsFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	math := env.subject(t, "Mathematics")
	art := env.subject(t, "Art")

	first := env.mathExam(t, math.ID, false)
	second := env.mathExam(t, art.ID, false)
	if _, err := env.exams.Update(ctx, second.ID, ExamInput{Name: "Art-1", SubjectID: art.ID, IsActive: boolPtr(false)}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	all, err := env.exams.List(ctx, repository.ExamFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].ID != second.ID {
		t.Fatalf("list = %+v, want newest first", all)
	}

	active, err := env.exams.List(ctx, repository.ExamFilter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("List active: %v", err)
	}
	if len(active) != 1 || active[0].ID != first.ID || active[0].SubjectName != "Mathematics" {
		t.Errorf("active list = %+v", active)
	}

	bySubject, err := env.exams.List(ctx, repository.ExamFilter{SubjectID: &art.ID})
	if err != nil {
		t.Fatalf("List by subject: %v", err)
	}
	if len(bySubject) != 1 || bySubject[0].ID != second.ID {
		t.Errorf("subject list = %+v", bySubject)
	}
}

func TestStartHidesAnswerKey(t *testing.T) {
	env := newTestEnv(t)
	exam := env.mathExam(t, env.subject(t, "Mathematics").ID, false)
	student := env.student(t, "3001", nil)

	view, err := env.exams.Start(context.Background(), exam.ID, *student.UserID, true)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(view.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(view.Questions))
	}
	for _, q := range view.Questions {
		for _, a := range q.Answers {
			if a.IsCorrect != nil {
				t.Fatalf("answer key leaked on question %d", q.ID)
			}
		}
	}

	if _, err := env.attempts.SubmitStudent(context.Background(), exam.ID, *student.UserID, SubmitRequest{Answers: answersFor(exam, 2)}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	preview, err := env.exams.Start(context.Background(), exam.ID, *student.UserID, false)
	if err != nil {
		t.Fatalf("staff Start after attempt: %v", err)
	}
	if preview.Questions[0].Answers[1].IsCorrect == nil {
		t.Errorf("staff preview is missing the answer key")
	}

	keyed := NewExamView(exam, true)
	if keyed.Questions[0].Answers[1].IsCorrect == nil || !*keyed.Questions[0].Answers[1].IsCorrect {
		t.Errorf("keyed view lost the correct flag")
	}
}

func TestUpdateQuestionReplacesAnswers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	exam := env.mathExam(t, env.subject(t, "Mathematics").ID, false)
	q := exam.Questions[0]

	updated, err := env.exams.UpdateQuestion(ctx, exam.ID, q.ID, QuestionInput{
		QuestionText: "1 + 2 = ?",
		Answers:      []AnswerInput{{AnswerText: "3", IsCorrect: true}, {AnswerText: "4"}},
	})
	if err != nil {
		t.Fatalf("UpdateQuestion: %v", err)
	}
	if updated.QuestionText != "1 + 2 = ?" || len(updated.Answers) != 2 || updated.CorrectAnswer().AnswerText != "3" {
		t.Errorf("updated question = %+v", updated)
	}

	var answers int64
	env.db.Model(&model.AnswerChoice{}).Where("question_id = ?", q.ID).Count(&answers)
	if answers != 2 {
		t.Errorf("stored answers = %d, want 2", answers)
	}

	if _, err := env.exams.UpdateQuestion(ctx, exam.ID+1, q.ID, QuestionInput{
		QuestionText: "x",
		Answers:      []AnswerInput{{AnswerText: "a", IsCorrect: true}, {AnswerText: "b"}},
	}); !errors.Is(err, util.ErrQuestionNotFound) {
		t.Errorf("foreign exam err = %v, want ErrQuestionNotFound", err)
	}
}

func TestDeleteExamCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	subject := env.subject(t, "Mathematics")
	exam := env.mathExam(t, subject.ID, false)
	student := env.student(t, "3002", nil)

	if _, err := env.attempts.SubmitStudent(ctx, exam.ID, *student.UserID, SubmitRequest{Answers: answersFor(exam, 1)}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := env.exams.ReportQuestion(ctx, exam.ID, exam.Questions[0].ID, *student.UserID, ""); err != nil {
		t.Fatalf("ReportQuestion: %v", err)
	}

	if err := env.subjects.Delete(ctx, subject.ID); !errors.Is(err, util.ErrSubjectHasExams) {
		t.Fatalf("delete subject with exams err = %v, want ErrSubjectHasExams", err)
	}

	if err := env.exams.Delete(ctx, exam.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	for name, m := range map[string]interface{}{
		"questions": &model.Question{},
		"answers":   &model.AnswerChoice{},
		"results":   &model.Result{},
		"reports":   &model.QuestionReport{},
	} {
		var n int64
		env.db.Model(m).Count(&n)
		if n != 0 {
			t.Errorf("%s left after delete: %d", name, n)
		}
	}

	if err := env.subjects.Delete(ctx, subject.ID); err != nil {
		t.Errorf("delete empty subject: %v", err)
	}
}

func TestReportQuestionDefaultsMessage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	exam := env.mathExam(t, env.subject(t, "Mathematics").ID, false)
	student := env.student(t, "3003", nil)

	report, err := env.exams.ReportQuestion(ctx, exam.ID, exam.Questions[1].ID, *student.UserID, "  ")
	if err != nil {
		t.Fatalf("ReportQuestion: %v", err)
	}
	if report.Message != defaultReportMessage || report.Status != model.QuestionReportPending {
		t.Errorf("report = %+v", report)
	}
	if report.StudentID == nil || *report.StudentID != student.ID {
		t.Errorf("report student = %v, want %d", report.StudentID, student.ID)
	}

	reports, err := env.exams.ListQuestionReports(ctx, exam.ID)
	if err != nil {
		t.Fatalf("ListQuestionReports: %v", err)
	}
	if len(reports) != 1 {
		t.Errorf("reports = %d, want 1", len(reports))
	}
}
