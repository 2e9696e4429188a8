package service

import (
	"context"
	"errors"
	"sems_backend/internal/model"
	"sems_backend/internal/util"
	"sync"
	"testing"
	"time"
)

func TestSubmitStudentScoresAndBlocksReattempt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	subject := env.subject(t, "Mathematics")
	exam := env.mathExam(t, subject.ID, false)
	student := env.student(t, "1001", nil)

	started := time.Now().Add(-10 * time.Minute)
	result, err := env.attempts.SubmitStudent(ctx, exam.ID, *student.UserID, SubmitRequest{
		Answers:   answersFor(exam, 1),
		StartedAt: &started,
	})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if result.Score != 1 || result.TotalQuestions != 2 || result.Percentage != 50 {
		t.Errorf("result = %d/%d %.2f%%, want 1/2 50%%", result.Score, result.TotalQuestions, result.Percentage)
	}
	if result.IsGuest || result.StudentID == nil || *result.StudentID != student.ID {
		t.Errorf("result not attributed to student %d: %+v", student.ID, result)
	}
	if !result.StartedAt.Equal(started) {
		t.Errorf("started_at = %v, want %v", result.StartedAt, started)
	}

	_, err = env.attempts.SubmitStudent(ctx, exam.ID, *student.UserID, SubmitRequest{Answers: answersFor(exam, 2)})
	if !errors.Is(err, util.ErrReattemptNotAllowed) {
		t.Fatalf("second submit err = %v, want ErrReattemptNotAllowed", err)
	}

	var count int64
	env.db.Model(&model.Result{}).Count(&count)
	if count != 1 {
		t.Errorf("results stored = %d, want 1", count)
	}

	if _, err := env.exams.Start(ctx, exam.ID, *student.UserID, true); !errors.Is(err, util.ErrReattemptNotAllowed) {
		t.Errorf("start after attempt err = %v, want ErrReattemptNotAllowed", err)
	}
}

func TestConcurrentSubmitsRecordOneResult(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	exam := env.mathExam(t, env.subject(t, "Mathematics").ID, false)
	student := env.student(t, "1005", nil)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.attempts.SubmitStudent(ctx, exam.ID, *student.UserID, SubmitRequest{Answers: answersFor(exam, 2)})
		}(i)
	}
	wg.Wait()

	var ok, denied int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, util.ErrReattemptNotAllowed):
			denied++
		default:
			t.Errorf("unexpected submit error: %v", err)
		}
	}
	if ok != 1 || denied != workers-1 {
		t.Errorf("accepted = %d denied = %d, want 1 and %d", ok, denied, workers-1)
	}

	var count int64
	env.db.Model(&model.Result{}).Where("exam_template_id = ? AND student_id = ?", exam.ID, student.ID).Count(&count)
	if count != 1 {
		t.Errorf("results stored = %d, want 1", count)
	}
}

func TestSubmitStudentAllowsReattemptWhenEnabled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	exam := env.mathExam(t, env.subject(t, "Physics").ID, true)
	student := env.student(t, "1002", nil)

	for i := 0; i < 3; i++ {
		if _, err := env.attempts.SubmitStudent(ctx, exam.ID, *student.UserID, SubmitRequest{Answers: answersFor(exam, i%3)}); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}

	mine, err := env.attempts.MyResults(ctx, *student.UserID)
	if err != nil {
		t.Fatalf("MyResults: %v", err)
	}
	if len(mine) != 3 {
		t.Fatalf("my results = %d, want 3", len(mine))
	}
	if mine[0].ExamName != "Math-1" || mine[0].SubjectName != "Physics" {
		t.Errorf("my result labels = %q/%q", mine[0].ExamName, mine[0].SubjectName)
	}
}

func TestSubmitGuestIsNeverBlocked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	exam := env.mathExam(t, env.subject(t, "Chemistry").ID, false)

	for i := 0; i < 2; i++ {
		result, err := env.attempts.SubmitGuest(ctx, exam.ID, GuestSubmitRequest{
			SubmitRequest: SubmitRequest{Answers: answersFor(exam, 2)},
			GuestName:     "  Visitor ",
		})
		if err != nil {
			t.Fatalf("guest attempt %d: %v", i+1, err)
		}
		if !result.IsGuest || result.StudentID != nil {
			t.Errorf("guest result attributed to a student: %+v", result)
		}
		if result.GuestName == nil || *result.GuestName != "Visitor" {
			t.Errorf("guest name = %v, want Visitor", result.GuestName)
		}
		if result.Percentage != 100 {
			t.Errorf("percentage = %.2f, want 100", result.Percentage)
		}
	}
}

func TestSubmitGuestRejectsInactiveExamAndBlankName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	subject := env.subject(t, "Biology")
	exam := env.mathExam(t, subject.ID, true)

	_, err := env.attempts.SubmitGuest(ctx, exam.ID, GuestSubmitRequest{GuestName: "   "})
	if util.KindOf(err) != util.KindValidation {
		t.Errorf("blank guest name err = %v, want validation error", err)
	}

	if _, err := env.exams.Update(ctx, exam.ID, ExamInput{Name: exam.Name, SubjectID: subject.ID, IsActive: boolPtr(false)}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	_, err = env.attempts.SubmitGuest(ctx, exam.ID, GuestSubmitRequest{GuestName: "Visitor"})
	if !errors.Is(err, util.ErrExamInactive) {
		t.Errorf("inactive exam err = %v, want ErrExamInactive", err)
	}
	if _, err := env.exams.StartForGuest(ctx, exam.ID); !errors.Is(err, util.ErrExamInactive) {
		t.Errorf("guest start on inactive exam err = %v, want ErrExamInactive", err)
	}
}

func TestSubmitStudentWithoutProfile(t *testing.T) {
	env := newTestEnv(t)
	exam := env.mathExam(t, env.subject(t, "History").ID, false)

	_, err := env.attempts.SubmitStudent(context.Background(), exam.ID, 4242, SubmitRequest{Answers: answersFor(exam, 2)})
	if !errors.Is(err, util.ErrStudentProfileMissing) {
		t.Fatalf("err = %v, want ErrStudentProfileMissing", err)
	}
}

func TestSubmitRejectsDuplicateQuestionIDs(t *testing.T) {
	env := newTestEnv(t)
	exam := env.mathExam(t, env.subject(t, "Geography").ID, true)
	student := env.student(t, "1003", nil)

	first := answersFor(exam, 2)[0]
	_, err := env.attempts.SubmitStudent(context.Background(), exam.ID, *student.UserID, SubmitRequest{
		Answers: []SubmittedAnswer{first, first},
	})
	if util.KindOf(err) != util.KindValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestSubmitUnknownExam(t *testing.T) {
	env := newTestEnv(t)
	student := env.student(t, "1004", nil)

	_, err := env.attempts.SubmitStudent(context.Background(), 999, *student.UserID, SubmitRequest{})
	if !errors.Is(err, util.ErrExamNotFound) {
		t.Fatalf("err = %v, want ErrExamNotFound", err)
	}
}
