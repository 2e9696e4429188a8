package service

import (
	"context"
	"fmt"
	"sems_backend/internal/model"
	"testing"
	"time"
)

func cacheVersion(t *testing.T, env *testEnv) int64 {
	t.Helper()
	v, err := env.reports.Redis.Get(context.Background(), reportVersionKey).Int64()
	if err != nil {
		return 0
	}
	return v
}

func overallKey(version int64) string {
	return fmt.Sprintf("%sv%d:overall:-:-", reportCachePrefix, version)
}

func TestReportCacheHitMissAndInvalidate(t *testing.T) {
	env := newTestEnv(t)
	mr := env.withRedis(t)
	ctx := context.Background()
	subject := env.subject(t, "Mathematics")
	exam := env.mathExam(t, subject.ID, true)
	student := env.student(t, "5001", nil)

	if _, err := env.attempts.SubmitStudent(ctx, exam.ID, *student.UserID, SubmitRequest{Answers: answersFor(exam, 2)}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	first, err := env.reports.OverallStats(ctx, model.ReportFilter{})
	if err != nil {
		t.Fatalf("OverallStats: %v", err)
	}
	if len(first) != 1 || first[0].TotalAttempts != 1 {
		t.Fatalf("stats = %+v, want one attempt", first)
	}
	version := cacheVersion(t, env)
	key := overallKey(version)
	if !mr.Exists(key) {
		t.Fatalf("cache key %s not written; keys = %v", key, mr.Keys())
	}

	// a row written behind the service's back stays invisible until invalidation
	now := time.Now()
	extra := &model.Result{
		Score: 0, TotalQuestions: 2, Percentage: 0,
		StartedAt: now, CompletedAt: now,
		ExamTemplateID: exam.ID, StudentID: &student.ID,
	}
	if err := env.db.Create(extra).Error; err != nil {
		t.Fatalf("insert result: %v", err)
	}
	hit, err := env.reports.OverallStats(ctx, model.ReportFilter{})
	if err != nil {
		t.Fatalf("OverallStats cached: %v", err)
	}
	if len(hit) != 1 || hit[0].TotalAttempts != 1 {
		t.Errorf("cached stats = %+v, want the cached single attempt", hit)
	}

	env.reports.Invalidate(ctx)
	if got := cacheVersion(t, env); got != version+1 {
		t.Errorf("version = %d, want %d", got, version+1)
	}
	fresh, err := env.reports.OverallStats(ctx, model.ReportFilter{})
	if err != nil {
		t.Fatalf("OverallStats after invalidate: %v", err)
	}
	if len(fresh) != 1 || fresh[0].TotalAttempts != 2 || fresh[0].AvgPercentage != 50 {
		t.Errorf("fresh stats = %+v, want 2 attempts averaging 50", fresh)
	}

	// entries expire after the TTL
	mr.FastForward(env.reports.TTL + time.Second)
	if mr.Exists(overallKey(version + 1)) {
		t.Errorf("cache entry outlived its ttl")
	}
}

func TestReportCacheDroppedAfterStudentDelete(t *testing.T) {
	env := newTestEnv(t)
	env.withRedis(t)
	ctx := context.Background()
	exam := env.mathExam(t, env.subject(t, "Mathematics").ID, false)
	student := env.student(t, "5002", nil)

	if _, err := env.attempts.SubmitStudent(ctx, exam.ID, *student.UserID, SubmitRequest{Answers: answersFor(exam, 2)}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if stats, err := env.reports.OverallStats(ctx, model.ReportFilter{}); err != nil || len(stats) != 1 {
		t.Fatalf("OverallStats before delete = %+v, %v", stats, err)
	}

	if err := env.students.Delete(ctx, student.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	stats, err := env.reports.OverallStats(ctx, model.ReportFilter{})
	if err != nil {
		t.Fatalf("OverallStats after delete: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("stats after student delete = %+v, want none", stats)
	}
}

func TestReportCacheInvalidatedByRollupWrites(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, env *testEnv, exam *model.ExamTemplate, student *model.StudentProfile, section *model.Section)
	}{
		{
			name: "student moves section",
			mutate: func(t *testing.T, env *testEnv, _ *model.ExamTemplate, student *model.StudentProfile, _ *model.Section) {
				other := env.section(t, "10-B")
				if _, err := env.students.Update(context.Background(), student.ID, StudentUpdateInput{SectionID: &other.ID}); err != nil {
					t.Fatalf("Update student: %v", err)
				}
			},
		},
		{
			name: "section deleted",
			mutate: func(t *testing.T, env *testEnv, _ *model.ExamTemplate, _ *model.StudentProfile, section *model.Section) {
				if err := env.sections.Delete(context.Background(), section.ID); err != nil {
					t.Fatalf("Delete section: %v", err)
				}
			},
		},
		{
			name: "section renamed",
			mutate: func(t *testing.T, env *testEnv, _ *model.ExamTemplate, _ *model.StudentProfile, section *model.Section) {
				if _, err := env.sections.Update(context.Background(), section.ID, CatalogInput{Name: "11-A"}); err != nil {
					t.Fatalf("Update section: %v", err)
				}
			},
		},
		{
			name: "subject renamed",
			mutate: func(t *testing.T, env *testEnv, exam *model.ExamTemplate, _ *model.StudentProfile, _ *model.Section) {
				if _, err := env.subjects.Update(context.Background(), exam.SubjectID, CatalogInput{Name: "Algebra"}); err != nil {
					t.Fatalf("Update subject: %v", err)
				}
			},
		},
		{
			name: "exam moves subject",
			mutate: func(t *testing.T, env *testEnv, exam *model.ExamTemplate, _ *model.StudentProfile, _ *model.Section) {
				physics := env.subject(t, "Physics")
				if _, err := env.exams.Update(context.Background(), exam.ID, ExamInput{Name: exam.Name, SubjectID: physics.ID}); err != nil {
					t.Fatalf("Update exam: %v", err)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.withRedis(t)
			ctx := context.Background()
			section := env.section(t, "10-A")
			exam := env.mathExam(t, env.subject(t, "Mathematics").ID, false)
			student := env.student(t, "5100", &section.ID)
			if _, err := env.attempts.SubmitStudent(ctx, exam.ID, *student.UserID, SubmitRequest{Answers: answersFor(exam, 1)}); err != nil {
				t.Fatalf("submit: %v", err)
			}
			if _, err := env.reports.OverallStats(ctx, model.ReportFilter{}); err != nil {
				t.Fatalf("prime OverallStats: %v", err)
			}
			if _, err := env.reports.SectionRanking(ctx); err != nil {
				t.Fatalf("prime SectionRanking: %v", err)
			}

			before := cacheVersion(t, env)
			tc.mutate(t, env, exam, student, section)
			if after := cacheVersion(t, env); after <= before {
				t.Errorf("cache version = %d after write, want > %d", after, before)
			}
		})
	}
}
