package service

import (
	"context"
	"errors"
	"sems_backend/internal/model"
	"sems_backend/internal/util"
	"testing"

	"github.com/xuri/excelize/v2"
)

func seedReportData(t *testing.T, env *testEnv) (*model.Section, *model.Section, *model.Subject) {
	t.Helper()
	ctx := context.Background()
	subject := env.subject(t, "Mathematics")
	exam := env.mathExam(t, subject.ID, false)
	alpha := env.section(t, "10-A")
	beta := env.section(t, "10-B")

	top := env.student(t, "2001", &alpha.ID)
	mid := env.student(t, "2002", &beta.ID)

	if _, err := env.attempts.SubmitStudent(ctx, exam.ID, *top.UserID, SubmitRequest{Answers: answersFor(exam, 2)}); err != nil {
		t.Fatalf("submit top: %v", err)
	}
	if _, err := env.attempts.SubmitStudent(ctx, exam.ID, *mid.UserID, SubmitRequest{Answers: answersFor(exam, 1)}); err != nil {
		t.Fatalf("submit mid: %v", err)
	}
	if _, err := env.attempts.SubmitGuest(ctx, exam.ID, GuestSubmitRequest{GuestName: "Visitor"}); err != nil {
		t.Fatalf("submit guest: %v", err)
	}
	return alpha, beta, subject
}

func TestOverallStatsExcludesGuests(t *testing.T) {
	env := newTestEnv(t)
	_, beta, subject := seedReportData(t, env)
	ctx := context.Background()

	stats, err := env.reports.OverallStats(ctx, model.ReportFilter{})
	if err != nil {
		t.Fatalf("OverallStats: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("stats = %+v, want one subject", stats)
	}
	if stats[0].SubjectID != subject.ID || stats[0].TotalAttempts != 2 || stats[0].AvgPercentage != 75 {
		t.Errorf("stat = %+v, want 2 attempts averaging 75", stats[0])
	}

	filtered, err := env.reports.OverallStats(ctx, model.ReportFilter{SectionID: &beta.ID})
	if err != nil {
		t.Fatalf("OverallStats filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].TotalAttempts != 1 || filtered[0].AvgPercentage != 50 {
		t.Errorf("section filtered stats = %+v", filtered)
	}
}

func TestSectionRankingOrdersByAverage(t *testing.T) {
	env := newTestEnv(t)
	alpha, beta, _ := seedReportData(t, env)

	ranks, err := env.reports.SectionRanking(context.Background())
	if err != nil {
		t.Fatalf("SectionRanking: %v", err)
	}
	if len(ranks) != 2 {
		t.Fatalf("ranks = %+v, want 2 sections", ranks)
	}
	if ranks[0].SectionID != alpha.ID || ranks[0].AvgPercentage != 100 {
		t.Errorf("first rank = %+v, want %s at 100", ranks[0], alpha.Name)
	}
	if ranks[1].SectionID != beta.ID || ranks[1].StudentCount != 1 || ranks[1].TotalAttempts != 1 {
		t.Errorf("second rank = %+v", ranks[1])
	}
}

func TestStudentReportsAndExcelExport(t *testing.T) {
	env := newTestEnv(t)
	seedReportData(t, env)
	ctx := context.Background()

	rows, err := env.reports.StudentReports(ctx, model.ReportFilter{})
	if err != nil {
		t.Fatalf("StudentReports: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 non-guest rows", len(rows))
	}
	if rows[0].ResultID < rows[1].ResultID {
		t.Errorf("rows not newest first: %d before %d", rows[0].ResultID, rows[1].ResultID)
	}

	buf, err := env.reports.ExportExcel(ctx, model.ReportFilter{})
	if err != nil {
		t.Fatalf("ExportExcel: %v", err)
	}
	file, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer file.Close()
	sheetRows, err := file.GetRows(reportExportSheet)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if len(sheetRows) != 3 {
		t.Fatalf("sheet rows = %d, want header plus 2", len(sheetRows))
	}
	if sheetRows[0][0] != "Student" || sheetRows[1][3] != "Mathematics" {
		t.Errorf("unexpected export content: %v", sheetRows[:2])
	}
}

func TestExportPDFNotImplemented(t *testing.T) {
	env := newTestEnv(t)
	if err := env.reports.ExportPDF(context.Background(), model.ReportFilter{}); !errors.Is(err, util.ErrNotImplemented) {
		t.Fatalf("err = %v, want ErrNotImplemented", err)
	}
}

func TestReportsEmptyWithoutResults(t *testing.T) {
	env := newTestEnv(t)
	stats, err := env.reports.OverallStats(context.Background(), model.ReportFilter{})
	if err != nil {
		t.Fatalf("OverallStats: %v", err)
	}
	if stats == nil || len(stats) != 0 {
		t.Errorf("stats = %#v, want empty non-nil slice", stats)
	}
}
