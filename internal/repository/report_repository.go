package repository

import (
	"context"
	"sems_backend/internal/model"

	"gorm.io/gorm"
)

type ReportRepository struct {
	DB *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{DB: db}
}

func (r *ReportRepository) nonGuest(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Table("results").
		Joins("JOIN exam_templates ON exam_templates.id = results.exam_template_id").
		Joins("JOIN subjects ON subjects.id = exam_templates.subject_id").
		Joins("JOIN students ON students.id = results.student_id").
		Where("results.is_guest = ?", false)
}

func applyReportFilter(q *gorm.DB, f model.ReportFilter) *gorm.DB {
	if f.SectionID != nil {
		q = q.Where("students.section_id = ?", *f.SectionID)
	}
	if f.SubjectID != nil {
		q = q.Where("exam_templates.subject_id = ?", *f.SubjectID)
	}
	if f.StudentID != nil {
		q = q.Where("results.student_id = ?", *f.StudentID)
	}
	return q
}

func (r *ReportRepository) SubjectStats(ctx context.Context, f model.ReportFilter) ([]model.SubjectStat, error) {
	var stats []model.SubjectStat
	err := applyReportFilter(r.nonGuest(ctx), f).
		Select("subjects.id AS subject_id, subjects.name AS subject_name, " +
			"COUNT(results.id) AS total_attempts, AVG(results.percentage) AS avg_percentage").
		Group("subjects.id, subjects.name").
		Order("total_attempts DESC, subjects.id ASC").
		Scan(&stats).Error
	return stats, err
}

func (r *ReportRepository) SectionRanking(ctx context.Context) ([]model.SectionRank, error) {
	var ranks []model.SectionRank
	err := r.nonGuest(ctx).
		Joins("JOIN sections ON sections.id = students.section_id").
		Select("sections.id AS section_id, sections.name AS section_name, " +
			"AVG(results.percentage) AS avg_percentage, " +
			"COUNT(DISTINCT results.student_id) AS student_count, " +
			"COUNT(results.id) AS total_attempts").
		Group("sections.id, sections.name").
		Order("avg_percentage DESC, sections.id ASC").
		Scan(&ranks).Error
	return ranks, err
}

func (r *ReportRepository) StudentRows(ctx context.Context, f model.ReportFilter) ([]model.StudentReportRow, error) {
	var rows []model.StudentReportRow
	err := applyReportFilter(r.nonGuest(ctx), f).
		Joins("LEFT JOIN sections ON sections.id = students.section_id").
		Select("results.id AS result_id, students.id AS student_id, students.full_name, students.student_number, " +
			"sections.name AS section_name, exam_templates.name AS exam_name, subjects.name AS subject_name, " +
			"results.score, results.total_questions, results.percentage, results.completed_at").
		Order("results.completed_at DESC, results.id DESC").
		Scan(&rows).Error
	return rows, err
}
