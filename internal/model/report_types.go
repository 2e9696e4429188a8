package model

import "time"

// Report rows are read-only projections over non-guest results.

type ReportFilter struct {
	SectionID *uint `form:"section_id" json:"section_id,omitempty"`
	SubjectID *uint `form:"subject_id" json:"subject_id,omitempty"`
	StudentID *uint `form:"student_id" json:"student_id,omitempty"`
}

type SubjectStat struct {
	SubjectID     uint    `json:"subject_id"`
	SubjectName   string  `json:"subject_name"`
	TotalAttempts int64   `json:"total_attempts"`
	AvgPercentage float64 `json:"avg_percentage"`
}

type SectionRank struct {
	SectionID     uint    `json:"section_id"`
	SectionName   string  `json:"section_name"`
	AvgPercentage float64 `json:"avg_percentage"`
	StudentCount  int64   `json:"student_count"`
	TotalAttempts int64   `json:"total_attempts"`
}

type StudentReportRow struct {
	ResultID       uint      `json:"result_id"`
	StudentID      uint      `json:"student_id"`
	FullName       string    `json:"full_name"`
	StudentNumber  *string   `json:"student_number"`
	SectionName    *string   `json:"section_name"`
	ExamName       string    `json:"exam_name"`
	SubjectName    string    `json:"subject_name"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     float64   `json:"percentage"`
	CompletedAt    time.Time `json:"completed_at"`
}
