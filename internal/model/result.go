package model

import "time"

// Result is written once per submitted attempt and never updated.
//
// swagger:model Result
type Result struct {
	ID             uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Score          int             `gorm:"not null" json:"score"`
	TotalQuestions int             `gorm:"not null" json:"total_questions"`
	Percentage     float64         `gorm:"type:decimal(5,2);not null" json:"percentage"`
	IsGuest        bool            `gorm:"not null;index" json:"is_guest"`
	GuestName      *string         `gorm:"size:150" json:"guest_name"`
	StartedAt      time.Time       `gorm:"not null" json:"started_at"`
	CompletedAt    time.Time       `gorm:"not null;index" json:"completed_at"`
	ExamTemplateID uint            `gorm:"index:idx_results_exam_student;not null" json:"exam_template_id"`
	ExamTemplate   *ExamTemplate   `gorm:"constraint:OnDelete:CASCADE" json:"exam_template,omitempty"`
	StudentID      *uint           `gorm:"index:idx_results_exam_student" json:"student_id"`
	Student        *StudentProfile `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
}

func (Result) TableName() string {
	return "results"
}
