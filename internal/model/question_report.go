package model

import "time"

const QuestionReportPending = "pending"

// swagger:model QuestionReport
type QuestionReport struct {
	ID             uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	ExamTemplateID uint            `gorm:"index;not null" json:"exam_template_id"`
	QuestionID     uint            `gorm:"index;not null" json:"question_id"`
	Question       *Question       `gorm:"constraint:OnDelete:CASCADE" json:"question,omitempty"`
	StudentID      *uint           `gorm:"index" json:"student_id"`
	Student        *StudentProfile `gorm:"constraint:OnDelete:SET NULL" json:"student,omitempty"`
	Message        string          `gorm:"type:text;not null" json:"message"`
	Status         string          `gorm:"size:20;not null;default:'pending'" json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (QuestionReport) TableName() string {
	return "question_reports"
}
