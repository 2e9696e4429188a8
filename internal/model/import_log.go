package model

import "gorm.io/datatypes"

const (
	ImportKindQuestions = "questions"
	ImportKindStudents  = "students"
)

// ImportLog records one spreadsheet upload and what became of its rows.
//
// swagger:model ImportLog
type ImportLog struct {
	BaseModel
	Kind           string         `gorm:"size:20;not null;index" json:"kind"`
	ExamTemplateID *uint          `gorm:"index" json:"exam_template_id"`
	SectionID      *uint          `json:"section_id"`
	UploadedBy     uint           `gorm:"not null" json:"uploaded_by"`
	FileName       string         `gorm:"size:255" json:"file_name"`
	FileURL        string         `gorm:"size:500" json:"file_url"`
	TotalRows      int            `json:"total_rows"`
	SuccessCount   int            `json:"success_count"`
	Errors         datatypes.JSON `json:"errors"`
}

func (ImportLog) TableName() string {
	return "import_logs"
}
