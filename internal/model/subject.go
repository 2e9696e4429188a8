package model

// swagger:model Subject
type Subject struct {
	BaseModel
	Name        string         `gorm:"size:150;uniqueIndex;not null" json:"name"`
	Description *string        `gorm:"type:text" json:"description"`
	Exams       []ExamTemplate `gorm:"foreignKey:SubjectID;constraint:OnDelete:RESTRICT" json:"exams,omitempty"`
}

func (Subject) TableName() string {
	return "subjects"
}
