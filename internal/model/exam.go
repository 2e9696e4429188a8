package model

// swagger:model ExamTemplate
type ExamTemplate struct {
	BaseModel
	Name            string     `gorm:"size:200;not null" json:"name"`
	DurationMinutes int        `gorm:"not null" json:"duration_minutes"`
	AllowReattempt  bool       `gorm:"not null" json:"allow_reattempt"`
	IsActive        bool       `gorm:"not null;index" json:"is_active"`
	SubjectID       uint       `gorm:"index;not null" json:"subject_id"`
	Subject         *Subject   `json:"subject,omitempty"`
	Questions       []Question `gorm:"foreignKey:ExamTemplateID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (ExamTemplate) TableName() string {
	return "exam_templates"
}

// swagger:model Question
type Question struct {
	BaseModel
	ExamTemplateID uint           `gorm:"index;not null" json:"exam_template_id"`
	QuestionText   string         `gorm:"type:text;not null" json:"question_text"`
	SortOrder      int            `gorm:"not null;default:0" json:"sort_order"`
	Answers        []AnswerChoice `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"answers"`
}

func (Question) TableName() string {
	return "questions"
}

// CorrectAnswer returns the first choice marked correct, or nil.
func (q *Question) CorrectAnswer() *AnswerChoice {
	for i := range q.Answers {
		if q.Answers[i].IsCorrect {
			return &q.Answers[i]
		}
	}
	return nil
}

// swagger:model AnswerChoice
type AnswerChoice struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"question_id"`
	AnswerText string `gorm:"type:text;not null" json:"answer_text"`
	IsCorrect  bool   `gorm:"not null" json:"is_correct"`
	SortOrder  int    `gorm:"not null;default:0" json:"sort_order"`
}

func (AnswerChoice) TableName() string {
	return "answers"
}
