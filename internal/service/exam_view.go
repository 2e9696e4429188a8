package service

import (
	"sems_backend/internal/model"
	"time"
)

// Views returned to exam takers. IsCorrect is only populated when the answer key may be shown.

type AnswerView struct {
	ID         uint   `json:"id"`
	AnswerText string `json:"answer_text"`
	SortOrder  int    `json:"sort_order"`
	IsCorrect  *bool  `json:"is_correct,omitempty"`
}

type QuestionView struct {
	ID           uint         `json:"id"`
	QuestionText string       `json:"question_text"`
	SortOrder    int          `json:"sort_order"`
	Answers      []AnswerView `json:"answers"`
}

type ExamView struct {
	ID              uint           `json:"id"`
	Name            string         `json:"name"`
	DurationMinutes int            `json:"duration_minutes"`
	AllowReattempt  bool           `json:"allow_reattempt"`
	IsActive        bool           `json:"is_active"`
	SubjectID       uint           `json:"subject_id"`
	SubjectName     string         `json:"subject_name"`
	CreatedAt       time.Time      `json:"created_at"`
	Questions       []QuestionView `json:"questions"`
}

// ExamListItem is the catalog entry shown in exam lists.
type ExamListItem struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"duration_minutes"`
	AllowReattempt  bool      `json:"allow_reattempt"`
	IsActive        bool      `json:"is_active"`
	SubjectID       uint      `json:"subject_id"`
	SubjectName     string    `json:"subject_name"`
	CreatedAt       time.Time `json:"created_at"`
}

func subjectName(exam *model.ExamTemplate) string {
	if exam.Subject == nil {
		return ""
	}
	return exam.Subject.Name
}

func NewExamListItem(exam *model.ExamTemplate) ExamListItem {
	return ExamListItem{
		ID:              exam.ID,
		Name:            exam.Name,
		DurationMinutes: exam.DurationMinutes,
		AllowReattempt:  exam.AllowReattempt,
		IsActive:        exam.IsActive,
		SubjectID:       exam.SubjectID,
		SubjectName:     subjectName(exam),
		CreatedAt:       exam.CreatedAt,
	}
}

func NewQuestionView(q *model.Question, withKey bool) QuestionView {
	view := QuestionView{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		SortOrder:    q.SortOrder,
		Answers:      make([]AnswerView, 0, len(q.Answers)),
	}
	for _, a := range q.Answers {
		av := AnswerView{ID: a.ID, AnswerText: a.AnswerText, SortOrder: a.SortOrder}
		if withKey {
			correct := a.IsCorrect
			av.IsCorrect = &correct
		}
		view.Answers = append(view.Answers, av)
	}
	return view
}

// NewExamView renders the template with its questions, stripping the answer key unless withKey.
func NewExamView(exam *model.ExamTemplate, withKey bool) ExamView {
	view := ExamView{
		ID:              exam.ID,
		Name:            exam.Name,
		DurationMinutes: exam.DurationMinutes,
		AllowReattempt:  exam.AllowReattempt,
		IsActive:        exam.IsActive,
		SubjectID:       exam.SubjectID,
		SubjectName:     subjectName(exam),
		CreatedAt:       exam.CreatedAt,
		Questions:       make([]QuestionView, 0, len(exam.Questions)),
	}
	for i := range exam.Questions {
		view.Questions = append(view.Questions, NewQuestionView(&exam.Questions[i], withKey))
	}
	return view
}
