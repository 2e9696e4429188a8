package service

import (
	"math"
	"sems_backend/internal/model"
	"sems_backend/internal/util"
)

// SubmittedAnswer is one (question, chosen answer) pair from a client.
type SubmittedAnswer struct {
	QuestionID uint `json:"question_id" binding:"required" example:"1"`
	AnswerID   uint `json:"answer_id" example:"3"`
}

type ScoreOutcome struct {
	Score          int     `json:"score"`
	TotalQuestions int     `json:"total_questions"`
	Percentage     float64 `json:"percentage"`
}

// ValidateSubmission rejects submissions that answer the same question twice.
func ValidateSubmission(answers []SubmittedAnswer) error {
	seen := make(map[uint]struct{}, len(answers))
	for _, a := range answers {
		if _, dup := seen[a.QuestionID]; dup {
			return util.NewValidationError("duplicate answer for question %d", a.QuestionID)
		}
		seen[a.QuestionID] = struct{}{}
	}
	return nil
}

// ScoreAttempt counts questions whose submitted choice is the correct one.
// Answers for unknown questions are ignored; unanswered questions count as wrong.
func ScoreAttempt(questions []model.Question, answers []SubmittedAnswer) ScoreOutcome {
	chosen := make(map[uint]uint, len(answers))
	for _, a := range answers {
		if _, ok := chosen[a.QuestionID]; !ok {
			chosen[a.QuestionID] = a.AnswerID
		}
	}

	score := 0
	for i := range questions {
		correct := questions[i].CorrectAnswer()
		if correct == nil {
			continue
		}
		if answerID, ok := chosen[questions[i].ID]; ok && answerID == correct.ID {
			score++
		}
	}

	return ScoreOutcome{
		Score:          score,
		TotalQuestions: len(questions),
		Percentage:     Percentage(score, len(questions)),
	}
}

func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return RoundPercentage(float64(score) / float64(total) * 100)
}

// RoundPercentage rounds half away from zero to two decimals.
func RoundPercentage(p float64) float64 {
	return math.Round(p*100) / 100
}
