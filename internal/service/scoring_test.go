package service

import (
	"sems_backend/internal/model"
	"sems_backend/internal/util"
	"testing"
)

func question(id uint, correctID uint, choiceIDs ...uint) model.Question {
	q := model.Question{BaseModel: model.BaseModel{ID: id}}
	for _, cid := range choiceIDs {
		q.Answers = append(q.Answers, model.AnswerChoice{
			BaseModel:  model.BaseModel{ID: cid},
			QuestionID: id,
			IsCorrect:  cid == correctID,
		})
	}
	return q
}

// Math-1: two questions, four choices each, one correct.
func mathOne() []model.Question {
	return []model.Question{
		question(1, 11, 11, 12, 13, 14),
		question(2, 23, 21, 22, 23, 24),
	}
}

func TestScoreAttempt(t *testing.T) {
	tests := []struct {
		name    string
		answers []SubmittedAnswer
		want    ScoreOutcome
	}{
		{
			name:    "one right one wrong",
			answers: []SubmittedAnswer{{1, 11}, {2, 22}},
			want:    ScoreOutcome{Score: 1, TotalQuestions: 2, Percentage: 50},
		},
		{
			name:    "unknown question ignored",
			answers: []SubmittedAnswer{{1, 11}, {2, 22}, {999, 1}},
			want:    ScoreOutcome{Score: 1, TotalQuestions: 2, Percentage: 50},
		},
		{
			name:    "missing answer counts as wrong",
			answers: []SubmittedAnswer{{1, 11}},
			want:    ScoreOutcome{Score: 1, TotalQuestions: 2, Percentage: 50},
		},
		{
			name:    "all correct",
			answers: []SubmittedAnswer{{1, 11}, {2, 23}},
			want:    ScoreOutcome{Score: 2, TotalQuestions: 2, Percentage: 100},
		},
		{
			name:    "empty submission",
			answers: nil,
			want:    ScoreOutcome{Score: 0, TotalQuestions: 2, Percentage: 0},
		},
		{
			name:    "answer id from another question",
			answers: []SubmittedAnswer{{1, 23}, {2, 11}},
			want:    ScoreOutcome{Score: 0, TotalQuestions: 2, Percentage: 0},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ScoreAttempt(mathOne(), tc.answers)
			if got != tc.want {
				t.Fatalf("ScoreAttempt() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestScoreAttemptNoCorrectChoice(t *testing.T) {
	questions := []model.Question{question(1, 0, 11, 12)}
	got := ScoreAttempt(questions, []SubmittedAnswer{{1, 11}})
	if got.Score != 0 || got.TotalQuestions != 1 {
		t.Fatalf("got %+v, want score 0 of 1", got)
	}
}

func TestScoreAttemptNoQuestions(t *testing.T) {
	got := ScoreAttempt(nil, []SubmittedAnswer{{1, 1}})
	if got != (ScoreOutcome{}) {
		t.Fatalf("got %+v, want zero outcome", got)
	}
}

func TestScoreAttemptDeterministic(t *testing.T) {
	answers := []SubmittedAnswer{{2, 23}, {1, 12}}
	first := ScoreAttempt(mathOne(), answers)
	for i := 0; i < 10; i++ {
		if got := ScoreAttempt(mathOne(), answers); got != first {
			t.Fatalf("run %d: %+v != %+v", i, got, first)
		}
	}
}

func TestPercentageRounding(t *testing.T) {
	tests := []struct {
		score, total int
		want         float64
	}{
		{1, 3, 33.33},
		{2, 3, 66.67},
		{1, 8, 12.5},
		{0, 0, 0},
		{7, 7, 100},
	}
	for _, tc := range tests {
		if got := Percentage(tc.score, tc.total); got != tc.want {
			t.Errorf("Percentage(%d, %d) = %v, want %v", tc.score, tc.total, got, tc.want)
		}
	}
}

func TestValidateSubmissionRejectsDuplicates(t *testing.T) {
	err := ValidateSubmission([]SubmittedAnswer{{1, 11}, {2, 21}, {1, 12}})
	if util.KindOf(err) != util.KindValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
	if err := ValidateSubmission([]SubmittedAnswer{{1, 11}, {2, 21}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
