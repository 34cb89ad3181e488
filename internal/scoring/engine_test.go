package scoring

import (
	"testing"

	"quiz-attempt-service/internal/models"
)

func mcq(id string, points int, correct ...string) models.Question {
	return models.Question{
		ID:             id,
		Type:           models.QuestionMultipleChoice,
		Points:         points,
		CorrectAnswers: correct,
	}
}

func multi(id string, points int, correct ...string) models.Question {
	return models.Question{
		ID:             id,
		Type:           models.QuestionMultipleSelect,
		Points:         points,
		CorrectAnswers: correct,
	}
}

func answer(questionID string, selected ...string) models.AttemptAnswer {
	return models.AttemptAnswer{QuestionID: questionID, SelectedAnswers: selected}
}

func TestScoreSingleChoice(t *testing.T) {
	questions := []models.Question{mcq("q1", 2, "B")}

	tests := []struct {
		name     string
		selected []string
		want     int
	}{
		{"exact match", []string{"B"}, 2},
		{"wrong option", []string{"A"}, 0},
		{"two selections never match", []string{"A", "B"}, 0},
		{"empty selection", []string{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(questions, []models.AttemptAnswer{answer("q1", tt.selected...)}, 2)
			if got.Score != tt.want {
				t.Errorf("Expected score %d, got %d", tt.want, got.Score)
			}
		})
	}
}

func TestScoreTrueFalse(t *testing.T) {
	questions := []models.Question{{
		ID:             "q1",
		Type:           models.QuestionTrueFalse,
		Points:         1,
		CorrectAnswers: []string{"true"},
	}}

	got := Score(questions, []models.AttemptAnswer{answer("q1", "true")}, 1)
	if got.Score != 1 {
		t.Errorf("Expected score 1, got %d", got.Score)
	}

	got = Score(questions, []models.AttemptAnswer{answer("q1", "false")}, 1)
	if got.Score != 0 {
		t.Errorf("Expected score 0, got %d", got.Score)
	}
}

func TestScoreMultipleSelect(t *testing.T) {
	questions := []models.Question{multi("q1", 3, "A", "C")}

	tests := []struct {
		name     string
		selected []string
		want     int
	}{
		{"exact set", []string{"A", "C"}, 3},
		{"order does not matter", []string{"C", "A"}, 3},
		{"missing one", []string{"A"}, 0},
		{"extra one", []string{"A", "C", "D"}, 0},
		{"disjoint", []string{"B", "D"}, 0},
		{"empty never matches", []string{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(questions, []models.AttemptAnswer{answer("q1", tt.selected...)}, 3)
			if got.Score != tt.want {
				t.Errorf("Expected score %d, got %d", tt.want, got.Score)
			}
		})
	}
}

func TestScoreUnansweredQuestion(t *testing.T) {
	questions := []models.Question{mcq("q1", 2, "A"), mcq("q2", 3, "B")}

	// Only q2 answered; q1 contributes zero but still appears in results.
	got := Score(questions, []models.AttemptAnswer{answer("q2", "B")}, 5)

	if got.Score != 3 {
		t.Errorf("Expected score 3, got %d", got.Score)
	}
	if len(got.Questions) != 2 {
		t.Fatalf("Expected 2 question results, got %d", len(got.Questions))
	}
	if got.Questions[0].Correct {
		t.Error("Unanswered question should not be correct")
	}
	if got.Questions[0].Score != 0 {
		t.Errorf("Expected unanswered score 0, got %d", got.Questions[0].Score)
	}
}

func TestScoreManualTypesNeedReview(t *testing.T) {
	questions := []models.Question{
		{ID: "q1", Type: models.QuestionEssay, Points: 10},
		{ID: "q2", Type: models.QuestionShortAnswer, Points: 5},
	}

	got := Score(questions, []models.AttemptAnswer{answer("q1", "my essay text")}, 15)

	if got.Score != 0 {
		t.Errorf("Expected score 0 for manual types, got %d", got.Score)
	}
	if !got.NeedsManualReview {
		t.Error("Expected NeedsManualReview to be true")
	}
	if !got.Questions[0].NeedsReview {
		t.Error("Answered essay should be flagged for review")
	}
	if got.Questions[1].NeedsReview {
		t.Error("Unanswered short answer should not be flagged for review")
	}
}

func TestScoreAggregate(t *testing.T) {
	questions := []models.Question{
		mcq("q1", 2, "A"),
		multi("q2", 3, "X", "Y"),
		mcq("q3", 5, "C"),
	}
	answers := []models.AttemptAnswer{
		answer("q1", "A"),
		answer("q2", "Y", "X"),
		answer("q3", "D"),
	}

	got := Score(questions, answers, 10)

	if got.Score != 5 {
		t.Errorf("Expected score 5, got %d", got.Score)
	}
	if got.TotalPoints != 10 {
		t.Errorf("Expected total points 10, got %d", got.TotalPoints)
	}
	if got.Percentage != 50.0 {
		t.Errorf("Expected percentage 50.0, got %v", got.Percentage)
	}
}

func TestScoreDefaultPointValue(t *testing.T) {
	// Points 0 on the question means one point.
	questions := []models.Question{mcq("q1", 0, "A")}

	got := Score(questions, []models.AttemptAnswer{answer("q1", "A")}, 1)
	if got.Score != 1 {
		t.Errorf("Expected score 1, got %d", got.Score)
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name        string
		score       int
		totalPoints int
		want        float64
	}{
		{"full marks", 10, 10, 100.0},
		{"rounds to two decimals", 1, 3, 33.33},
		{"two thirds", 2, 3, 66.67},
		{"zero score", 0, 10, 0.0},
		{"zero denominator", 5, 0, 0.0},
		{"negative denominator", 5, -1, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentage(tt.score, tt.totalPoints)
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}
