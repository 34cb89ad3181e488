package models

import "testing"

func TestEffectivePoints(t *testing.T) {
	tests := []struct {
		name   string
		points int
		want   int
	}{
		{"explicit value", 5, 5},
		{"zero defaults to one", 0, 1},
		{"negative defaults to one", -3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Question{Points: tt.points}
			if got := q.EffectivePoints(); got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestAutoScored(t *testing.T) {
	auto := []QuestionType{QuestionMultipleChoice, QuestionMultipleSelect, QuestionTrueFalse}
	manual := []QuestionType{QuestionShortAnswer, QuestionEssay, QuestionFillBlank, QuestionMatching, QuestionOrdering}

	for _, qt := range auto {
		q := Question{Type: qt}
		if !q.AutoScored() {
			t.Errorf("Expected %s to be auto scored", qt)
		}
	}
	for _, qt := range manual {
		q := Question{Type: qt}
		if q.AutoScored() {
			t.Errorf("Expected %s to need manual grading", qt)
		}
	}
}

func TestAttemptStatusTerminal(t *testing.T) {
	tests := []struct {
		status AttemptStatus
		want   bool
	}{
		{AttemptInProgress, false},
		{AttemptSubmitted, true},
		{AttemptCompleted, true},
		{AttemptTimedOut, true},
	}

	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("Terminal(%s): expected %v, got %v", tt.status, tt.want, got)
		}
	}
}

func TestAttemptStatusCountsTowardLimit(t *testing.T) {
	tests := []struct {
		status AttemptStatus
		want   bool
	}{
		{AttemptInProgress, false},
		{AttemptSubmitted, true},
		{AttemptCompleted, true},
		{AttemptTimedOut, false},
	}

	for _, tt := range tests {
		if got := tt.status.CountsTowardLimit(); got != tt.want {
			t.Errorf("CountsTowardLimit(%s): expected %v, got %v", tt.status, tt.want, got)
		}
	}
}

func TestAttemptAnswerLookup(t *testing.T) {
	attempt := Attempt{
		Answers: []AttemptAnswer{
			{QuestionID: "q1", SelectedAnswers: []string{"A"}},
			{QuestionID: "q2", SelectedAnswers: []string{"B"}},
		},
		FlaggedQuestions: []string{"q2"},
	}

	if got := attempt.AnswerFor("q1"); got == nil || got.SelectedAnswers[0] != "A" {
		t.Errorf("Expected answer A for q1, got %v", got)
	}
	if got := attempt.AnswerFor("q3"); got != nil {
		t.Errorf("Expected nil for unanswered question, got %v", got)
	}
	if !attempt.IsFlagged("q2") {
		t.Error("Expected q2 flagged")
	}
	if attempt.IsFlagged("q1") {
		t.Error("Expected q1 not flagged")
	}
}

func TestEffectiveTotalPoints(t *testing.T) {
	quiz := Quiz{
		Questions: []Question{
			{ID: "q1", Points: 2},
			{ID: "q2", Points: 0}, // defaults to 1
			{ID: "q3", Points: 3},
		},
	}

	if got := quiz.EffectiveTotalPoints(); got != 6 {
		t.Errorf("Expected derived total 6, got %d", got)
	}

	quiz.TotalPoints = 10
	if got := quiz.EffectiveTotalPoints(); got != 10 {
		t.Errorf("Expected stored total 10, got %d", got)
	}
}

func TestQuestionByID(t *testing.T) {
	quiz := Quiz{Questions: []Question{{ID: "q1"}, {ID: "q2"}}}

	if got := quiz.QuestionByID("q2"); got == nil || got.ID != "q2" {
		t.Errorf("Expected q2, got %v", got)
	}
	if got := quiz.QuestionByID("q9"); got != nil {
		t.Errorf("Expected nil for unknown question, got %v", got)
	}
}

func TestStudentViewStripsAnswers(t *testing.T) {
	quiz := Quiz{
		ID:       "quiz1",
		Password: "hash",
		Questions: []Question{
			{
				ID:             "q1",
				Type:           QuestionMultipleChoice,
				Options:        []string{"A", "B"},
				CorrectAnswers: []string{"A"},
				Feedback:       "well done",
				Points:         2,
			},
		},
	}

	view := quiz.StudentView()
	if len(view.Questions) != 1 {
		t.Fatalf("Expected 1 question, got %d", len(view.Questions))
	}
	if view.Questions[0].CorrectAnswers != nil {
		t.Error("Expected correct answers stripped")
	}
	if view.Questions[0].Feedback != "" {
		t.Error("Expected feedback stripped")
	}
	if view.TotalPoints != 2 {
		t.Errorf("Expected total points 2, got %d", view.TotalPoints)
	}

	quiz.ShowCorrectAnswers = true
	view = quiz.StudentView()
	if len(view.Questions[0].CorrectAnswers) != 1 {
		t.Error("Expected correct answers kept when quiz shows them")
	}
	if view.Questions[0].Feedback != "well done" {
		t.Error("Expected feedback kept when quiz shows answers")
	}
}
