package models

import "time"

// QuestionResult is the scored outcome for a single question.
type QuestionResult struct {
	QuestionID      string   `bson:"question_id" json:"question_id"`
	Correct         bool     `bson:"correct" json:"correct"`
	Score           int      `bson:"score" json:"score"`
	MaxScore        int      `bson:"max_score" json:"max_score"`
	NeedsReview     bool     `bson:"needs_review" json:"needs_review"`
	SelectedAnswers []string `bson:"selected_answers,omitempty" json:"selected_answers,omitempty"`
	CorrectAnswers  []string `bson:"correct_answers,omitempty" json:"correct_answers,omitempty"`
	Feedback        string   `bson:"feedback,omitempty" json:"feedback,omitempty"`
}

// ScoreResult is returned from submit and persisted onto the attempt.
// Questions is populated only when the quiz shows correct answers.
type ScoreResult struct {
	AttemptID         string           `json:"attempt_id"`
	QuizID            string           `json:"quiz_id"`
	StudentID         string           `json:"student_id"`
	Status            AttemptStatus    `json:"status"`
	Score             int              `json:"score"`
	TotalPoints       int              `json:"total_points"`
	Percentage        float64          `json:"percentage"`
	NeedsManualReview bool             `json:"needs_manual_review"`
	CompletionReason  string           `json:"completion_reason"`
	SubmittedAt       time.Time        `json:"submitted_at"`
	Questions         []QuestionResult `json:"questions,omitempty"`
}
