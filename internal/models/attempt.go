package models

import "time"

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptTimedOut   AttemptStatus = "timed_out"
)

const (
	CompletionReasonSubmit  = "submit"
	CompletionReasonTimeout = "timeout"
)

// Terminal reports whether the status forbids further mutation.
func (s AttemptStatus) Terminal() bool {
	return s == AttemptSubmitted || s == AttemptCompleted || s == AttemptTimedOut
}

// CountsTowardLimit reports whether the status consumes one of the quiz's
// allowed attempts.
func (s AttemptStatus) CountsTowardLimit() bool {
	return s == AttemptSubmitted || s == AttemptCompleted
}

// AttemptAnswer is embedded in the attempt, keyed by question ID; a second
// save for the same question replaces the entry.
type AttemptAnswer struct {
	QuestionID       string    `bson:"question_id" json:"question_id"`
	SelectedAnswers  []string  `bson:"selected_answers" json:"selected_answers"`
	TimeSpentSeconds int       `bson:"time_spent_seconds,omitempty" json:"time_spent_seconds,omitempty"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updated_at"`
}

// Attempt is one student's pass at one quiz. TotalPoints is snapshotted from
// the quiz when the attempt starts and never recomputed.
type Attempt struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	QuizID    string `bson:"quiz_id" json:"quiz_id"`
	StudentID string `bson:"student_id" json:"student_id"`

	StartTime            time.Time  `bson:"start_time" json:"start_time"`
	EndTime              *time.Time `bson:"end_time,omitempty" json:"end_time,omitempty"`
	SubmittedAt          *time.Time `bson:"submitted_at,omitempty" json:"submitted_at,omitempty"`
	RemainingTimeSeconds int        `bson:"remaining_time_seconds" json:"remaining_time_seconds"`

	Answers          []AttemptAnswer `bson:"answers" json:"answers"`
	FlaggedQuestions []string        `bson:"flagged_questions" json:"flagged_questions"`

	Status           AttemptStatus `bson:"status" json:"status"`
	Score            int           `bson:"score" json:"score"`
	TotalPoints      int           `bson:"total_points" json:"total_points"`
	Percentage       float64       `bson:"percentage" json:"percentage"`
	CompletionReason string        `bson:"completion_reason,omitempty" json:"completion_reason,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// AnswerFor returns the stored answer for a question or nil.
func (a *Attempt) AnswerFor(questionID string) *AttemptAnswer {
	for i := range a.Answers {
		if a.Answers[i].QuestionID == questionID {
			return &a.Answers[i]
		}
	}
	return nil
}

// IsFlagged reports membership in the flagged-question set.
func (a *Attempt) IsFlagged(questionID string) bool {
	for _, id := range a.FlaggedQuestions {
		if id == questionID {
			return true
		}
	}
	return false
}

// AttemptFinalization carries the one-shot terminal update written when an
// attempt is submitted or times out.
type AttemptFinalization struct {
	Status           AttemptStatus
	Score            int
	Percentage       float64
	CompletionReason string
	EndTime          time.Time
}
