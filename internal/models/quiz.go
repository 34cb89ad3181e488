package models

import (
	"math/rand"
	"time"
)

const (
	QuizStatusDraft     = "draft"
	QuizStatusPublished = "published"
	QuizStatusArchived  = "archived"
)

type Quiz struct {
	ID          string `bson:"_id,omitempty" json:"id"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	TeacherID   string `bson:"teacher_id" json:"teacher_id"`
	ClassID     string `bson:"class_id" json:"class_id"`
	SubjectID   string `bson:"subject_id" json:"subject_id"`
	SchoolID    string `bson:"school_id" json:"school_id"`

	TimeLimitMinutes int        `bson:"time_limit_minutes" json:"time_limit_minutes"`
	AttemptsAllowed  int        `bson:"attempts_allowed" json:"attempts_allowed"` // 0 = unlimited
	StartDate        *time.Time `bson:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate          *time.Time `bson:"end_date,omitempty" json:"end_date,omitempty"`

	RandomizeQuestions   bool   `bson:"randomize_questions" json:"randomize_questions"`
	RandomizeAnswers     bool   `bson:"randomize_answers" json:"randomize_answers"`
	ShowCorrectAnswers   bool   `bson:"show_correct_answers" json:"show_correct_answers"`
	ShowScoreImmediately bool   `bson:"show_score_immediately" json:"show_score_immediately"`
	OneQuestionAtATime   bool   `bson:"one_question_at_a_time" json:"one_question_at_a_time"`
	PasswordProtected    bool   `bson:"password_protected" json:"password_protected"`
	Password             string `bson:"password,omitempty" json:"-"` // bcrypt hash

	Status      string     `bson:"status" json:"status"`
	Questions   []Question `bson:"questions" json:"questions"`
	TotalPoints int        `bson:"total_points" json:"total_points"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

// EffectiveTotalPoints returns the stored total, falling back to the sum of
// question points when the quiz-save pipeline has not derived it yet.
func (q *Quiz) EffectiveTotalPoints() int {
	if q.TotalPoints > 0 {
		return q.TotalPoints
	}
	total := 0
	for i := range q.Questions {
		total += q.Questions[i].EffectivePoints()
	}
	return total
}

// QuestionByID returns the embedded question or nil.
func (q *Quiz) QuestionByID(questionID string) *Question {
	for i := range q.Questions {
		if q.Questions[i].ID == questionID {
			return &q.Questions[i]
		}
	}
	return nil
}

// StudentQuizView is the quiz as handed to a student client: no password
// hash, and no answer keys or feedback unless the teacher opted in.
type StudentQuizView struct {
	ID                   string            `json:"id"`
	Title                string            `json:"title"`
	Description          string            `json:"description,omitempty"`
	ClassID              string            `json:"class_id"`
	SubjectID            string            `json:"subject_id"`
	TimeLimitMinutes     int               `json:"time_limit_minutes"`
	AttemptsAllowed      int               `json:"attempts_allowed"`
	StartDate            *time.Time        `json:"start_date,omitempty"`
	EndDate              *time.Time        `json:"end_date,omitempty"`
	ShowCorrectAnswers   bool              `json:"show_correct_answers"`
	ShowScoreImmediately bool              `json:"show_score_immediately"`
	OneQuestionAtATime   bool              `json:"one_question_at_a_time"`
	PasswordProtected    bool              `json:"password_protected"`
	Questions            []StudentQuestion `json:"questions"`
	TotalPoints          int               `json:"total_points"`
}

type StudentQuestion struct {
	ID             string       `json:"question_id"`
	Type           QuestionType `json:"type"`
	Prompt         string       `json:"prompt"`
	Options        []string     `json:"options,omitempty"`
	Points         int          `json:"points"`
	Required       bool         `json:"required"`
	CorrectAnswers []string     `json:"correct_answers,omitempty"`
	Feedback       string       `json:"feedback,omitempty"`
}

// StudentView strips answer keys (unless ShowCorrectAnswers) and applies the
// randomize flags to question and option order.
func (q *Quiz) StudentView() *StudentQuizView {
	view := &StudentQuizView{
		ID:                   q.ID,
		Title:                q.Title,
		Description:          q.Description,
		ClassID:              q.ClassID,
		SubjectID:            q.SubjectID,
		TimeLimitMinutes:     q.TimeLimitMinutes,
		AttemptsAllowed:      q.AttemptsAllowed,
		StartDate:            q.StartDate,
		EndDate:              q.EndDate,
		ShowCorrectAnswers:   q.ShowCorrectAnswers,
		ShowScoreImmediately: q.ShowScoreImmediately,
		OneQuestionAtATime:   q.OneQuestionAtATime,
		PasswordProtected:    q.PasswordProtected,
		TotalPoints:          q.EffectiveTotalPoints(),
	}

	view.Questions = make([]StudentQuestion, 0, len(q.Questions))
	for i := range q.Questions {
		src := &q.Questions[i]
		sq := StudentQuestion{
			ID:       src.ID,
			Type:     src.Type,
			Prompt:   src.Prompt,
			Options:  append([]string(nil), src.Options...),
			Points:   src.EffectivePoints(),
			Required: src.Required,
		}
		if q.ShowCorrectAnswers {
			sq.CorrectAnswers = append([]string(nil), src.CorrectAnswers...)
			sq.Feedback = src.Feedback
		}
		if q.RandomizeAnswers && len(sq.Options) > 1 {
			rand.Shuffle(len(sq.Options), func(a, b int) {
				sq.Options[a], sq.Options[b] = sq.Options[b], sq.Options[a]
			})
		}
		view.Questions = append(view.Questions, sq)
	}

	if q.RandomizeQuestions && len(view.Questions) > 1 {
		rand.Shuffle(len(view.Questions), func(a, b int) {
			view.Questions[a], view.Questions[b] = view.Questions[b], view.Questions[a]
		})
	}
	return view
}
