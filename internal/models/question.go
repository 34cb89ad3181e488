package models

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionMultipleSelect QuestionType = "multiple_select"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionShortAnswer    QuestionType = "short_answer"
	QuestionEssay          QuestionType = "essay"
	QuestionFillBlank      QuestionType = "fill_blank"
	QuestionMatching       QuestionType = "matching"
	QuestionOrdering       QuestionType = "ordering"
)

// Question is embedded in its owning Quiz document. CorrectAnswers holds
// option value strings, never option indices; historical index-encoded
// documents are rewritten by the migration package before scoring sees them.
type Question struct {
	ID             string       `bson:"question_id" json:"question_id"`
	Type           QuestionType `bson:"type" json:"type"`
	Prompt         string       `bson:"prompt" json:"prompt"`
	Options        []string     `bson:"options,omitempty" json:"options,omitempty"`
	CorrectAnswers []string     `bson:"correct_answers,omitempty" json:"correct_answers,omitempty"`
	Points         int          `bson:"points" json:"points"`
	Feedback       string       `bson:"feedback,omitempty" json:"feedback,omitempty"`
	Tags           []string     `bson:"tags,omitempty" json:"tags,omitempty"`
	Required       bool         `bson:"required" json:"required"`
}

// EffectivePoints returns the question's point value, defaulting to 1.
func (q *Question) EffectivePoints() int {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}

// AutoScored reports whether the type has an automated comparison rule.
// The remaining types are placeholders for manual grading and contribute
// zero to the automated score.
func (q *Question) AutoScored() bool {
	switch q.Type {
	case QuestionMultipleChoice, QuestionMultipleSelect, QuestionTrueFalse:
		return true
	}
	return false
}
