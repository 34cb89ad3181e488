// Package scoring computes attempt scores. It is pure: no storage access,
// no side effects; the attempt service persists whatever it returns.
package scoring

import (
	"math"
	"sort"

	"quiz-attempt-service/internal/models"
)

// Summary aggregates the per-question results for one attempt.
type Summary struct {
	Score             int
	TotalPoints       int
	Percentage        float64
	NeedsManualReview bool
	Questions         []models.QuestionResult
}

// Score walks every question of the quiz, matches the attempt's answer by
// question ID (absent means unanswered, zero points) and applies the
// type-specific rule. totalPoints is the attempt's snapshot, used as the
// percentage denominator; a zero denominator yields percentage 0.
func Score(questions []models.Question, answers []models.AttemptAnswer, totalPoints int) Summary {
	byQuestion := make(map[string][]string, len(answers))
	for i := range answers {
		byQuestion[answers[i].QuestionID] = answers[i].SelectedAnswers
	}

	summary := Summary{
		TotalPoints: totalPoints,
		Questions:   make([]models.QuestionResult, 0, len(questions)),
	}

	for i := range questions {
		q := &questions[i]
		selected, answered := byQuestion[q.ID]

		result := models.QuestionResult{
			QuestionID:      q.ID,
			MaxScore:        q.EffectivePoints(),
			SelectedAnswers: selected,
			CorrectAnswers:  q.CorrectAnswers,
			Feedback:        q.Feedback,
		}

		if !q.AutoScored() {
			// Manual-grading placeholder types score 0 and are flagged for
			// teacher review when the student wrote something.
			result.NeedsReview = answered && len(selected) > 0
			summary.NeedsManualReview = summary.NeedsManualReview || result.NeedsReview
		} else if answered && isCorrect(q, selected) {
			result.Correct = true
			result.Score = result.MaxScore
			summary.Score += result.Score
		}

		summary.Questions = append(summary.Questions, result)
	}

	summary.Percentage = Percentage(summary.Score, totalPoints)
	return summary
}

// isCorrect applies the comparison rule for auto-scored types. No partial
// credit anywhere.
func isCorrect(q *models.Question, selected []string) bool {
	switch q.Type {
	case models.QuestionMultipleChoice, models.QuestionTrueFalse:
		return len(q.CorrectAnswers) == 1 && len(selected) == 1 && selected[0] == q.CorrectAnswers[0]
	case models.QuestionMultipleSelect:
		return equalSets(selected, q.CorrectAnswers)
	}
	return false
}

// equalSets compares two answer slices as sets, order-independent.
func equalSets(a, b []string) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// Percentage returns score/totalPoints*100 rounded to two decimal places,
// and 0 when totalPoints is 0 rather than NaN.
func Percentage(score, totalPoints int) float64 {
	if totalPoints <= 0 {
		return 0
	}
	return math.Round(float64(score)/float64(totalPoints)*100*100) / 100
}
