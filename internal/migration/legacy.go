// Package migration rewrites historical index-encoded answers to option
// value strings. Scoring compares values only; running this once against an
// old database is what makes that safe. The scoring engine itself never
// branches on the legacy representation.
package migration

import (
	"context"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// NormalizeAnswerValues maps a raw answer array onto option-value strings.
// Numeric elements (and numeric strings that are not themselves an option)
// inside the option range are treated as legacy indices. Returns the
// normalized slice and whether anything changed.
func NormalizeAnswerValues(raw []interface{}, options []string) ([]string, bool) {
	out := make([]string, 0, len(raw))
	changed := false

	for _, v := range raw {
		switch val := v.(type) {
		case string:
			if idx, ok := legacyIndex(val, options); ok {
				out = append(out, options[idx])
				changed = true
			} else {
				out = append(out, val)
			}
		case int32:
			out = append(out, resolveIndex(int(val), options))
			changed = true
		case int64:
			out = append(out, resolveIndex(int(val), options))
			changed = true
		case float64:
			out = append(out, resolveIndex(int(val), options))
			changed = true
		default:
			out = append(out, fmt.Sprint(val))
			changed = true
		}
	}
	return out, changed
}

// legacyIndex reports whether a string answer is an index into options. A
// numeric string that exactly matches an option value stays a value: "2" on
// a quiz whose options include "2" is an answer, not an index.
func legacyIndex(s string, options []string) (int, bool) {
	if len(options) == 0 {
		return 0, false
	}
	for _, opt := range options {
		if opt == s {
			return 0, false
		}
	}
	idx, err := strconv.Atoi(s)
	if err != nil || idx < 0 || idx >= len(options) {
		return 0, false
	}
	return idx, true
}

func resolveIndex(idx int, options []string) string {
	if idx >= 0 && idx < len(options) {
		return options[idx]
	}
	// Out of range: keep the literal so the bad value stays visible instead
	// of silently scoring as some option.
	return strconv.Itoa(idx)
}

// Report summarizes one migration run.
type Report struct {
	QuizzesScanned     int `json:"quizzes_scanned"`
	QuestionsRewritten int `json:"questions_rewritten"`
	AttemptsScanned    int `json:"attempts_scanned"`
	AnswersRewritten   int `json:"answers_rewritten"`
}

// Runner walks the quizzes and attempts collections and rewrites legacy
// answers in place. Safe to run repeatedly: normalized documents are
// skipped.
type Runner struct {
	quizzes  *mongo.Collection
	attempts *mongo.Collection
}

func NewRunner(db *mongo.Database) *Runner {
	return &Runner{
		quizzes:  db.Collection("quizzes"),
		attempts: db.Collection("attempts"),
	}
}

func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	// question options per (quiz, question), reused for the attempt pass
	optionsByQuiz := make(map[string]map[string][]string)

	cur, err := r.quizzes.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to scan quizzes: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		report.QuizzesScanned++

		quizID, _ := doc["_id"].(string)
		questions, _ := doc["questions"].(primitive.A)
		quizOptions := make(map[string][]string)
		quizChanged := false

		for i, q := range questions {
			question, ok := q.(bson.M)
			if !ok {
				continue
			}
			questionID, _ := question["question_id"].(string)
			options := stringSlice(question["options"])
			quizOptions[questionID] = options

			raw, ok := question["correct_answers"].(primitive.A)
			if !ok {
				continue
			}
			normalized, changed := NormalizeAnswerValues(raw, options)
			if changed {
				question["correct_answers"] = normalized
				questions[i] = question
				quizChanged = true
				report.QuestionsRewritten++
			}
		}

		if quizChanged {
			_, err := r.quizzes.UpdateOne(ctx,
				bson.M{"_id": doc["_id"]},
				bson.M{"$set": bson.M{"questions": questions}},
			)
			if err != nil {
				return nil, fmt.Errorf("failed to rewrite quiz %s: %w", quizID, err)
			}
		}
		optionsByQuiz[quizID] = quizOptions
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	acur, err := r.attempts.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to scan attempts: %w", err)
	}
	defer acur.Close(ctx)

	for acur.Next(ctx) {
		var doc bson.M
		if err := acur.Decode(&doc); err != nil {
			return nil, err
		}
		report.AttemptsScanned++

		quizID, _ := doc["quiz_id"].(string)
		quizOptions := optionsByQuiz[quizID]
		answers, ok := doc["answers"].(primitive.A)
		if !ok || quizOptions == nil {
			continue
		}

		attemptChanged := false
		for i, a := range answers {
			answer, ok := a.(bson.M)
			if !ok {
				continue
			}
			questionID, _ := answer["question_id"].(string)
			raw, ok := answer["selected_answers"].(primitive.A)
			if !ok {
				continue
			}
			normalized, changed := NormalizeAnswerValues(raw, quizOptions[questionID])
			if changed {
				answer["selected_answers"] = normalized
				answers[i] = answer
				attemptChanged = true
				report.AnswersRewritten++
			}
		}

		if attemptChanged {
			_, err := r.attempts.UpdateOne(ctx,
				bson.M{"_id": doc["_id"]},
				bson.M{"$set": bson.M{"answers": answers}},
			)
			if err != nil {
				return nil, fmt.Errorf("failed to rewrite attempt answers: %w", err)
			}
		}
	}
	return report, acur.Err()
}

func stringSlice(v interface{}) []string {
	arr, ok := v.(primitive.A)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		} else {
			out = append(out, fmt.Sprint(e))
		}
	}
	return out
}
