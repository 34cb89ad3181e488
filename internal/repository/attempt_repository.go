package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quiz-attempt-service/internal/models"
)

type AttemptRepository struct {
	Col *mongo.Collection
}

func NewAttemptRepository(db *mongo.Database) *AttemptRepository {
	return &AttemptRepository{Col: db.Collection("attempts")}
}

// InitializeIndexes creates the attempt indexes. The partial unique index on
// (student_id, quiz_id) over in-progress documents is the atomic guard behind
// the at-most-one-in-progress invariant: a racing double start loses at
// insert time with a duplicate key error instead of creating a second
// attempt.
func (r *AttemptRepository) InitializeIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "student_id", Value: 1},
				{Key: "quiz_id", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.D{
					{Key: "status", Value: string(models.AttemptInProgress)},
				}),
		},
		{
			Keys: bson.D{
				{Key: "student_id", Value: 1},
				{Key: "quiz_id", Value: 1},
				{Key: "status", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "quiz_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
	}

	_, err := r.Col.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create attempt indexes: %w", err)
	}
	return nil
}

func (r *AttemptRepository) Insert(ctx context.Context, attempt *models.Attempt) error {
	if attempt.ID == "" {
		attempt.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	attempt.CreatedAt = now
	attempt.UpdatedAt = now

	_, err := r.Col.InsertOne(ctx, attempt)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateInProgress
	}
	if err != nil {
		return fmt.Errorf("failed to insert attempt: %w", err)
	}
	return nil
}

func (r *AttemptRepository) FindByID(ctx context.Context, id string) (*models.Attempt, error) {
	var attempt models.Attempt
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&attempt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrAttemptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt %s: %w", id, err)
	}
	return &attempt, nil
}

// FindInProgress returns the student's open attempt for the quiz, or nil
// when there is none.
func (r *AttemptRepository) FindInProgress(ctx context.Context, studentID, quizID string) (*models.Attempt, error) {
	var attempt models.Attempt
	err := r.Col.FindOne(ctx, bson.M{
		"student_id": studentID,
		"quiz_id":    quizID,
		"status":     models.AttemptInProgress,
	}).Decode(&attempt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up in-progress attempt: %w", err)
	}
	return &attempt, nil
}

// CountFinished counts the attempts that consume the quiz's attempt limit.
func (r *AttemptRepository) CountFinished(ctx context.Context, studentID, quizID string) (int64, error) {
	count, err := r.Col.CountDocuments(ctx, bson.M{
		"student_id": studentID,
		"quiz_id":    quizID,
		"status": bson.M{"$in": []models.AttemptStatus{
			models.AttemptSubmitted,
			models.AttemptCompleted,
		}},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count finished attempts: %w", err)
	}
	return count, nil
}

// ListByStudent returns the student's attempts for a quiz, newest first.
func (r *AttemptRepository) ListByStudent(ctx context.Context, studentID, quizID string) ([]models.Attempt, error) {
	cur, err := r.Col.Find(ctx,
		bson.M{"student_id": studentID, "quiz_id": quizID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer cur.Close(ctx)

	var attempts []models.Attempt
	for cur.Next(ctx) {
		var a models.Attempt
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, cur.Err()
}

// SaveAnswer upserts the answer entry for one question. Every filter carries
// status=in_progress so a terminal attempt can never be written. Returns
// false when no in-progress attempt matched.
func (r *AttemptRepository) SaveAnswer(ctx context.Context, attemptID string, answer models.AttemptAnswer) (bool, error) {
	now := time.Now()
	answer.UpdatedAt = now

	// Replace an existing entry in place.
	res, err := r.Col.UpdateOne(ctx,
		bson.M{
			"_id":                 attemptID,
			"status":              models.AttemptInProgress,
			"answers.question_id": answer.QuestionID,
		},
		bson.M{"$set": bson.M{
			"answers.$.selected_answers":   answer.SelectedAnswers,
			"answers.$.time_spent_seconds": answer.TimeSpentSeconds,
			"answers.$.updated_at":         answer.UpdatedAt,
			"updated_at":                   now,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to update answer: %w", err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}

	// First save for this question; the $ne guard keeps a concurrent save
	// from pushing a duplicate entry.
	res, err = r.Col.UpdateOne(ctx,
		bson.M{
			"_id":                 attemptID,
			"status":              models.AttemptInProgress,
			"answers.question_id": bson.M{"$ne": answer.QuestionID},
		},
		bson.M{
			"$push": bson.M{"answers": answer},
			"$set":  bson.M{"updated_at": now},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to push answer: %w", err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}

	// The entry may have appeared between the two updates; retry the
	// in-place path once before reporting no match.
	res, err = r.Col.UpdateOne(ctx,
		bson.M{
			"_id":                 attemptID,
			"status":              models.AttemptInProgress,
			"answers.question_id": answer.QuestionID,
		},
		bson.M{"$set": bson.M{
			"answers.$.selected_answers":   answer.SelectedAnswers,
			"answers.$.time_spent_seconds": answer.TimeSpentSeconds,
			"answers.$.updated_at":         answer.UpdatedAt,
			"updated_at":                   now,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to update answer: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// SetQuestionFlag adds or removes one question from the flagged set,
// status-gated. $addToSet and $pull touch only this question's membership,
// so flag operations on different questions never overwrite each other;
// only toggles of the same question contend.
func (r *AttemptRepository) SetQuestionFlag(ctx context.Context, attemptID, questionID string, flagged bool) (bool, error) {
	update := bson.M{
		"$pull": bson.M{"flagged_questions": questionID},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	if flagged {
		update = bson.M{
			"$addToSet": bson.M{"flagged_questions": questionID},
			"$set":      bson.M{"updated_at": time.Now()},
		}
	}

	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": attemptID, "status": models.AttemptInProgress},
		update,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update question flag: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// SetRemainingTime overwrites the countdown, status-gated.
func (r *AttemptRepository) SetRemainingTime(ctx context.Context, attemptID string, seconds int) (bool, error) {
	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": attemptID, "status": models.AttemptInProgress},
		bson.M{"$set": bson.M{
			"remaining_time_seconds": seconds,
			"updated_at":             time.Now(),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to update remaining time: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// FinalizeAttempt performs the single terminal transition. The status gate
// in the filter makes it exactly-once: the second of two racing submits
// matches nothing and reports false.
func (r *AttemptRepository) FinalizeAttempt(ctx context.Context, attemptID string, fin models.AttemptFinalization) (bool, error) {
	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": attemptID, "status": models.AttemptInProgress},
		bson.M{"$set": bson.M{
			"status":            fin.Status,
			"score":             fin.Score,
			"percentage":        fin.Percentage,
			"completion_reason": fin.CompletionReason,
			"end_time":          fin.EndTime,
			"submitted_at":      fin.EndTime,
			"updated_at":        fin.EndTime,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to finalize attempt: %w", err)
	}
	return res.MatchedCount > 0, nil
}
