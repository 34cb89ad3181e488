package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"quiz-attempt-service/internal/models"
)

// QuizRepository reads quizzes. Quiz documents are written by the teacher
// provisioning flow; this service only reads them, and reads them from a
// single collection so the teacher and student surfaces never diverge.
type QuizRepository struct {
	Col *mongo.Collection
}

func NewQuizRepository(db *mongo.Database) *QuizRepository {
	return &QuizRepository{Col: db.Collection("quizzes")}
}

func (r *QuizRepository) FindByID(ctx context.Context, id string) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&quiz)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz %s: %w", id, err)
	}
	return &quiz, nil
}

// FindPublishedByID is the student-facing lookup: draft and archived quizzes
// do not exist as far as students are concerned.
func (r *QuizRepository) FindPublishedByID(ctx context.Context, id string) (*models.Quiz, error) {
	quiz, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quiz.Status != models.QuizStatusPublished {
		return nil, models.ErrQuizNotFound
	}
	return quiz, nil
}
