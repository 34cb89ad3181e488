package repository

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"

	"quiz-attempt-service/internal/models"
)

const quizCacheTTL = 5 * time.Minute

// CachedQuizRepository fronts the Mongo quiz repository with a Redis cache.
// Attempt traffic re-reads the quiz on every save, so quiz documents are the
// hottest read in the service. Cache misses and Redis failures fall through
// to Mongo.
type CachedQuizRepository struct {
	inner  *QuizRepository
	client *redis.Client
}

func NewCachedQuizRepository(inner *QuizRepository, client *redis.Client) *CachedQuizRepository {
	return &CachedQuizRepository{inner: inner, client: client}
}

func (r *CachedQuizRepository) FindByID(ctx context.Context, id string) (*models.Quiz, error) {
	key := "quiz-attempt:quiz:" + id

	// bson keeps fields the JSON view hides, the password hash in
	// particular, so a cache hit behaves exactly like a Mongo read.
	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var quiz models.Quiz
		if err := bson.Unmarshal(raw, &quiz); err == nil {
			return &quiz, nil
		}
	}

	quiz, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, err := bson.Marshal(quiz); err == nil {
		if err := r.client.Set(ctx, key, raw, quizCacheTTL).Err(); err != nil {
			log.Printf("quiz cache write failed for %s: %s", id, err)
		}
	}
	return quiz, nil
}

func (r *CachedQuizRepository) FindPublishedByID(ctx context.Context, id string) (*models.Quiz, error) {
	quiz, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quiz.Status != models.QuizStatusPublished {
		return nil, models.ErrQuizNotFound
	}
	return quiz, nil
}
