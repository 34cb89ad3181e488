package service

import (
	"context"

	"quiz-attempt-service/internal/models"
)

// QuizService serves the student-facing quiz read surface.
type QuizService struct {
	quizzes  QuizStore
	attempts AttemptStore
}

func NewQuizService(quizzes QuizStore, attempts AttemptStore) *QuizService {
	return &QuizService{quizzes: quizzes, attempts: attempts}
}

// ResumeView bundles what the client needs to render the quiz start/resume
// screen: the sanitized quiz, the open attempt if one exists, and how many
// attempts the student has already used.
type ResumeView struct {
	Quiz          *models.StudentQuizView `json:"quiz"`
	ActiveAttempt *models.Attempt         `json:"active_attempt,omitempty"`
	AttemptsUsed  int64                   `json:"attempts_used"`
}

func (s *QuizService) ResumeView(ctx context.Context, studentID, quizID string) (*ResumeView, error) {
	quiz, err := s.quizzes.FindPublishedByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	active, err := s.attempts.FindInProgress(ctx, studentID, quizID)
	if err != nil {
		return nil, err
	}
	used, err := s.attempts.CountFinished(ctx, studentID, quizID)
	if err != nil {
		return nil, err
	}

	return &ResumeView{
		Quiz:          quiz.StudentView(),
		ActiveAttempt: active,
		AttemptsUsed:  used,
	}, nil
}

// AttemptHistory lists the student's past and current attempts for a quiz,
// newest first.
func (s *QuizService) AttemptHistory(ctx context.Context, studentID, quizID string) ([]models.Attempt, error) {
	if _, err := s.quizzes.FindPublishedByID(ctx, quizID); err != nil {
		return nil, err
	}
	return s.attempts.ListByStudent(ctx, studentID, quizID)
}
