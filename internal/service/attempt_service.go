package service

import (
	"context"
	"errors"
	"time"

	"quiz-attempt-service/internal/eligibility"
	"quiz-attempt-service/internal/models"
	"quiz-attempt-service/internal/scoring"
)

// QuizStore is the read side of quiz storage. Implemented by the Mongo
// repository and its Redis-cached wrapper.
type QuizStore interface {
	FindByID(ctx context.Context, id string) (*models.Quiz, error)
	FindPublishedByID(ctx context.Context, id string) (*models.Quiz, error)
}

// AttemptStore owns attempt persistence. The bool results report whether an
// in-progress attempt matched the status-gated update.
type AttemptStore interface {
	Insert(ctx context.Context, attempt *models.Attempt) error
	FindByID(ctx context.Context, id string) (*models.Attempt, error)
	FindInProgress(ctx context.Context, studentID, quizID string) (*models.Attempt, error)
	CountFinished(ctx context.Context, studentID, quizID string) (int64, error)
	ListByStudent(ctx context.Context, studentID, quizID string) ([]models.Attempt, error)
	SaveAnswer(ctx context.Context, attemptID string, answer models.AttemptAnswer) (bool, error)
	SetQuestionFlag(ctx context.Context, attemptID, questionID string, flagged bool) (bool, error)
	SetRemainingTime(ctx context.Context, attemptID string, seconds int) (bool, error)
	FinalizeAttempt(ctx context.Context, attemptID string, fin models.AttemptFinalization) (bool, error)
}

// AttemptService drives the attempt state machine: in_progress via a passed
// eligibility check, self-loop saves while in_progress, one terminal
// transition to submitted or timed_out.
type AttemptService struct {
	quizzes  QuizStore
	attempts AttemptStore
	now      func() time.Time
}

func NewAttemptService(quizzes QuizStore, attempts AttemptStore) *AttemptService {
	return &AttemptService{quizzes: quizzes, attempts: attempts, now: time.Now}
}

// StartAttempt runs the eligibility gate and creates the attempt. A non-nil
// Decision with a code other than Allowed is a business outcome, not an
// error; attempt is non-nil only when a new attempt was created.
func (s *AttemptService) StartAttempt(ctx context.Context, studentID, quizID, password string) (*models.Attempt, *eligibility.Decision, error) {
	quiz, err := s.quizzes.FindPublishedByID(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}

	inProgress, err := s.attempts.FindInProgress(ctx, studentID, quizID)
	if err != nil {
		return nil, nil, err
	}
	finished, err := s.attempts.CountFinished(ctx, studentID, quizID)
	if err != nil {
		return nil, nil, err
	}

	decision := eligibility.Check(eligibility.Input{
		Quiz:             quiz,
		Now:              s.now(),
		Password:         password,
		FinishedAttempts: finished,
		InProgress:       inProgress,
	})
	if decision.Code != eligibility.Allowed {
		return nil, &decision, nil
	}

	attempt := &models.Attempt{
		QuizID:               quizID,
		StudentID:            studentID,
		StartTime:            s.now(),
		RemainingTimeSeconds: quiz.TimeLimitMinutes * 60,
		Answers:              []models.AttemptAnswer{},
		FlaggedQuestions:     []string{},
		Status:               models.AttemptInProgress,
		TotalPoints:          quiz.EffectiveTotalPoints(),
	}

	err = s.attempts.Insert(ctx, attempt)
	if errors.Is(err, models.ErrDuplicateInProgress) {
		// Lost a double-start race against the unique index; surface the
		// surviving attempt so the client resumes it.
		existing, ferr := s.attempts.FindInProgress(ctx, studentID, quizID)
		if ferr != nil {
			return nil, nil, ferr
		}
		d := eligibility.Decision{Code: eligibility.AlreadyInProgress}
		if existing != nil {
			d.ExistingAttemptID = existing.ID
		}
		return nil, &d, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return attempt, &decision, nil
}

// SaveAnswer upserts one answer on an in-progress attempt owned by the
// caller. The question must exist on the attempt's quiz.
func (s *AttemptService) SaveAnswer(ctx context.Context, studentID, attemptID, questionID string, selected []string, timeSpent int) error {
	attempt, err := s.ownedInProgress(ctx, studentID, attemptID)
	if err != nil {
		return err
	}

	quiz, err := s.quizzes.FindByID(ctx, attempt.QuizID)
	if err != nil {
		return err
	}
	if quiz.QuestionByID(questionID) == nil {
		return models.ErrQuestionNotFound
	}

	if selected == nil {
		selected = []string{}
	}
	matched, err := s.attempts.SaveAnswer(ctx, attemptID, models.AttemptAnswer{
		QuestionID:       questionID,
		SelectedAnswers:  selected,
		TimeSpentSeconds: timeSpent,
	})
	if err != nil {
		return err
	}
	if !matched {
		// Submitted between our read and the write.
		return models.ErrAttemptNotInProgress
	}
	return nil
}

// ToggleFlag flips the question's membership in the flagged set. The read
// decides the direction only; the write touches just this question, so
// concurrent toggles of different questions never lose each other.
func (s *AttemptService) ToggleFlag(ctx context.Context, studentID, attemptID, questionID string) (bool, error) {
	attempt, err := s.ownedInProgress(ctx, studentID, attemptID)
	if err != nil {
		return false, err
	}

	quiz, err := s.quizzes.FindByID(ctx, attempt.QuizID)
	if err != nil {
		return false, err
	}
	if quiz.QuestionByID(questionID) == nil {
		return false, models.ErrQuestionNotFound
	}

	nowFlagged := !attempt.IsFlagged(questionID)
	matched, err := s.attempts.SetQuestionFlag(ctx, attemptID, questionID, nowFlagged)
	if err != nil {
		return false, err
	}
	if !matched {
		return false, models.ErrAttemptNotInProgress
	}
	return nowFlagged, nil
}

// UpdateRemainingTime overwrites the countdown. The client owns the timer;
// the server only refuses writes after the attempt left in_progress.
func (s *AttemptService) UpdateRemainingTime(ctx context.Context, studentID, attemptID string, seconds int) error {
	if _, err := s.ownedInProgress(ctx, studentID, attemptID); err != nil {
		return err
	}
	if seconds < 0 {
		seconds = 0
	}
	matched, err := s.attempts.SetRemainingTime(ctx, attemptID, seconds)
	if err != nil {
		return err
	}
	if !matched {
		return models.ErrAttemptNotInProgress
	}
	return nil
}

// Submit scores the attempt and performs the terminal transition. A timeout
// runs the identical path with status timed_out. Per-question detail is
// included only when the quiz shows correct answers.
func (s *AttemptService) Submit(ctx context.Context, studentID, attemptID, reason string) (*models.ScoreResult, error) {
	attempt, err := s.ownedInProgress(ctx, studentID, attemptID)
	if err != nil {
		return nil, err
	}

	quiz, err := s.quizzes.FindByID(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}

	summary := scoring.Score(quiz.Questions, attempt.Answers, attempt.TotalPoints)

	status := models.AttemptSubmitted
	if reason == models.CompletionReasonTimeout {
		status = models.AttemptTimedOut
	} else {
		reason = models.CompletionReasonSubmit
	}

	endTime := s.now()
	matched, err := s.attempts.FinalizeAttempt(ctx, attemptID, models.AttemptFinalization{
		Status:           status,
		Score:            summary.Score,
		Percentage:       summary.Percentage,
		CompletionReason: reason,
		EndTime:          endTime,
	})
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, models.ErrAttemptNotInProgress
	}

	result := &models.ScoreResult{
		AttemptID:         attemptID,
		QuizID:            attempt.QuizID,
		StudentID:         studentID,
		Status:            status,
		Score:             summary.Score,
		TotalPoints:       summary.TotalPoints,
		Percentage:        summary.Percentage,
		NeedsManualReview: summary.NeedsManualReview,
		CompletionReason:  reason,
		SubmittedAt:       endTime,
	}
	if quiz.ShowCorrectAnswers {
		result.Questions = summary.Questions
	}
	return result, nil
}

// GetAttempt returns the caller's attempt in any state.
func (s *AttemptService) GetAttempt(ctx context.Context, studentID, attemptID string) (*models.Attempt, error) {
	attempt, err := s.attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.StudentID != studentID {
		return nil, models.ErrForbidden
	}
	return attempt, nil
}

// ownedInProgress loads the attempt and enforces ownership and liveness, in
// that order, so a foreign attempt never leaks its state through the error.
func (s *AttemptService) ownedInProgress(ctx context.Context, studentID, attemptID string) (*models.Attempt, error) {
	attempt, err := s.attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.StudentID != studentID {
		return nil, models.ErrForbidden
	}
	if attempt.Status != models.AttemptInProgress {
		return nil, models.ErrAttemptNotInProgress
	}
	return attempt, nil
}
