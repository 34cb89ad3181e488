// Package eligibility decides whether a student may start a quiz attempt.
// Outcomes are expected business results, not errors: callers branch on the
// code and the UI explains each one differently.
package eligibility

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"quiz-attempt-service/internal/models"
)

type Code string

const (
	Allowed             Code = "ALLOWED"
	NotYetAvailable     Code = "NOT_YET_AVAILABLE"
	DeadlinePassed      Code = "DEADLINE_PASSED"
	WrongPassword       Code = "WRONG_PASSWORD"
	AttemptLimitReached Code = "ATTEMPT_LIMIT_REACHED"
	AlreadyInProgress   Code = "ALREADY_IN_PROGRESS"
)

// Decision carries the outcome; ExistingAttemptID is set only for
// AlreadyInProgress so the client can resume instead of starting over.
type Decision struct {
	Code              Code   `json:"code"`
	ExistingAttemptID string `json:"existing_attempt_id,omitempty"`
}

// Input is everything the check needs; the caller gathers it so the check
// itself stays read-only and deterministic.
type Input struct {
	Quiz             *models.Quiz
	Now              time.Time
	Password         string
	FinishedAttempts int64
	InProgress       *models.Attempt
}

// Check runs the gate in order: availability window, password, resumable
// attempt, attempt limit. An existing in-progress attempt is reported before
// the limit so the client always learns it can resume.
func Check(in Input) Decision {
	quiz := in.Quiz

	if quiz.StartDate != nil && in.Now.Before(*quiz.StartDate) {
		return Decision{Code: NotYetAvailable}
	}
	if quiz.EndDate != nil && in.Now.After(*quiz.EndDate) {
		return Decision{Code: DeadlinePassed}
	}

	if quiz.PasswordProtected && !passwordMatches(quiz.Password, in.Password) {
		return Decision{Code: WrongPassword}
	}

	if in.InProgress != nil {
		return Decision{Code: AlreadyInProgress, ExistingAttemptID: in.InProgress.ID}
	}

	if quiz.AttemptsAllowed > 0 && in.FinishedAttempts >= int64(quiz.AttemptsAllowed) {
		return Decision{Code: AttemptLimitReached}
	}

	return Decision{Code: Allowed}
}

// passwordMatches compares against the stored bcrypt hash; rows written
// before hashing was introduced hold the plaintext and get a direct compare.
func passwordMatches(stored, supplied string) bool {
	if stored == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	return stored == supplied
}
