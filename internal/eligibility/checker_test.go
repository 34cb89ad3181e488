package eligibility

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"quiz-attempt-service/internal/models"
)

var now = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func openQuiz() *models.Quiz {
	return &models.Quiz{ID: "quiz1", Status: models.QuizStatusPublished}
}

func TestCheckAvailabilityWindow(t *testing.T) {
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	tests := []struct {
		name  string
		start *time.Time
		end   *time.Time
		want  Code
	}{
		{"no window", nil, nil, Allowed},
		{"inside window", &before, &after, Allowed},
		{"not yet open", &after, nil, NotYetAvailable},
		{"deadline passed", nil, &before, DeadlinePassed},
		{"start boundary is open", &now, nil, Allowed},
		{"end boundary is open", nil, &now, Allowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quiz := openQuiz()
			quiz.StartDate = tt.start
			quiz.EndDate = tt.end

			got := Check(Input{Quiz: quiz, Now: now})
			if got.Code != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got.Code)
			}
		})
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	tests := []struct {
		name     string
		stored   string
		supplied string
		want     Code
	}{
		{"correct hashed password", string(hash), "s3cret", Allowed},
		{"wrong hashed password", string(hash), "guess", WrongPassword},
		{"legacy plaintext match", "s3cret", "s3cret", Allowed},
		{"legacy plaintext mismatch", "s3cret", "guess", WrongPassword},
		{"empty supplied", string(hash), "", WrongPassword},
		{"protected but no stored password", "", "anything", WrongPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quiz := openQuiz()
			quiz.PasswordProtected = true
			quiz.Password = tt.stored

			got := Check(Input{Quiz: quiz, Now: now, Password: tt.supplied})
			if got.Code != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got.Code)
			}
		})
	}
}

func TestCheckUnprotectedQuizIgnoresPassword(t *testing.T) {
	got := Check(Input{Quiz: openQuiz(), Now: now, Password: "whatever"})
	if got.Code != Allowed {
		t.Errorf("Expected ALLOWED, got %s", got.Code)
	}
}

func TestCheckAlreadyInProgress(t *testing.T) {
	quiz := openQuiz()
	quiz.AttemptsAllowed = 1

	got := Check(Input{
		Quiz:             quiz,
		Now:              now,
		FinishedAttempts: 1,
		InProgress:       &models.Attempt{ID: "attempt42"},
	})

	// An existing attempt wins over the exhausted limit so the client can resume.
	if got.Code != AlreadyInProgress {
		t.Errorf("Expected ALREADY_IN_PROGRESS, got %s", got.Code)
	}
	if got.ExistingAttemptID != "attempt42" {
		t.Errorf("Expected existing attempt ID attempt42, got %q", got.ExistingAttemptID)
	}
}

func TestCheckAttemptLimit(t *testing.T) {
	tests := []struct {
		name     string
		allowed  int
		finished int64
		want     Code
	}{
		{"under limit", 3, 2, Allowed},
		{"at limit", 3, 3, AttemptLimitReached},
		{"over limit", 3, 4, AttemptLimitReached},
		{"zero means unlimited", 0, 50, Allowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quiz := openQuiz()
			quiz.AttemptsAllowed = tt.allowed

			got := Check(Input{Quiz: quiz, Now: now, FinishedAttempts: tt.finished})
			if got.Code != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got.Code)
			}
		})
	}
}

func TestCheckOrderWindowBeforePassword(t *testing.T) {
	past := now.Add(-time.Hour)
	quiz := openQuiz()
	quiz.EndDate = &past
	quiz.PasswordProtected = true
	quiz.Password = "s3cret"

	got := Check(Input{Quiz: quiz, Now: now, Password: "wrong"})
	if got.Code != DeadlinePassed {
		t.Errorf("Expected DEADLINE_PASSED, got %s", got.Code)
	}
}
