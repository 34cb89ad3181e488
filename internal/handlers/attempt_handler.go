package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"quiz-attempt-service/internal/eligibility"
	"quiz-attempt-service/internal/models"
	"quiz-attempt-service/internal/service"
)

var (
	attemptsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_attempts_started_total",
			Help: "Attempt start requests by outcome",
		},
		[]string{"outcome"}, // created, or the lowered eligibility code
	)

	attemptsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_attempts_finished_total",
			Help: "Terminal attempt transitions by status",
		},
		[]string{"status"}, // submitted, timed_out
	)

	submitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quiz_attempt_submit_duration_seconds",
			Help:    "Time spent scoring and finalizing a submit",
			Buckets: prometheus.DefBuckets,
		},
	)
)

type AttemptHandler struct {
	Service *service.AttemptService
}

func NewAttemptHandler(s *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{Service: s}
}

// StartAttempt creates a new attempt after the eligibility gate passes.
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	var req struct {
		QuizID   string `json:"quiz_id" binding:"required"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	studentID := c.GetHeader("X-User-ID")
	attempt, decision, err := h.Service.StartAttempt(context.Background(), studentID, req.QuizID, req.Password)
	if err != nil {
		attemptsStarted.WithLabelValues("error").Inc()
		respondError(c, err)
		return
	}

	if decision.Code != eligibility.Allowed {
		attemptsStarted.WithLabelValues(string(decision.Code)).Inc()
		respondEligibility(c, decision)
		return
	}

	attemptsStarted.WithLabelValues("created").Inc()
	c.Set("attempt_id", attempt.ID)
	c.Set("quiz_id", attempt.QuizID)
	c.JSON(http.StatusCreated, gin.H{
		"attempt_id":             attempt.ID,
		"start_time":             attempt.StartTime,
		"remaining_time_seconds": attempt.RemainingTimeSeconds,
		"total_points":           attempt.TotalPoints,
	})
}

// GetAttempt returns the caller's attempt snapshot for resuming.
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	attempt, err := h.Service.GetAttempt(context.Background(), c.GetHeader("X-User-ID"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attempt)
}

// SaveAnswer upserts one answer while the attempt is in progress.
func (h *AttemptHandler) SaveAnswer(c *gin.Context) {
	var req struct {
		QuestionID       string   `json:"question_id" binding:"required"`
		SelectedAnswers  []string `json:"selected_answers"`
		TimeSpentSeconds int      `json:"time_spent_seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid answer format", "details": err.Error()})
		return
	}

	err := h.Service.SaveAnswer(context.Background(),
		c.GetHeader("X-User-ID"), c.Param("id"),
		req.QuestionID, req.SelectedAnswers, req.TimeSpentSeconds,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Set("question_id", req.QuestionID)
	c.JSON(http.StatusOK, gin.H{"saved": true, "question_id": req.QuestionID})
}

// ToggleFlag flips the review flag on a question.
func (h *AttemptHandler) ToggleFlag(c *gin.Context) {
	var req struct {
		QuestionID string `json:"question_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	flagged, err := h.Service.ToggleFlag(context.Background(),
		c.GetHeader("X-User-ID"), c.Param("id"), req.QuestionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"question_id": req.QuestionID, "flagged": flagged})
}

// UpdateRemainingTime overwrites the countdown from the client's timer.
func (h *AttemptHandler) UpdateRemainingTime(c *gin.Context) {
	var req struct {
		RemainingTimeSeconds *int `json:"remaining_time_seconds" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	err := h.Service.UpdateRemainingTime(context.Background(),
		c.GetHeader("X-User-ID"), c.Param("id"), *req.RemainingTimeSeconds)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// Submit finalizes the attempt. reason "timeout" records the timed_out
// status; anything else is an explicit submit. Both run the same scoring.
func (h *AttemptHandler) Submit(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	// Body is optional for a plain submit.
	_ = c.ShouldBindJSON(&req)

	timer := prometheus.NewTimer(submitDuration)
	result, err := h.Service.Submit(context.Background(),
		c.GetHeader("X-User-ID"), c.Param("id"), req.Reason)
	timer.ObserveDuration()

	if err != nil {
		respondError(c, err)
		return
	}

	attemptsFinished.WithLabelValues(string(result.Status)).Inc()
	c.JSON(http.StatusOK, result)
}

// respondEligibility maps a failed eligibility decision to a status code.
// These are expected outcomes the client branches on, so each code travels
// verbatim in the body.
func respondEligibility(c *gin.Context, d *eligibility.Decision) {
	status := http.StatusForbidden
	switch d.Code {
	case eligibility.WrongPassword:
		status = http.StatusUnauthorized
	case eligibility.AlreadyInProgress:
		status = http.StatusConflict
	}

	body := gin.H{"error": "Attempt not allowed", "code": d.Code}
	if d.ExistingAttemptID != "" {
		body["existing_attempt_id"] = d.ExistingAttemptID
	}
	c.JSON(status, body)
}

// respondError maps sentinel errors onto the failure taxonomy; state
// conflicts are kept distinct from not-found so a stale client refreshes
// instead of retrying.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrQuizNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found", "code": "QUIZ_NOT_FOUND"})
	case errors.Is(err, models.ErrAttemptNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Attempt not found", "code": "NOT_FOUND"})
	case errors.Is(err, models.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found in quiz", "code": "QUESTION_NOT_FOUND"})
	case errors.Is(err, models.ErrAttemptNotInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "Attempt is no longer in progress", "code": "NOT_IN_PROGRESS"})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "code": "FORBIDDEN"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error", "details": err.Error()})
	}
}
