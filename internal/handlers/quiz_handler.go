package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"quiz-attempt-service/internal/service"
)

type QuizHandler struct {
	Service *service.QuizService
}

func NewQuizHandler(s *service.QuizService) *QuizHandler {
	return &QuizHandler{Service: s}
}

// Resume returns the student-safe quiz view plus the caller's open attempt,
// if any, so the client can decide between starting and resuming.
func (h *QuizHandler) Resume(c *gin.Context) {
	view, err := h.Service.ResumeView(context.Background(), c.GetHeader("X-User-ID"), c.Param("quizId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AttemptHistory lists the caller's attempts for one quiz, newest first.
func (h *QuizHandler) AttemptHistory(c *gin.Context) {
	attempts, err := h.Service.AttemptHistory(context.Background(), c.GetHeader("X-User-ID"), c.Param("quizId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempts": attempts, "count": len(attempts)})
}

// HealthCheck reports service liveness.
func (h *QuizHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":   "quiz-attempt-service",
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}
