package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-attempt-service/internal/migration"
)

type AdminHandler struct {
	Runner *migration.Runner
}

func NewAdminHandler(runner *migration.Runner) *AdminHandler {
	return &AdminHandler{Runner: runner}
}

// MigrateAnswers runs the one-time legacy normalization over quizzes and
// attempts. Idempotent, teacher/admin only.
func (h *AdminHandler) MigrateAnswers(c *gin.Context) {
	role := c.GetHeader("X-User-Role")
	if role != "teacher" && role != "admin" && role != "super_admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "code": "FORBIDDEN"})
		return
	}

	report, err := h.Runner.Run(context.Background())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Migration failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report, "message": "Legacy answers normalized"})
}
