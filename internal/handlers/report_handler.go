package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"planboard/internal/models"
	"planboard/internal/pdf"
	"planboard/internal/repositories"
)

type ReportHandler struct {
	tasks         repositories.TaskRepository
	users         repositories.UserRepository
	gen           pdf.Generator
	lookaheadDays int
}

func NewReportHandler(tasks repositories.TaskRepository, users repositories.UserRepository, gen pdf.Generator, lookaheadDays int) *ReportHandler {
	return &ReportHandler{tasks: tasks, users: users, gen: gen, lookaheadDays: lookaheadDays}
}

// GET /reports/deadlines — PDF digest of the caller's tasks due within the
// lookahead window.
func (h *ReportHandler) DeadlineDigest(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	open, err := h.tasks.FindOpenByAssignee(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tasks"})
		return
	}

	now := time.Now()
	data := pdf.DigestData{
		UserName:    user.Name,
		GeneratedAt: now,
	}
	for i := range open {
		t := &open[i]
		days, ok := t.DaysUntilDue(now)
		if !ok || days < 0 || days > h.lookaheadDays || t.Status == models.StatusDone {
			continue
		}
		data.Rows = append(data.Rows, pdf.DigestRow{
			Title:    t.Title,
			DueDate:  *t.DueDate,
			DaysLeft: days,
			Priority: string(t.Priority),
		})
	}

	out, err := h.gen.DeadlineDigest(data)
	if err != nil {
		logrus.WithField("user_id", userID).WithError(err).Error("deadline digest failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render report"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=deadlines_%s.pdf", now.Format("2006-01-02")))
	c.Data(http.StatusOK, "application/pdf", out)
}
