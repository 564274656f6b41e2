package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"planboard/internal/models"
	"planboard/internal/notifier"
	"planboard/internal/repositories"
	"planboard/internal/services"
)

type TaskHandler struct {
	service services.TaskService

	// assignment notifications
	alerts   *services.AlertStore
	hub      notifier.EventPublisher
	notif    notifier.Notifier
	telegram *services.TelegramService
	users    repositories.UserRepository
}

func NewTaskHandler(
	service services.TaskService,
	alerts *services.AlertStore,
	hub notifier.EventPublisher,
	notif notifier.Notifier,
	telegram *services.TelegramService,
	users repositories.UserRepository,
) *TaskHandler {
	return &TaskHandler{
		service:  service,
		alerts:   alerts,
		hub:      hub,
		notif:    notif,
		telegram: telegram,
		users:    users,
	}
}

type taskRequest struct {
	ProjectID           *int64              `json:"project_id"`
	AssigneeID          int64               `json:"assignee_id"`
	Title               string              `json:"title" binding:"required"`
	Description         string              `json:"description"`
	Status              models.TaskStatus   `json:"status"`
	Priority            models.TaskPriority `json:"priority"`
	DueDate             string              `json:"due_date"` // "2006-01-02"
	DueTime             *string             `json:"due_time"` // "HH:MM"
	ReminderLeadMinutes int                 `json:"reminder_lead_minutes"`
}

func (r *taskRequest) toModel() (*models.Task, error) {
	var due *time.Time
	if r.DueDate != "" {
		t, err := time.Parse("2006-01-02", r.DueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid due_date (want YYYY-MM-DD)")
		}
		due = &t
	}
	return &models.Task{
		ProjectID:           r.ProjectID,
		AssigneeID:          r.AssigneeID,
		Title:               r.Title,
		Description:         r.Description,
		Status:              r.Status,
		Priority:            r.Priority,
		DueDate:             due,
		DueTime:             r.DueTime,
		ReminderLeadMinutes: r.ReminderLeadMinutes,
	}, nil
}

// POST /tasks
func (h *TaskHandler) Create(c *gin.Context) {
	userID, _ := getUserID(c)

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := req.toModel()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if task.AssigneeID == 0 {
		task.AssigneeID = userID
	}

	created, err := h.service.Create(c.Request.Context(), task)
	if err != nil {
		logrus.WithError(err).Error("task create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}
	c.JSON(http.StatusCreated, created)

	if created.AssigneeID != userID {
		h.notifyAssignee(created, "You were assigned a new task")
	}
}

// GET /tasks
func (h *TaskHandler) GetAll(c *gin.Context) {
	filter := models.TaskFilter{}
	if v := c.Query("assignee_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.AssigneeID = &id
		}
	}
	if v := c.Query("status"); v != "" {
		st := models.TaskStatus(v)
		filter.Status = &st
	}

	tasks, err := h.service.GetAll(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tasks"})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GET /tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	task, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

// PUT /tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	update, err := req.toModel()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	before, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, update)
	if err != nil || updated == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task"})
		return
	}
	c.JSON(http.StatusOK, updated)

	if updated.AssigneeID != before.AssigneeID {
		h.notifyAssignee(updated, "A task was reassigned to you")
	}
}

// POST /tasks/:id/status
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status"})
		return
	}
	c.JSON(http.StatusOK, task)
}

// DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete task"})
		return
	}
	c.Status(http.StatusNoContent)
}

// notifyAssignee pushes an out-of-band alert to the assignee: prepended to
// their in-app list, pushed over the realtime channel, and mirrored to
// Telegram when linked. Best effort; the task write already succeeded.
func (h *TaskHandler) notifyAssignee(task *models.Task, headline string) {
	message := fmt.Sprintf("%s: %q", headline, task.Title)

	h.alerts.Prepend(task.AssigneeID, models.Alert{
		Message:   message,
		TaskID:    task.ID,
		TaskTitle: task.Title,
		CreatedAt: time.Now(),
	})
	h.hub.Publish(task.AssigneeID, models.AlertEvent{
		Kind:      models.EventAlert,
		Message:   message,
		TaskTitle: task.Title,
	})
	h.notif.Notify(task.AssigneeID, "Task assigned", message)

	if h.telegram == nil {
		return
	}
	go func() {
		ctx, cancel := contextWithTimeout()
		defer cancel()
		assignee, err := h.users.FindByID(ctx, task.AssigneeID)
		if err != nil || assignee.TelegramChatID == nil {
			return
		}
		if err := h.telegram.SendMessage(*assignee.TelegramChatID, message); err != nil {
			logrus.WithField("user_id", task.AssigneeID).WithError(err).Warn("telegram assignment alert failed")
		}
	}()
}
