package services

import (
	"context"
	"time"

	"planboard/internal/models"
	"planboard/internal/repositories"
)

// TaskService defines the interface for task-related business logic.
type TaskService interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	GetAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, id int64, updateData *models.Task) (*models.Task, error)
	UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
}

type taskService struct {
	repo repositories.TaskRepository
}

func NewTaskService(repo repositories.TaskRepository) TaskService {
	return &taskService{repo: repo}
}

func (s *taskService) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	if task.Status == "" {
		task.Status = models.StatusNotStarted
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *taskService) GetAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	return s.repo.FindAll(ctx, filter)
}

func (s *taskService) Update(ctx context.Context, id int64, updateData *models.Task) (*models.Task, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	changingDue := !equalTimePtr(existing.DueDate, updateData.DueDate)

	existing.ProjectID = updateData.ProjectID
	existing.AssigneeID = updateData.AssigneeID
	existing.Title = updateData.Title
	existing.Description = updateData.Description
	existing.Status = updateData.Status
	existing.Priority = updateData.Priority
	existing.DueDate = updateData.DueDate
	existing.DueTime = updateData.DueTime
	existing.ReminderLeadMinutes = updateData.ReminderLeadMinutes

	// A moved due date re-arms the standard reminder; an unchanged one keeps
	// the sent flag so the reminder stays at-most-once per due date.
	if changingDue {
		existing.ReminderSent = false
	}

	existing.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *taskService) UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) (*models.Task, error) {
	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *taskService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
