package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"planboard/internal/models"
)

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	// FindOpenByAssignee returns the user's tasks that are not done — the
	// snapshot both notification scans run against.
	FindOpenByAssignee(ctx context.Context, assigneeID int64) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) error
	Delete(ctx context.Context, id int64) error
	SetReminderSent(ctx context.Context, id int64, sent bool) error
}

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, project_id, assignee_id, title, description, status, priority,
       due_date, due_time, reminder_lead_minutes, reminder_sent, created_at, updated_at`

func scanTask(row interface{ Scan(...interface{}) error }, t *models.Task) error {
	return row.Scan(
		&t.ID, &t.ProjectID, &t.AssigneeID, &t.Title, &t.Description,
		&t.Status, &t.Priority, &t.DueDate, &t.DueTime,
		&t.ReminderLeadMinutes, &t.ReminderSent, &t.CreatedAt, &t.UpdatedAt,
	)
}

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (
			project_id, assignee_id, title, description, status, priority,
			due_date, due_time, reminder_lead_minutes, reminder_sent, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		task.ProjectID, task.AssigneeID, task.Title, task.Description,
		task.Status, task.Priority, task.DueDate, task.DueTime,
		task.ReminderLeadMinutes, task.ReminderSent, task.CreatedAt, task.UpdatedAt,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task := &models.Task{}
	err := scanTask(r.db.QueryRowContext(ctx, query, id), task)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("task not found")
		}
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	baseQuery := `SELECT ` + taskColumns + ` FROM tasks`

	conditions := []string{}
	args := []interface{}{}
	argID := 1

	if filter.AssigneeID != nil {
		conditions = append(conditions, fmt.Sprintf("assignee_id = $%d", argID))
		args = append(args, *filter.AssigneeID)
		argID++
	}
	if filter.ProjectID != nil {
		conditions = append(conditions, fmt.Sprintf("project_id = $%d", argID))
		args = append(args, *filter.ProjectID)
		argID++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTasks(rows)
}

func (r *taskRepository) FindOpenByAssignee(ctx context.Context, assigneeID int64) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + `
FROM tasks
WHERE assignee_id = $1 AND status <> 'done'
ORDER BY due_date ASC NULLS LAST`
	rows, err := r.db.QueryContext(ctx, query, assigneeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTasks(rows)
}

func collectTasks(rows *sql.Rows) ([]models.Task, error) {
	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks SET
			project_id=$1, assignee_id=$2, title=$3, description=$4, status=$5,
			priority=$6, due_date=$7, due_time=$8, reminder_lead_minutes=$9,
			reminder_sent=$10, updated_at=$11
		WHERE id=$12`
	_, err := r.db.ExecContext(ctx, query,
		task.ProjectID, task.AssigneeID, task.Title, task.Description, task.Status,
		task.Priority, task.DueDate, task.DueTime, task.ReminderLeadMinutes,
		task.ReminderSent, task.UpdatedAt, task.ID,
	)
	return err
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET status=$1, updated_at=NOW() WHERE id=$2`, to, id)
	return err
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

func (r *taskRepository) SetReminderSent(ctx context.Context, id int64, sent bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET reminder_sent=$1, updated_at=NOW() WHERE id=$2`, sent, id)
	return err
}
