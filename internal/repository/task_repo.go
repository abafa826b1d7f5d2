package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"buildtrack/internal/model"
	"buildtrack/pkg/metrics"
)

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

const taskColumns = `id, name, project_id, project_name, phase_id, start_date, end_date, due_date, trade, priority, status, progress, created_at, updated_at`

// scanTask maps one row to a Task. phase_id and the date columns are
// nullable; NULL becomes the zero value.
func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	var phaseID *string
	var start, end, due *time.Time
	err := row.Scan(
		&t.ID, &t.Name, &t.ProjectID, &t.ProjectName, &phaseID,
		&start, &end, &due,
		&t.Trade, &t.Priority, &t.Status, &t.Progress, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return t, err
	}
	if phaseID != nil {
		t.PhaseID = *phaseID
	}
	if start != nil {
		t.StartDate = *start
	}
	if end != nil {
		t.EndDate = *end
	}
	if due != nil {
		t.DueDate = *due
	}
	return t, nil
}

func nullable[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

func nullableTime(v time.Time) *time.Time {
	if v.IsZero() {
		return nil
	}
	return &v
}

func (r *TaskRepository) Insert(ctx context.Context, t *model.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	r.logger.Debug("Inserting task",
		zap.String("project_id", t.ProjectID),
		zap.String("name", t.Name),
		zap.String("status", t.Status),
	)
	query := `
        INSERT INTO tasks (id, name, project_id, project_name, phase_id, start_date, end_date, due_date, trade, priority, status, progress, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
    `
	_, err := r.db.Exec(ctx, query,
		t.ID, t.Name, t.ProjectID, t.ProjectName, nullable(t.PhaseID),
		nullableTime(t.StartDate), nullableTime(t.EndDate), nullableTime(t.DueDate),
		t.Trade, t.Priority, t.Status, t.Progress,
	)
	if err != nil {
		r.logger.Error("Failed to insert task",
			zap.Error(err),
			zap.String("project_id", t.ProjectID),
		)
		return err
	}
	r.logger.Info("Task inserted successfully",
		zap.String("task_id", t.ID),
		zap.String("project_id", t.ProjectID),
	)
	return nil
}

func (r *TaskRepository) Get(ctx context.Context, id string) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	t, err := scanTask(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByProject returns a project's tasks in load (creation) order.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]model.Task, error) {
	defer metrics.ObserveDBQuery("tasks_list_by_project", time.Now())
	r.logger.Debug("Listing tasks for project", zap.String("project_id", projectID))
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query tasks",
			zap.Error(err),
			zap.String("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			r.logger.Error("Failed to scan task row", zap.Error(err))
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update is the general edit path: every field including status and
// progress is written as given, independently.
func (r *TaskRepository) Update(ctx context.Context, t *model.Task) error {
	r.logger.Debug("Updating task", zap.String("task_id", t.ID))
	query := `
        UPDATE tasks
        SET name = $2, phase_id = $3, start_date = $4, end_date = $5, due_date = $6,
            trade = $7, priority = $8, status = $9, progress = $10, updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.Exec(ctx, query,
		t.ID, t.Name, nullable(t.PhaseID),
		nullableTime(t.StartDate), nullableTime(t.EndDate), nullableTime(t.DueDate),
		t.Trade, t.Priority, t.Status, t.Progress,
	)
	if err != nil {
		r.logger.Error("Failed to update task",
			zap.Error(err),
			zap.String("task_id", t.ID),
		)
	}
	return err
}

// UpdateProgress writes only the progress percentage and the status
// derived from it.
func (r *TaskRepository) UpdateProgress(ctx context.Context, taskID string, progress int, status string) error {
	r.logger.Debug("Updating task progress",
		zap.String("task_id", taskID),
		zap.Int("progress", progress),
		zap.String("status", status),
	)
	query := `
        UPDATE tasks
        SET progress = $2, status = $3, updated_at = NOW()
        WHERE id = $1
    `
	result, err := r.db.Exec(ctx, query, taskID, progress, status)
	if err != nil {
		r.logger.Error("Failed to update task progress",
			zap.Error(err),
			zap.String("task_id", taskID),
		)
		return err
	}
	r.logger.Info("Task progress updated",
		zap.String("task_id", taskID),
		zap.Int("progress", progress),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM tasks WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete task",
			zap.Error(err),
			zap.String("task_id", id),
		)
		return err
	}
	r.logger.Info("Task deleted",
		zap.String("task_id", id),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return nil
}

// ClearPhase unassigns every task of the given phase.
func (r *TaskRepository) ClearPhase(ctx context.Context, phaseID string) error {
	query := `
        UPDATE tasks
        SET phase_id = NULL, updated_at = NOW()
        WHERE phase_id = $1
    `
	result, err := r.db.Exec(ctx, query, phaseID)
	if err != nil {
		r.logger.Error("Failed to clear phase from tasks",
			zap.Error(err),
			zap.String("phase_id", phaseID),
		)
		return err
	}
	r.logger.Info("Tasks unassigned from phase",
		zap.String("phase_id", phaseID),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return nil
}

// ClearPhasesByProject unassigns every task of the project from its phase.
// Task rows themselves survive a project delete: referential integrity is
// not enforced at this layer.
func (r *TaskRepository) ClearPhasesByProject(ctx context.Context, projectID string) error {
	query := `
        UPDATE tasks
        SET phase_id = NULL, updated_at = NOW()
        WHERE project_id = $1
    `
	result, err := r.db.Exec(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to clear phases for project tasks",
			zap.Error(err),
			zap.String("project_id", projectID),
		)
		return err
	}
	r.logger.Info("Project tasks unassigned from phases",
		zap.String("project_id", projectID),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return nil
}
