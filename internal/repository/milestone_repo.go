package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"buildtrack/internal/model"
	"buildtrack/pkg/metrics"
)

type MilestoneRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMilestoneRepository(db *pgxpool.Pool, logger *zap.Logger) *MilestoneRepository {
	return &MilestoneRepository{db: db, logger: logger}
}

func (r *MilestoneRepository) Insert(ctx context.Context, m *model.Milestone) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	r.logger.Debug("Inserting milestone",
		zap.String("task_id", m.TaskID),
		zap.String("type", m.Type),
	)
	query := `
        INSERT INTO milestones (id, task_id, name, type, date, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
    `
	_, err := r.db.Exec(ctx, query, m.ID, m.TaskID, m.Name, m.Type, m.Date)
	if err != nil {
		r.logger.Error("Failed to insert milestone",
			zap.Error(err),
			zap.String("task_id", m.TaskID),
		)
		return err
	}
	r.logger.Info("Milestone inserted",
		zap.String("milestone_id", m.ID),
		zap.String("task_id", m.TaskID),
	)
	return nil
}

func (r *MilestoneRepository) Get(ctx context.Context, id string) (*model.Milestone, error) {
	query := `
        SELECT id, task_id, name, type, date, created_at
        FROM milestones
        WHERE id = $1
    `
	var m model.Milestone
	err := r.db.QueryRow(ctx, query, id).Scan(&m.ID, &m.TaskID, &m.Name, &m.Type, &m.Date, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MilestoneRepository) ListByTask(ctx context.Context, taskID string) ([]model.Milestone, error) {
	query := `
        SELECT id, task_id, name, type, date, created_at
        FROM milestones
        WHERE task_id = $1
        ORDER BY date
    `
	return r.list(ctx, query, taskID)
}

// ListByProject returns milestones across all of a project's tasks.
func (r *MilestoneRepository) ListByProject(ctx context.Context, projectID string) ([]model.Milestone, error) {
	defer metrics.ObserveDBQuery("milestones_list_by_project", time.Now())
	query := `
        SELECT m.id, m.task_id, m.name, m.type, m.date, m.created_at
        FROM milestones m
        JOIN tasks t ON t.id = m.task_id
        WHERE t.project_id = $1
        ORDER BY m.date
    `
	return r.list(ctx, query, projectID)
}

func (r *MilestoneRepository) list(ctx context.Context, query string, arg any) ([]model.Milestone, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		r.logger.Error("Failed to query milestones", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	milestones := []model.Milestone{}
	for rows.Next() {
		var m model.Milestone
		if err := rows.Scan(&m.ID, &m.TaskID, &m.Name, &m.Type, &m.Date, &m.CreatedAt); err != nil {
			r.logger.Error("Failed to scan milestone row", zap.Error(err))
			return nil, err
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

func (r *MilestoneRepository) Update(ctx context.Context, m *model.Milestone) error {
	query := `
        UPDATE milestones
        SET name = $2, type = $3, date = $4
        WHERE id = $1
    `
	_, err := r.db.Exec(ctx, query, m.ID, m.Name, m.Type, m.Date)
	if err != nil {
		r.logger.Error("Failed to update milestone",
			zap.Error(err),
			zap.String("milestone_id", m.ID),
		)
	}
	return err
}

func (r *MilestoneRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM milestones WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete milestone",
			zap.Error(err),
			zap.String("milestone_id", id),
		)
	}
	return err
}
