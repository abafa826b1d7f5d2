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

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	r.logger.Debug("Inserting project",
		zap.String("project_id", p.ID),
		zap.String("name", p.Name),
	)
	query := `
        INSERT INTO projects (id, name, start_date, end_date, status, progress, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
    `
	_, err := r.db.Exec(ctx, query,
		p.ID, p.Name, p.StartDate, p.EndDate, p.Status, p.Progress,
	)
	if err != nil {
		r.logger.Error("Failed to insert project",
			zap.Error(err),
			zap.String("name", p.Name),
		)
		return err
	}
	r.logger.Info("Project inserted successfully", zap.String("project_id", p.ID))
	return nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]model.Project, error) {
	defer metrics.ObserveDBQuery("projects_list", time.Now())
	query := `
        SELECT id, name, start_date, end_date, status, progress, created_at, updated_at
        FROM projects
        ORDER BY created_at
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query projects", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(
			&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.Progress, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan project row", zap.Error(err))
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (*model.Project, error) {
	query := `
        SELECT id, name, start_date, end_date, status, progress, created_at, updated_at
        FROM projects
        WHERE id = $1
    `
	var p model.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.Progress, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByName resolves a project by its (denormalized) name.
func (r *ProjectRepository) FindByName(ctx context.Context, name string) (*model.Project, error) {
	query := `
        SELECT id, name, start_date, end_date, status, progress, created_at, updated_at
        FROM projects
        WHERE name = $1
    `
	var p model.Project
	err := r.db.QueryRow(ctx, query, name).Scan(
		&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.Progress, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *model.Project) error {
	r.logger.Debug("Updating project", zap.String("project_id", p.ID))
	query := `
        UPDATE projects
        SET name = $2, start_date = $3, end_date = $4, status = $5, progress = $6, updated_at = NOW()
        WHERE id = $1
    `
	result, err := r.db.Exec(ctx, query,
		p.ID, p.Name, p.StartDate, p.EndDate, p.Status, p.Progress,
	)
	if err != nil {
		r.logger.Error("Failed to update project",
			zap.Error(err),
			zap.String("project_id", p.ID),
		)
		return err
	}
	r.logger.Info("Project updated",
		zap.String("project_id", p.ID),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debug("Deleting project", zap.String("project_id", id))
	query := `
        DELETE FROM projects
        WHERE id = $1
    `
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete project",
			zap.Error(err),
			zap.String("project_id", id),
		)
		return err
	}
	r.logger.Info("Project deleted",
		zap.String("project_id", id),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return nil
}
