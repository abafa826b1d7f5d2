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

type PhaseRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPhaseRepository(db *pgxpool.Pool, logger *zap.Logger) *PhaseRepository {
	return &PhaseRepository{db: db, logger: logger}
}

// Insert appends a phase at the end of the project's sequence.
func (r *PhaseRepository) Insert(ctx context.Context, p *model.Phase) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	r.logger.Debug("Inserting phase",
		zap.String("project_id", p.ProjectID),
		zap.String("name", p.Name),
	)
	query := `
        INSERT INTO phases (id, project_id, name, description, start_date, end_date, color, sort_order, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7,
            (SELECT COUNT(*) FROM phases WHERE project_id = $2),
            NOW(), NOW())
        RETURNING sort_order
    `
	err := r.db.QueryRow(ctx, query,
		p.ID, p.ProjectID, p.Name, p.Description, p.StartDate, p.EndDate, p.Color,
	).Scan(&p.Order)
	if err != nil {
		r.logger.Error("Failed to insert phase",
			zap.Error(err),
			zap.String("project_id", p.ProjectID),
		)
		return err
	}
	r.logger.Info("Phase inserted successfully",
		zap.String("phase_id", p.ID),
		zap.Int("order", p.Order),
	)
	return nil
}

func (r *PhaseRepository) ListByProject(ctx context.Context, projectID string) ([]model.Phase, error) {
	defer metrics.ObserveDBQuery("phases_list_by_project", time.Now())
	query := `
        SELECT id, project_id, name, description, start_date, end_date, color, sort_order, created_at, updated_at
        FROM phases
        WHERE project_id = $1
        ORDER BY sort_order
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query phases",
			zap.Error(err),
			zap.String("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	phases := []model.Phase{}
	for rows.Next() {
		var p model.Phase
		if err := rows.Scan(
			&p.ID, &p.ProjectID, &p.Name, &p.Description,
			&p.StartDate, &p.EndDate, &p.Color, &p.Order, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan phase row", zap.Error(err))
			return nil, err
		}
		phases = append(phases, p)
	}
	return phases, rows.Err()
}

func (r *PhaseRepository) Get(ctx context.Context, id string) (*model.Phase, error) {
	query := `
        SELECT id, project_id, name, description, start_date, end_date, color, sort_order, created_at, updated_at
        FROM phases
        WHERE id = $1
    `
	var p model.Phase
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.ProjectID, &p.Name, &p.Description,
		&p.StartDate, &p.EndDate, &p.Color, &p.Order, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PhaseRepository) Update(ctx context.Context, p *model.Phase) error {
	query := `
        UPDATE phases
        SET name = $2, description = $3, start_date = $4, end_date = $5, color = $6, updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.StartDate, p.EndDate, p.Color,
	)
	if err != nil {
		r.logger.Error("Failed to update phase",
			zap.Error(err),
			zap.String("phase_id", p.ID),
		)
	}
	return err
}

// Reorder rewrites the project's phase sequence to match orderedIDs,
// keeping sort_order dense 0..n-1.
func (r *PhaseRepository) Reorder(ctx context.Context, projectID string, orderedIDs []string) error {
	r.logger.Debug("Reordering phases",
		zap.String("project_id", projectID),
		zap.Int("count", len(orderedIDs)),
	)
	query := `
        UPDATE phases
        SET sort_order = $3, updated_at = NOW()
        WHERE id = $1 AND project_id = $2
    `
	for i, id := range orderedIDs {
		if _, err := r.db.Exec(ctx, query, id, projectID, i); err != nil {
			r.logger.Error("Failed to reorder phase",
				zap.Error(err),
				zap.String("phase_id", id),
				zap.Int("order", i),
			)
			return err
		}
	}
	r.logger.Info("Phases reordered",
		zap.String("project_id", projectID),
		zap.Int("count", len(orderedIDs)),
	)
	return nil
}

// Delete removes a phase and closes the ordering gap so surviving phases
// stay dense 0..n-1.
func (r *PhaseRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debug("Deleting phase", zap.String("phase_id", id))
	query := `
        DELETE FROM phases
        WHERE id = $1
        RETURNING project_id, sort_order
    `
	var projectID string
	var order int
	if err := r.db.QueryRow(ctx, query, id).Scan(&projectID, &order); err != nil {
		r.logger.Error("Failed to delete phase",
			zap.Error(err),
			zap.String("phase_id", id),
		)
		return err
	}

	resequence := `
        UPDATE phases
        SET sort_order = sort_order - 1, updated_at = NOW()
        WHERE project_id = $1 AND sort_order > $2
    `
	if _, err := r.db.Exec(ctx, resequence, projectID, order); err != nil {
		r.logger.Error("Failed to resequence phases",
			zap.Error(err),
			zap.String("project_id", projectID),
		)
		return err
	}

	r.logger.Info("Phase deleted",
		zap.String("phase_id", id),
		zap.String("project_id", projectID),
	)
	return nil
}

// DeleteByProject removes all phases of a project (project delete cascade).
func (r *PhaseRepository) DeleteByProject(ctx context.Context, projectID string) error {
	query := `
        DELETE FROM phases
        WHERE project_id = $1
    `
	result, err := r.db.Exec(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to delete phases for project",
			zap.Error(err),
			zap.String("project_id", projectID),
		)
		return err
	}
	r.logger.Info("Phases deleted for project",
		zap.String("project_id", projectID),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return nil
}
