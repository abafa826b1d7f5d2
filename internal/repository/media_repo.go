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

type MediaRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMediaRepository(db *pgxpool.Pool, logger *zap.Logger) *MediaRepository {
	return &MediaRepository{db: db, logger: logger}
}

func (r *MediaRepository) Insert(ctx context.Context, m *model.MediaFile) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	r.logger.Debug("Inserting media file",
		zap.String("task_id", m.TaskID),
		zap.String("type", m.Type),
	)
	query := `
        INSERT INTO media_files (id, task_id, name, url, type, uploader_id, uploader_name, description, uploaded_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
        RETURNING uploaded_at
    `
	err := r.db.QueryRow(ctx, query,
		m.ID, m.TaskID, m.Name, m.URL, m.Type, m.UploaderID, m.UploaderName, m.Description,
	).Scan(&m.UploadedAt)
	if err != nil {
		r.logger.Error("Failed to insert media file",
			zap.Error(err),
			zap.String("task_id", m.TaskID),
		)
		return err
	}
	r.logger.Info("Media file inserted",
		zap.String("media_id", m.ID),
		zap.String("task_id", m.TaskID),
	)
	return nil
}

func (r *MediaRepository) Get(ctx context.Context, id string) (*model.MediaFile, error) {
	query := `
        SELECT id, task_id, name, url, type, uploader_id, uploader_name, description, uploaded_at
        FROM media_files
        WHERE id = $1
    `
	var m model.MediaFile
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.TaskID, &m.Name, &m.URL, &m.Type,
		&m.UploaderID, &m.UploaderName, &m.Description, &m.UploadedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MediaRepository) ListByTask(ctx context.Context, taskID string) ([]model.MediaFile, error) {
	query := `
        SELECT id, task_id, name, url, type, uploader_id, uploader_name, description, uploaded_at
        FROM media_files
        WHERE task_id = $1
        ORDER BY uploaded_at
    `
	return r.list(ctx, query, taskID)
}

// ListByProject returns media across all of a project's tasks, for the
// timeline aggregation.
func (r *MediaRepository) ListByProject(ctx context.Context, projectID string) ([]model.MediaFile, error) {
	defer metrics.ObserveDBQuery("media_list_by_project", time.Now())
	query := `
        SELECT m.id, m.task_id, m.name, m.url, m.type, m.uploader_id, m.uploader_name, m.description, m.uploaded_at
        FROM media_files m
        JOIN tasks t ON t.id = m.task_id
        WHERE t.project_id = $1
        ORDER BY m.uploaded_at
    `
	return r.list(ctx, query, projectID)
}

func (r *MediaRepository) list(ctx context.Context, query string, arg any) ([]model.MediaFile, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		r.logger.Error("Failed to query media files", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	media := []model.MediaFile{}
	for rows.Next() {
		var m model.MediaFile
		if err := rows.Scan(
			&m.ID, &m.TaskID, &m.Name, &m.URL, &m.Type,
			&m.UploaderID, &m.UploaderName, &m.Description, &m.UploadedAt,
		); err != nil {
			r.logger.Error("Failed to scan media row", zap.Error(err))
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

// UpdateMeta edits the mutable fields: display name and description.
func (r *MediaRepository) UpdateMeta(ctx context.Context, id, name, description string) error {
	query := `
        UPDATE media_files
        SET name = $2, description = $3
        WHERE id = $1
    `
	_, err := r.db.Exec(ctx, query, id, name, description)
	if err != nil {
		r.logger.Error("Failed to update media file",
			zap.Error(err),
			zap.String("media_id", id),
		)
	}
	return err
}

func (r *MediaRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM media_files WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete media file",
			zap.Error(err),
			zap.String("media_id", id),
		)
		return err
	}
	r.logger.Info("Media file deleted",
		zap.String("media_id", id),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return nil
}
