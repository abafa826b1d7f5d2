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

// CommentRepository persists progress comments. Rows are append-only:
// there is no update or delete path.
type CommentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCommentRepository(db *pgxpool.Pool, logger *zap.Logger) *CommentRepository {
	return &CommentRepository{db: db, logger: logger}
}

func (r *CommentRepository) Insert(ctx context.Context, c *model.ProgressComment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	r.logger.Debug("Inserting progress comment",
		zap.String("task_id", c.TaskID),
		zap.Int("previous_progress", c.PreviousProgress),
		zap.Int("new_progress", c.NewProgress),
	)
	query := `
        INSERT INTO progress_comments (id, task_id, author_id, author_name, comment, previous_progress, new_progress, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
        RETURNING created_at
    `
	err := r.db.QueryRow(ctx, query,
		c.ID, c.TaskID, c.AuthorID, c.AuthorName, c.Comment, c.PreviousProgress, c.NewProgress,
	).Scan(&c.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert progress comment",
			zap.Error(err),
			zap.String("task_id", c.TaskID),
		)
		return err
	}
	r.logger.Info("Progress comment inserted",
		zap.String("comment_id", c.ID),
		zap.String("task_id", c.TaskID),
	)
	return nil
}

func (r *CommentRepository) ListByTask(ctx context.Context, taskID string) ([]model.ProgressComment, error) {
	query := `
        SELECT id, task_id, author_id, author_name, comment, previous_progress, new_progress, created_at
        FROM progress_comments
        WHERE task_id = $1
        ORDER BY created_at
    `
	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		r.logger.Error("Failed to query progress comments",
			zap.Error(err),
			zap.String("task_id", taskID),
		)
		return nil, err
	}
	defer rows.Close()

	comments := []model.ProgressComment{}
	for rows.Next() {
		var c model.ProgressComment
		if err := rows.Scan(
			&c.ID, &c.TaskID, &c.AuthorID, &c.AuthorName, &c.Comment,
			&c.PreviousProgress, &c.NewProgress, &c.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan comment row", zap.Error(err))
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// ListByProject returns every comment on the project's tasks, for the
// timeline aggregation.
func (r *CommentRepository) ListByProject(ctx context.Context, projectID string) ([]model.ProgressComment, error) {
	defer metrics.ObserveDBQuery("comments_list_by_project", time.Now())
	query := `
        SELECT c.id, c.task_id, c.author_id, c.author_name, c.comment, c.previous_progress, c.new_progress, c.created_at
        FROM progress_comments c
        JOIN tasks t ON t.id = c.task_id
        WHERE t.project_id = $1
        ORDER BY c.created_at
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query project comments",
			zap.Error(err),
			zap.String("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	comments := []model.ProgressComment{}
	for rows.Next() {
		var c model.ProgressComment
		if err := rows.Scan(
			&c.ID, &c.TaskID, &c.AuthorID, &c.AuthorName, &c.Comment,
			&c.PreviousProgress, &c.NewProgress, &c.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan comment row", zap.Error(err))
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
