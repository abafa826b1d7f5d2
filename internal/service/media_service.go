package service

import (
	"context"

	"go.uber.org/zap"

	contracts "buildtrack/contracts/mq"
	"buildtrack/internal/model"
)

type MediaStore interface {
	Insert(ctx context.Context, m *model.MediaFile) error
	Get(ctx context.Context, id string) (*model.MediaFile, error)
	ListByTask(ctx context.Context, taskID string) ([]model.MediaFile, error)
	UpdateMeta(ctx context.Context, id, name, description string) error
	Delete(ctx context.Context, id string) error
}

type MediaService struct {
	media     MediaStore
	tasks     TaskStore
	publisher EventPublisher
	cache     CacheInvalidator
	logger    *zap.Logger
}

func NewMediaService(media MediaStore, tasks TaskStore, publisher EventPublisher, cache CacheInvalidator, logger *zap.Logger) *MediaService {
	return &MediaService{
		media:     media,
		tasks:     tasks,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// Register stores a media record whose URL was already resolved by the
// storage provider. Whether that URL stays valid is the provider's
// contract, not checked here.
func (s *MediaService) Register(ctx context.Context, m *model.MediaFile, uploader *model.User) error {
	if m.Type != model.MediaTypeImage && m.Type != model.MediaTypeVideo {
		return ErrInvalidMediaType
	}

	t, err := s.tasks.Get(ctx, m.TaskID)
	if err != nil {
		s.logger.Error("Task lookup failed for media upload",
			zap.String("task_id", m.TaskID),
			zap.Error(err),
		)
		return err
	}

	m.UploaderID = uploader.ID
	m.UploaderName = uploader.Name
	if err := s.media.Insert(ctx, m); err != nil {
		return err
	}

	if err := s.publisher.Publish("media.uploaded", contracts.MediaUploadedPayload{
		MediaID: m.ID,
		TaskID:  m.TaskID,
		UserID:  uploader.ID,
		Type:    m.Type,
	}); err != nil {
		s.logger.Error("Failed to publish media.uploaded",
			zap.String("media_id", m.ID),
			zap.Error(err),
		)
	}

	s.cache.Invalidate(ctx, t.ProjectID)
	return nil
}

func (s *MediaService) ListByTask(ctx context.Context, taskID string) ([]model.MediaFile, error) {
	return s.media.ListByTask(ctx, taskID)
}

// UpdateMeta edits the mutable fields of a media record.
func (s *MediaService) UpdateMeta(ctx context.Context, id, name, description string) error {
	m, err := s.media.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.media.UpdateMeta(ctx, id, name, description); err != nil {
		return err
	}
	if t, err := s.tasks.Get(ctx, m.TaskID); err == nil {
		s.cache.Invalidate(ctx, t.ProjectID)
	}
	return nil
}

func (s *MediaService) Delete(ctx context.Context, id string) error {
	m, err := s.media.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.media.Delete(ctx, id); err != nil {
		return err
	}
	if t, err := s.tasks.Get(ctx, m.TaskID); err == nil {
		s.cache.Invalidate(ctx, t.ProjectID)
	}
	return nil
}
