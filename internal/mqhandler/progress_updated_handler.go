package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	contracts "buildtrack/contracts/mq"
	"buildtrack/internal/model"
	"buildtrack/internal/repository"
)

// ProgressUpdatedHandler records a notification row for every
// task.progress_updated event.
type ProgressUpdatedHandler struct {
	notifications *repository.NotificationRepository
	logger        *zap.Logger
}

func NewProgressUpdatedHandler(notifications *repository.NotificationRepository, logger *zap.Logger) *ProgressUpdatedHandler {
	return &ProgressUpdatedHandler{notifications: notifications, logger: logger}
}

func (h *ProgressUpdatedHandler) Handle(ctx context.Context, data json.RawMessage) error {
	var payload contracts.TaskProgressUpdatedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.logger.Error("Failed to unmarshal task.progress_updated payload", zap.Error(err))
		return err
	}

	h.logger.Info("Handling task.progress_updated",
		zap.String("task_id", payload.TaskID),
		zap.Int("previous_progress", payload.PreviousProgress),
		zap.Int("new_progress", payload.NewProgress),
	)

	n := &model.Notification{
		UserID: payload.UserID,
		Message: fmt.Sprintf("Task progress updated from %d%% to %d%% (%s)",
			payload.PreviousProgress, payload.NewProgress, payload.Status),
	}
	return h.notifications.Insert(ctx, n)
}
