package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"classroom-backend/internal/repository"
	"classroom-backend/internal/tasks"
)

// RoomActivityHandler 处理教室活跃度更新任务
type RoomActivityHandler struct {
	roomRepo repository.ClassroomRepository
}

// NewRoomActivityHandler 创建 Handler 实例
func NewRoomActivityHandler(roomRepo repository.ClassroomRepository) *RoomActivityHandler {
	return &RoomActivityHandler{roomRepo: roomRepo}
}

// ProcessTask 实现 asynq.Handler 接口
func (h *RoomActivityHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.RoomActivityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logrus.WithError(err).Error("Failed to unmarshal room activity payload")
		// 负载损坏重试也不会成功
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := h.roomRepo.TouchLastActive(ctx, payload.Code); err != nil {
		logrus.WithError(err).WithField("code", payload.Code).Error("Failed to touch classroom last_active")
		return fmt.Errorf("failed to touch last_active for %s: %w", payload.Code, err)
	}

	logrus.WithField("code", payload.Code).Debug("Classroom activity recorded")
	return nil
}
