package repository

import (
	"context"

	"classroom-backend/internal/domain"
)

// TaskRepository 定义了教室任务的存储和检索操作。
type TaskRepository interface {
	// FindByClassroom 查询某教室的全部任务，按截止时间升序。
	FindByClassroom(ctx context.Context, classroomID uint) ([]domain.Task, error)

	// Save 保存任务。
	Save(ctx context.Context, task *domain.Task) error
}
