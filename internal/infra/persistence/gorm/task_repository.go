package gormpersistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"classroom-backend/internal/domain"
)

// GormTaskRepository 是 TaskRepository 接口的 GORM 实现
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository 创建 GormTaskRepository 实例
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	if db == nil {
		panic("database connection cannot be nil for GormTaskRepository")
	}
	return &GormTaskRepository{db: db}
}

// FindByClassroom 实现查询某教室的全部任务
func (r *GormTaskRepository) FindByClassroom(ctx context.Context, classroomID uint) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).
		Where("classroom_id = ?", classroomID).
		Order("due_date ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find tasks for classroom %d: %w", classroomID, err)
	}
	return tasks, nil
}

// Save 实现保存任务
func (r *GormTaskRepository) Save(ctx context.Context, task *domain.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("gorm: save task (classroom: %d, title: %s): %w", task.ClassroomID, task.Title, err)
	}
	return nil
}
