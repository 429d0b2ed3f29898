package gormpersistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"classroom-backend/internal/domain"
)

// GormMessageRepository 是 MessageRepository 接口的 GORM 实现
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository 创建 GormMessageRepository 实例
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	if db == nil {
		panic("database connection cannot be nil for GormMessageRepository")
	}
	return &GormMessageRepository{db: db}
}

// FindByClassroom 实现查询某教室的历史消息
func (r *GormMessageRepository) FindByClassroom(ctx context.Context, code string) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("classroom = ?", code).
		Order("sent_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find messages for classroom '%s': %w", code, err)
	}
	return messages, nil
}

// Save 实现持久化一条新消息；GORM 填充 ID 和 SentAt
func (r *GormMessageRepository) Save(ctx context.Context, msg *domain.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("gorm: save message (classroom: %s, author: %d): %w", msg.Classroom, msg.AuthorID, err)
	}
	return nil
}
