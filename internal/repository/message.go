package repository

import (
	"context"

	"classroom-backend/internal/domain"
)

// MessageRepository 定义了聊天消息的存储和检索操作。
// 消息创建后不再修改，因此没有 Update/Delete。
type MessageRepository interface {
	// FindByClassroom 查询某教室的全部历史消息，按发送时间升序。
	FindByClassroom(ctx context.Context, code string) ([]domain.Message, error)

	// Save 持久化一条新消息，由数据库填充 ID 和 SentAt。
	Save(ctx context.Context, msg *domain.Message) error
}
