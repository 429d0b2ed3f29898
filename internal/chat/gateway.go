package chat

import (
	"context"

	"classroom-backend/internal/domain"
)

// BroadcastGateway 抽象了传输层的房间寻址能力。
// 两个发送方法都是 fire-and-forget：对每个当前订阅的连接至多投递一次，
// 无确认、无重试，慢客户端允许丢消息 (推送模型，不是持久队列)。
type BroadcastGateway interface {
	// Subscribe 将连接订阅到某房间的广播频道。
	Subscribe(connectionID, room string)

	// SendToConnection 向单个连接发送一个具名事件。
	SendToConnection(connectionID, event string, payload interface{})

	// SendToRoom 向某房间的全部已订阅连接发送一个具名事件。
	SendToRoom(room, event string, payload interface{})
}

// ChatStore 抽象了消息的外部持久化，实现可能失败，失败不会使会话崩溃。
type ChatStore interface {
	// FetchHistory 获取某教室的全部历史消息。
	FetchHistory(ctx context.Context, room string) ([]domain.Message, error)

	// AppendMessage 以发送者身份快照持久化一条消息，由存储层赋值 SentAt。
	AppendMessage(ctx context.Context, authorName string, authorID uint, text, room string) (*domain.Message, error)
}
