package service

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"classroom-backend/internal/domain"
	"classroom-backend/internal/repository"
	"classroom-backend/internal/tasks"
)

// ChatService 是聊天核心的消息存储协作方 (实现 chat.ChatStore)。
// 消息写库是同步的 (广播依赖持久化结果)；教室活跃时间的更新是次要副作用，
// 交给 asynq 后台任务，不阻塞也不影响消息路径。
type ChatService struct {
	messageRepo repository.MessageRepository
	asynqClient *asynq.Client // 可为 nil (测试环境)，此时跳过活跃度任务
}

// NewChatService 创建 ChatService 实例。
func NewChatService(messageRepo repository.MessageRepository, asynqClient *asynq.Client) *ChatService {
	if messageRepo == nil {
		panic("MessageRepository cannot be nil for ChatService")
	}
	return &ChatService{messageRepo: messageRepo, asynqClient: asynqClient}
}

// FetchHistory 实现 chat.ChatStore，返回某教室的全部历史消息。
func (s *ChatService) FetchHistory(ctx context.Context, room string) ([]domain.Message, error) {
	return s.messageRepo.FindByClassroom(ctx, room)
}

// AppendMessage 实现 chat.ChatStore，以发送者身份快照持久化一条消息。
// SentAt 由存储层赋值。成功后异步触发教室活跃度更新。
func (s *ChatService) AppendMessage(ctx context.Context, authorName string, authorID uint, text, room string) (*domain.Message, error) {
	msg := &domain.Message{
		Text:       text,
		AuthorName: authorName,
		AuthorID:   authorID,
		Classroom:  room,
	}
	if err := s.messageRepo.Save(ctx, msg); err != nil {
		return nil, err
	}

	s.enqueueRoomActivity(room)
	return msg, nil
}

// enqueueRoomActivity 将教室活跃度更新任务放入后台队列。
// 入队失败只记录日志：活跃时间戳不精确不影响聊天功能。
func (s *ChatService) enqueueRoomActivity(room string) {
	if s.asynqClient == nil {
		return
	}
	payload, err := tasks.NewRoomActivityTask(room)
	if err != nil {
		logrus.WithError(err).WithField("room", room).Error("Failed to build room activity task payload")
		return
	}
	task := asynq.NewTask(tasks.TypeRoomActivity, payload)
	if _, err := s.asynqClient.Enqueue(task, asynq.Queue("low")); err != nil {
		logrus.WithError(err).WithField("room", room).Warn("Failed to enqueue room activity task")
	}
}
