package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"classroom-backend/internal/domain"
	"classroom-backend/internal/repository/mocks"
	"classroom-backend/internal/service"
)

func TestChatService_AppendMessage(t *testing.T) {
	mockMessageRepo := new(mocks.MessageRepository)
	// asynq client 为 nil：测试环境跳过活跃度任务
	svc := service.NewChatService(mockMessageRepo, nil)
	ctx := context.Background()

	mockMessageRepo.On("Save", ctx, mock.MatchedBy(func(msg *domain.Message) bool {
		return msg.Text == "hello" && msg.AuthorName == "Alice" &&
			msg.AuthorID == 1 && msg.Classroom == "ABC123"
	})).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Message).ID = 42
		}).
		Return(nil).
		Once()

	msg, err := svc.AppendMessage(ctx, "Alice", 1, "hello", "ABC123")

	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, uint(42), msg.ID, "返回的消息应带数据库分配的 ID")
	mockMessageRepo.AssertExpectations(t)
}

func TestChatService_AppendMessage_SaveFails(t *testing.T) {
	mockMessageRepo := new(mocks.MessageRepository)
	svc := service.NewChatService(mockMessageRepo, nil)
	ctx := context.Background()

	dbErr := errors.New("db down")
	mockMessageRepo.On("Save", ctx, mock.AnythingOfType("*domain.Message")).
		Return(dbErr).
		Once()

	msg, err := svc.AppendMessage(ctx, "Alice", 1, "hello", "ABC123")

	assert.ErrorIs(t, err, dbErr, "存储错误应原样向上传递，由会话层决定抑制广播")
	assert.Nil(t, msg)
	mockMessageRepo.AssertExpectations(t)
}

func TestChatService_FetchHistory(t *testing.T) {
	mockMessageRepo := new(mocks.MessageRepository)
	svc := service.NewChatService(mockMessageRepo, nil)
	ctx := context.Background()

	stored := []domain.Message{
		{ID: 1, Text: "first", Classroom: "ABC123"},
		{ID: 2, Text: "second", Classroom: "ABC123"},
	}
	mockMessageRepo.On("FindByClassroom", ctx, "ABC123").Return(stored, nil).Once()

	history, err := svc.FetchHistory(ctx, "ABC123")

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "first", history[0].Text)
	mockMessageRepo.AssertExpectations(t)
}
