package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"classroom-backend/internal/domain"
	"classroom-backend/internal/repository"
	"classroom-backend/internal/repository/mocks"
	"classroom-backend/internal/service"
)

func newTestClassroomService(roomRepo *mocks.ClassroomRepository, userRepo *mocks.UserRepository) *service.ClassroomService {
	return service.NewClassroomService(roomRepo, userRepo)
}

func TestClassroomService_CreateClassroom_Success(t *testing.T) {
	mockRoomRepo := new(mocks.ClassroomRepository)
	mockUserRepo := new(mocks.UserRepository)
	svc := newTestClassroomService(mockRoomRepo, mockUserRepo)
	ctx := context.Background()

	mockUserRepo.On("FindByID", ctx, uint(1)).
		Return(&domain.User{ID: 1, Name: "Alice"}, nil).
		Once()
	// 第一次生成的房间码即可用
	mockRoomRepo.On("IsCodeExists", ctx, mock.AnythingOfType("string")).
		Return(false, nil).
		Once()
	mockRoomRepo.On("Save", ctx, mock.MatchedBy(func(room *domain.Classroom) bool {
		assert.Equal(t, "Algebra", room.ClassName)
		assert.Equal(t, "Math", room.Subject)
		assert.Equal(t, uint(1), room.CreatedBy)
		assert.Len(t, room.Code, 6, "房间码应为 6 位")
		return true
	})).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Classroom).ID = 10
		}).
		Return(nil).
		Once()
	mockRoomRepo.On("AddMember", ctx, mock.MatchedBy(func(m *domain.ClassMember) bool {
		return m.ClassroomID == 10 && m.UserID == 1 && m.Name == "Alice"
	})).
		Return(nil).
		Once()

	room, err := svc.CreateClassroom(ctx, 1, "Algebra", "Math", "intro course")

	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, uint(10), room.ID)
	require.Len(t, room.Members, 1, "创建者应自动成为首名成员")
	assert.Equal(t, uint(1), room.Members[0].UserID)

	mockRoomRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
}

func TestClassroomService_CreateClassroom_CodeCollisionRetries(t *testing.T) {
	mockRoomRepo := new(mocks.ClassroomRepository)
	mockUserRepo := new(mocks.UserRepository)
	svc := newTestClassroomService(mockRoomRepo, mockUserRepo)
	ctx := context.Background()

	mockUserRepo.On("FindByID", ctx, uint(1)).
		Return(&domain.User{ID: 1, Name: "Alice"}, nil).
		Once()
	// 第一个码冲突，第二个可用
	mockRoomRepo.On("IsCodeExists", ctx, mock.AnythingOfType("string")).
		Return(true, nil).
		Once()
	mockRoomRepo.On("IsCodeExists", ctx, mock.AnythingOfType("string")).
		Return(false, nil).
		Once()
	mockRoomRepo.On("Save", ctx, mock.AnythingOfType("*domain.Classroom")).
		Return(nil).
		Once()
	mockRoomRepo.On("AddMember", ctx, mock.AnythingOfType("*domain.ClassMember")).
		Return(nil).
		Once()

	_, err := svc.CreateClassroom(ctx, 1, "Algebra", "Math", "")

	assert.NoError(t, err, "房间码冲突应重试而不是失败")
	mockRoomRepo.AssertExpectations(t)
}

func TestClassroomService_RequestJoin_Success(t *testing.T) {
	mockRoomRepo := new(mocks.ClassroomRepository)
	mockUserRepo := new(mocks.UserRepository)
	svc := newTestClassroomService(mockRoomRepo, mockUserRepo)
	ctx := context.Background()

	room := &domain.Classroom{ID: 10, Code: "ABC123"}
	mockRoomRepo.On("FindByCode", ctx, "ABC123").Return(room, nil).Once()
	mockRoomRepo.On("IsMember", ctx, uint(10), uint(2)).Return(false, nil).Once()
	mockUserRepo.On("FindByID", ctx, uint(2)).
		Return(&domain.User{ID: 2, Name: "Bob"}, nil).
		Once()
	mockRoomRepo.On("AddJoinRequest", ctx, mock.MatchedBy(func(req *domain.JoinRequest) bool {
		return req.ClassroomID == 10 && req.UserID == 2 && req.Name == "Bob"
	})).
		Return(nil).
		Once()

	err := svc.RequestJoin(ctx, 2, "ABC123")

	assert.NoError(t, err)
	mockRoomRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
}

func TestClassroomService_RequestJoin_UnknownCode(t *testing.T) {
	mockRoomRepo := new(mocks.ClassroomRepository)
	mockUserRepo := new(mocks.UserRepository)
	svc := newTestClassroomService(mockRoomRepo, mockUserRepo)
	ctx := context.Background()

	mockRoomRepo.On("FindByCode", ctx, "NOPE99").
		Return(nil, repository.ErrClassroomNotFound).
		Once()

	err := svc.RequestJoin(ctx, 2, "NOPE99")

	assert.ErrorIs(t, err, service.ErrClassroomNotFound)
	mockRoomRepo.AssertExpectations(t)
}

func TestClassroomService_RequestJoin_AlreadyMember(t *testing.T) {
	mockRoomRepo := new(mocks.ClassroomRepository)
	mockUserRepo := new(mocks.UserRepository)
	svc := newTestClassroomService(mockRoomRepo, mockUserRepo)
	ctx := context.Background()

	room := &domain.Classroom{ID: 10, Code: "ABC123"}
	mockRoomRepo.On("FindByCode", ctx, "ABC123").Return(room, nil).Once()
	mockRoomRepo.On("IsMember", ctx, uint(10), uint(2)).Return(true, nil).Once()

	err := svc.RequestJoin(ctx, 2, "ABC123")

	assert.ErrorIs(t, err, service.ErrAlreadyMember)
	mockRoomRepo.AssertNotCalled(t, "AddJoinRequest")
	mockRoomRepo.AssertExpectations(t)
}

func TestClassroomService_RequestJoin_AlreadyRequested(t *testing.T) {
	mockRoomRepo := new(mocks.ClassroomRepository)
	mockUserRepo := new(mocks.UserRepository)
	svc := newTestClassroomService(mockRoomRepo, mockUserRepo)
	ctx := context.Background()

	room := &domain.Classroom{ID: 10, Code: "ABC123"}
	mockRoomRepo.On("FindByCode", ctx, "ABC123").Return(room, nil).Once()
	mockRoomRepo.On("IsMember", ctx, uint(10), uint(2)).Return(false, nil).Once()
	mockUserRepo.On("FindByID", ctx, uint(2)).
		Return(&domain.User{ID: 2, Name: "Bob"}, nil).
		Once()
	mockRoomRepo.On("AddJoinRequest", ctx, mock.AnythingOfType("*domain.JoinRequest")).
		Return(repository.ErrDuplicateEntry).
		Once()

	err := svc.RequestJoin(ctx, 2, "ABC123")

	assert.ErrorIs(t, err, service.ErrAlreadyRequested)
	mockRoomRepo.AssertExpectations(t)
}

func TestClassroomService_ApproveJoin(t *testing.T) {
	mockRoomRepo := new(mocks.ClassroomRepository)
	mockUserRepo := new(mocks.UserRepository)
	svc := newTestClassroomService(mockRoomRepo, mockUserRepo)
	ctx := context.Background()

	room := &domain.Classroom{ID: 10, Code: "ABC123"}
	reloaded := &domain.Classroom{ID: 10, Code: "ABC123",
		Members: []domain.ClassMember{{ClassroomID: 10, UserID: 2, Name: "Bob"}}}

	mockUserRepo.On("FindByID", ctx, uint(2)).
		Return(&domain.User{ID: 2, Name: "Bob"}, nil).
		Once()
	mockRoomRepo.On("RemoveJoinRequest", ctx, uint(10), uint(2)).Return(nil).Once()
	mockRoomRepo.On("AddMember", ctx, mock.MatchedBy(func(m *domain.ClassMember) bool {
		return m.ClassroomID == 10 && m.UserID == 2
	})).
		Return(nil).
		Once()
	mockRoomRepo.On("FindByCode", ctx, "ABC123").Return(reloaded, nil).Once()

	result, err := svc.ApproveJoin(ctx, room, 2)

	require.NoError(t, err)
	require.Len(t, result.Members, 1)
	assert.Equal(t, "Bob", result.Members[0].Name)
	mockRoomRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
}

func TestClassroomService_AddStudentByEmail_AlreadyMember(t *testing.T) {
	mockRoomRepo := new(mocks.ClassroomRepository)
	mockUserRepo := new(mocks.UserRepository)
	svc := newTestClassroomService(mockRoomRepo, mockUserRepo)
	ctx := context.Background()

	room := &domain.Classroom{ID: 10, Code: "ABC123"}
	mockUserRepo.On("FindByEmail", ctx, "bob@example.com").
		Return(&domain.User{ID: 2, Name: "Bob"}, nil).
		Once()
	mockRoomRepo.On("AddMember", ctx, mock.AnythingOfType("*domain.ClassMember")).
		Return(repository.ErrDuplicateEntry).
		Once()

	result, err := svc.AddStudentByEmail(ctx, room, "bob@example.com")

	assert.ErrorIs(t, err, service.ErrAlreadyMember)
	assert.Nil(t, result)
	mockRoomRepo.AssertExpectations(t)
}

func TestClassroomService_UpdateClassName_ClearsAssociations(t *testing.T) {
	mockRoomRepo := new(mocks.ClassroomRepository)
	mockUserRepo := new(mocks.UserRepository)
	svc := newTestClassroomService(mockRoomRepo, mockUserRepo)
	ctx := context.Background()

	room := &domain.Classroom{ID: 10, Code: "ABC123", ClassName: "Old",
		Members: []domain.ClassMember{{ClassroomID: 10, UserID: 1}}}
	reloaded := &domain.Classroom{ID: 10, Code: "ABC123", ClassName: "New"}

	mockRoomRepo.On("Save", ctx, mock.MatchedBy(func(r *domain.Classroom) bool {
		// 更新资料时不应级联写关联
		return r.ClassName == "New" && r.Members == nil && r.Approvals == nil
	})).
		Return(nil).
		Once()
	mockRoomRepo.On("FindByCode", ctx, "ABC123").Return(reloaded, nil).Once()

	result, err := svc.UpdateClassName(ctx, room, "New")

	require.NoError(t, err)
	assert.Equal(t, "New", result.ClassName)
	mockRoomRepo.AssertExpectations(t)
}
