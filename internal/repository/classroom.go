package repository

import (
	"context"

	"classroom-backend/internal/domain"
)

// ClassroomRepository 定义了教室数据的存储和检索操作。
type ClassroomRepository interface {
	// FindByID 根据教室 ID 查找教室。
	// 如果教室不存在，应返回 repository.ErrClassroomNotFound。
	FindByID(ctx context.Context, id uint) (*domain.Classroom, error)

	// FindByCode 根据房间码查找教室 (包含成员和待批准列表)。
	// 如果教室不存在，应返回 repository.ErrClassroomNotFound。
	FindByCode(ctx context.Context, code string) (*domain.Classroom, error)

	// FindJoined 查询某用户已加入的全部教室，按创建时间倒序。
	FindJoined(ctx context.Context, userID uint) ([]domain.Classroom, error)

	// Save 保存教室信息 (创建或更新)。
	Save(ctx context.Context, room *domain.Classroom) error

	// IsCodeExists 检查房间码是否已被占用。
	IsCodeExists(ctx context.Context, code string) (bool, error)

	// AddMember 将用户加入教室成员列表。
	// 如果用户已是成员，应返回 repository.ErrDuplicateEntry。
	AddMember(ctx context.Context, member *domain.ClassMember) error

	// RemoveMember 将用户从教室成员列表移除。
	RemoveMember(ctx context.Context, classroomID, userID uint) error

	// IsMember 检查用户是否是教室成员。
	IsMember(ctx context.Context, classroomID, userID uint) (bool, error)

	// AddJoinRequest 记录一个加入申请。
	// 如果申请已存在，应返回 repository.ErrDuplicateEntry。
	AddJoinRequest(ctx context.Context, req *domain.JoinRequest) error

	// RemoveJoinRequest 删除一个加入申请 (批准或拒绝后)。
	RemoveJoinRequest(ctx context.Context, classroomID, userID uint) error

	// TouchLastActive 更新教室的 LastActive 时间戳。
	TouchLastActive(ctx context.Context, code string) error
}
