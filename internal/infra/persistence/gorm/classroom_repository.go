package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"classroom-backend/internal/domain"
	"classroom-backend/internal/repository"
)

// GormClassroomRepository 是 ClassroomRepository 接口的 GORM 实现
type GormClassroomRepository struct {
	db *gorm.DB
}

// NewGormClassroomRepository 创建 GormClassroomRepository 实例
func NewGormClassroomRepository(db *gorm.DB) *GormClassroomRepository {
	if db == nil {
		panic("database connection cannot be nil for GormClassroomRepository")
	}
	return &GormClassroomRepository{db: db}
}

// FindByID 实现根据教室 ID 查找教室
func (r *GormClassroomRepository) FindByID(ctx context.Context, id uint) (*domain.Classroom, error) {
	var room domain.Classroom
	err := r.db.WithContext(ctx).First(&room, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrClassroomNotFound
		}
		return nil, fmt.Errorf("gorm: find classroom by id %d: %w", id, err)
	}
	return &room, nil
}

// FindByCode 实现根据房间码查找教室，预加载成员和待批准列表
func (r *GormClassroomRepository) FindByCode(ctx context.Context, code string) (*domain.Classroom, error) {
	var room domain.Classroom
	err := r.db.WithContext(ctx).
		Preload("Members").
		Preload("Approvals").
		Where("code = ?", code).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrClassroomNotFound
		}
		return nil, fmt.Errorf("gorm: find classroom by code '%s': %w", code, err)
	}
	return &room, nil
}

// FindJoined 实现查询用户已加入的全部教室
func (r *GormClassroomRepository) FindJoined(ctx context.Context, userID uint) ([]domain.Classroom, error) {
	var rooms []domain.Classroom
	err := r.db.WithContext(ctx).
		Joins("JOIN class_members ON class_members.classroom_id = classrooms.id").
		Where("class_members.user_id = ?", userID).
		Order("classrooms.created_at DESC").
		Preload("Members").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find joined classrooms for user %d: %w", userID, err)
	}
	return rooms, nil
}

// Save 实现保存教室信息（创建或更新）
func (r *GormClassroomRepository) Save(ctx context.Context, room *domain.Classroom) error {
	err := r.db.WithContext(ctx).Save(room).Error
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save classroom (id: %d, code: %s): %w", room.ID, room.Code, err)
	}
	return nil
}

// IsCodeExists 实现检查房间码是否已被占用
func (r *GormClassroomRepository) IsCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	// 使用 Count() 只查询数量
	err := r.db.WithContext(ctx).Model(&domain.Classroom{}).Where("code = ?", code).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: count classrooms by code '%s': %w", code, err)
	}
	return count > 0, nil
}

// AddMember 实现将用户加入成员列表
func (r *GormClassroomRepository) AddMember(ctx context.Context, member *domain.ClassMember) error {
	err := r.db.WithContext(ctx).Create(member).Error
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: add member (classroom: %d, user: %d): %w", member.ClassroomID, member.UserID, err)
	}
	return nil
}

// RemoveMember 实现将用户从成员列表移除
func (r *GormClassroomRepository) RemoveMember(ctx context.Context, classroomID, userID uint) error {
	err := r.db.WithContext(ctx).
		Where("classroom_id = ? AND user_id = ?", classroomID, userID).
		Delete(&domain.ClassMember{}).Error
	if err != nil {
		return fmt.Errorf("gorm: remove member (classroom: %d, user: %d): %w", classroomID, userID, err)
	}
	return nil
}

// IsMember 实现检查用户是否是教室成员
func (r *GormClassroomRepository) IsMember(ctx context.Context, classroomID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ClassMember{}).
		Where("classroom_id = ? AND user_id = ?", classroomID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: count members (classroom: %d, user: %d): %w", classroomID, userID, err)
	}
	return count > 0, nil
}

// AddJoinRequest 实现记录一个加入申请
func (r *GormClassroomRepository) AddJoinRequest(ctx context.Context, req *domain.JoinRequest) error {
	err := r.db.WithContext(ctx).Create(req).Error
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: add join request (classroom: %d, user: %d): %w", req.ClassroomID, req.UserID, err)
	}
	return nil
}

// RemoveJoinRequest 实现删除一个加入申请
func (r *GormClassroomRepository) RemoveJoinRequest(ctx context.Context, classroomID, userID uint) error {
	err := r.db.WithContext(ctx).
		Where("classroom_id = ? AND user_id = ?", classroomID, userID).
		Delete(&domain.JoinRequest{}).Error
	if err != nil {
		return fmt.Errorf("gorm: remove join request (classroom: %d, user: %d): %w", classroomID, userID, err)
	}
	return nil
}

// TouchLastActive 实现更新教室的 LastActive 时间戳
func (r *GormClassroomRepository) TouchLastActive(ctx context.Context, code string) error {
	err := r.db.WithContext(ctx).Model(&domain.Classroom{}).
		Where("code = ?", code).
		Update("last_active", time.Now()).Error
	if err != nil {
		return fmt.Errorf("gorm: touch last_active for classroom '%s': %w", code, err)
	}
	return nil
}
