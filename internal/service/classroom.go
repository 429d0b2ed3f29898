package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"classroom-backend/internal/domain"
	"classroom-backend/internal/repository"
)

// ClassroomService 负责教室管理相关的业务逻辑：
// 创建教室、加入申请、成员管理、资料修改。教室创建者即管理员。
type ClassroomService struct {
	roomRepo repository.ClassroomRepository
	userRepo repository.UserRepository
}

// NewClassroomService 创建 ClassroomService 实例。
func NewClassroomService(roomRepo repository.ClassroomRepository, userRepo repository.UserRepository) *ClassroomService {
	if roomRepo == nil {
		panic("ClassroomRepository cannot be nil for ClassroomService")
	}
	if userRepo == nil {
		panic("UserRepository cannot be nil for ClassroomService")
	}
	return &ClassroomService{roomRepo: roomRepo, userRepo: userRepo}
}

// CreateClassroom 创建一个新教室，创建者自动成为第一个成员 (管理员)。
func (s *ClassroomService) CreateClassroom(ctx context.Context, creatorID uint, classname, subject, description string) (*domain.Classroom, error) {
	logCtx := logrus.WithFields(logrus.Fields{"creator_id": creatorID, "classname": classname})

	creator, err := s.userRepo.FindByID(ctx, creatorID)
	if err != nil {
		logCtx.WithError(err).Error("CreateClassroom: failed to load creator")
		return nil, ErrInternalServer
	}

	code, err := s.generateUniqueRoomCode(ctx)
	if err != nil {
		logCtx.WithError(err).Error("Failed to generate unique room code")
		return nil, ErrInternalServer
	}
	logCtx = logCtx.WithField("code", code)

	room := &domain.Classroom{
		ClassName:   classname,
		Subject:     subject,
		Description: description,
		Code:        code,
		CreatedBy:   creatorID,
	}
	if err := s.roomRepo.Save(ctx, room); err != nil {
		logCtx.WithError(err).Error("Failed to save new classroom")
		return nil, ErrInternalServer
	}

	// 创建者自动入列成员
	member := &domain.ClassMember{ClassroomID: room.ID, UserID: creatorID, Name: creator.Name}
	if err := s.roomRepo.AddMember(ctx, member); err != nil && !errors.Is(err, repository.ErrDuplicateEntry) {
		logCtx.WithError(err).Error("Failed to add creator as member")
		return nil, ErrInternalServer
	}
	room.Members = append(room.Members, *member)

	logCtx.WithField("room_id", room.ID).Info("Classroom created")
	return room, nil
}

// JoinedClassrooms 返回用户已加入的全部教室。
func (s *ClassroomService) JoinedClassrooms(ctx context.Context, userID uint) ([]domain.Classroom, error) {
	rooms, err := s.roomRepo.FindJoined(ctx, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("JoinedClassrooms: repository error")
		return nil, ErrInternalServer
	}
	return rooms, nil
}

// FindByCode 根据房间码查找教室。
func (s *ClassroomService) FindByCode(ctx context.Context, code string) (*domain.Classroom, error) {
	room, err := s.roomRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrClassroomNotFound) {
			return nil, ErrClassroomNotFound
		}
		logrus.WithError(err).WithField("code", code).Error("FindByCode: repository error")
		return nil, ErrInternalServer
	}
	if room == nil { // 防御
		return nil, ErrClassroomNotFound
	}
	return room, nil
}

// RequestJoin 处理用户通过房间码申请加入教室；申请进入待批准列表。
func (s *ClassroomService) RequestJoin(ctx context.Context, userID uint, code string) error {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "code": code})

	room, err := s.FindByCode(ctx, code)
	if err != nil {
		return err
	}

	isMember, err := s.roomRepo.IsMember(ctx, room.ID, userID)
	if err != nil {
		logCtx.WithError(err).Error("RequestJoin: membership check failed")
		return ErrInternalServer
	}
	if isMember {
		return ErrAlreadyMember
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		logCtx.WithError(err).Error("RequestJoin: failed to load user")
		return ErrInternalServer
	}

	req := &domain.JoinRequest{ClassroomID: room.ID, UserID: userID, Name: user.Name}
	if err := s.roomRepo.AddJoinRequest(ctx, req); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return ErrAlreadyRequested
		}
		logCtx.WithError(err).Error("RequestJoin: failed to save join request")
		return ErrInternalServer
	}
	logCtx.WithField("room_id", room.ID).Info("Join request recorded")
	return nil
}

// ApproveJoin 批准一个加入申请：从待批准列表移除并加入成员列表。
func (s *ClassroomService) ApproveJoin(ctx context.Context, room *domain.Classroom, userID uint) (*domain.Classroom, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": room.ID, "user_id": userID})

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logCtx.WithError(err).Error("ApproveJoin: failed to load user")
		return nil, ErrInternalServer
	}

	if err := s.roomRepo.RemoveJoinRequest(ctx, room.ID, userID); err != nil {
		logCtx.WithError(err).Error("ApproveJoin: failed to remove join request")
		return nil, ErrInternalServer
	}
	member := &domain.ClassMember{ClassroomID: room.ID, UserID: userID, Name: user.Name}
	if err := s.roomRepo.AddMember(ctx, member); err != nil && !errors.Is(err, repository.ErrDuplicateEntry) {
		logCtx.WithError(err).Error("ApproveJoin: failed to add member")
		return nil, ErrInternalServer
	}

	logCtx.Info("Join request approved")
	return s.reload(ctx, room.Code)
}

// DenyJoin 拒绝一个加入申请。
func (s *ClassroomService) DenyJoin(ctx context.Context, room *domain.Classroom, userID uint) (*domain.Classroom, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, ErrInternalServer
	}
	if err := s.roomRepo.RemoveJoinRequest(ctx, room.ID, userID); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"room_id": room.ID, "user_id": userID}).Error("DenyJoin: failed to remove join request")
		return nil, ErrInternalServer
	}
	return s.reload(ctx, room.Code)
}

// AddStudentByEmail 由管理员直接按邮箱拉人进教室。
func (s *ClassroomService) AddStudentByEmail(ctx context.Context, room *domain.Classroom, email string) (*domain.Classroom, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": room.ID, "email": email})

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logCtx.WithError(err).Error("AddStudentByEmail: failed to load user")
		return nil, ErrInternalServer
	}

	member := &domain.ClassMember{ClassroomID: room.ID, UserID: user.ID, Name: user.Name}
	if err := s.roomRepo.AddMember(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrAlreadyMember
		}
		logCtx.WithError(err).Error("AddStudentByEmail: failed to add member")
		return nil, ErrInternalServer
	}
	logCtx.WithField("user_id", user.ID).Info("Student added to classroom")
	return s.reload(ctx, room.Code)
}

// RemoveStudent 将用户移出教室。
func (s *ClassroomService) RemoveStudent(ctx context.Context, room *domain.Classroom, userID uint) (*domain.Classroom, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, ErrInternalServer
	}
	if err := s.roomRepo.RemoveMember(ctx, room.ID, userID); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"room_id": room.ID, "user_id": userID}).Error("RemoveStudent: failed to remove member")
		return nil, ErrInternalServer
	}
	return s.reload(ctx, room.Code)
}

// UpdateClassName 修改教室名称。
func (s *ClassroomService) UpdateClassName(ctx context.Context, room *domain.Classroom, classname string) (*domain.Classroom, error) {
	room.ClassName = classname
	return s.saveAndReload(ctx, room)
}

// UpdateSubject 修改教室科目。
func (s *ClassroomService) UpdateSubject(ctx context.Context, room *domain.Classroom, subject string) (*domain.Classroom, error) {
	room.Subject = subject
	return s.saveAndReload(ctx, room)
}

// UpdateDescription 修改教室描述。
func (s *ClassroomService) UpdateDescription(ctx context.Context, room *domain.Classroom, description string) (*domain.Classroom, error) {
	room.Description = description
	return s.saveAndReload(ctx, room)
}

// IsMember 检查用户是否是教室成员。
func (s *ClassroomService) IsMember(ctx context.Context, classroomID, userID uint) (bool, error) {
	ok, err := s.roomRepo.IsMember(ctx, classroomID, userID)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"room_id": classroomID, "user_id": userID}).Error("IsMember: repository error")
		return false, ErrInternalServer
	}
	return ok, nil
}

func (s *ClassroomService) saveAndReload(ctx context.Context, room *domain.Classroom) (*domain.Classroom, error) {
	// Save 连带的关联不需要更新，清掉避免 GORM 级联写入
	room.Members = nil
	room.Approvals = nil
	if err := s.roomRepo.Save(ctx, room); err != nil {
		logrus.WithError(err).WithField("room_id", room.ID).Error("Failed to save classroom")
		return nil, ErrInternalServer
	}
	return s.reload(ctx, room.Code)
}

func (s *ClassroomService) reload(ctx context.Context, code string) (*domain.Classroom, error) {
	room, err := s.roomRepo.FindByCode(ctx, code)
	if err != nil {
		logrus.WithError(err).WithField("code", code).Error("Failed to reload classroom")
		return nil, ErrInternalServer
	}
	return room, nil
}

// generateUniqueRoomCode 生成唯一的 6 位房间码
func (s *ClassroomService) generateUniqueRoomCode(ctx context.Context) (string, error) {
	const letters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	const codeLength = 6
	const maxAttempts = 10

	b := make([]byte, codeLength)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("failed to generate random bytes: %w", err)
		}
		for i := range b {
			b[i] = letters[int(b[i])%len(letters)]
		}
		code := string(b)

		exists, err := s.roomRepo.IsCodeExists(ctx, code)
		if err != nil {
			logrus.WithError(err).WithField("code", code).Error("Database error checking room code uniqueness")
			return "", fmt.Errorf("database error checking room code: %w", err)
		}
		if !exists {
			return code, nil
		}
		logrus.WithField("code", code).Warnf("Generated room code already exists, retrying (attempt %d)...", attempt+1)
	}
	return "", fmt.Errorf("failed to generate a unique room code after %d attempts", maxAttempts)
}
