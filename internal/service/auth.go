package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"classroom-backend/internal/domain"
	"classroom-backend/internal/repository"
)

// AuthService 负责用户注册、登录和个人资料相关的业务逻辑。
type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	jwtExpiry time.Duration
}

// NewAuthService 创建 AuthService 实例。
// jwtSecretKey 应从安全配置中获取；jwtExpiryHours 定义 token 过期的小时数。
func NewAuthService(userRepo repository.UserRepository, jwtSecretKey string, jwtExpiryHours int) (*AuthService, error) {
	if userRepo == nil {
		panic("UserRepository cannot be nil for AuthService")
	}
	if jwtSecretKey == "" {
		return nil, fmt.Errorf("JWT secret key cannot be empty")
	}
	if jwtExpiryHours <= 0 {
		jwtExpiryHours = 24
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecretKey),
		jwtExpiry: time.Duration(jwtExpiryHours) * time.Hour,
	}, nil
}

// Register 处理用户注册，成功后直接返回登录 token。
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, error) {
	logCtx := logrus.WithFields(logrus.Fields{"name": name, "email": email})

	if name == "" || email == "" || password == "" {
		return "", fmt.Errorf("name, email and password are required")
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		logCtx.WithError(err).Error("Failed to hash password during registration")
		return "", ErrInternalServer
	}

	user := &domain.User{
		Name:     name,
		Email:    email,
		Password: hashedPassword,
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.WithError(err).Warn("Registration failed: email already registered")
			return "", ErrRegistrationFailed
		}
		logCtx.WithError(err).Error("Database error during user creation")
		return "", ErrInternalServer
	}

	token, err := s.generateJWT(user.ID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to generate JWT token after registration")
		return "", ErrInternalServer
	}

	logCtx.WithField("user_id", user.ID).Info("User registered successfully")
	return token, nil
}

// Login 处理用户登录。
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	logCtx := logrus.WithField("email", email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logCtx.WithError(err).Warn("Login attempt failed: user not found")
		} else {
			logCtx.WithError(err).Warn("Login attempt failed: error finding user")
		}
		return "", ErrAuthenticationFailed // 对客户端统一返回认证失败
	}
	if user == nil {
		logCtx.Warn("Login attempt failed: repo returned nil user without error")
		return "", ErrAuthenticationFailed
	}

	if !checkPassword(password, user.Password) {
		logCtx.Warn("Login attempt failed: invalid password")
		return "", ErrAuthenticationFailed
	}

	token, err := s.generateJWT(user.ID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to generate JWT token during login")
		return "", ErrInternalServer
	}

	logCtx.WithField("user_id", user.ID).Info("User logged in successfully")
	return token, nil
}

// GetUser 返回指定用户 (不含密码哈希)。
func (s *AuthService) GetUser(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logrus.WithError(err).WithField("user_id", userID).Error("GetUser: repository error")
		return nil, ErrInternalServer
	}
	user.Password = ""
	return user, nil
}

// UpdateName 修改用户显示名。
// 已有的聊天消息和成员列表里保留的是旧名字快照，这是有意为之。
func (s *AuthService) UpdateName(ctx context.Context, userID uint, newName string) (*domain.User, error) {
	return s.updateProfile(ctx, userID, func(u *domain.User) { u.Name = newName })
}

// UpdateEmail 修改用户邮箱。
func (s *AuthService) UpdateEmail(ctx context.Context, userID uint, newEmail string) (*domain.User, error) {
	return s.updateProfile(ctx, userID, func(u *domain.User) { u.Email = newEmail })
}

// ChangePassword 在校验旧密码后更换密码。
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, oldPass, newPass string) error {
	logCtx := logrus.WithField("user_id", userID)

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		logCtx.WithError(err).Error("ChangePassword: repository error")
		return ErrInternalServer
	}
	if !checkPassword(oldPass, user.Password) {
		logCtx.Warn("ChangePassword: old password mismatch")
		return ErrPasswordMismatch
	}

	hashed, err := hashPassword(newPass)
	if err != nil {
		logCtx.WithError(err).Error("ChangePassword: failed to hash new password")
		return ErrInternalServer
	}
	user.Password = hashed
	if err := s.userRepo.Save(ctx, user); err != nil {
		logCtx.WithError(err).Error("ChangePassword: failed to save user")
		return ErrInternalServer
	}
	logCtx.Info("Password changed")
	return nil
}

// SetAvatar 保存用户头像图片字节。
func (s *AuthService) SetAvatar(ctx context.Context, userID uint, avatar []byte) error {
	_, err := s.updateProfile(ctx, userID, func(u *domain.User) {
		u.Avatar = avatar
		u.HasAvatar = true
	})
	return err
}

// GetAvatar 返回用户头像字节，未设置时返回 nil。
func (s *AuthService) GetAvatar(ctx context.Context, userID uint) ([]byte, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, ErrInternalServer
	}
	return user.Avatar, nil
}

// RemoveAvatar 删除用户头像。
func (s *AuthService) RemoveAvatar(ctx context.Context, userID uint) error {
	_, err := s.updateProfile(ctx, userID, func(u *domain.User) {
		u.Avatar = nil
		u.HasAvatar = false
	})
	return err
}

// updateProfile 是查找-修改-保存的公共路径。
func (s *AuthService) updateProfile(ctx context.Context, userID uint, mutate func(*domain.User)) (*domain.User, error) {
	logCtx := logrus.WithField("user_id", userID)

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logCtx.WithError(err).Error("updateProfile: repository error")
		return nil, ErrInternalServer
	}

	mutate(user)
	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.WithError(err).Warn("updateProfile: duplicate entry (email taken?)")
			return nil, ErrRegistrationFailed
		}
		logCtx.WithError(err).Error("updateProfile: failed to save user")
		return nil, ErrInternalServer
	}
	user.Password = ""
	return user, nil
}

// --- 私有辅助函数 ---

// hashPassword 使用 bcrypt 对密码进行哈希处理
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to generate hash from password: %w", err)
	}
	return string(bytes), nil
}

// checkPassword 验证提供的密码是否与存储的哈希匹配
func checkPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// generateJWT 为指定用户 ID 生成 JWT Token
func (s *AuthService) generateJWT(userID uint) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(s.jwtExpiry).Unix(),
		"iat":     time.Now().Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}
