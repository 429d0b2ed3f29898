package setup

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"classroom-backend/internal/domain"
)

// MigrateDB 使用传入的 GORM 连接执行全部数据库迁移。
// 所有带索引的字符串列都限制为 varchar(191)，避免 MySQL utf8mb4 下索引长度超限。
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}

	err := db.AutoMigrate(
		&domain.User{},
		&domain.Classroom{},
		&domain.ClassMember{},
		&domain.JoinRequest{},
		&domain.Message{},
		&domain.Task{},
		&domain.Material{},
	)
	if err != nil {
		logrus.Errorf("Failed to auto-migrate tables: %v", err)
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}

	logrus.Info("Database migration completed successfully")
	return nil
}
