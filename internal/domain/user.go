// Package domain 定义了应用程序的核心数据模型 (数据库模型)。
package domain

import "time"

// User 表示应用程序中的用户。
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(191);not null" json:"name"`
	Email     string    `gorm:"type:varchar(191);uniqueIndex:idx_email;not null" json:"email"`
	Password  string    `gorm:"type:text;not null" json:"-"` // 存储的是 bcrypt 哈希，不能为空
	Avatar    []byte    `gorm:"type:mediumblob" json:"-"`    // 头像图片字节，可为空
	HasAvatar bool      `gorm:"default:false" json:"hasAvatar"`
	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joinedAt"` // 注册时间 (GORM 自动填充)
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}
