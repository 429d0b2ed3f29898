package domain

import "time"

// Classroom 表示一个教室 (聊天室/课堂)。
type Classroom struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ClassName   string    `gorm:"type:varchar(50);not null" json:"classname"`
	Subject     string    `gorm:"type:varchar(50);not null" json:"subject"`
	Description string    `gorm:"type:text" json:"description"`
	Code        string    `gorm:"type:varchar(191);uniqueIndex:idx_code;not null" json:"code"` // 用于加入教室的唯一房间码
	CreatedBy   uint      `gorm:"index;not null" json:"createdBy"`                             // 创建者即教室管理员
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	LastActive  time.Time `gorm:"index" json:"lastActive"` // 最近一次聊天活动时间，由后台任务更新
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"-"`

	Members   []ClassMember `gorm:"foreignKey:ClassroomID" json:"students,omitempty"`
	Approvals []JoinRequest `gorm:"foreignKey:ClassroomID" json:"approvals,omitempty"`
}

// ClassMember 表示教室的一个成员 (学生)。
// Name 是加入时的快照，方便列表展示时不再查询用户表。
type ClassMember struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	ClassroomID uint      `gorm:"uniqueIndex:idx_member,priority:1;not null" json:"-"`
	UserID      uint      `gorm:"uniqueIndex:idx_member,priority:2;not null" json:"id"`
	Name        string    `gorm:"type:varchar(191);not null" json:"name"`
	JoinedAt    time.Time `gorm:"autoCreateTime" json:"-"`
}

// JoinRequest 表示一个等待管理员批准的加入申请。
type JoinRequest struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	ClassroomID uint      `gorm:"uniqueIndex:idx_approval,priority:1;not null" json:"-"`
	UserID      uint      `gorm:"uniqueIndex:idx_approval,priority:2;not null" json:"id"`
	Name        string    `gorm:"type:varchar(191);not null" json:"name"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"-"`
}
