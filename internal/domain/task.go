package domain

import "time"

// Task 表示布置给教室学生的一项任务 (作业/测验等)。
type Task struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(191);not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	TaskType    string    `gorm:"type:varchar(50);not null" json:"taskType"`
	DueDate     time.Time `gorm:"not null" json:"dueDate"`
	ClassroomID uint      `gorm:"index;not null" json:"classroomId"`
	CreatedBy   uint      `gorm:"index;not null" json:"createdBy"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
