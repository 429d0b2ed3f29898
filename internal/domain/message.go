package domain

import "time"

// Message 表示一条已持久化的聊天消息。
// AuthorName/AuthorID 是发送时的身份快照，作者改名后历史消息不受影响。
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	AuthorName string    `gorm:"type:varchar(191);not null" json:"authorName"`
	AuthorID   uint      `gorm:"index;not null" json:"authorId"`
	Classroom  string    `gorm:"type:varchar(191);index;not null" json:"classroom"` // 所属教室的房间码
	SentAt     time.Time `gorm:"autoCreateTime;index" json:"sentAt"`                // 由存储层赋值
}
