package domain

import "time"

// Material 表示上传到教室的一个课件文件。
// 文件内容保存在磁盘上，数据库只记录元数据。
type Material struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FileName     string    `gorm:"type:varchar(191);uniqueIndex:idx_file_name;not null" json:"fileName"` // 磁盘上的文件名
	OriginalName string    `gorm:"type:varchar(191);not null" json:"originalName"`
	MimeType     string    `gorm:"type:varchar(100);not null" json:"mimeType"`
	FileType     string    `gorm:"type:varchar(20);not null" json:"fileType"` // 文件扩展名，例如 "pdf"
	Size         int64     `gorm:"not null" json:"size"`
	DownloadLink string    `gorm:"type:varchar(255)" json:"downloadLink"`
	ClassroomID  uint      `gorm:"index;not null" json:"classroomId"`
	UploadedBy   uint      `gorm:"index;not null" json:"uploadedBy"`
	UploadedAt   time.Time `gorm:"autoCreateTime" json:"uploadedAt"`
}
