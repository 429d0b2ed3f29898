package repository

import (
	"context"

	"classroom-backend/internal/domain"
)

// MaterialRepository 定义了课件元数据的存储和检索操作。
type MaterialRepository interface {
	// FindByClassroom 查询某教室的全部课件，按上传时间倒序。
	FindByClassroom(ctx context.Context, classroomID uint) ([]domain.Material, error)

	// FindByFileName 根据磁盘文件名查找课件。
	// 如果课件不存在，应返回 repository.ErrMaterialNotFound。
	FindByFileName(ctx context.Context, fileName string) (*domain.Material, error)

	// Save 保存课件元数据。
	Save(ctx context.Context, m *domain.Material) error

	// Delete 删除课件元数据。
	Delete(ctx context.Context, id uint) error
}
