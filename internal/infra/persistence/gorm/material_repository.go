package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"classroom-backend/internal/domain"
	"classroom-backend/internal/repository"
)

// GormMaterialRepository 是 MaterialRepository 接口的 GORM 实现
type GormMaterialRepository struct {
	db *gorm.DB
}

// NewGormMaterialRepository 创建 GormMaterialRepository 实例
func NewGormMaterialRepository(db *gorm.DB) *GormMaterialRepository {
	if db == nil {
		panic("database connection cannot be nil for GormMaterialRepository")
	}
	return &GormMaterialRepository{db: db}
}

// FindByClassroom 实现查询某教室的全部课件
func (r *GormMaterialRepository) FindByClassroom(ctx context.Context, classroomID uint) ([]domain.Material, error) {
	var materials []domain.Material
	err := r.db.WithContext(ctx).
		Where("classroom_id = ?", classroomID).
		Order("uploaded_at DESC").
		Find(&materials).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find materials for classroom %d: %w", classroomID, err)
	}
	return materials, nil
}

// FindByFileName 实现根据磁盘文件名查找课件
func (r *GormMaterialRepository) FindByFileName(ctx context.Context, fileName string) (*domain.Material, error) {
	var m domain.Material
	err := r.db.WithContext(ctx).Where("file_name = ?", fileName).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMaterialNotFound
		}
		return nil, fmt.Errorf("gorm: find material by file name '%s': %w", fileName, err)
	}
	return &m, nil
}

// Save 实现保存课件元数据
func (r *GormMaterialRepository) Save(ctx context.Context, m *domain.Material) error {
	err := r.db.WithContext(ctx).Save(m).Error
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save material (classroom: %d, file: %s): %w", m.ClassroomID, m.FileName, err)
	}
	return nil
}

// Delete 实现删除课件元数据
func (r *GormMaterialRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&domain.Material{}, id).Error; err != nil {
		return fmt.Errorf("gorm: delete material %d: %w", id, err)
	}
	return nil
}
