package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"classroom-backend/internal/domain"
	"classroom-backend/internal/repository"
)

// MaterialService 负责教室课件的业务逻辑。
// 文件内容写到 <dataDir>/<房间码>/ 下，数据库只保存元数据。
type MaterialService struct {
	materialRepo repository.MaterialRepository
	dataDir      string
}

// NewMaterialService 创建 MaterialService 实例。
func NewMaterialService(materialRepo repository.MaterialRepository, dataDir string) *MaterialService {
	if materialRepo == nil {
		panic("MaterialRepository cannot be nil for MaterialService")
	}
	if dataDir == "" {
		dataDir = "./data"
	}
	return &MaterialService{materialRepo: materialRepo, dataDir: dataDir}
}

// UploadDir 返回某教室的上传目录，并确保它存在。
func (s *MaterialService) UploadDir(code string) (string, error) {
	dir := filepath.Join(s.dataDir, code)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return dir, nil
}

// BuildFileName 为上传的文件生成磁盘文件名：<房间码>-<时间戳>.<扩展名>。
func (s *MaterialService) BuildFileName(code, originalName string) string {
	ext := strings.TrimPrefix(filepath.Ext(originalName), ".")
	return fmt.Sprintf("%s-%d.%s", code, time.Now().UnixMilli(), ext)
}

// RecordUpload 在文件落盘后保存课件元数据。
func (s *MaterialService) RecordUpload(ctx context.Context, room *domain.Classroom, uploaderID uint, fileName, originalName, mimeType string, size int64) (*domain.Material, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": room.ID, "file": fileName})

	m := &domain.Material{
		FileName:     fileName,
		OriginalName: originalName,
		MimeType:     mimeType,
		FileType:     strings.TrimPrefix(filepath.Ext(originalName), "."),
		Size:         size,
		DownloadLink: fmt.Sprintf("/api/room/%s/files/%s", room.Code, fileName),
		ClassroomID:  room.ID,
		UploadedBy:   uploaderID,
	}
	if err := s.materialRepo.Save(ctx, m); err != nil {
		logCtx.WithError(err).Error("Failed to save material metadata")
		return nil, ErrInternalServer
	}
	logCtx.Info("Material uploaded")
	return m, nil
}

// ListMaterials 返回教室的全部课件。
func (s *MaterialService) ListMaterials(ctx context.Context, classroomID uint) ([]domain.Material, error) {
	materials, err := s.materialRepo.FindByClassroom(ctx, classroomID)
	if err != nil {
		logrus.WithError(err).WithField("room_id", classroomID).Error("Failed to list materials")
		return nil, ErrInternalServer
	}
	return materials, nil
}

// ResolveFile 根据磁盘文件名返回课件元数据和文件路径。
func (s *MaterialService) ResolveFile(ctx context.Context, code, fileName string) (*domain.Material, string, error) {
	m, err := s.materialRepo.FindByFileName(ctx, fileName)
	if err != nil {
		if errors.Is(err, repository.ErrMaterialNotFound) {
			return nil, "", ErrMaterialNotFound
		}
		return nil, "", ErrInternalServer
	}
	return m, filepath.Join(s.dataDir, code, fileName), nil
}

// DeleteMaterial 删除课件元数据和磁盘文件。
func (s *MaterialService) DeleteMaterial(ctx context.Context, code, fileName string) error {
	m, path, err := s.ResolveFile(ctx, code, fileName)
	if err != nil {
		return err
	}
	if err := s.materialRepo.Delete(ctx, m.ID); err != nil {
		logrus.WithError(err).WithField("file", fileName).Error("Failed to delete material metadata")
		return ErrInternalServer
	}
	// 磁盘文件删除失败只记录，元数据已删，文件成为孤儿由运维清理
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).WithField("path", path).Warn("Failed to remove material file from disk")
	}
	return nil
}
